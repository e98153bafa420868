package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	sceneCmd := &cobra.Command{
		Use:   "scene",
		Short: "Show the saved scene",
		Run:   runScene,
	}
	sceneCmd.AddCommand(&cobra.Command{
		Use:   "select [name...]",
		Short: "Replace the selection; no names clears it",
		Run:   runSelect,
	})

	RootCmd.AddCommand(sceneCmd)
}

func runScene(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	sum, snap := a.Scene()
	if jsonOutput() {
		printJSON(map[string]any{"summary": sum, "snapshot": snap})
		return
	}
	fmt.Printf("%d objects (%d meshes, %d lights, %d cameras), %d materials\n",
		sum.Objects, sum.Meshes, sum.Lights, sum.Cameras, sum.Materials)
	selected := map[string]bool{}
	for _, n := range snap.Selected {
		selected[n] = true
	}
	for _, o := range snap.Objects {
		mark := " "
		if selected[o.Name] {
			mark = "*"
		}
		fmt.Printf("%s %-24s %-6s (%g, %g, %g)\n", mark, o.Name, o.Kind, o.Location[0], o.Location[1], o.Location[2])
	}
}

func runSelect(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	if err := a.Select(args...); err != nil {
		exitErr("select", err)
	}
	_, snap := a.Scene()
	if jsonOutput() {
		printJSON(snap.Selected)
		return
	}
	fmt.Printf("selected %d objects\n", len(snap.Selected))
}
