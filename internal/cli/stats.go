package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show journal statistics",
		Run:   runStats,
	}
	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	st, err := a.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}
	if jsonOutput() {
		printJSON(st)
		return
	}
	fmt.Printf("entries:   %d (%d failed)\n", st.Entries, st.Failures)
	fmt.Printf("goals:     %d, progress notes: %d\n", st.Goals, st.ProgressNotes)
	fmt.Printf("host calls: %d\n", st.HostCalls)
	fmt.Printf("index:     %s (%d bytes, %d chunks)\n", st.DBPath, st.DBSizeBytes, st.Chunks)
	for _, c := range st.Categories {
		fmt.Printf("  %-16s %d (%d failed)\n", c.Category, c.Count, c.Failures)
	}
}
