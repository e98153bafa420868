package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/forgecore/internal/model"
)

func init() {
	routeCmd := &cobra.Command{
		Use:   "route <prompt>",
		Short: "Route a request: generate, execute and journal it",
		Long: "Route a natural-language request against the saved scene.\n" +
			"Exits with status 2 when the request fails.",
		Example: `  forgecore route "create a large red sphere at 0 0 2"
  forgecore route "add studio lighting"
  forgecore route "export for unity"`,
		Args: cobra.MinimumNArgs(1),
		Run:  runRoute,
	}

	planCmd := &cobra.Command{
		Use:   "plan <prompt>",
		Short: "Show the category, parameters and script a request would produce",
		Args:  cobra.MinimumNArgs(1),
		Run:   runPlan,
	}

	RootCmd.AddCommand(routeCmd, planCmd)
}

func runRoute(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	res, err := a.Route(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		exitErr("route", err)
	}
	printResult(res)
	if !res.OK() {
		os.Exit(2)
	}
}

func runPlan(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	p := a.Plan(strings.Join(args, " "))
	if jsonOutput() {
		printJSON(p)
		return
	}
	fmt.Printf("category: %s", p.Category)
	if p.Keyword != "" {
		fmt.Printf(" (%q)", p.Keyword)
	}
	fmt.Println()
	if keys := p.Params.Keys(); len(keys) > 0 {
		fmt.Printf("params:   %s\n", strings.Join(keys, ", "))
	}
	if p.Error != "" {
		fmt.Printf("error:    %s\n", p.Error)
		return
	}
	if p.Journal != nil {
		fmt.Printf("journal:  %s %q\n", p.Journal.Kind, p.Journal.Text)
	}
	if p.Script != "" {
		fmt.Println()
		fmt.Print(p.Script)
	}
}

func printResult(res model.Result) {
	if jsonOutput() {
		printJSON(res)
		return
	}
	status := "ok"
	if !res.OK() {
		status = "failed"
	}
	fmt.Printf("%s: %s\n", status, res.Message)
	if res.Detail != "" {
		fmt.Println(res.Detail)
	}
	if len(res.Affected) > 0 {
		fmt.Printf("affected: %s\n", strings.Join(res.Affected, ", "))
	}
	if res.JournalError != "" {
		fmt.Fprintf(os.Stderr, "warning: journal not written: %s\n", res.JournalError)
	}
}
