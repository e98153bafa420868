package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal as JSON",
		Long:  "Export journal entries as newline-delimited JSON, oldest first. Filter by entry kind with --kind.",
		Run:   runExport,
	}

	cmd.Flags().String("kind", "", "Filter by entry kind: route, goal or progress")
	cmd.Flags().Int64("since", 0, "Only entries with a greater id")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	since, _ := cmd.Flags().GetInt64("since")

	a := openApp()
	defer a.Close()

	enc := json.NewEncoder(os.Stdout)
	n := 0
	for _, e := range a.Entries() {
		if e.ID <= since || (kind != "" && e.Kind != kind) {
			continue
		}
		if err := enc.Encode(e); err != nil {
			exitErr("export", err)
		}
		n++
	}
	logger.Sugar().Debugf("exported %d entries", n)
	if n == 0 {
		fmt.Fprintln(os.Stderr, "no entries")
	}
}
