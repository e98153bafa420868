package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/forgecore/internal/index"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search past requests, notes and generated scripts",
		Long:  "Full-text search over the journal. Every query word must match. Without a query, lists entries matching the filters.",
		Run:   runSearch,
	}

	cmd.Flags().String("category", "", "Filter by category (e.g. mesh_create)")
	cmd.Flags().String("status", "", "Filter by status: success or failure")
	cmd.Flags().String("kind", "", "Filter by entry kind: route, goal or progress")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	status, _ := cmd.Flags().GetString("status")
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	a := openApp()
	defer a.Close()

	hits, err := a.Search(cmd.Context(), index.SearchParams{
		Query:    strings.Join(args, " "),
		Category: category,
		Status:   status,
		Kind:     kind,
		Limit:    limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if jsonOutput() {
		printJSON(hits)
		return
	}
	for _, h := range hits {
		fmt.Printf("#%-5d %s  %-15s %s\n", h.EntryID, h.CreatedAt.Local().Format(time.DateTime), h.Category, h.Prompt)
		if h.Match != nil && h.Match.Source == index.SourceScript {
			fmt.Printf("       script lines %d-%d\n", h.Match.StartLine, h.Match.EndLine)
		}
	}
}
