package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/forgecore/internal/journal"
	"github.com/rcliao/forgecore/internal/model"
)

func init() {
	goalCmd := &cobra.Command{
		Use:   "goal",
		Short: "Show or set the daily goal",
		Run:   runGoalShow,
	}
	goalCmd.AddCommand(&cobra.Command{
		Use:   "set <text>",
		Short: "Set the daily goal",
		Args:  cobra.MinimumNArgs(1),
		Run:   runGoalSet,
	}, &cobra.Command{
		Use:   "show",
		Short: "Show the active goal and its progress notes",
		Run:   runGoalShow,
	})

	progressCmd := &cobra.Command{
		Use:   "progress <text>",
		Short: "Log progress against the active goal",
		Args:  cobra.MinimumNArgs(1),
		Run:   runProgress,
	}

	noteCmd := &cobra.Command{
		Use:   "note <text>",
		Short: "Save a journal note",
		Args:  cobra.MinimumNArgs(1),
		Run:   runNote,
	}

	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "List recent journal entries, newest first",
		Run:   runRecent,
	}
	recentCmd.Flags().IntP("limit", "l", 10, "Max entries")

	RootCmd.AddCommand(goalCmd, progressCmd, noteCmd, recentCmd)
}

func runGoalSet(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	res, err := a.SetGoal(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		exitErr("set goal", err)
	}
	printResult(res)
}

func runGoalShow(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	g, err := a.Goal()
	if errors.Is(err, journal.ErrNoGoal) {
		fmt.Fprintln(os.Stderr, "no goal set")
		os.Exit(1)
	}
	if err != nil {
		exitErr("goal", err)
	}
	if jsonOutput() {
		printJSON(g)
		return
	}

	fmt.Printf("Goal #%d: %s (set %s)\n", g.EntryID, g.Text, g.SetAt.Local().Format(time.DateTime))
	days := make([]string, 0, len(g.Progress))
	for day := range g.Progress {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		fmt.Println(day)
		for _, n := range g.Progress[day] {
			fmt.Printf("  #%d %s %s\n", n.EntryID, n.At.Local().Format(time.TimeOnly), n.Text)
		}
	}
}

func runProgress(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	res, err := a.AddProgress(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		exitErr("progress", err)
	}
	printResult(res)
	if !res.OK() {
		os.Exit(2)
	}
}

func runNote(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()
	res, err := a.AddNote(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		exitErr("note", err)
	}
	printResult(res)
}

func runRecent(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	a := openApp()
	defer a.Close()

	entries := a.Recent(limit)
	if jsonOutput() {
		printJSON(entries)
		return
	}
	for _, e := range entries {
		printEntry(e)
	}
}

// printEntry writes one journal entry as a single line.
func printEntry(e model.Entry) {
	status := "-"
	if e.Result != nil {
		status = string(e.Result.Status)
	}
	text := e.Prompt
	switch e.Kind {
	case model.KindGoal:
		text = "goal: " + e.Goal
	case model.KindProgress:
		text = "progress: " + e.Note
	}
	fmt.Printf("#%-5d %s  %-15s %-7s %s\n",
		e.ID, e.Timestamp.Local().Format(time.DateTime), e.Category, status, text)
}
