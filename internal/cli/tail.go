package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/forgecore/internal/app"
	"github.com/rcliao/forgecore/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the last journal entries, optionally following new ones",
		Run:   runTail,
	}
	cmd.Flags().IntP("lines", "n", 10, "Entries to print first")
	cmd.Flags().BoolP("follow", "F", false, "Keep printing entries as they are appended")

	RootCmd.AddCommand(cmd)
}

func runTail(cmd *cobra.Command, args []string) {
	n, _ := cmd.Flags().GetInt("lines")
	follow, _ := cmd.Flags().GetBool("follow")

	a := openApp()
	defer a.Close()

	emit := func(e model.Entry) {
		if jsonOutput() {
			printJSONLine(e)
			return
		}
		printEntry(e)
	}

	recent := a.Recent(n)
	var last int64
	for i := len(recent) - 1; i >= 0; i-- {
		emit(recent[i])
		last = recent[i].ID
	}
	if !follow {
		return
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := followJournal(ctx, a, last, emit); err != nil {
		exitErr("tail", err)
	}
}

// followJournal emits every entry with an id above last as the journal file
// changes, until ctx is done. The directory is watched because the journal
// is replaced by rename on every write.
func followJournal(ctx context.Context, a *app.App, last int64, emit func(model.Entry)) error {
	path, err := filepath.Abs(a.Config().JournalPath())
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if err := a.Reload(); err != nil {
				logger.Warn("journal reload failed", zap.Error(err))
				continue
			}
			for _, e := range a.Entries() {
				if e.ID > last {
					emit(e)
					last = e.ID
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}
