package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/traceviewhq/traceview/store"
)

// WatchCmd re-runs analysis whenever the capture changes on disk.
var WatchCmd = &cobra.Command{
	Use:   "watch <table>",
	Short: "Re-run analysis whenever the capture changes on disk",
	Long: `Watch the capture file and its -wal sidecar. Whenever either
changes, cursors are invalidated, the table is re-sampled, and any
column whose inferred capability or codec moved is reported as a
re-inference event. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	sess, cfg, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	table := args[0]
	ctx := cmd.Context()

	// Prime the cache so the first change has a baseline to diff against.
	if _, err := sess.Columns(ctx, table); err != nil {
		return err
	}

	watcher, err := store.NewCaptureWatcher(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	events := make(chan struct{}, 1)
	watcher.OnChange(func() {
		select {
		case events <- struct{}{}:
		default:
		}
	})
	watcher.Start()

	pterm.Info.Printf("Watching %s (table %s), Ctrl-C to stop\n", cfg.Database.Path, table)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-events:
			sess.InvalidateCursors()
			changes, err := sess.Reinfer(ctx, table)
			if err != nil {
				pterm.Error.Printf("re-inference failed: %v\n", err)
				continue
			}
			if len(changes) == 0 {
				pterm.Printf("capture changed, inference stable for %s\n", table)
				continue
			}
			for _, c := range changes {
				pterm.Printf("%s %s.%s: %s/%s -> %s/%s\n",
					pterm.LightYellow("reinfer"), c.Table, c.Column,
					c.OldCapability, c.OldCodecID,
					c.NewCapability, c.NewCodecID)
			}

		case <-sigs:
			pterm.Println("stopped")
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
