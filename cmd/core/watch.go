package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/faithogundimu/core/internal/config"
)

// watchDebounce coalesces bursts of file events into one re-run.
const watchDebounce = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run case preparation whenever the data files change",
	Long: `Watch the data directory and re-run the full readiness pass when any
source file changes. Useful while records are being corrected ahead of a
meeting: the dashboard stays current without manual re-runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return watchRoster(cmd.Context(), cfg)
	},
}

func watchRoster(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.Data.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.Data.Dir, err)
	}
	fmt.Printf("Watching %s (Ctrl-C to stop)\n\n", cfg.Data.Dir)

	if err := runRoster(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "initial run failed: %v\n", err)
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Ignore our own output writes when it lives under the data dir.
			if event.Name == cfg.Data.Path("dashboard.json") {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)

		case <-pending:
			fmt.Println("\nData changed, re-running...")
			if err := runRoster(ctx, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "re-run failed: %v\n", err)
			}
		}
	}
}
