package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"schemasync/internal/metadata"
	"schemasync/internal/store"
	"schemasync/internal/syncrun"
	"schemasync/internal/watch"
)

var (
	watchDefs bool
	quiet     bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create missing tables and columns for every entity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		runner := &syncrun.Runner{
			Provider:    s,
			Mapper:      s.Dialect,
			Reconciler:  store.NewMigrator(s.Dialect, store.WithHistory(cfg.Schema.History)),
			Concurrency: cfg.Schema.Concurrency,
		}

		ctx = store.WithActor(ctx, "cli")
		if err := syncOnce(ctx, runner); err != nil && !watchDefs {
			return err
		}
		if !watchDefs {
			return nil
		}

		w := &watch.Watcher{
			Dir: cfg.Schema.Dir,
			OnChange: func(ctx context.Context) {
				if err := syncOnce(ctx, runner); err != nil {
					log.Printf("ERROR: %v", err)
				}
			},
		}
		return w.Run(ctx)
	},
}

func init() {
	syncCmd.Flags().BoolVarP(&watchDefs, "watch", "w", false, "keep running and sync again when definitions change")
	syncCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar")
}

func syncOnce(ctx context.Context, runner *syncrun.Runner) error {
	entities, err := metadata.LoadDir(cfg.Schema.Dir)
	if err != nil {
		return fmt.Errorf("load definitions: %w", err)
	}
	if len(entities) == 0 {
		log.Printf("WARN: no entity definitions in %s", cfg.Schema.Dir)
		return nil
	}

	runner.OnDone = nil
	if !quiet {
		p := uiprogress.New()
		p.Start()
		defer p.Stop()
		bar := p.AddBar(len(entities)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return fmt.Sprintf("Syncing %d/%d: ", b.Current(), len(entities))
		})
		runner.OnDone = func(syncrun.Result) { bar.Incr() }
	}

	report, err := runner.Run(ctx, entities)
	if err != nil {
		return fmt.Errorf("sync run %s: %d of %d entities failed: %w",
			report.ID, len(report.Failed()), len(entities), err)
	}
	return nil
}
