// Package watch implements periodic research runs on a cron schedule.
package watch

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/goveille/cmd/common"
	"github.com/jonesrussell/goveille/internal/logger"
)

const defaultSchedule = "@every 6h"

// Command returns the watch command for use in the root command.
func Command() *cobra.Command {
	var (
		entitiesPath string
		schedule     string
		immediate    bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run research batches on a schedule",
		Long: `Watch re-runs the research pipeline over an entities file on a cron
schedule, refreshing findings as the cache expires. Runs never overlap: a
tick that fires while a batch is still in flight is skipped.

Examples:
  # Every six hours
  goveille watch -e entities.csv

  # Every weekday at 07:00
  goveille watch -e entities.csv --schedule "0 7 * * 1-5"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), entitiesPath, schedule, immediate)
		},
	}

	cmd.Flags().StringVarP(&entitiesPath, "entities", "e", "", "entities file (.json or .csv)")
	cmd.Flags().StringVar(&schedule, "schedule", defaultSchedule, "cron schedule expression")
	cmd.Flags().BoolVar(&immediate, "immediate", true, "run one batch at startup")
	_ = cmd.MarkFlagRequired("entities")

	return cmd
}

func run(ctx context.Context, entitiesPath, schedule string, immediate bool) error {
	deps, err := common.NewDeps()
	if err != nil {
		return err
	}

	entities, err := common.LoadEntities(entitiesPath)
	if err != nil {
		return err
	}

	stack, err := common.NewStack(deps)
	if err != nil {
		return err
	}
	defer stack.Close()

	log := deps.Logger.WithComponent("watch")

	var running atomic.Bool
	runBatch := func() {
		if !running.CompareAndSwap(false, true) {
			log.Warn("previous batch still running, skipping tick")
			return
		}
		defer running.Store(false)

		report := stack.Pipeline.Run(ctx, entities)
		log.Info("batch finished",
			"run_id", report.RunID,
			"validated", report.TotalValidated,
			"not_searchable", report.NotSearchable,
		)
		sweepCache(stack, deps, log)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, runBatch); err != nil {
		return err
	}

	if immediate {
		runBatch()
	}

	scheduler.Start()
	log.Info("watch started", "schedule", schedule, "entities", len(entities))

	waitForShutdown(ctx, log)

	<-scheduler.Stop().Done()
	return nil
}

// sweepCache trims entries past the sweep age after each batch.
func sweepCache(stack *common.Stack, deps common.Deps, log logger.Interface) {
	removed, err := stack.Cache.Sweep(deps.Config.Cache.SweepMaxAge)
	if err != nil {
		log.WithError(err).Warn("cache sweep failed")
		return
	}
	if removed > 0 {
		log.Info("cache swept", "removed", removed)
	}
}

func waitForShutdown(ctx context.Context, log logger.Interface) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
	}
}
