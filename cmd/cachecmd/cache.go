// Package cachecmd implements cache inspection and maintenance commands.
package cachecmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/goveille/cmd/common"
	"github.com/jonesrussell/goveille/internal/cache"
)

// Command returns the cache command group for use in the root command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the response cache",
	}
	cmd.AddCommand(statsCommand())
	cmd.AddCommand(sweepCommand())
	return cmd
}

func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print response cache statistics",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStore(func(store *cache.Store, _ common.Deps) error {
				stats, err := store.Stats()
				if err != nil {
					return err
				}
				fmt.Printf("entries: %d\n", stats.Entries)
				return nil
			})
		},
	}
}

func sweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove cache entries older than the sweep age",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withStore(func(store *cache.Store, deps common.Deps) error {
				removed, err := store.Sweep(deps.Config.Cache.SweepMaxAge)
				if err != nil {
					return err
				}
				fmt.Printf("removed %d entries\n", removed)
				return nil
			})
		},
	}
}

// withStore opens the configured cache store and guarantees it is closed.
func withStore(fn func(*cache.Store, common.Deps) error) error {
	deps, err := common.NewDeps()
	if err != nil {
		return err
	}

	store, err := cache.Open(deps.Config.Cache.Path, deps.Config.Cache.TTL)
	if err != nil {
		return fmt.Errorf("open response cache: %w", err)
	}
	defer store.Close()

	return fn(store, deps)
}
