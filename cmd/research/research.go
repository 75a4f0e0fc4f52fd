// Package research implements the batch research command.
package research

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/goveille/cmd/common"
	"github.com/jonesrussell/goveille/internal/domain"
)

const scorePrecision = 2

// Command returns the research command for use in the root command.
func Command() *cobra.Command {
	var (
		entitiesPath string
		outputPath   string
		quiet        bool
	)

	cmd := &cobra.Command{
		Use:   "research",
		Short: "Run a research batch over a file of entities",
		Long: `Research reads a batch of entities from a JSON or CSV file, runs the
full search and validation pipeline over them, prints a summary table and
optionally writes the full report as JSON.

Examples:
  # Research entities from a CSV export
  goveille research -e entities.csv

  # Write the full report to a file
  goveille research -e entities.json -o report.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, entitiesPath, outputPath, quiet)
		},
	}

	cmd.Flags().StringVarP(&entitiesPath, "entities", "e", "", "entities file (.json or .csv)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the full report to this JSON file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the summary table")
	_ = cmd.MarkFlagRequired("entities")

	return cmd
}

func run(cmd *cobra.Command, entitiesPath, outputPath string, quiet bool) error {
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

	report := stack.Pipeline.Run(cmd.Context(), entities)

	if outputPath != "" {
		if writeErr := writeReport(report, outputPath); writeErr != nil {
			return writeErr
		}
		deps.Logger.Info("report written", "path", outputPath)
	}

	if !quiet {
		printSummary(report)
	}
	return nil
}

func writeReport(report *domain.RunReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// printSummary renders one row per entity with its strongest theme.
func printSummary(report *domain.RunReport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Entity", "Commune", "Score", "Confidence", "Top theme", "Results", "Backend"})

	for i := range report.Reports {
		r := &report.Reports[i]
		topTheme, results := topTheme(r)
		backend := r.Stats.WinningBackend
		if r.Stats.UsedSynthetic && backend == "" {
			backend = "synthetic"
		}
		t.AppendRow(table.Row{
			r.Entity.DisplayName(),
			r.Entity.Commune,
			fmt.Sprintf("%.*f", scorePrecision, r.AggregateScore),
			r.Confidence,
			topTheme,
			results,
			backend,
		})
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d entities", len(report.Reports)),
		"",
		"",
		"",
		fmt.Sprintf("%d not searchable", report.NotSearchable),
		report.TotalValidated,
		"",
	})
	t.Render()
}

func topTheme(r *domain.EntityReport) (string, int) {
	best := ""
	bestScore := 0.0
	total := 0
	for _, set := range r.ThemeSets {
		total += len(set.Results)
		if len(set.Results) > 0 && set.Pertinence > bestScore {
			best = set.Theme
			bestScore = set.Pertinence
		}
	}
	if best == "" {
		best = "-"
	}
	return best, total
}
