package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dwoolworth/bookshelf/internal/queries"
	"github.com/dwoolworth/bookshelf/internal/report"
)

var runOnly []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the query catalog",
	Long: "Connect, run every catalog step in order, print each result and disconnect. " +
		"The first failing step stops the run; the connection is closed either way.",
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringSliceVar(&runOnly, "only", nil, "run only these steps (see 'bookshelf steps')")
	runCmd.Flags().Int("page", 0, "page number for the pagination step (default 1)")
	runCmd.Flags().Int("page-size", 0, "books per page for the pagination step (default 5)")
	runCmd.Flags().String("author", "", "author used by the explain step (default Jane Austen)")
}

func runRun(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	sink, err := report.NewWriter(cmd.OutOrStdout(), format)
	if err != nil {
		return err
	}

	steps, err := queries.Only(queries.Catalog(queries.Params{
		Page:          cfg.Page,
		PageSize:      cfg.PageSize,
		ExplainAuthor: cfg.ExplainAuthor,
	}), runOnly...)
	if err != nil {
		return err
	}

	rec := instrument()
	defer flushMetrics(rec)

	runner := &queries.Runner{
		Connector: queries.MongoConnector{URI: cfg.URI, Database: cfg.Database},
		Steps:     steps,
		Sink:      sink,
		Logger:    logger,
	}
	if rec != nil {
		runner.Observer = rec
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()
	return runner.Run(ctx)
}
