package main

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dwoolworth/bookshelf/internal/queries"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the catalog steps in execution order",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.Header("Step", "Kind", "Description")
		for _, s := range queries.Catalog(queries.Params{
			Page:          cfg.Page,
			PageSize:      cfg.PageSize,
			ExplainAuthor: cfg.ExplainAuthor,
		}) {
			if err := table.Append([]string{s.Name, string(s.Kind), s.Description}); err != nil {
				return err
			}
		}
		return table.Render()
	},
}
