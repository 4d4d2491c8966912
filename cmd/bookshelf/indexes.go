package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dwoolworth/bookshelf"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the indexes declared by the Book model",
	Long:  "Create every index declared on the Book model (title, author + published_year) that does not exist yet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := instrument()
		defer flushMetrics(rec)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		return withConnection(ctx, func(ctx context.Context, db *mongo.Database) error {
			created, err := bookshelf.EnsureIndexes(ctx, bookshelf.IndexOptions{DB: db})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(created) == 0 {
				fmt.Fprintln(out, "✓ All declared indexes already exist")
				return nil
			}
			for _, name := range created {
				fmt.Fprintf(out, "+ %s\n", name)
			}
			return nil
		})
	},
}
