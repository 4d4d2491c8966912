package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dwoolworth/bookshelf/internal/seed"
)

var seedDrop bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the sample book inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := instrument()
		defer flushMetrics(rec)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		return withConnection(ctx, func(ctx context.Context, db *mongo.Database) error {
			n, err := seed.Seed(ctx, seed.Options{DB: db, Drop: seedDrop})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d books into %s.%s\n", n, cfg.Database, cfg.Collection)
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedDrop, "drop", false, "drop the collection before inserting")
}
