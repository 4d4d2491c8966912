package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dwoolworth/bookshelf/internal/queries"
	"github.com/dwoolworth/bookshelf/internal/report"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain the books-by-author query",
	Long:  "Show the query plan and execution statistics for finding an author's books sorted by published_year descending.",
	RunE:  runExplain,
}

func init() {
	explainCmd.Flags().String("author", "", "author to query (default Jane Austen)")
}

func runExplain(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	sink, err := report.NewWriter(cmd.OutOrStdout(), format)
	if err != nil {
		return err
	}

	rec := instrument()
	defer flushMetrics(rec)

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	return withConnection(ctx, func(ctx context.Context, db *mongo.Database) error {
		res, err := queries.ExplainByAuthor(ctx, db, cfg.ExplainAuthor)
		if err != nil {
			return err
		}
		var detail bson.D
		if err := bson.Unmarshal(res.Raw, &detail); err != nil {
			return fmt.Errorf("decode explain: %w", err)
		}

		msg := fmt.Sprintf("Explain for author %q", cfg.ExplainAuthor)
		if !res.Summary.UsesIndex() {
			msg += " (collection scan; run 'bookshelf indexes' first)"
		}
		return sink.Emit(queries.Outcome{
			Step:      "explain",
			Kind:      queries.KindExplain,
			Message:   msg,
			Documents: []bson.D{queries.SummaryDocument(res.Summary)},
			Detail:    detail,
		})
	})
}
