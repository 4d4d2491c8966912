package report

import (
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dwoolworth/bookshelf/internal/queries"
)

// writeText prints the message followed by one relaxed Extended JSON line
// per document, the way a shell session shows query output.
func writeText(w io.Writer, o queries.Outcome) error {
	if _, err := fmt.Fprintf(w, "%s:\n", o.Message); err != nil {
		return err
	}
	if len(o.Documents) == 0 {
		_, err := fmt.Fprintln(w, "  (no documents)")
		return err
	}
	for _, d := range o.Documents {
		b, err := bson.MarshalExtJSON(d, false, false)
		if err != nil {
			return fmt.Errorf("report: encode %s: %w", o.Step, err)
		}
		if _, err := fmt.Fprintf(w, "  %s\n", b); err != nil {
			return err
		}
	}
	if o.Detail != nil {
		b, err := bson.MarshalExtJSONIndent(o.Detail, false, false, "  ", "  ")
		if err != nil {
			return fmt.Errorf("report: encode %s detail: %w", o.Step, err)
		}
		if _, err := fmt.Fprintf(w, "  %s\n", b); err != nil {
			return err
		}
	}
	return nil
}
