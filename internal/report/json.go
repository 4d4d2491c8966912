package report

import (
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dwoolworth/bookshelf/internal/queries"
)

// envelope wraps an outcome into one document so every format sees the
// same shape.
func envelope(o queries.Outcome) bson.D {
	docs := o.Documents
	if docs == nil {
		docs = []bson.D{}
	}
	env := bson.D{
		{Key: "step", Value: o.Step},
		{Key: "kind", Value: string(o.Kind)},
		{Key: "message", Value: o.Message},
		{Key: "duration_ms", Value: o.Duration.Milliseconds()},
		{Key: "documents", Value: docs},
	}
	if o.Detail != nil {
		env = append(env, bson.E{Key: "detail", Value: o.Detail})
	}
	return env
}

// writeJSON writes one relaxed Extended JSON object per line.
func writeJSON(w io.Writer, o queries.Outcome) error {
	b, err := bson.MarshalExtJSON(envelope(o), false, false)
	if err != nil {
		return fmt.Errorf("report: encode %s: %w", o.Step, err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
