// Package queries holds the fixed, ordered catalog of bookstore queries and
// the runner that executes it against one connection.
package queries

import (
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Kind classifies a catalog step by the kind of database call it makes.
type Kind string

const (
	KindFind      Kind = "find"
	KindUpdate    Kind = "update"
	KindDelete    Kind = "delete"
	KindAggregate Kind = "aggregate"
	KindIndex     Kind = "index"
	KindExplain   Kind = "explain"
)

// Outcome is what a step produced, normalised to ordered documents so any
// Sink can render it without knowing the step's result type.
type Outcome struct {
	Step      string
	Kind      Kind
	Message   string
	Documents []bson.D
	// Detail carries a document too large for tabular output, such as a
	// full explain plan. Sinks that cannot show it may ignore it.
	Detail   bson.D
	Duration time.Duration
}

// Sink receives the outcome of every successful step, in order.
type Sink interface {
	Emit(o Outcome) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(o Outcome) error

// Emit calls f(o).
func (f SinkFunc) Emit(o Outcome) error { return f(o) }

// toDocuments converts a slice of any bson-marshalable values into ordered
// documents.
func toDocuments(slice interface{}) ([]bson.D, error) {
	rv := reflect.ValueOf(slice)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("queries: expected slice, got %T", slice)
	}

	docs := make([]bson.D, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if d, ok := elem.(bson.D); ok {
			docs = append(docs, d)
			continue
		}
		b, err := bson.Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("queries: marshal element %d: %w", i, err)
		}
		var d bson.D
		if err := bson.Unmarshal(b, &d); err != nil {
			return nil, fmt.Errorf("queries: unmarshal element %d: %w", i, err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}
