package bookshelf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoDatabase is returned when no database connection is available.
	ErrNoDatabase = errors.New("bookshelf: no database connection (call Connect first)")

	// ErrInvalidPageSize is returned by Paginate for a page size below one.
	ErrInvalidPageSize = errors.New("bookshelf: page size must be at least 1")
)

// IndexError reports a failure to create or list indexes on a collection.
type IndexError struct {
	Collection string
	Index      string
	Err        error
}

func (e *IndexError) Error() string {
	if e.Index == "" {
		return fmt.Sprintf("bookshelf: index error on %s: %v", e.Collection, e.Err)
	}
	return fmt.Sprintf("bookshelf: index %s on %s: %v", e.Index, e.Collection, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// ValidationError indicates a field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// ValidationErrors is a slice of ValidationError that implements error.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}
