// Package report renders query outcomes for the terminal in one of several
// formats.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dwoolworth/bookshelf/internal/queries"
)

// Format selects how outcomes are written.
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatTable, FormatJSON, FormatYAML}

// ParseFormat validates a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("report: unknown output format %q (want one of %s)", s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Writer is a queries.Sink that renders each outcome to an io.Writer.
type Writer struct {
	w      io.Writer
	format Format
	n      int
}

// NewWriter returns a Writer for format. An unknown format is an error.
func NewWriter(w io.Writer, format Format) (*Writer, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	return &Writer{w: w, format: format}, nil
}

// Emit renders o.
func (rw *Writer) Emit(o queries.Outcome) error {
	defer func() { rw.n++ }()

	switch rw.format {
	case FormatTable:
		return writeTable(rw.w, o)
	case FormatJSON:
		return writeJSON(rw.w, o)
	case FormatYAML:
		return writeYAML(rw.w, o, rw.n == 0)
	default:
		return writeText(rw.w, o)
	}
}

var _ queries.Sink = (*Writer)(nil)
