package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dwoolworth/bookshelf/internal/queries"
)

// writeTable renders the outcome's documents as one table whose columns are
// the union of document keys in first-seen order. Detail is not shown.
func writeTable(w io.Writer, o queries.Outcome) error {
	if _, err := fmt.Fprintf(w, "%s (%d)\n", o.Message, len(o.Documents)); err != nil {
		return err
	}
	if len(o.Documents) == 0 {
		_, err := fmt.Fprintln(w, "(no documents)")
		return err
	}

	cols := columns(o.Documents)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c
	}

	table := tablewriter.NewWriter(w)
	table.Header(header...)
	for _, d := range o.Documents {
		if err := table.Append(row(d, cols)); err != nil {
			return fmt.Errorf("report: table row for %s: %w", o.Step, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("report: render %s: %w", o.Step, err)
	}
	return nil
}

func columns(docs []bson.D) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, d := range docs {
		for _, e := range d {
			if !seen[e.Key] {
				seen[e.Key] = true
				cols = append(cols, e.Key)
			}
		}
	}
	return cols
}

func row(d bson.D, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		for _, e := range d {
			if e.Key == c {
				out[i] = cell(e.Value)
				break
			}
		}
	}
	return out
}

// cell formats a BSON value for a single table cell.
func cell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bson.ObjectID:
		return val.Hex()
	case bson.D:
		b, err := bson.MarshalExtJSON(val, false, false)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	case bson.A:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = cell(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(val)
	}
}
