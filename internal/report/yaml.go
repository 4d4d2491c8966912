package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"gopkg.in/yaml.v3"

	"github.com/dwoolworth/bookshelf/internal/queries"
)

// writeYAML writes each outcome as its own YAML document.
func writeYAML(w io.Writer, o queries.Outcome, first bool) error {
	node, err := toNode(envelope(o))
	if err != nil {
		return fmt.Errorf("report: encode %s: %w", o.Step, err)
	}

	if !first {
		if _, err := io.WriteString(w, "---\n"); err != nil {
			return err
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("report: encode %s: %w", o.Step, err)
	}
	return enc.Close()
}

// toNode converts decoded BSON into a yaml.Node, keeping bson.D key order.
func toNode(v interface{}) (*yaml.Node, error) {
	switch val := v.(type) {
	case bson.D:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, e := range val {
			child, err := toNode(e.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, scalar(e.Key), child)
		}
		return n, nil
	case bson.M:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := make(bson.D, 0, len(keys))
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: val[k]})
		}
		return toNode(d)
	case []bson.D:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, d := range val {
			child, err := toNode(d)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case bson.A:
		return sequence([]interface{}(val))
	case []interface{}:
		return sequence(val)
	case bson.ObjectID:
		return scalar(val.Hex()), nil
	case bson.DateTime:
		return scalar(val.Time().UTC().Format(time.RFC3339Nano)), nil
	case bson.Decimal128:
		return scalar(val.String()), nil
	case nil, string, bool, int, int32, int64, float64:
		n := &yaml.Node{}
		if err := n.Encode(val); err != nil {
			return nil, err
		}
		return n, nil
	default:
		return scalar(fmt.Sprint(val)), nil
	}
}

func sequence(items []interface{}) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, item := range items {
		child, err := toNode(item)
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, child)
	}
	return n, nil
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
