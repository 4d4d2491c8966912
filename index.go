package bookshelf

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// IndexKey is one field of an index together with its sort direction
// (1 ascending, -1 descending).
type IndexKey struct {
	Field     string
	Direction int
}

// Asc returns an ascending index key.
func Asc(field string) IndexKey { return IndexKey{Field: field, Direction: 1} }

// Desc returns a descending index key.
func Desc(field string) IndexKey { return IndexKey{Field: field, Direction: -1} }

// CompoundIndex represents a single- or multi-field index on a collection.
type CompoundIndex struct {
	Keys   []IndexKey
	Unique bool
}

// NewIndex creates a non-unique index on the given keys.
func NewIndex(keys ...IndexKey) CompoundIndex {
	return CompoundIndex{Keys: keys}
}

// NewUniqueIndex creates a unique index on the given keys.
func NewUniqueIndex(keys ...IndexKey) CompoundIndex {
	return CompoundIndex{Keys: keys, Unique: true}
}

// Name returns the name MongoDB assigns to the index by default,
// e.g. "author_1_published_year_-1".
func (ci CompoundIndex) Name() string {
	parts := make([]string, 0, len(ci.Keys)*2)
	for _, k := range ci.Keys {
		parts = append(parts, k.Field, strconv.Itoa(direction(k.Direction)))
	}
	return strings.Join(parts, "_")
}

// Document returns the index specification as an ordered key document.
func (ci CompoundIndex) Document() bson.D {
	keys := make(bson.D, 0, len(ci.Keys))
	for _, k := range ci.Keys {
		keys = append(keys, bson.E{Key: k.Field, Value: direction(k.Direction)})
	}
	return keys
}

func (ci CompoundIndex) model() mongo.IndexModel {
	m := mongo.IndexModel{Keys: ci.Document()}
	if ci.Unique {
		m.Options = options.Index().SetUnique(true)
	}
	return m
}

// IndexOptions configures CreateIndex and EnsureIndexes.
type IndexOptions struct {
	DB *mongo.Database
}

// CreateIndex creates index on the model's collection and returns the name
// the server assigned. Creating an index that already exists with the same
// specification succeeds.
func CreateIndex(ctx context.Context, model interface{}, index CompoundIndex, opts ...IndexOptions) (string, error) {
	if len(index.Keys) == 0 {
		return "", fmt.Errorf("bookshelf: index has no keys")
	}
	schema, err := getSchemaForModel(model)
	if err != nil {
		return "", err
	}
	return createIndex(ctx, schema, model, index, indexDB(opts))
}

// createIndex runs one index creation through the middleware chain.
func createIndex(ctx context.Context, schema *Schema, model interface{}, index CompoundIndex, optDB *mongo.Database) (string, error) {
	var name string
	err := runMiddleware(ctx, &OpInfo{
		Operation: OpCreateIndex, Collection: schema.Collection,
		ModelName: schema.ModelName, Model: model,
	}, func(ctx context.Context) error {
		db, err := getDB(optDB)
		if err != nil {
			return err
		}

		n, err := db.Collection(schema.Collection).Indexes().CreateOne(ctx, index.model())
		if err != nil {
			return &IndexError{Collection: schema.Collection, Index: index.Name(), Err: err}
		}
		name = n
		return nil
	})
	return name, err
}

// EnsureIndexes creates every index declared by registered schemas that is
// missing from the database. It returns the names of the indexes it created,
// sorted.
func EnsureIndexes(ctx context.Context, opts ...IndexOptions) ([]string, error) {
	db, err := getDB(indexDB(opts))
	if err != nil {
		return nil, err
	}

	var created []string
	for _, schema := range GetAll() {
		declared := schema.DeclaredIndexes()
		if len(declared) == 0 {
			continue
		}

		existing, err := ListIndexNames(ctx, db.Collection(schema.Collection))
		if err != nil {
			sort.Strings(created)
			return created, &IndexError{Collection: schema.Collection, Err: err}
		}

		for _, ci := range declared {
			if existing[ci.Name()] {
				continue
			}
			if _, err := createIndex(ctx, schema, nil, ci, db); err != nil {
				sort.Strings(created)
				return created, err
			}
			created = append(created, schema.Collection+"."+ci.Name())
		}
	}

	sort.Strings(created)
	return created, nil
}

func indexDB(opts []IndexOptions) *mongo.Database {
	if len(opts) > 0 {
		return opts[0].DB
	}
	return nil
}

// ListIndexNames returns the set of index names that exist on the collection.
func ListIndexNames(ctx context.Context, coll *mongo.Collection) (map[string]bool, error) {
	result := make(map[string]bool)

	cursor, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	for cursor.Next(ctx) {
		var idx struct {
			Name string `bson:"name"`
		}
		if err := cursor.Decode(&idx); err != nil {
			continue
		}
		if idx.Name != "" {
			result[idx.Name] = true
		}
	}

	return result, cursor.Err()
}

func direction(d int) int {
	if d < 0 {
		return -1
	}
	return 1
}
