package bookshelf

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/dwoolworth/bookshelf/internal"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]*Schema{}
)

// Register parses a model struct and registers its schema under the Go
// struct name. collection is the MongoDB collection the model lives in.
func Register(model interface{}, collection string) error {
	t := reflect.TypeOf(model)
	if t == nil {
		return fmt.Errorf("bookshelf: Register expects a struct, got nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("bookshelf: Register expects a struct, got %s", t.Kind())
	}
	if collection == "" {
		return fmt.Errorf("bookshelf: Register %s: collection name is empty", t.Name())
	}

	schema := &Schema{
		ModelName:  t.Name(),
		Collection: collection,
	}

	for _, f := range internal.StructFields(t) {
		bsonName, _ := ParseBSONTag(f.Tag.Get("bson"))
		if bsonName == "" {
			bsonName = strings.ToLower(f.Name)
		}
		if bsonName == "-" {
			continue
		}

		fs := ParseTag(f.Tag.Get("bookshelf"))
		fs.Name = f.Name
		fs.BSONName = bsonName
		fs.Type = internal.TypeName(f.Type)
		schema.Fields = append(schema.Fields, fs)
	}

	if indexable, ok := model.(Indexable); ok {
		schema.CompoundIndexes = indexable.Indexes()
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[schema.ModelName]; exists {
		return fmt.Errorf("bookshelf: model %q is already registered", schema.ModelName)
	}
	registry[schema.ModelName] = schema

	return nil
}

// Unregister removes a model schema by Go struct name.
func Unregister(name string) {
	registryMu.Lock()
	delete(registry, name)
	registryMu.Unlock()
}

// GetAll returns a copy of all registered schemas.
func GetAll() map[string]*Schema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make(map[string]*Schema, len(registry))
	for k, v := range registry {
		result[k] = v
	}
	return result
}

// Get returns the schema for a given model name, or false if not found.
func Get(name string) (*Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	return s, ok
}
