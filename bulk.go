package bookshelf

import (
	"context"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// CreateOptions configures CreateMany.
type CreateOptions struct {
	DB *mongo.Database
}

// CreateMany validates and inserts multiple documents with a single
// InsertMany call. Once every model is valid, zero IDs are replaced with
// fresh ObjectIDs, so callers see the assigned IDs on their models afterwards.
//
// models must be a slice of structs or struct pointers (e.g. []Book or
// []*Book). It returns the number of documents inserted. Validation happens
// for every model before anything is written.
func CreateMany(ctx context.Context, models interface{}, opts ...CreateOptions) (int, error) {
	rv := reflect.ValueOf(models)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice {
		return 0, fmt.Errorf("bookshelf: CreateMany expects a slice, got %T", models)
	}
	if rv.Len() == 0 {
		return 0, nil
	}

	schema, err := getSchemaForModel(elemPointer(rv.Index(0)))
	if err != nil {
		return 0, err
	}

	var inserted int
	err = runMiddleware(ctx, &OpInfo{
		Operation:  OpCreateMany,
		Collection: schema.Collection,
		ModelName:  schema.ModelName,
		Model:      models,
	}, func(ctx context.Context) error {
		docs := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			model := elemPointer(rv.Index(i))
			if model == nil {
				return fmt.Errorf("bookshelf: CreateMany element %d is nil", i)
			}
			if _, err := getModelID(model); err != nil {
				return err
			}
			if errs := Validate(model, schema); len(errs) > 0 {
				return fmt.Errorf("bookshelf: element %d: %w", i, ValidationErrors(errs))
			}
			docs[i] = model
		}

		var optDB *mongo.Database
		if len(opts) > 0 {
			optDB = opts[0].DB
		}
		db, err := getDB(optDB)
		if err != nil {
			return err
		}

		for _, model := range docs {
			if id, _ := getModelID(model); id.IsZero() {
				setModelID(model, bson.NewObjectID())
			}
		}

		res, err := db.Collection(schema.Collection).InsertMany(ctx, docs)
		if err != nil {
			return fmt.Errorf("bookshelf: insert many failed: %w", err)
		}
		inserted = len(res.InsertedIDs)
		return nil
	})
	return inserted, err
}

// elemPointer returns a pointer to the struct held in a slice element,
// or nil for a nil pointer element.
func elemPointer(elem reflect.Value) interface{} {
	if elem.Kind() == reflect.Ptr {
		if elem.IsNil() {
			return nil
		}
		return elem.Interface()
	}
	return elem.Addr().Interface()
}
