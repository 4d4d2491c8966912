package bookshelf

import (
	"context"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// FindOptions configures Find and Count.
type FindOptions struct {
	DB         *mongo.Database
	Limit      int64
	Skip       int64
	Sort       bson.D
	Projection bson.D

	// Model overrides the collection lookup normally derived from the
	// results element type. Set it when decoding into []bson.D or []bson.M.
	Model interface{}
}

// WriteOptions configures UpdateOne, DeleteOne and DropCollection.
type WriteOptions struct {
	DB *mongo.Database
}

// UpdateResult reports how many documents an update matched and changed.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// DeleteResult reports how many documents a delete removed.
type DeleteResult struct {
	Deleted int64
}

// Paginate returns FindOptions selecting one page of pageSize documents.
// Pages are numbered from 1; a page below 1 is treated as the first page.
func Paginate(page, pageSize int) (FindOptions, error) {
	if pageSize < 1 {
		return FindOptions{}, ErrInvalidPageSize
	}
	if page < 1 {
		page = 1
	}
	return FindOptions{
		Skip:  int64(page-1) * int64(pageSize),
		Limit: int64(pageSize),
	}, nil
}

// Find finds all documents matching filter and decodes them into results.
// results must be a pointer to a slice (e.g. *[]models.Book).
func Find(ctx context.Context, filter interface{}, results interface{}, opts ...FindOptions) error {
	rv := reflect.ValueOf(results)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("bookshelf: results must be a pointer to a slice, got %T", results)
	}

	var opt FindOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	lookup := opt.Model
	if lookup == nil {
		lookup = reflect.New(rv.Elem().Type().Elem()).Interface()
	}
	schema, err := getSchemaForModel(lookup)
	if err != nil {
		return err
	}

	return runMiddleware(ctx, &OpInfo{
		Operation: OpFind, Collection: schema.Collection,
		ModelName: schema.ModelName, Filter: filter,
	}, func(ctx context.Context) error {
		db, err := getDB(opt.DB)
		if err != nil {
			return err
		}

		cursor, err := db.Collection(schema.Collection).Find(ctx, filter, opt.findOptions())
		if err != nil {
			return fmt.Errorf("bookshelf: find failed: %w", err)
		}
		defer func() { _ = cursor.Close(ctx) }()

		if err := cursor.All(ctx, results); err != nil {
			return fmt.Errorf("bookshelf: cursor decode failed: %w", err)
		}
		return nil
	})
}

func (o FindOptions) findOptions() *options.FindOptionsBuilder {
	fo := options.Find()
	if o.Limit > 0 {
		fo.SetLimit(o.Limit)
	}
	if o.Skip > 0 {
		fo.SetSkip(o.Skip)
	}
	if o.Sort != nil {
		fo.SetSort(o.Sort)
	}
	if o.Projection != nil {
		fo.SetProjection(o.Projection)
	}
	return fo
}

// Count returns the number of documents in the model's collection that
// match filter. Only the DB field of FindOptions is used.
func Count(ctx context.Context, filter interface{}, model interface{}, opts ...FindOptions) (int64, error) {
	schema, err := getSchemaForModel(model)
	if err != nil {
		return 0, err
	}

	var n int64
	err = runMiddleware(ctx, &OpInfo{
		Operation: OpCount, Collection: schema.Collection,
		ModelName: schema.ModelName, Model: model, Filter: filter,
	}, func(ctx context.Context) error {
		var optDB *mongo.Database
		if len(opts) > 0 {
			optDB = opts[0].DB
		}
		db, err := getDB(optDB)
		if err != nil {
			return err
		}

		n, err = db.Collection(schema.Collection).CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("bookshelf: count failed: %w", err)
		}
		return nil
	})
	return n, err
}

// UpdateOne applies update to the first document matching filter.
// The model parameter is used only for collection lookup (e.g. &models.Book{}).
// Matching nothing is not an error; inspect UpdateResult.Matched.
func UpdateOne(ctx context.Context, filter interface{}, update interface{}, model interface{}, opts ...WriteOptions) (UpdateResult, error) {
	schema, err := getSchemaForModel(model)
	if err != nil {
		return UpdateResult{}, err
	}

	var res UpdateResult
	err = runMiddleware(ctx, &OpInfo{
		Operation: OpUpdate, Collection: schema.Collection,
		ModelName: schema.ModelName, Model: model, Filter: filter,
	}, func(ctx context.Context) error {
		db, err := writeDB(opts)
		if err != nil {
			return err
		}

		r, err := db.Collection(schema.Collection).UpdateOne(ctx, filter, update)
		if err != nil {
			return fmt.Errorf("bookshelf: update one failed: %w", err)
		}
		res = UpdateResult{Matched: r.MatchedCount, Modified: r.ModifiedCount}
		return nil
	})
	return res, err
}

// DeleteOne deletes the first document matching filter.
// The model parameter is used only for collection lookup.
// Matching nothing is not an error; inspect DeleteResult.Deleted.
func DeleteOne(ctx context.Context, filter interface{}, model interface{}, opts ...WriteOptions) (DeleteResult, error) {
	schema, err := getSchemaForModel(model)
	if err != nil {
		return DeleteResult{}, err
	}

	var res DeleteResult
	err = runMiddleware(ctx, &OpInfo{
		Operation: OpDelete, Collection: schema.Collection,
		ModelName: schema.ModelName, Model: model, Filter: filter,
	}, func(ctx context.Context) error {
		db, err := writeDB(opts)
		if err != nil {
			return err
		}

		r, err := db.Collection(schema.Collection).DeleteOne(ctx, filter)
		if err != nil {
			return fmt.Errorf("bookshelf: delete one failed: %w", err)
		}
		res = DeleteResult{Deleted: r.DeletedCount}
		return nil
	})
	return res, err
}

// DropCollection drops the model's collection together with its indexes.
// Dropping a collection that does not exist succeeds.
func DropCollection(ctx context.Context, model interface{}, opts ...WriteOptions) error {
	schema, err := getSchemaForModel(model)
	if err != nil {
		return err
	}

	return runMiddleware(ctx, &OpInfo{
		Operation: OpDrop, Collection: schema.Collection,
		ModelName: schema.ModelName, Model: model,
	}, func(ctx context.Context) error {
		db, err := writeDB(opts)
		if err != nil {
			return err
		}
		if err := db.Collection(schema.Collection).Drop(ctx); err != nil {
			return fmt.Errorf("bookshelf: drop failed: %w", err)
		}
		return nil
	})
}

// --- helpers ---

// getSchemaForModel resolves the schema for a model instance from the registry.
// Pointers and slices are unwrapped to their element struct type.
func getSchemaForModel(model interface{}) (*Schema, error) {
	t := reflect.TypeOf(model)
	if t == nil {
		return nil, fmt.Errorf("bookshelf: model is nil")
	}
	for t.Kind() == reflect.Ptr || t.Kind() == reflect.Slice {
		t = t.Elem()
	}

	schema, ok := Get(t.Name())
	if !ok {
		return nil, fmt.Errorf("bookshelf: model %q is not registered", t.Name())
	}
	return schema, nil
}

// getModelID extracts the ID field from a model via reflection.
func getModelID(model interface{}) (bson.ObjectID, error) {
	v := reflect.Indirect(reflect.ValueOf(model))
	idField := v.FieldByName("ID")
	if !idField.IsValid() {
		return bson.ObjectID{}, fmt.Errorf("bookshelf: model has no ID field")
	}
	id, ok := idField.Interface().(bson.ObjectID)
	if !ok {
		return bson.ObjectID{}, fmt.Errorf("bookshelf: ID field is not bson.ObjectID")
	}
	return id, nil
}

// setModelID sets the ID field on a model via reflection.
func setModelID(model interface{}, id bson.ObjectID) {
	v := reflect.Indirect(reflect.ValueOf(model))
	if f := v.FieldByName("ID"); f.IsValid() && f.CanSet() {
		f.Set(reflect.ValueOf(id))
	}
}

// getDB returns the provided database or falls back to the global DB().
func getDB(optDB *mongo.Database) (*mongo.Database, error) {
	if optDB != nil {
		return optDB, nil
	}
	db := DB()
	if db == nil {
		return nil, ErrNoDatabase
	}
	return db, nil
}

func writeDB(opts []WriteOptions) (*mongo.Database, error) {
	if len(opts) > 0 {
		return getDB(opts[0].DB)
	}
	return getDB(nil)
}
