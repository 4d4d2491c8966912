package bookshelf

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	DB *mongo.Database
}

// Pipeline is a fluent builder for aggregation pipelines bound to a model's
// collection.
//
// Example:
//
//	var top []models.AuthorCount
//	err := bookshelf.NewPipeline(&models.Book{}).
//	    Group(bson.D{{Key: "_id", Value: "$author"}, {Key: "bookCount", Value: bson.D{{Key: "$sum", Value: 1}}}}).
//	    Sort(bson.D{{Key: "bookCount", Value: -1}}).
//	    Limit(1).
//	    Execute(ctx, &top)
type Pipeline struct {
	model  interface{}
	stages []bson.D
	db     *mongo.Database
}

// NewPipeline creates a pipeline builder. model is used only for collection
// lookup.
func NewPipeline(model interface{}, opts ...PipelineOptions) *Pipeline {
	p := &Pipeline{model: model}
	if len(opts) > 0 {
		p.db = opts[0].DB
	}
	return p
}

// Match adds a $match stage.
func (p *Pipeline) Match(filter interface{}) *Pipeline {
	return p.Stage(bson.D{{Key: "$match", Value: filter}})
}

// Group adds a $group stage. group must contain an _id key.
func (p *Pipeline) Group(group interface{}) *Pipeline {
	return p.Stage(bson.D{{Key: "$group", Value: group}})
}

// Sort adds a $sort stage.
func (p *Pipeline) Sort(sort interface{}) *Pipeline {
	return p.Stage(bson.D{{Key: "$sort", Value: sort}})
}

// Project adds a $project stage.
func (p *Pipeline) Project(projection interface{}) *Pipeline {
	return p.Stage(bson.D{{Key: "$project", Value: projection}})
}

// Limit adds a $limit stage.
func (p *Pipeline) Limit(n int64) *Pipeline {
	return p.Stage(bson.D{{Key: "$limit", Value: n}})
}

// Skip adds a $skip stage.
func (p *Pipeline) Skip(n int64) *Pipeline {
	return p.Stage(bson.D{{Key: "$skip", Value: n}})
}

// Stage appends a raw stage.
func (p *Pipeline) Stage(stage bson.D) *Pipeline {
	p.stages = append(p.stages, stage)
	return p
}

// Stages returns the accumulated stages.
func (p *Pipeline) Stages() []bson.D {
	return p.stages
}

// Execute runs the pipeline and decodes every output document into results,
// which must be a pointer to a slice.
func (p *Pipeline) Execute(ctx context.Context, results interface{}) error {
	schema, err := getSchemaForModel(p.model)
	if err != nil {
		return err
	}

	return runMiddleware(ctx, &OpInfo{
		Operation: OpAggregate, Collection: schema.Collection,
		ModelName: schema.ModelName, Model: p.model, Filter: p.stages,
	}, func(ctx context.Context) error {
		db, err := getDB(p.db)
		if err != nil {
			return err
		}

		cursor, err := db.Collection(schema.Collection).Aggregate(ctx, p.stages)
		if err != nil {
			return fmt.Errorf("bookshelf: aggregate failed: %w", err)
		}
		defer func() { _ = cursor.Close(ctx) }()

		if err := cursor.All(ctx, results); err != nil {
			return fmt.Errorf("bookshelf: aggregate decode failed: %w", err)
		}
		return nil
	})
}
