package bookshelf

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Explain verbosity modes accepted by the server.
const (
	VerbosityQueryPlanner      = "queryPlanner"
	VerbosityExecutionStats    = "executionStats"
	VerbosityAllPlansExecution = "allPlansExecution"
)

// ExplainOptions configures Explain.
type ExplainOptions struct {
	DB        *mongo.Database
	Sort      bson.D
	Verbosity string // defaults to VerbosityExecutionStats
}

// ExplainSummary is the part of an explain document that shows whether a
// query used an index and how much work it did.
type ExplainSummary struct {
	Stage             string // winning plan stage chain, e.g. "FETCH <- IXSCAN"
	IndexName         string // empty for a collection scan
	Returned          int64
	KeysExamined      int64
	DocsExamined      int64
	ExecutionTimeMS   int64
	HasExecutionStats bool
}

// UsesIndex reports whether the winning plan read from an index.
func (s ExplainSummary) UsesIndex() bool {
	return s.IndexName != ""
}

// ExplainResult holds the raw explain document and its summary.
type ExplainResult struct {
	Raw     bson.Raw
	Summary ExplainSummary
}

// Explain runs the explain command for a find on the model's collection.
func Explain(ctx context.Context, filter interface{}, model interface{}, opts ...ExplainOptions) (ExplainResult, error) {
	schema, err := getSchemaForModel(model)
	if err != nil {
		return ExplainResult{}, err
	}

	var opt ExplainOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Verbosity == "" {
		opt.Verbosity = VerbosityExecutionStats
	}
	if filter == nil {
		filter = bson.D{}
	}

	var result ExplainResult
	err = runMiddleware(ctx, &OpInfo{
		Operation: OpExplain, Collection: schema.Collection,
		ModelName: schema.ModelName, Model: model, Filter: filter,
	}, func(ctx context.Context) error {
		db, err := getDB(opt.DB)
		if err != nil {
			return err
		}

		find := bson.D{
			{Key: "find", Value: schema.Collection},
			{Key: "filter", Value: filter},
		}
		if opt.Sort != nil {
			find = append(find, bson.E{Key: "sort", Value: opt.Sort})
		}
		cmd := bson.D{
			{Key: "explain", Value: find},
			{Key: "verbosity", Value: opt.Verbosity},
		}

		raw, err := db.RunCommand(ctx, cmd).Raw()
		if err != nil {
			return fmt.Errorf("bookshelf: explain failed: %w", err)
		}
		summary, err := SummarizeExplain(raw)
		if err != nil {
			return err
		}
		result = ExplainResult{Raw: raw, Summary: summary}
		return nil
	})
	return result, err
}

type planStage struct {
	Stage       string      `bson:"stage"`
	IndexName   string      `bson:"indexName"`
	InputStage  *planStage  `bson:"inputStage"`
	InputStages []planStage `bson:"inputStages"`
	QueryPlan   *planStage  `bson:"queryPlan"` // slot-based engine wraps the plan
}

type explainDoc struct {
	QueryPlanner struct {
		WinningPlan planStage `bson:"winningPlan"`
	} `bson:"queryPlanner"`
	ExecutionStats *struct {
		NReturned           int64 `bson:"nReturned"`
		ExecutionTimeMillis int64 `bson:"executionTimeMillis"`
		TotalKeysExamined   int64 `bson:"totalKeysExamined"`
		TotalDocsExamined   int64 `bson:"totalDocsExamined"`
	} `bson:"executionStats"`
}

// SummarizeExplain extracts an ExplainSummary from a raw explain document.
func SummarizeExplain(raw bson.Raw) (ExplainSummary, error) {
	var doc explainDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return ExplainSummary{}, fmt.Errorf("bookshelf: decode explain: %w", err)
	}

	var s ExplainSummary
	plan := &doc.QueryPlanner.WinningPlan
	if plan.QueryPlan != nil {
		plan = plan.QueryPlan
	}
	for p := plan; p != nil; p = p.next() {
		if s.Stage != "" {
			s.Stage += " <- "
		}
		s.Stage += p.Stage
		if s.IndexName == "" && p.IndexName != "" {
			s.IndexName = p.IndexName
		}
	}

	if es := doc.ExecutionStats; es != nil {
		s.HasExecutionStats = true
		s.Returned = es.NReturned
		s.ExecutionTimeMS = es.ExecutionTimeMillis
		s.KeysExamined = es.TotalKeysExamined
		s.DocsExamined = es.TotalDocsExamined
	}
	return s, nil
}

// next follows the first input of a plan stage.
func (p *planStage) next() *planStage {
	if p.InputStage != nil {
		return p.InputStage
	}
	if len(p.InputStages) > 0 {
		return &p.InputStages[0]
	}
	return nil
}
