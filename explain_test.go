package bookshelf

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func mustRaw(t *testing.T, doc bson.D) bson.Raw {
	t.Helper()
	b, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bson.Raw(b)
}

func TestSummarizeExplain_IndexScan(t *testing.T) {
	raw := mustRaw(t, bson.D{
		{Key: "queryPlanner", Value: bson.D{
			{Key: "winningPlan", Value: bson.D{
				{Key: "stage", Value: "FETCH"},
				{Key: "inputStage", Value: bson.D{
					{Key: "stage", Value: "IXSCAN"},
					{Key: "indexName", Value: "author_1_published_year_-1"},
				}},
			}},
		}},
		{Key: "executionStats", Value: bson.D{
			{Key: "nReturned", Value: int32(2)},
			{Key: "executionTimeMillis", Value: int32(0)},
			{Key: "totalKeysExamined", Value: int32(2)},
			{Key: "totalDocsExamined", Value: int32(2)},
		}},
	})

	s, err := SummarizeExplain(raw)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Stage != "FETCH <- IXSCAN" {
		t.Fatalf("unexpected stage chain %q", s.Stage)
	}
	if !s.UsesIndex() || s.IndexName != "author_1_published_year_-1" {
		t.Fatalf("expected index use, got %+v", s)
	}
	if !s.HasExecutionStats || s.Returned != 2 || s.KeysExamined != 2 || s.DocsExamined != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestSummarizeExplain_CollectionScan(t *testing.T) {
	raw := mustRaw(t, bson.D{
		{Key: "queryPlanner", Value: bson.D{
			{Key: "winningPlan", Value: bson.D{
				{Key: "stage", Value: "SORT"},
				{Key: "inputStage", Value: bson.D{{Key: "stage", Value: "COLLSCAN"}}},
			}},
		}},
	})

	s, err := SummarizeExplain(raw)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Stage != "SORT <- COLLSCAN" || s.UsesIndex() {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.HasExecutionStats {
		t.Fatal("queryPlanner-only explain should not report execution stats")
	}
}

func TestSummarizeExplain_SlotBasedPlan(t *testing.T) {
	raw := mustRaw(t, bson.D{
		{Key: "queryPlanner", Value: bson.D{
			{Key: "winningPlan", Value: bson.D{
				{Key: "queryPlan", Value: bson.D{
					{Key: "stage", Value: "FETCH"},
					{Key: "inputStages", Value: bson.A{
						bson.D{{Key: "stage", Value: "IXSCAN"}, {Key: "indexName", Value: "title_1"}},
					}},
				}},
				{Key: "slotBasedPlan", Value: bson.D{{Key: "stages", Value: "..."}}},
			}},
		}},
	})

	s, err := SummarizeExplain(raw)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Stage != "FETCH <- IXSCAN" || s.IndexName != "title_1" {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

func TestSummarizeExplain_Invalid(t *testing.T) {
	if _, err := SummarizeExplain(bson.Raw{0x01}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestExplain_Integration(t *testing.T) {
	ctx, _, cleanup := setupTestDB(t)
	defer cleanup()
	seedBooks(t, ctx)

	filter := bson.D{{Key: "author", Value: "Jane Austen"}}
	sort := bson.D{{Key: "published_year", Value: -1}}

	before, err := Explain(ctx, filter, &testBook{}, ExplainOptions{Sort: sort})
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if before.Summary.UsesIndex() {
		t.Fatalf("expected collection scan before indexing, got %+v", before.Summary)
	}
	if before.Summary.Returned != 2 {
		t.Fatalf("expected 2 returned, got %d", before.Summary.Returned)
	}

	if _, err := CreateIndex(ctx, &testBook{}, NewIndex(Asc("author"), Desc("published_year"))); err != nil {
		t.Fatalf("create index: %v", err)
	}

	after, err := Explain(ctx, filter, &testBook{}, ExplainOptions{Sort: sort})
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if after.Summary.IndexName != "author_1_published_year_-1" {
		t.Fatalf("expected compound index, got %+v", after.Summary)
	}
	if len(after.Raw) == 0 {
		t.Fatal("expected raw explain document")
	}
}
