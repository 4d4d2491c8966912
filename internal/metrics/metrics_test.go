package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwoolworth/bookshelf"
	"github.com/dwoolworth/bookshelf/internal/queries"
)

func TestRecorder_Middleware(t *testing.T) {
	r := NewRecorder()
	mw := r.Middleware()
	op := &bookshelf.OpInfo{Operation: bookshelf.OpFind, Collection: "books"}

	require.NoError(t, mw(context.Background(), op, func(context.Context) error { return nil }))
	require.NoError(t, mw(context.Background(), op, func(context.Context) error { return nil }))
	boom := errors.New("boom")
	assert.ErrorIs(t, mw(context.Background(), op, func(context.Context) error { return boom }), boom)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues("find", "books", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("find", "books", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.opDuration))
}

func TestRecorder_ObserveStep(t *testing.T) {
	r := NewRecorder()
	r.ObserveStep("fiction_books", queries.KindFind, 0, nil)
	r.ObserveStep("delete_great_gatsby", queries.KindDelete, 0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.steps.WithLabelValues("fiction_books", "find", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.steps.WithLabelValues("delete_great_gatsby", "delete", "error")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveStep("top_author", queries.KindAggregate, 0, nil)

	path := filepath.Join(t.TempDir(), "bookshelf.prom")
	require.NoError(t, r.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `bookshelf_steps_total{kind="aggregate",status="ok",step="top_author"} 1`)
	assert.Contains(t, out, "bookshelf_last_run_timestamp_seconds")

	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")))
}
