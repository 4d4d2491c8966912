package bookshelf

import (
	"context"
	"sync"
)

// OpType identifies the kind of database operation being performed.
type OpType string

const (
	OpFind        OpType = "find"
	OpCount       OpType = "count"
	OpUpdate      OpType = "update"
	OpDelete      OpType = "delete"
	OpCreateMany  OpType = "create_many"
	OpDrop        OpType = "drop"
	OpAggregate   OpType = "aggregate"
	OpCreateIndex OpType = "create_index"
	OpExplain     OpType = "explain"
)

// OpInfo provides context about the current operation to middleware.
type OpInfo struct {
	Operation  OpType
	Collection string
	ModelName  string
	Model      interface{} // the model being operated on, or nil
	Filter     interface{} // the query filter or pipeline, if applicable
}

// MiddlewareFunc is a function that wraps a database operation.
// Call next(ctx) to continue the middleware chain, or return an error to abort.
// The context can be modified before passing to next (e.g. for tracing).
type MiddlewareFunc func(ctx context.Context, op *OpInfo, next func(context.Context) error) error

var (
	mwMu     sync.RWMutex
	globalMW []MiddlewareFunc
	modelMW  map[string][]MiddlewareFunc
)

// Use registers global middleware applied to all operations.
// Middleware executes in the order registered: global first, then per-model.
func Use(fns ...MiddlewareFunc) {
	mwMu.Lock()
	defer mwMu.Unlock()
	globalMW = append(globalMW, fns...)
}

// UseFor registers middleware for a specific model name (the Go struct name).
// Per-model middleware executes after global middleware.
func UseFor(modelName string, fns ...MiddlewareFunc) {
	mwMu.Lock()
	defer mwMu.Unlock()
	if modelMW == nil {
		modelMW = make(map[string][]MiddlewareFunc)
	}
	modelMW[modelName] = append(modelMW[modelName], fns...)
}

// ClearMiddleware removes all registered middleware. Useful for testing.
func ClearMiddleware() {
	mwMu.Lock()
	defer mwMu.Unlock()
	globalMW = nil
	modelMW = nil
}

// runMiddleware wraps fn in the global chain followed by the chain for the
// operation's model and runs it. Middleware registered first runs outermost.
func runMiddleware(ctx context.Context, info *OpInfo, fn func(context.Context) error) error {
	mwMu.RLock()
	chain := make([]MiddlewareFunc, 0, len(globalMW)+len(modelMW[info.ModelName]))
	chain = append(chain, globalMW...)
	chain = append(chain, modelMW[info.ModelName]...)
	mwMu.RUnlock()

	next := fn
	for i := len(chain) - 1; i >= 0; i-- {
		mw, inner := chain[i], next
		next = func(ctx context.Context) error {
			return mw(ctx, info, inner)
		}
	}
	return next(ctx)
}
