package queries

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dwoolworth/bookshelf"
)

// disconnectTimeout bounds the cleanup step, which runs even after ctx is done.
const disconnectTimeout = 10 * time.Second

// ConnectStep names the connection step in a StepError.
const ConnectStep = "connect"

// StepError reports the catalog step that aborted a run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("queries: step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Connector opens and closes the single connection a run uses.
type Connector interface {
	Connect(ctx context.Context) (*mongo.Database, error)
	Disconnect(ctx context.Context, db *mongo.Database) error
}

// MongoConnector connects with bookshelf.Connect.
type MongoConnector struct {
	URI      string
	Database string
}

// Connect dials URI and returns the named database.
func (c MongoConnector) Connect(ctx context.Context) (*mongo.Database, error) {
	return bookshelf.Connect(ctx, c.URI, c.Database)
}

// Disconnect closes the client behind db.
func (c MongoConnector) Disconnect(ctx context.Context, db *mongo.Database) error {
	return bookshelf.Disconnect(ctx, db)
}

// Observer is told about every step that ran, successful or not.
type Observer interface {
	ObserveStep(step string, kind Kind, elapsed time.Duration, err error)
}

// Runner executes steps in order over one connection. The first failing
// step aborts the run. The connection is closed whether the run succeeded
// or not.
type Runner struct {
	Connector Connector
	Steps     []Step
	Sink      Sink
	Observer  Observer
	Logger    *slog.Logger
}

// Run connects, executes every step and disconnects.
func (r *Runner) Run(ctx context.Context) (err error) {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	db, err := r.Connector.Connect(ctx)
	if err != nil {
		log.Error("error running queries", "step", ConnectStep, "err", err)
		return &StepError{Step: ConnectStep, Err: err}
	}
	if db != nil {
		log.Info("connected to MongoDB", "database", db.Name())
	}

	defer func() {
		if derr := closeConnection(ctx, r.Connector, db); derr != nil {
			log.Error("failed to close connection", "err", derr)
			if err == nil {
				err = fmt.Errorf("queries: disconnect: %w", derr)
			}
			return
		}
		log.Info("connection closed")
	}()

	for _, step := range r.Steps {
		if err := r.runStep(ctx, db, step, log); err != nil {
			log.Error("error running queries", "step", step.Name, "err", err)
			return &StepError{Step: step.Name, Err: err}
		}
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, db *mongo.Database, step Step, log *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	out, err := step.Run(ctx, db)
	elapsed := time.Since(start)
	if r.Observer != nil {
		r.Observer.ObserveStep(step.Name, step.Kind, elapsed, err)
	}
	if err != nil {
		return err
	}

	out.Step, out.Kind, out.Duration = step.Name, step.Kind, elapsed
	if out.Message == "" {
		out.Message = step.Description
	}
	log.Info(out.Message,
		"step", step.Name,
		"kind", string(step.Kind),
		"documents", len(out.Documents),
		"duration", elapsed)

	if r.Sink != nil {
		if err := r.Sink.Emit(out); err != nil {
			return fmt.Errorf("emit result: %w", err)
		}
	}
	return nil
}

// WithConnection connects through conn, calls fn and always disconnects.
// A disconnect error is returned only when fn succeeded.
func WithConnection(ctx context.Context, conn Connector, log *slog.Logger, fn func(ctx context.Context, db *mongo.Database) error) (err error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := conn.Connect(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		log.Info("connected to MongoDB", "database", db.Name())
	}
	defer func() {
		if derr := closeConnection(ctx, conn, db); derr != nil {
			log.Error("failed to close connection", "err", derr)
			if err == nil {
				err = derr
			}
			return
		}
		log.Info("connection closed")
	}()
	return fn(ctx, db)
}

// closeConnection disconnects on a context that survives cancellation of
// ctx but is bounded by disconnectTimeout.
func closeConnection(ctx context.Context, conn Connector, db *mongo.Database) error {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), disconnectTimeout)
	defer cancel()
	return conn.Disconnect(dctx, db)
}
