// Package metrics records operation and step counters for a run and writes
// them in the Prometheus text format for the node exporter textfile
// collector.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dwoolworth/bookshelf"
	"github.com/dwoolworth/bookshelf/internal/queries"
)

// Recorder holds the collectors for one process.
type Recorder struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	opDuration *prometheus.HistogramVec
	steps      *prometheus.CounterVec
	lastRun    prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_operations_total",
				Help: "Database operations performed, by operation, collection and status",
			},
			[]string{"op", "collection", "status"},
		),
		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookshelf_operation_duration_seconds",
				Help:    "Database operation latency",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"op", "collection"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookshelf_steps_total",
				Help: "Catalog steps executed, by step, kind and status",
			},
			[]string{"step", "kind", "status"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bookshelf_last_run_timestamp_seconds",
			Help: "Unix time the metrics were last written",
		}),
	}

	r.registry.MustRegister(r.operations, r.opDuration, r.steps, r.lastRun)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Middleware counts and times every bookshelf operation.
func (r *Recorder) Middleware() bookshelf.MiddlewareFunc {
	return func(ctx context.Context, op *bookshelf.OpInfo, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)
		r.opDuration.WithLabelValues(string(op.Operation), op.Collection).Observe(time.Since(start).Seconds())
		r.operations.WithLabelValues(string(op.Operation), op.Collection, status(err)).Inc()
		return err
	}
}

// ObserveStep implements queries.Observer.
func (r *Recorder) ObserveStep(step string, kind queries.Kind, _ time.Duration, err error) {
	r.steps.WithLabelValues(step, string(kind), status(err)).Inc()
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	r.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var _ queries.Observer = (*Recorder)(nil)
