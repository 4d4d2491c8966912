// Package logging builds the process logger and a bookshelf middleware that
// logs every database operation.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dwoolworth/bookshelf"
)

// New returns a slog.Logger writing to w. format is "text" or "json";
// level is one of debug, info, warn, error.
func New(w io.Writer, format, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("logging: unknown format %q (want text or json)", format)
	}
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging: unknown level %q", s)
	}
	return lvl, nil
}

// Middleware logs each operation at debug level, or at error level when it
// fails.
func Middleware(logger *slog.Logger) bookshelf.MiddlewareFunc {
	return func(ctx context.Context, op *bookshelf.OpInfo, next func(context.Context) error) error {
		start := time.Now()
		err := next(ctx)
		attrs := []any{
			"op", string(op.Operation),
			"collection", op.Collection,
			"elapsed", time.Since(start),
		}
		if err != nil {
			logger.ErrorContext(ctx, "operation failed", append(attrs, "err", err)...)
			return err
		}
		logger.DebugContext(ctx, "operation", attrs...)
		return nil
	}
}
