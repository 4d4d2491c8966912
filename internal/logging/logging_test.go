package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwoolworth/bookshelf"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "json", "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "step", "fiction_books")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "fiction_books", line["step"])

	buf.Reset()
	logger, err = New(&buf, "text", "info")
	require.NoError(t, err)
	logger.Info("connected to MongoDB")
	assert.Contains(t, buf.String(), `msg="connected to MongoDB"`)

	_, err = New(&buf, "xml", "info")
	assert.Error(t, err)
	_, err = New(&buf, "text", "loud")
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "json", "debug")
	require.NoError(t, err)
	mw := Middleware(logger)

	op := &bookshelf.OpInfo{Operation: bookshelf.OpFind, Collection: "books"}
	require.NoError(t, mw(context.Background(), op, func(context.Context) error { return nil }))
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	assert.Contains(t, buf.String(), `"op":"find"`)

	buf.Reset()
	boom := errors.New("boom")
	err = mw(context.Background(), op, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"err":"boom"`)
}
