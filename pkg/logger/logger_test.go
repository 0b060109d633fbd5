package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

func TestWithCtx_FallsBackToBase(t *testing.T) {
	assert.Same(t, logger.L, logger.WithCtx(context.Background()))
}

func TestInjectLogger_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil)).With("request_id", "abc")

	ctx := logger.InjectLogger(context.Background(), l)
	logger.WithCtx(ctx).Info("hello")

	assert.Contains(t, buf.String(), "request_id=abc")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, logger.LevelFor(200))
	assert.Equal(t, slog.LevelWarn, logger.LevelFor(404))
	assert.Equal(t, slog.LevelError, logger.LevelFor(503))
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := logger.NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)
	slog.New(h).With("svc", "shopfront").Info("started")

	assert.Contains(t, a.String(), "svc=shopfront")
	assert.Contains(t, b.String(), `"svc":"shopfront"`)
}
