package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlogLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewDefault(&buf, slog.LevelDebug)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "k", "v")
	log.Info(ctx, "inf")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err")

	out := buf.String()
	require.Contains(t, out, "msg=dbg")
	require.Contains(t, out, "k=v")
	require.Contains(t, out, "msg=inf")
	require.Contains(t, out, "msg=wrn")
	require.Contains(t, out, "msg=err")
}

func TestSlogLogger_With(t *testing.T) {
	var buf bytes.Buffer
	log := NewDefault(&buf, slog.LevelInfo)

	child := log.With("component", "api")
	child.Info(context.Background(), "request sent")

	require.Contains(t, buf.String(), "component=api")
}

func TestNewDefault_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewDefault(&buf, slog.LevelInfo)

	log.Debug(context.Background(), "hidden")
	require.Empty(t, buf.String())
}
