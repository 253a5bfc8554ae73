package logging

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_ContextWritesFieldsAndMirrors(t *testing.T) {
	core, logs := observer.New(LevelInfo)
	logger := FromZap(zap.New(core))

	var mirrored []string
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		mirrored = append(mirrored, level.String()+":"+msg)
	})
	t.Cleanup(func() { SetMirror(nil) })

	logger.InfoContext(context.Background(), "bust recorded", "tournament_id", "t1", "level", 3)
	logger.DebugContext(context.Background(), "filtered out")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["tournament_id"] != "t1" || fields["level"] != int64(3) {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if len(mirrored) != 1 || mirrored[0] != "info:bust recorded" {
		t.Fatalf("unexpected mirror calls: %v", mirrored)
	}
}

func TestZapFields_OddArgs(t *testing.T) {
	fields := zapFields([]any{"player_id", "p1", 42, "x", "dangling"})
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[1].Key != "arg" {
		t.Fatalf("expected non-string key to fall back to arg, got %q", fields[1].Key)
	}
	if fields[2].Key != "dangling" {
		t.Fatalf("unexpected key %q", fields[2].Key)
	}
}

func TestLogger_WithAndTraceFields(t *testing.T) {
	core, logs := observer.New(LevelDebug)
	logger := FromZap(zap.New(core)).With("tournament_id", "t1")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.WarnContext(ctx, "recave rejected", "error", errors.New("window closed"))
	logger.Warn("no context")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if first["tournament_id"] != "t1" || first["trace_id"] != traceID.String() || first["error"] != "window closed" {
		t.Fatalf("unexpected fields: %v", first)
	}
	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Fatalf("plain log should not carry trace fields")
	}
}

func TestLogger_SyncOnce(t *testing.T) {
	var nilLogger *Logger
	if err := nilLogger.Sync(); err != nil {
		t.Fatalf("nil logger sync: %v", err)
	}
	logger := NewNop()
	child := logger.With("k", "v")
	if err := child.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !logger.synced.Load() {
		t.Fatalf("derived logger should share the sync flag")
	}
}
