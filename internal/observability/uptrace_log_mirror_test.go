package observability

import (
	"errors"
	"testing"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestShouldSkipUptraceLog(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		args []any
		want bool
	}{
		{name: "health", msg: "http_request", args: []any{"http_path", "/healthz"}, want: true},
		{name: "live socket", msg: "http_request", args: []any{"http_path", "/v1/tournaments/t1/live"}, want: true},
		{name: "leaderboard", msg: "http_request", args: []any{"http_path", "/v1/tournaments/t1/leaderboard"}},
		{name: "other message", msg: "bust recorded", args: []any{"http_path", "/healthz"}},
		{name: "no path", msg: "http_request", args: []any{"status", 200}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldSkipUptraceLog(tc.msg, tc.args); got != tc.want {
				t.Fatalf("shouldSkipUptraceLog(%q, %v) = %t, want %t", tc.msg, tc.args, got, tc.want)
			}
		})
	}
}

func TestBuildOTelLogAttributes(t *testing.T) {
	attrs := buildOTelLogAttributes([]any{"tournament_id", "spring-main-event", "attempt", 2, "payload"})
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "tournament_id" || attrs[0].Value.AsString() != "spring-main-event" {
		t.Fatalf("unexpected tournament_id attribute")
	}
	if attrs[1].Key != "attempt" || attrs[1].Value.AsInt64() != 2 {
		t.Fatalf("unexpected attempt attribute")
	}
	if attrs[2].Key != "payload" || attrs[2].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected payload attribute")
	}
}

type status string

func TestToOTelLogValue(t *testing.T) {
	if v := toOTelLogValue(status("IN_PROGRESS"), 0); v.Kind() != otellog.KindString || v.AsString() != "IN_PROGRESS" {
		t.Fatalf("named string not converted: %v", v)
	}
	if v := toOTelLogValue(errors.New("boom"), 0); v.AsString() != "boom" {
		t.Fatalf("error not converted: %v", v)
	}
	if v := toOTelLogValue(uint64(1<<63), 0); v.Kind() != otellog.KindString {
		t.Fatalf("overflowing uint should fall back to string, got %s", v.Kind())
	}

	v := toOTelLogValue(map[string]any{"rebuys": 2, "light": true}, 0)
	if v.Kind() != otellog.KindMap || len(v.AsMap()) != 2 {
		t.Fatalf("expected 2-item map, got %v", v)
	}
}

func TestToOTelSeverity(t *testing.T) {
	if toOTelSeverity(zapcore.WarnLevel) != otellog.SeverityWarn {
		t.Fatalf("warn mapped incorrectly")
	}
	if toOTelSeverity(zapcore.FatalLevel) != otellog.SeverityFatal {
		t.Fatalf("fatal mapped incorrectly")
	}
}
