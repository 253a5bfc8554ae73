package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var (
	apiTracer = otel.Tracer("tournament-engine/internal/interfaces/httpapi")
	noopSpan  = trace.SpanFromContext(context.Background())
)

// Handlers and authorization checks get their own spans; response helpers and request
// plumbing stay inside the otelhttp server span.
var tracedSpanPrefixes = []string{"httpapi.Handler.", "httpapi.Require"}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name)
}

func shouldCreateHTTPAPISpan(name string) bool {
	for _, prefix := range tracedSpanPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
