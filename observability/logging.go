// Package observability wires logging, tracing and metrics for the
// pipeline: slog records carry trace context, spans cover each run and
// stage, and counters/histograms are exported for Prometheus scraping.
package observability

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// TraceContextHandler is a slog.Handler that stamps trace and span IDs onto
// every record logged inside an active span.
type TraceContextHandler struct {
	handler slog.Handler
}

var _ slog.Handler = (*TraceContextHandler)(nil)

// NewTraceContextHandler wraps an existing handler.
func NewTraceContextHandler(handler slog.Handler) *TraceContextHandler {
	return &TraceContextHandler{handler: handler}
}

// Enabled reports whether the underlying handler handles the level.
func (h *TraceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds trace context and delegates to the underlying handler.
func (h *TraceContextHandler) Handle(ctx context.Context, record slog.Record) error {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if spanContext.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", spanContext.TraceID().String()),
			slog.String("span_id", spanContext.SpanID().String()),
		)
	}
	return h.handler.Handle(ctx, record)
}

// WithAttrs returns a new handler with additional attributes.
func (h *TraceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new handler with the given group.
func (h *TraceContextHandler) WithGroup(name string) slog.Handler {
	return &TraceContextHandler{handler: h.handler.WithGroup(name)}
}

// NewLogger builds the process logger: JSON output on stderr with trace
// context stamping.
func NewLogger(level slog.Level) *slog.Logger {
	base := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(NewTraceContextHandler(base))
}
