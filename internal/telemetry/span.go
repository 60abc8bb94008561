package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// StartSpan starts a new span that represents a single operation.
//
// It also increments the operation counters. [Span.End] must be called to
// mark the operation as complete.
func (r *Recorder) StartSpan(
	ctx context.Context,
	name string,
	attrs ...Attr,
) (context.Context, *Span) {
	ctx, span := r.tracer.Start(
		ctx,
		name,
		trace.WithAttributes(asAttrKeyValues(attrs)...),
	)

	r.operationCount(ctx, 1)
	r.operationsInFlightCount(ctx, 1)

	return ctx, &Span{r, span, ctx}
}

// Span is a span that represents a single operation.
type Span struct {
	recorder *Recorder
	span     trace.Span
	ctx      context.Context
}

// SetAttributes adds attributes to the span.
func (s *Span) SetAttributes(attrs ...Attr) {
	s.span.SetAttributes(asAttrKeyValues(attrs)...)
}

// End marks the operation as complete and ends the span.
func (s *Span) End() {
	s.recorder.operationsInFlightCount(s.ctx, -1)
	s.span.End()
}
