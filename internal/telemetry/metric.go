package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// Instrument is a function that records a value against a metric instrument.
type Instrument[T any] func(ctx context.Context, value T, attrs ...Attr)

var (
	// ReadDirection is an attribute that indicates that data is flowing out of
	// a store.
	ReadDirection = String("io.direction", "read")

	// WriteDirection is an attribute that indicates that data is flowing into
	// a store.
	WriteDirection = String("io.direction", "write")
)

// Counter returns an instrument that records a monotonically increasing
// int64 value.
func (r *Recorder) Counter(name, unit, desc string) Instrument[int64] {
	c, err := r.meter.Int64Counter(
		name,
		metric.WithUnit(unit),
		metric.WithDescription(desc),
	)
	if err != nil {
		panic(err)
	}

	return func(ctx context.Context, value int64, attrs ...Attr) {
		c.Add(
			ctx,
			value,
			metric.WithAttributes(asAttrKeyValues(attrs)...),
		)
	}
}

// UpDownCounter returns an instrument that records an int64 value that may
// increase or decrease over time.
func (r *Recorder) UpDownCounter(name, unit, desc string) Instrument[int64] {
	c, err := r.meter.Int64UpDownCounter(
		name,
		metric.WithUnit(unit),
		metric.WithDescription(desc),
	)
	if err != nil {
		panic(err)
	}

	return func(ctx context.Context, value int64, attrs ...Attr) {
		c.Add(
			ctx,
			value,
			metric.WithAttributes(asAttrKeyValues(attrs)...),
		)
	}
}

// Histogram returns an instrument that records a distribution of int64
// values.
func (r *Recorder) Histogram(name, unit, desc string) Instrument[int64] {
	h, err := r.meter.Int64Histogram(
		name,
		metric.WithUnit(unit),
		metric.WithDescription(desc),
	)
	if err != nil {
		panic(err)
	}

	return func(ctx context.Context, value int64, attrs ...Attr) {
		h.Record(
			ctx,
			value,
			metric.WithAttributes(asAttrKeyValues(attrs)...),
		)
	}
}
