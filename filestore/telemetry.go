package filestore

import (
	"context"

	"github.com/dogmatiq/filekit/internal/telemetry"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// WithTelemetry returns a [BinaryStore] that adds telemetry to s.
func WithTelemetry(
	s BinaryStore,
	p trace.TracerProvider,
	m metric.MeterProvider,
	l log.LoggerProvider,
) BinaryStore {
	telem := (&telemetry.Provider{
		TracerProvider: p,
		MeterProvider:  m,
		LoggerProvider: l,
	}).Recorder(
		"github.com/dogmatiq/filekit/filestore",
		telemetry.Type("store.driver", s),
		telemetry.String("store.handle", telemetry.HandleID()),
	)

	return &instrumentedStore{
		Next:      s,
		Telemetry: telem,
		ValueIO: telem.Counter(
			"value.io",
			"By",
			"The cumulative size of the values that have been operated upon.",
		),
		ValueSize: telem.Histogram(
			"value.size",
			"By",
			"The sizes of the values that have been operated upon.",
		),
	}
}

// instrumentedStore is a decorator that adds telemetry to a [BinaryStore].
type instrumentedStore struct {
	Next      BinaryStore
	Telemetry *telemetry.Recorder

	ValueIO   telemetry.Instrument[int64]
	ValueSize telemetry.Instrument[int64]
}

func (s *instrumentedStore) List(ctx context.Context) ([]string, error) {
	ctx, span := s.Telemetry.StartSpan(ctx, "store.list")
	defer span.End()

	keys, err := s.Next.List(ctx)
	if err != nil {
		s.Telemetry.Error(ctx, "store.list.error", err)
		return nil, err
	}

	span.SetAttributes(
		telemetry.Int("key_count", len(keys)),
	)

	s.Telemetry.Info(
		ctx,
		"store.list.ok",
		"listed the keys in the store",
	)

	return keys, nil
}

func (s *instrumentedStore) Load(ctx context.Context, k string) ([]byte, error) {
	ctx, span := s.Telemetry.StartSpan(
		ctx,
		"store.load",
		telemetry.String("store.key", k),
	)
	defer span.End()

	v, err := s.Next.Load(ctx, k)
	if err != nil {
		s.Telemetry.Error(ctx, "store.load.error", err)
		return nil, err
	}

	size := int64(len(v))

	span.SetAttributes(
		telemetry.Int("value_size", size),
	)

	s.ValueIO(ctx, size, telemetry.ReadDirection)
	s.ValueSize(ctx, size, telemetry.ReadDirection)

	s.Telemetry.Info(
		ctx,
		"store.load.ok",
		"loaded the value",
		telemetry.Binary("value", v),
	)

	return v, nil
}

func (s *instrumentedStore) Store(ctx context.Context, k string, v []byte) error {
	size := int64(len(v))

	ctx, span := s.Telemetry.StartSpan(
		ctx,
		"store.store",
		telemetry.String("store.key", k),
		telemetry.Int("value_size", size),
	)
	defer span.End()

	s.ValueIO(ctx, size, telemetry.WriteDirection)
	s.ValueSize(ctx, size, telemetry.WriteDirection)

	if err := s.Next.Store(ctx, k, v); err != nil {
		s.Telemetry.Error(ctx, "store.store.error", err)
		return err
	}

	s.Telemetry.Info(
		ctx,
		"store.store.ok",
		"stored the value",
		telemetry.Binary("value", v),
	)

	return nil
}

func (s *instrumentedStore) LoadAll(ctx context.Context) ([]BinaryEntry, error) {
	ctx, span := s.Telemetry.StartSpan(ctx, "store.load_all")
	defer span.End()

	entries, err := s.Next.LoadAll(ctx)
	if err != nil {
		s.Telemetry.Error(ctx, "store.load_all.error", err)
		return nil, err
	}

	var total int64
	for _, e := range entries {
		size := int64(len(e.Value))
		total += size
		s.ValueSize(ctx, size, telemetry.ReadDirection)
	}

	s.ValueIO(ctx, total, telemetry.ReadDirection)

	span.SetAttributes(
		telemetry.Int("entry_count", len(entries)),
		telemetry.Int("value_size_total", total),
	)

	s.Telemetry.Info(
		ctx,
		"store.load_all.ok",
		"loaded every entry in the store",
	)

	return entries, nil
}

func (s *instrumentedStore) StoreAll(ctx context.Context, entries []BinaryEntry) error {
	var total int64
	for _, e := range entries {
		total += int64(len(e.Value))
	}

	ctx, span := s.Telemetry.StartSpan(
		ctx,
		"store.store_all",
		telemetry.Int("entry_count", len(entries)),
		telemetry.Int("value_size_total", total),
	)
	defer span.End()

	for _, e := range entries {
		size := int64(len(e.Value))
		s.ValueIO(ctx, size, telemetry.WriteDirection)
		s.ValueSize(ctx, size, telemetry.WriteDirection)
	}

	if err := s.Next.StoreAll(ctx, entries); err != nil {
		s.Telemetry.Error(ctx, "store.store_all.error", err)
		return err
	}

	s.Telemetry.Info(
		ctx,
		"store.store_all.ok",
		"stored every entry",
	)

	return nil
}

func (s *instrumentedStore) Remove(ctx context.Context, k string) error {
	ctx, span := s.Telemetry.StartSpan(
		ctx,
		"store.remove",
		telemetry.String("store.key", k),
	)
	defer span.End()

	if err := s.Next.Remove(ctx, k); err != nil {
		s.Telemetry.Error(ctx, "store.remove.error", err)
		return err
	}

	s.Telemetry.Info(
		ctx,
		"store.remove.ok",
		"removed the entry",
	)

	return nil
}
