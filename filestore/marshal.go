package filestore

import (
	"context"

	"github.com/dogmatiq/filekit/marshaler"
)

// NewMarshalingStore returns a [Store] that marshals/unmarshals values of
// type V to/from an underlying [BinaryStore].
//
// Marshaling failures are reported as a [CodecError], keeping them
// distinguishable from failures of the underlying storage.
func NewMarshalingStore[V any](
	s BinaryStore,
	m marshaler.Marshaler[V],
) Store[V] {
	return &mstore[V]{s, m}
}

// mstore is an implementation of [Store] that marshals/unmarshals values
// to/from an underlying [BinaryStore].
type mstore[V any] struct {
	BinaryStore
	m marshaler.Marshaler[V]
}

func (s *mstore[V]) Load(ctx context.Context, k string) (V, error) {
	data, err := s.BinaryStore.Load(ctx, k)
	if err != nil {
		var zero V
		return zero, err
	}

	v, err := s.m.Unmarshal(data)
	if err != nil {
		var zero V
		return zero, CodecError{Key: k, Cause: err}
	}

	return v, nil
}

func (s *mstore[V]) Store(ctx context.Context, k string, v V) error {
	data, err := s.m.Marshal(v)
	if err != nil {
		return CodecError{Key: k, Cause: err}
	}

	return s.BinaryStore.Store(ctx, k, data)
}

func (s *mstore[V]) LoadAll(ctx context.Context) ([]Entry[V], error) {
	binary, err := s.BinaryStore.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry[V], len(binary))

	for i, e := range binary {
		v, err := s.m.Unmarshal(e.Value)
		if err != nil {
			return nil, CodecError{Key: e.Key, Cause: err}
		}

		entries[i] = Entry[V]{e.Key, v}
	}

	return entries, nil
}

// StoreAll marshals and stores each entry in turn. Entries that precede a
// value that cannot be marshaled are stored; those that follow it are not.
func (s *mstore[V]) StoreAll(ctx context.Context, entries []Entry[V]) error {
	for _, e := range entries {
		if err := s.Store(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}

	return nil
}
