package filestore

import (
	"context"
	"errors"
	"strings"
)

// WithKeyPrefix returns a [Store] that prepends the given prefix to the key
// of each entry before it is passed to s.
//
// Only entries whose keys carry the prefix are visible through the returned
// store, and their keys are reported without it. This allows multiple
// logical stores to share a single underlying store.
func WithKeyPrefix[V any](s Store[V], prefix string) Store[V] {
	if prefix == "" {
		return s
	}

	return &prefixedStore[V]{
		Next:   s,
		Prefix: prefix,
	}
}

type prefixedStore[V any] struct {
	Next   Store[V]
	Prefix string
}

func (s *prefixedStore[V]) List(ctx context.Context) ([]string, error) {
	keys, err := s.Next.List(ctx)
	if err != nil {
		return nil, err
	}

	var matches []string

	for _, k := range keys {
		// The prefix alone is not a valid key.
		if k, ok := strings.CutPrefix(k, s.Prefix); ok && k != "" {
			matches = append(matches, k)
		}
	}

	return matches, nil
}

func (s *prefixedStore[V]) Load(ctx context.Context, k string) (V, error) {
	if err := ValidateKey(k); err != nil {
		var zero V
		return zero, err
	}

	v, err := s.Next.Load(ctx, s.Prefix+k)
	if err != nil {
		var zero V
		return zero, s.unprefixError(err)
	}

	return v, nil
}

func (s *prefixedStore[V]) Store(ctx context.Context, k string, v V) error {
	if err := ValidateKey(k); err != nil {
		return err
	}

	return s.Next.Store(ctx, s.Prefix+k, v)
}

func (s *prefixedStore[V]) LoadAll(ctx context.Context) ([]Entry[V], error) {
	keys, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry[V], len(keys))

	for i, k := range keys {
		v, err := s.Next.Load(ctx, s.Prefix+k)
		if err != nil {
			return nil, s.unprefixError(err)
		}

		entries[i] = Entry[V]{k, v}
	}

	return entries, nil
}

func (s *prefixedStore[V]) StoreAll(ctx context.Context, entries []Entry[V]) error {
	for _, e := range entries {
		if err := s.Store(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}

	return nil
}

func (s *prefixedStore[V]) Remove(ctx context.Context, k string) error {
	if err := ValidateKey(k); err != nil {
		return err
	}

	if err := s.Next.Remove(ctx, s.Prefix+k); err != nil {
		return s.unprefixError(err)
	}

	return nil
}

// unprefixError rewrites any [KeyNotFoundError] within err to refer to the
// key as seen by the caller, without the prefix.
func (s *prefixedStore[V]) unprefixError(err error) error {
	var notFound KeyNotFoundError
	if errors.As(err, &notFound) {
		if k, ok := strings.CutPrefix(notFound.Key, s.Prefix); ok {
			notFound.Key = k
			return notFound
		}
	}

	return err
}
