package memorystore

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/dogmatiq/dyad"
	"github.com/dogmatiq/filekit/filestore"
)

// Store is an in-memory implementation of [filestore.BinaryStore].
//
// The zero value is an empty store that is ready for use.
type Store struct {
	// BeforeStore, if non-nil, is called before an entry is stored.
	BeforeStore func(k string, v []byte) error

	// AfterStore, if non-nil, is called after an entry is stored.
	AfterStore func(k string, v []byte) error

	m       sync.RWMutex
	entries map[string][]byte
}

// List returns the keys of the entries in the store, in no particular order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	return slices.Collect(maps.Keys(s.entries)), ctx.Err()
}

// Load returns the value associated with the given key.
func (s *Store) Load(ctx context.Context, k string) ([]byte, error) {
	if err := filestore.ValidateKey(k); err != nil {
		return nil, err
	}

	s.m.RLock()
	defer s.m.RUnlock()

	v, ok := s.entries[k]
	if !ok {
		return nil, filestore.KeyNotFoundError{Key: k}
	}

	return dyad.Clone(v), ctx.Err()
}

// Store associates a value with the given key, replacing any existing value.
func (s *Store) Store(ctx context.Context, k string, v []byte) error {
	if err := filestore.ValidateKey(k); err != nil {
		return err
	}

	v = dyad.Clone(v)

	s.m.Lock()
	defer s.m.Unlock()

	return s.store(ctx, k, v)
}

// LoadAll returns every entry in the store, in no particular order.
func (s *Store) LoadAll(ctx context.Context) ([]filestore.BinaryEntry, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	entries := make([]filestore.BinaryEntry, 0, len(s.entries))
	for k, v := range s.entries {
		entries = append(
			entries,
			filestore.BinaryEntry{
				Key:   k,
				Value: dyad.Clone(v),
			},
		)
	}

	return entries, ctx.Err()
}

// StoreAll stores each of the given entries, in order.
func (s *Store) StoreAll(ctx context.Context, entries []filestore.BinaryEntry) error {
	for _, e := range entries {
		if err := s.Store(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}

	return nil
}

// Remove removes the entry associated with the given key.
func (s *Store) Remove(ctx context.Context, k string) error {
	if err := filestore.ValidateKey(k); err != nil {
		return err
	}

	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.entries[k]; !ok {
		return filestore.KeyNotFoundError{Key: k}
	}

	delete(s.entries, k)

	return ctx.Err()
}

// store adds an entry to the store. It expects s.m to be locked.
func (s *Store) store(ctx context.Context, k string, v []byte) error {
	if s.BeforeStore != nil {
		if err := s.BeforeStore(k, v); err != nil {
			return err
		}
	}

	if s.entries == nil {
		s.entries = map[string][]byte{}
	}
	s.entries[k] = v

	if s.AfterStore != nil {
		if err := s.AfterStore(k, v); err != nil {
			return err
		}
	}

	return ctx.Err()
}
