package filestore

import "context"

// A Store is a keyed collection of values of type V, with one entry per key.
//
// Keys must be usable verbatim as a single path segment. See [ValidateKey].
//
// Implementations are safe for concurrent use, but concurrent operations on
// the same key may be interleaved arbitrarily.
type Store[V any] interface {
	// List returns the keys of the entries in the store, in no particular
	// order.
	List(ctx context.Context) ([]string, error)

	// Load returns the value of the entry associated with the given key.
	//
	// It returns a [KeyNotFoundError] if there is no such entry.
	Load(ctx context.Context, k string) (V, error)

	// Store saves an entry that associates v with the given key, replacing
	// any existing entry with the same key.
	Store(ctx context.Context, k string, v V) error

	// LoadAll returns every entry in the store, in no particular order.
	//
	// If any single entry cannot be loaded it returns a non-nil error and no
	// entries.
	LoadAll(ctx context.Context) ([]Entry[V], error)

	// StoreAll saves the given entries, in order, as if by a call to
	// [Store.Store] for each.
	//
	// If an entry cannot be stored it returns a non-nil error without
	// attempting to store the remaining entries. Entries stored before the
	// failure are not rolled back.
	StoreAll(ctx context.Context, entries []Entry[V]) error

	// Remove removes the entry associated with the given key.
	//
	// It returns a [KeyNotFoundError] if there is no such entry.
	Remove(ctx context.Context, k string) error
}

// An Entry is a key/value pair within a [Store].
type Entry[V any] struct {
	Key   string
	Value V
}
