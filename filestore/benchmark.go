package filestore

import (
	"context"
	"crypto/rand"
	"io"
	"strconv"
	"testing"

	"github.com/dogmatiq/filekit/internal/x/xtesting"
)

// RunBenchmarks runs benchmarks against a [BinaryStore] implementation.
//
// newStore is called once per benchmark to produce an empty store.
func RunBenchmarks(
	b *testing.B,
	newStore func(t testing.TB) BinaryStore,
) {
	b.Run("List", func(b *testing.B) {
		benchmarkStore(
			b,
			newStore,
			// SETUP
			func(ctx context.Context, store BinaryStore) error {
				return seed(ctx, store, 100)
			},
			// BEFORE EACH
			nil,
			// BENCHMARKED CODE
			func(ctx context.Context, store BinaryStore) error {
				_, err := store.List(ctx)
				return err
			},
			// AFTER EACH
			nil,
		)
	})

	b.Run("Load", func(b *testing.B) {
		var key string

		benchmarkStore(
			b,
			newStore,
			// SETUP
			nil,
			// BEFORE EACH
			func(ctx context.Context, store BinaryStore) error {
				key = xtesting.SequentialName("key")
				return store.Store(ctx, key, []byte("<value>"))
			},
			// BENCHMARKED CODE
			func(ctx context.Context, store BinaryStore) error {
				_, err := store.Load(ctx, key)
				return err
			},
			// AFTER EACH
			nil,
		)
	})

	b.Run("Store", func(b *testing.B) {
		b.Run("new key", func(b *testing.B) {
			var (
				key   string
				value [32]byte
			)

			benchmarkStore(
				b,
				newStore,
				// SETUP
				nil,
				// BEFORE EACH
				func(context.Context, BinaryStore) error {
					key = xtesting.SequentialName("key")
					_, err := io.ReadFull(rand.Reader, value[:])
					return err
				},
				// BENCHMARKED CODE
				func(ctx context.Context, store BinaryStore) error {
					return store.Store(ctx, key, value[:])
				},
				// AFTER EACH
				nil,
			)
		})

		b.Run("existing key", func(b *testing.B) {
			var value [32]byte

			benchmarkStore(
				b,
				newStore,
				// SETUP
				func(ctx context.Context, store BinaryStore) error {
					return store.Store(ctx, "<key>", []byte("<value>"))
				},
				// BEFORE EACH
				func(context.Context, BinaryStore) error {
					_, err := io.ReadFull(rand.Reader, value[:])
					return err
				},
				// BENCHMARKED CODE
				func(ctx context.Context, store BinaryStore) error {
					return store.Store(ctx, "<key>", value[:])
				},
				// AFTER EACH
				nil,
			)
		})
	})

	b.Run("LoadAll", func(b *testing.B) {
		benchmarkStore(
			b,
			newStore,
			// SETUP
			func(ctx context.Context, store BinaryStore) error {
				return seed(ctx, store, 100)
			},
			// BEFORE EACH
			nil,
			// BENCHMARKED CODE
			func(ctx context.Context, store BinaryStore) error {
				_, err := store.LoadAll(ctx)
				return err
			},
			// AFTER EACH
			nil,
		)
	})

	b.Run("StoreAll", func(b *testing.B) {
		var entries []BinaryEntry

		benchmarkStore(
			b,
			newStore,
			// SETUP
			nil,
			// BEFORE EACH
			func(context.Context, BinaryStore) error {
				entries = entries[:0]

				for i := 0; i < 10; i++ {
					var value [32]byte
					if _, err := io.ReadFull(rand.Reader, value[:]); err != nil {
						return err
					}

					entries = append(
						entries,
						BinaryEntry{
							Key:   xtesting.SequentialName("key"),
							Value: value[:],
						},
					)
				}

				return nil
			},
			// BENCHMARKED CODE
			func(ctx context.Context, store BinaryStore) error {
				return store.StoreAll(ctx, entries)
			},
			// AFTER EACH
			nil,
		)
	})

	b.Run("Remove", func(b *testing.B) {
		var key string

		benchmarkStore(
			b,
			newStore,
			// SETUP
			nil,
			// BEFORE EACH
			func(ctx context.Context, store BinaryStore) error {
				key = xtesting.SequentialName("key")
				return store.Store(ctx, key, []byte("<value>"))
			},
			// BENCHMARKED CODE
			func(ctx context.Context, store BinaryStore) error {
				return store.Remove(ctx, key)
			},
			// AFTER EACH
			nil,
		)
	})
}

func benchmarkStore(
	b *testing.B,
	newStore func(t testing.TB) BinaryStore,
	setup func(context.Context, BinaryStore) error,
	before func(context.Context, BinaryStore) error,
	fn func(context.Context, BinaryStore) error,
	after func(context.Context, BinaryStore) error,
) {
	store := newStore(b)

	xtesting.Benchmark(
		b,
		func(ctx context.Context) error {
			if setup != nil {
				return setup(ctx, store)
			}
			return nil
		},
		func(ctx context.Context) error {
			if before != nil {
				return before(ctx, store)
			}
			return nil
		},
		func(ctx context.Context) error {
			return fn(ctx, store)
		},
		func(ctx context.Context) error {
			if after != nil {
				return after(ctx, store)
			}
			return nil
		},
	)
}

// seed populates store with n entries with sequentially numbered keys.
func seed(ctx context.Context, store BinaryStore, n int) error {
	for i := 0; i < n; i++ {
		var value [32]byte
		if _, err := io.ReadFull(rand.Reader, value[:]); err != nil {
			return err
		}

		if err := store.Store(ctx, strconv.Itoa(i), value[:]); err != nil {
			return err
		}
	}

	return nil
}
