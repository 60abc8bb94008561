package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"testing"

	"github.com/dogmatiq/filekit/internal/x/xtesting"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"pgregory.net/rapid"
)

// RunTests runs tests that confirm a [BinaryStore] implementation behaves
// correctly.
//
// newStore is called once per test to produce an empty store. Stores produced
// by separate calls must not share entries with one another.
func RunTests(
	t *testing.T,
	newStore func(t testing.TB) BinaryStore,
) {
	t.Run("List", func(t *testing.T) {
		t.Parallel()

		t.Run("it returns no keys for an empty store", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			keys, err := store.List(t.Context())
			if err != nil {
				t.Fatal(err)
			}

			if len(keys) != 0 {
				t.Fatalf("unexpected keys: %q", keys)
			}
		})

		t.Run("it returns the key of every entry", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			for _, k := range []string{"2", "0", "1"} {
				if err := store.Store(
					t.Context(),
					k,
					[]byte("<value-"+k+">"),
				); err != nil {
					t.Fatal(err)
				}
			}

			actual, err := store.List(t.Context())
			if err != nil {
				t.Fatal(err)
			}

			slices.Sort(actual)

			expect := []string{"0", "1", "2"}
			if diff := cmp.Diff(expect, actual); diff != "" {
				t.Fatal(diff)
			}
		})

		t.Run("it does not include removed keys", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			for _, k := range []string{"<keep>", "<remove>"} {
				if err := store.Store(t.Context(), k, []byte("<value>")); err != nil {
					t.Fatal(err)
				}
			}

			if err := store.Remove(t.Context(), "<remove>"); err != nil {
				t.Fatal(err)
			}

			actual, err := store.List(t.Context())
			if err != nil {
				t.Fatal(err)
			}

			expect := []string{"<keep>"}
			if diff := cmp.Diff(expect, actual); diff != "" {
				t.Fatal(diff)
			}
		})
	})

	t.Run("Load", func(t *testing.T) {
		t.Parallel()

		t.Run("it returns the value if the key exists", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			for i := 0; i < 5; i++ {
				k := fmt.Sprintf("<key-%d>", i)
				v := []byte(fmt.Sprintf("<value-%d>", i))

				if err := store.Store(t.Context(), k, v); err != nil {
					t.Fatal(err)
				}
			}

			for i := 0; i < 5; i++ {
				k := fmt.Sprintf("<key-%d>", i)
				expect := []byte(fmt.Sprintf("<value-%d>", i))

				actual, err := store.Load(t.Context(), k)
				if err != nil {
					t.Fatal(err)
				}

				if !bytes.Equal(expect, actual) {
					t.Fatalf(
						"unexpected value, want %q, got %q",
						string(expect),
						string(actual),
					)
				}
			}
		})

		t.Run("it fails if the key does not exist", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			_, err := store.Load(t.Context(), "<key>")

			var notFound KeyNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected a key-not-found error, got %v", err)
			}

			if notFound.Key != "<key>" {
				t.Fatalf("unexpected key in error: got %q, want %q", notFound.Key, "<key>")
			}

			if !errors.Is(err, fs.ErrNotExist) {
				t.Fatal("expected the error to match fs.ErrNotExist")
			}

			if IsCodec(err) {
				t.Fatal("did not expect a codec error")
			}
		})

		t.Run("it fails if the key has been removed", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			if err := store.Store(t.Context(), "<key>", []byte("<value>")); err != nil {
				t.Fatal(err)
			}

			if err := store.Remove(t.Context(), "<key>"); err != nil {
				t.Fatal(err)
			}

			_, err := store.Load(t.Context(), "<key>")
			if !IsNotFound(err) {
				t.Fatalf("expected a key-not-found error, got %v", err)
			}
		})

		t.Run("it returns the most recently stored value", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			// The replacement is shorter than the original so that any
			// remnant of the original value is detected.
			if err := store.Store(t.Context(), "<key>", []byte("<original value>")); err != nil {
				t.Fatal(err)
			}

			if err := store.Store(t.Context(), "<key>", []byte("<new>")); err != nil {
				t.Fatal(err)
			}

			actual, err := store.Load(t.Context(), "<key>")
			if err != nil {
				t.Fatal(err)
			}

			if expect := []byte("<new>"); !bytes.Equal(expect, actual) {
				t.Fatalf(
					"unexpected value, want %q, got %q",
					string(expect),
					string(actual),
				)
			}
		})

		t.Run("it does not return its internal byte slice", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			if err := store.Store(t.Context(), "<key>", []byte("<value>")); err != nil {
				t.Fatal(err)
			}

			v, err := store.Load(t.Context(), "<key>")
			if err != nil {
				t.Fatal(err)
			}

			v[0] = 'X'

			actual, err := store.Load(t.Context(), "<key>")
			if err != nil {
				t.Fatal(err)
			}

			if expect := []byte("<value>"); !bytes.Equal(expect, actual) {
				t.Fatalf(
					"unexpected value, want %q, got %q",
					string(expect),
					string(actual),
				)
			}
		})
	})

	t.Run("Store", func(t *testing.T) {
		t.Parallel()

		t.Run("it creates an entry with an empty value", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			if err := store.Store(t.Context(), "<key>", nil); err != nil {
				t.Fatal(err)
			}

			v, err := store.Load(t.Context(), "<key>")
			if err != nil {
				t.Fatal(err)
			}

			if len(v) != 0 {
				t.Fatalf("unexpected value: %q", string(v))
			}

			keys, err := store.List(t.Context())
			if err != nil {
				t.Fatal(err)
			}

			expect := []string{"<key>"}
			if diff := cmp.Diff(expect, keys); diff != "" {
				t.Fatal(diff)
			}
		})

		t.Run("it replaces an existing entry with an empty value", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			if err := store.Store(t.Context(), "<key>", []byte("<value>")); err != nil {
				t.Fatal(err)
			}

			if err := store.Store(t.Context(), "<key>", nil); err != nil {
				t.Fatal(err)
			}

			v, err := store.Load(t.Context(), "<key>")
			if err != nil {
				t.Fatal(err)
			}

			if len(v) != 0 {
				t.Fatalf("unexpected value: %q", string(v))
			}
		})

		t.Run("it does not keep a reference to the value slice", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			v := []byte("<value>")

			if err := store.Store(t.Context(), "<key>", v); err != nil {
				t.Fatal(err)
			}

			v[0] = 'X'

			actual, err := store.Load(t.Context(), "<key>")
			if err != nil {
				t.Fatal(err)
			}

			if expect := []byte("<value>"); !bytes.Equal(expect, actual) {
				t.Fatalf(
					"unexpected value, want %q, got %q",
					string(expect),
					string(actual),
				)
			}
		})
	})

	t.Run("LoadAll", func(t *testing.T) {
		t.Parallel()

		t.Run("it returns no entries for an empty store", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			entries, err := store.LoadAll(t.Context())
			if err != nil {
				t.Fatal(err)
			}

			if len(entries) != 0 {
				t.Fatalf("unexpected entries: %v", entries)
			}
		})

		t.Run("it returns every entry in the store", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			expect := map[string]string{}

			for n := 0; n < 100; n++ {
				k := fmt.Sprintf("<key-%d>", n)
				v := fmt.Sprintf("<value-%d>", n)

				if err := store.Store(t.Context(), k, []byte(v)); err != nil {
					t.Fatal(err)
				}

				expect[k] = v
			}

			entries, err := store.LoadAll(t.Context())
			if err != nil {
				t.Fatal(err)
			}

			actual := map[string]string{}

			for _, e := range entries {
				if _, ok := actual[e.Key]; ok {
					t.Fatalf("key appears in multiple entries: %q", e.Key)
				}
				actual[e.Key] = string(e.Value)
			}

			if diff := cmp.Diff(expect, actual); diff != "" {
				t.Fatal(diff)
			}
		})
	})

	t.Run("StoreAll", func(t *testing.T) {
		t.Parallel()

		t.Run("it stores every entry", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			if err := store.StoreAll(
				t.Context(),
				[]BinaryEntry{
					{Key: "0", Value: []byte("<value-0>")},
					{Key: "1", Value: []byte("<value-1>")},
					{Key: "2", Value: []byte("<value-2>")},
				},
			); err != nil {
				t.Fatal(err)
			}

			for _, k := range []string{"0", "1", "2"} {
				actual, err := store.Load(t.Context(), k)
				if err != nil {
					t.Fatal(err)
				}

				if expect := []byte("<value-" + k + ">"); !bytes.Equal(expect, actual) {
					t.Fatalf(
						"unexpected value, want %q, got %q",
						string(expect),
						string(actual),
					)
				}
			}
		})

		t.Run("it does nothing when given no entries", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			if err := store.StoreAll(t.Context(), nil); err != nil {
				t.Fatal(err)
			}

			keys, err := store.List(t.Context())
			if err != nil {
				t.Fatal(err)
			}

			if len(keys) != 0 {
				t.Fatalf("unexpected keys: %q", keys)
			}
		})

		t.Run("it applies entries with the same key in order", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			if err := store.StoreAll(
				t.Context(),
				[]BinaryEntry{
					{Key: "<key>", Value: []byte("<first>")},
					{Key: "<key>", Value: []byte("<second>")},
				},
			); err != nil {
				t.Fatal(err)
			}

			actual, err := store.Load(t.Context(), "<key>")
			if err != nil {
				t.Fatal(err)
			}

			if expect := []byte("<second>"); !bytes.Equal(expect, actual) {
				t.Fatalf(
					"unexpected value, want %q, got %q",
					string(expect),
					string(actual),
				)
			}
		})

		t.Run("it stores the entries that precede an invalid key", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			err := store.StoreAll(
				t.Context(),
				[]BinaryEntry{
					{Key: "0", Value: []byte("<value-0>")},
					{Key: "invalid/key", Value: []byte("<value-1>")},
					{Key: "2", Value: []byte("<value-2>")},
				},
			)

			if !errors.As(err, &InvalidKeyError{}) {
				t.Fatalf("expected an invalid key error, got %v", err)
			}

			if _, err := store.Load(t.Context(), "0"); err != nil {
				t.Fatal(err)
			}

			if _, err := store.Load(t.Context(), "2"); !IsNotFound(err) {
				t.Fatalf("expected a key-not-found error, got %v", err)
			}
		})
	})

	t.Run("Remove", func(t *testing.T) {
		t.Parallel()

		t.Run("it removes the entry", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			if err := store.Store(t.Context(), "<key>", []byte("<value>")); err != nil {
				t.Fatal(err)
			}

			if err := store.Remove(t.Context(), "<key>"); err != nil {
				t.Fatal(err)
			}

			if _, err := store.Load(t.Context(), "<key>"); !IsNotFound(err) {
				t.Fatalf("expected a key-not-found error, got %v", err)
			}
		})

		t.Run("it does not remove other entries", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			for _, k := range []string{"<keep>", "<remove>"} {
				if err := store.Store(t.Context(), k, []byte("<value>")); err != nil {
					t.Fatal(err)
				}
			}

			if err := store.Remove(t.Context(), "<remove>"); err != nil {
				t.Fatal(err)
			}

			if _, err := store.Load(t.Context(), "<keep>"); err != nil {
				t.Fatal(err)
			}
		})

		t.Run("it fails if the key does not exist", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			err := store.Remove(t.Context(), "<key>")

			var notFound KeyNotFoundError
			if !errors.As(err, &notFound) {
				t.Fatalf("expected a key-not-found error, got %v", err)
			}

			if notFound.Key != "<key>" {
				t.Fatalf("unexpected key in error: got %q, want %q", notFound.Key, "<key>")
			}

			if !errors.Is(err, fs.ErrNotExist) {
				t.Fatal("expected the error to match fs.ErrNotExist")
			}
		})

		t.Run("it fails if the key has already been removed", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			if err := store.Store(t.Context(), "<key>", []byte("<value>")); err != nil {
				t.Fatal(err)
			}

			if err := store.Remove(t.Context(), "<key>"); err != nil {
				t.Fatal(err)
			}

			if err := store.Remove(t.Context(), "<key>"); !IsNotFound(err) {
				t.Fatalf("expected a key-not-found error, got %v", err)
			}
		})
	})

	t.Run("context", func(t *testing.T) {
		t.Parallel()

		t.Run("it reports cancelation of the context", func(t *testing.T) {
			t.Parallel()

			store := newStore(t)

			ctx, cancel := context.WithCancel(t.Context())
			cancel()

			if err := store.Store(ctx, "<key>", []byte("<value>")); !errors.Is(err, context.Canceled) {
				t.Fatalf("expected the cancelation to be reported, got %v", err)
			}
		})
	})

	t.Run("keys", func(t *testing.T) {
		t.Parallel()

		keys := []string{
			"",
			".",
			"..",
			"nested/key",
			`nested\key`,
			"nul\x00key",
		}

		for _, k := range keys {
			t.Run(fmt.Sprintf("it rejects the %q key", k), func(t *testing.T) {
				t.Parallel()

				store := newStore(t)

				if _, err := store.Load(t.Context(), k); !errors.As(err, &InvalidKeyError{}) {
					t.Fatalf("expected an invalid key error from Load(), got %v", err)
				}

				if err := store.Store(t.Context(), k, []byte("<value>")); !errors.As(err, &InvalidKeyError{}) {
					t.Fatalf("expected an invalid key error from Store(), got %v", err)
				}

				if err := store.StoreAll(
					t.Context(),
					[]BinaryEntry{
						{Key: k, Value: []byte("<value>")},
					},
				); !errors.As(err, &InvalidKeyError{}) {
					t.Fatalf("expected an invalid key error from StoreAll(), got %v", err)
				}

				if err := store.Remove(t.Context(), k); !errors.As(err, &InvalidKeyError{}) {
					t.Fatalf("expected an invalid key error from Remove(), got %v", err)
				}

				listed, err := store.List(t.Context())
				if err != nil {
					t.Fatal(err)
				}

				if len(listed) != 0 {
					t.Fatalf("unexpected keys: %q", listed)
				}
			})
		}
	})

	t.Run("property-based", func(t *testing.T) {
		t.Parallel()

		store := newStore(t)

		rapid.Check(t, func(t *rapid.T) {
			// Each iteration works within its own prefixed slice of the
			// shared store.
			store := WithKeyPrefix(store, xtesting.SequentialName("run")+".")

			keyGen := rapid.StringMatching(`[a-z0-9_-]{1,8}`)
			valueGen := rapid.StringN(0, -1, -1)

			pairs := map[string][]byte{}
			var keys []string

			t.Repeat(
				map[string]func(*rapid.T){
					"Load": func(t *rapid.T) {
						key := keyGen.Draw(t, "key")

						value, err := store.Load(t.Context(), key)

						expect, ok := pairs[key]
						if !ok {
							if !IsNotFound(err) {
								t.Fatalf(
									"expected a key-not-found error for key %q, got %v",
									key,
									err,
								)
							}
							return
						}

						if err != nil {
							t.Fatal(err)
						}

						if !bytes.Equal(expect, value) {
							t.Fatalf(
								"unexpected value for key %q: got %q, want %q",
								key,
								string(value),
								string(expect),
							)
						}
					},
					"Load (key exists)": func(t *rapid.T) {
						if len(pairs) == 0 {
							t.Skip("skip: store is empty")
						}

						key := rapid.SampledFrom(keys).Draw(t, "key")

						value, err := store.Load(t.Context(), key)
						if err != nil {
							t.Fatal(err)
						}

						if expect := pairs[key]; !bytes.Equal(expect, value) {
							t.Fatalf(
								"unexpected value for key %q: got %q, want %q",
								key,
								string(value),
								string(expect),
							)
						}
					},
					"Store": func(t *rapid.T) {
						key := keyGen.Draw(t, "key")
						value := []byte(valueGen.Draw(t, "value"))

						if err := store.Store(t.Context(), key, value); err != nil {
							t.Fatal(err)
						}

						n := len(pairs)
						pairs[key] = value
						if len(pairs) > n {
							keys = append(keys, key)
						}
					},
					"Store (replace)": func(t *rapid.T) {
						if len(pairs) == 0 {
							t.Skip("skip: store is empty")
						}

						key := rapid.SampledFrom(keys).Draw(t, "key")
						value := []byte(valueGen.Draw(t, "value"))

						if err := store.Store(t.Context(), key, value); err != nil {
							t.Fatal(err)
						}

						pairs[key] = value
					},
					"StoreAll": func(t *rapid.T) {
						count := rapid.IntRange(0, 5).Draw(t, "count")

						var entries []BinaryEntry
						for i := 0; i < count; i++ {
							entries = append(
								entries,
								BinaryEntry{
									Key:   keyGen.Draw(t, "key"),
									Value: []byte(valueGen.Draw(t, "value")),
								},
							)
						}

						if err := store.StoreAll(t.Context(), entries); err != nil {
							t.Fatal(err)
						}

						for _, e := range entries {
							n := len(pairs)
							pairs[e.Key] = e.Value
							if len(pairs) > n {
								keys = append(keys, e.Key)
							}
						}
					},
					"Remove": func(t *rapid.T) {
						key := keyGen.Draw(t, "key")

						err := store.Remove(t.Context(), key)

						if _, ok := pairs[key]; !ok {
							if !IsNotFound(err) {
								t.Fatalf(
									"expected a key-not-found error for key %q, got %v",
									key,
									err,
								)
							}
							return
						}

						if err != nil {
							t.Fatal(err)
						}

						delete(pairs, key)
						keys = slices.DeleteFunc(
							keys,
							func(k string) bool {
								return k == key
							},
						)
					},
					"Remove (key exists)": func(t *rapid.T) {
						if len(pairs) == 0 {
							t.Skip("skip: store is empty")
						}

						key := rapid.SampledFrom(keys).Draw(t, "key")

						if err := store.Remove(t.Context(), key); err != nil {
							t.Fatal(err)
						}

						delete(pairs, key)
						keys = slices.DeleteFunc(
							keys,
							func(k string) bool {
								return k == key
							},
						)
					},
					"List": func(t *rapid.T) {
						actual, err := store.List(t.Context())
						if err != nil {
							t.Fatal(err)
						}

						slices.Sort(actual)

						expect := slices.Sorted(maps.Keys(pairs))

						if diff := cmp.Diff(
							expect,
							actual,
							cmpopts.EquateEmpty(),
						); diff != "" {
							t.Fatal(diff)
						}
					},
					"LoadAll": func(t *rapid.T) {
						entries, err := store.LoadAll(t.Context())
						if err != nil {
							t.Fatal(err)
						}

						actual := map[string][]byte{}

						for _, e := range entries {
							if _, ok := actual[e.Key]; ok {
								t.Fatalf("key appears in multiple entries: %q", e.Key)
							}
							actual[e.Key] = e.Value
						}

						if diff := cmp.Diff(
							pairs,
							actual,
							cmpopts.EquateEmpty(),
						); diff != "" {
							t.Fatal(diff)
						}
					},
				},
			)
		})
	})
}
