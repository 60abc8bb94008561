package filestore_test

import (
	"errors"
	"testing"

	"github.com/dogmatiq/filekit/driver/memory/memorystore"
	. "github.com/dogmatiq/filekit/filestore"
)

func TestWithInterceptor(t *testing.T) {
	t.Parallel()

	setup := func() (BinaryStore, *BinaryInterceptor) {
		var in BinaryInterceptor
		return WithInterceptor(&memorystore.Store{}, &in), &in
	}

	RunTests(
		t,
		func(t testing.TB) BinaryStore {
			return WithInterceptor(
				&memorystore.Store{},
				&BinaryInterceptor{},
			)
		},
	)

	t.Run("it returns the given store if no interceptor is provided", func(t *testing.T) {
		t.Parallel()

		underlying := &memorystore.Store{}
		store := WithInterceptor[[]byte](underlying, nil)

		if store != BinaryStore(underlying) {
			t.Fatalf("unexpected store: got %T, want %T", store, underlying)
		}
	})

	t.Run("it invokes the BeforeStore function when using Store()", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		want := errors.New("<error>")
		in.BeforeStore(func(string, []byte) error {
			return want
		})

		got := store.Store(t.Context(), "<key>", []byte("<value>"))
		if got != want {
			t.Fatalf("unexpected error: got %v, want %v", got, want)
		}

		if _, err := store.Load(t.Context(), "<key>"); !IsNotFound(err) {
			t.Fatalf("did not expect the value to be stored, got %v", err)
		}
	})

	t.Run("it invokes the BeforeStore function when using StoreAll()", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		want := errors.New("<error>")
		in.BeforeStore(func(k string, _ []byte) error {
			if k == "1" {
				return want
			}
			return nil
		})

		err := store.StoreAll(
			t.Context(),
			[]BinaryEntry{
				{Key: "0", Value: []byte("<zero>")},
				{Key: "1", Value: []byte("<one>")},
				{Key: "2", Value: []byte("<two>")},
			},
		)
		if err != want {
			t.Fatalf("unexpected error: got %v, want %v", err, want)
		}

		if _, err := store.Load(t.Context(), "0"); err != nil {
			t.Fatalf("expected the preceding entry to be stored: %v", err)
		}

		for _, k := range []string{"1", "2"} {
			if _, err := store.Load(t.Context(), k); !IsNotFound(err) {
				t.Fatalf("did not expect an entry for key %q, got %v", k, err)
			}
		}
	})

	t.Run("it invokes the AfterStore function when using Store()", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		want := errors.New("<error>")
		in.AfterStore(func(string, []byte) error {
			return want
		})

		got := store.Store(t.Context(), "<key>", []byte("<value>"))
		if got != want {
			t.Fatalf("unexpected error: got %v, want %v", got, want)
		}

		if _, err := store.Load(t.Context(), "<key>"); err != nil {
			t.Fatalf("expected the value to be stored: %v", err)
		}
	})

	t.Run("it invokes the AfterStore function when using StoreAll()", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		want := errors.New("<error>")
		in.AfterStore(func(k string, _ []byte) error {
			if k == "1" {
				return want
			}
			return nil
		})

		err := store.StoreAll(
			t.Context(),
			[]BinaryEntry{
				{Key: "0", Value: []byte("<zero>")},
				{Key: "1", Value: []byte("<one>")},
				{Key: "2", Value: []byte("<two>")},
			},
		)
		if err != want {
			t.Fatalf("unexpected error: got %v, want %v", err, want)
		}

		for _, k := range []string{"0", "1"} {
			if _, err := store.Load(t.Context(), k); err != nil {
				t.Fatalf("expected an entry for key %q: %v", k, err)
			}
		}

		if _, err := store.Load(t.Context(), "2"); !IsNotFound(err) {
			t.Fatalf("did not expect an entry for key %q, got %v", "2", err)
		}
	})

	t.Run("it invokes the BeforeRemove function", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		if err := store.Store(t.Context(), "<key>", []byte("<value>")); err != nil {
			t.Fatal(err)
		}

		want := errors.New("<error>")
		in.BeforeRemove(func(string) error {
			return want
		})

		if err := store.Remove(t.Context(), "<key>"); err != want {
			t.Fatalf("unexpected error: got %v, want %v", err, want)
		}

		if _, err := store.Load(t.Context(), "<key>"); err != nil {
			t.Fatalf("expected the entry to remain: %v", err)
		}
	})

	t.Run("it invokes the AfterRemove function", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		if err := store.Store(t.Context(), "<key>", []byte("<value>")); err != nil {
			t.Fatal(err)
		}

		want := errors.New("<error>")
		in.AfterRemove(func(string) error {
			return want
		})

		if err := store.Remove(t.Context(), "<key>"); err != want {
			t.Fatalf("unexpected error: got %v, want %v", err, want)
		}

		if _, err := store.Load(t.Context(), "<key>"); !IsNotFound(err) {
			t.Fatalf("expected the entry to be removed, got %v", err)
		}
	})

	t.Run("it allows functions to be cleared", func(t *testing.T) {
		t.Parallel()

		store, in := setup()

		in.BeforeStore(func(string, []byte) error {
			t.Fatal("unexpected call")
			return nil
		})

		in.AfterStore(func(string, []byte) error {
			t.Fatal("unexpected call")
			return nil
		})

		in.BeforeRemove(func(string) error {
			t.Fatal("unexpected call")
			return nil
		})

		in.AfterRemove(func(string) error {
			t.Fatal("unexpected call")
			return nil
		})

		in.BeforeStore(nil)
		in.AfterStore(nil)
		in.BeforeRemove(nil)
		in.AfterRemove(nil)

		if err := store.Store(t.Context(), "<key>", []byte("<value>")); err != nil {
			t.Fatal(err)
		}

		if err := store.Remove(t.Context(), "<key>"); err != nil {
			t.Fatal(err)
		}
	})
}
