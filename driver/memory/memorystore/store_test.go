package memorystore_test

import (
	"errors"
	"testing"

	. "github.com/dogmatiq/filekit/driver/memory/memorystore"
	"github.com/dogmatiq/filekit/filestore"
)

func TestStore(t *testing.T) {
	filestore.RunTests(
		t,
		func(t testing.TB) filestore.BinaryStore {
			return &Store{}
		},
	)
}

func TestStoreHooks(t *testing.T) {
	t.Run("it invokes the BeforeStore function", func(t *testing.T) {
		store := &Store{}

		want := errors.New("<error>")
		store.BeforeStore = func(k string, v []byte) error {
			return want
		}

		if got := store.Store(t.Context(), "<key>", []byte("<value>")); got != want {
			t.Fatalf("unexpected error: got %v, want %v", got, want)
		}

		if _, err := store.Load(t.Context(), "<key>"); !filestore.IsNotFound(err) {
			t.Fatalf("did not expect the value to be stored, got %v", err)
		}
	})

	t.Run("it invokes the AfterStore function", func(t *testing.T) {
		store := &Store{}

		want := errors.New("<error>")
		store.AfterStore = func(k string, v []byte) error {
			return want
		}

		if got := store.Store(t.Context(), "<key>", []byte("<value>")); got != want {
			t.Fatalf("unexpected error: got %v, want %v", got, want)
		}

		if _, err := store.Load(t.Context(), "<key>"); err != nil {
			t.Fatalf("expected the value to be stored: %v", err)
		}
	})
}

func BenchmarkStore(b *testing.B) {
	filestore.RunBenchmarks(
		b,
		func(b testing.TB) filestore.BinaryStore {
			return &Store{}
		},
	)
}
