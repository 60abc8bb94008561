package boltstore_test

import (
	"path/filepath"
	"testing"

	. "github.com/dogmatiq/filekit/driver/bolt/boltstore"
	"github.com/dogmatiq/filekit/filestore"
	"github.com/dogmatiq/filekit/internal/x/xtesting"
	"go.etcd.io/bbolt"
)

func open(t testing.TB) *bbolt.DB {
	db, err := bbolt.Open(
		filepath.Join(t.TempDir(), "store.db"),
		0o600,
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Error(err)
		}
	})

	return db
}

func TestStore(t *testing.T) {
	db := open(t)

	filestore.RunTests(
		t,
		func(t testing.TB) filestore.BinaryStore {
			return New(db, xtesting.UniqueName("bucket"))
		},
	)
}

func TestStoreBucketIsolation(t *testing.T) {
	db := open(t)

	first := New(db, "first")
	second := New(db, "second")

	if err := first.Store(t.Context(), "<key>", []byte("<value>")); err != nil {
		t.Fatal(err)
	}

	if _, err := second.Load(t.Context(), "<key>"); !filestore.IsNotFound(err) {
		t.Fatalf("expected a key-not-found error, got %v", err)
	}
}

func BenchmarkStore(b *testing.B) {
	db := open(b)

	filestore.RunBenchmarks(
		b,
		func(b testing.TB) filestore.BinaryStore {
			return New(db, xtesting.UniqueName("bucket"))
		},
	)
}
