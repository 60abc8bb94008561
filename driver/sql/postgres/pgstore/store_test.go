package pgstore_test

import (
	"context"
	"database/sql"
	"testing"

	. "github.com/dogmatiq/filekit/driver/sql/postgres/pgstore"
	"github.com/dogmatiq/filekit/filestore"
	"github.com/dogmatiq/filekit/internal/x/xtesting"
	"github.com/dogmatiq/sqltest"
)

// setup returns a PostgreSQL database with the schema created, ready for use
// by a store.
func setup(t testing.TB) *sql.DB {
	ctx := context.Background()

	database, err := sqltest.NewDatabase(ctx, sqltest.PGXDriver, sqltest.PostgreSQL)
	if err != nil {
		t.Fatal(err)
	}

	db, err := database.Open()
	if err != nil {
		t.Fatal(err)
	}

	if err := CreateSchema(ctx, db); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatal(err)
		}

		if err := database.Close(); err != nil {
			t.Fatal(err)
		}
	})

	return db
}

func TestStore(t *testing.T) {
	db := setup(t)

	filestore.RunTests(
		t,
		func(t testing.TB) filestore.BinaryStore {
			return New(db, xtesting.UniqueName("store"))
		},
	)
}

func TestStoreNameIsolation(t *testing.T) {
	t.Parallel()

	db := setup(t)
	ctx := t.Context()

	alpha := New(db, "alpha")
	bravo := New(db, "bravo")

	if err := alpha.Store(ctx, "<key>", []byte("<value>")); err != nil {
		t.Fatal(err)
	}

	if _, err := bravo.Load(ctx, "<key>"); !filestore.IsNotFound(err) {
		t.Fatalf("unexpected error: got %v, want key not found", err)
	}

	keys, err := bravo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if len(keys) != 0 {
		t.Fatalf("unexpected keys: got %v, want none", keys)
	}
}

func BenchmarkStore(b *testing.B) {
	db := setup(b)

	filestore.RunBenchmarks(
		b,
		func(b testing.TB) filestore.BinaryStore {
			return New(db, xtesting.UniqueName("store"))
		},
	)
}
