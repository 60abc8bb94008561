package pgstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dogmatiq/filekit/driver/sql/postgres/internal/pgerror"
	"github.com/dogmatiq/filekit/filestore"
)

// store is an implementation of [filestore.BinaryStore] that persists entries
// in a PostgreSQL database.
type store struct {
	DB   *sql.DB
	Name string
}

// New returns a [filestore.BinaryStore] that persists entries in the given
// PostgreSQL database. Stores with the same name share entries.
//
// [CreateSchema] must be called before the store is used.
func New(db *sql.DB, name string) filestore.BinaryStore {
	if name == "" {
		panic("store name must not be empty")
	}

	return &store{
		DB:   db,
		Name: name,
	}
}

// List returns the keys of the entries in the store, in no particular order.
func (s *store) List(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(
		ctx,
		`SELECT key
		FROM filekit.filestore
		WHERE store = $1`,
		s.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot query keys: %w", hintSchema(err))
	}
	defer rows.Close()

	var keys []string

	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("cannot scan entry: %w", err)
		}

		keys = append(keys, k)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read entries: %w", err)
	}

	return keys, nil
}

// Load returns the value associated with the given key.
func (s *store) Load(ctx context.Context, k string) ([]byte, error) {
	if err := filestore.ValidateKey(k); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(
		ctx,
		`SELECT value
		FROM filekit.filestore
		WHERE store = $1
		AND key = $2`,
		s.Name,
		k,
	)

	var v []byte
	if err := row.Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return nil, filestore.KeyNotFoundError{Key: k}
		}
		return nil, fmt.Errorf("cannot scan entry: %w", hintSchema(err))
	}

	return v, nil
}

// Store associates a value with the given key, replacing any existing value.
func (s *store) Store(ctx context.Context, k string, v []byte) error {
	if err := filestore.ValidateKey(k); err != nil {
		return err
	}

	// A nil slice must become an empty BYTEA, not NULL.
	if v == nil {
		v = []byte{}
	}

	if _, err := s.DB.ExecContext(
		ctx,
		`INSERT INTO filekit.filestore (
			store,
			key,
			value
		) VALUES (
			$1, $2, $3
		) ON CONFLICT (store, key) DO UPDATE SET
			value = EXCLUDED.value`,
		s.Name,
		k,
		v,
	); err != nil {
		return fmt.Errorf("cannot store entry: %w", hintSchema(err))
	}

	return nil
}

// LoadAll returns every entry in the store, in no particular order.
func (s *store) LoadAll(ctx context.Context) ([]filestore.BinaryEntry, error) {
	rows, err := s.DB.QueryContext(
		ctx,
		`SELECT key, value
		FROM filekit.filestore
		WHERE store = $1`,
		s.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot query entries: %w", hintSchema(err))
	}
	defer rows.Close()

	var entries []filestore.BinaryEntry

	for rows.Next() {
		var e filestore.BinaryEntry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("cannot scan entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cannot read entries: %w", err)
	}

	return entries, nil
}

// StoreAll stores each of the given entries, in order.
func (s *store) StoreAll(ctx context.Context, entries []filestore.BinaryEntry) error {
	for _, e := range entries {
		if err := s.Store(ctx, e.Key, e.Value); err != nil {
			return err
		}
	}

	return nil
}

// Remove removes the entry associated with the given key.
func (s *store) Remove(ctx context.Context, k string) error {
	if err := filestore.ValidateKey(k); err != nil {
		return err
	}

	res, err := s.DB.ExecContext(
		ctx,
		`DELETE FROM filekit.filestore
		WHERE store = $1
		AND key = $2`,
		s.Name,
		k,
	)
	if err != nil {
		return fmt.Errorf("cannot remove entry: %w", hintSchema(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cannot determine affected rows: %w", err)
	}

	if n == 0 {
		return filestore.KeyNotFoundError{Key: k}
	}

	return nil
}

// hintSchema annotates errors caused by a missing table with a reminder to
// create the schema.
func hintSchema(err error) error {
	if pgerror.Is(err, pgerror.CodeUndefinedTable) {
		return fmt.Errorf("%w (has CreateSchema been called?)", err)
	}
	return err
}
