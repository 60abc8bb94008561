package pgstore

import (
	"context"
	"database/sql"
)

// CreateSchema creates the PostgreSQL schema elements required by a store
// returned by [New].
func CreateSchema(
	ctx context.Context,
	db *sql.DB,
) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() // nolint:errcheck

	if _, err := tx.ExecContext(
		ctx,
		`CREATE SCHEMA IF NOT EXISTS filekit`,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(
		ctx,
		`CREATE TABLE IF NOT EXISTS filekit.filestore (
			store TEXT NOT NULL,
			key   TEXT NOT NULL,
			value BYTEA NOT NULL,

			PRIMARY KEY (store, key)
		)`,
	); err != nil {
		return err
	}

	return tx.Commit()
}
