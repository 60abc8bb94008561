package pgerror

import (
	"errors"

	"github.com/jackc/pgconn"
)

// https://www.postgresql.org/docs/11/errcodes-appendix.html
const (
	// CodeUndefinedTable is the PostgreSQL error code for "undefined_table".
	CodeUndefinedTable = "42P01"
)

// Is returns true if err is a PostgreSQL error with the given code.
func Is(err error, code string) bool {
	var e *pgconn.PgError
	return errors.As(err, &e) && e.Code == code
}
