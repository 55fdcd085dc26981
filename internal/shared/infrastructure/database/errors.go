package database

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNoRows is the driver-neutral empty-result sentinel. Repositories return
// it so callers can map a missing configuration version or work request to a
// domain not-found error without knowing which driver served the query.
var ErrNoRows = errors.New("no rows in result set")

// IsNoRows reports whether err means the query matched nothing, regardless of
// whether it originated from pgx, database/sql, or this package's sentinel.
func IsNoRows(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, ErrNoRows)
}
