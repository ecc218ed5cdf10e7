package sqlite

import (
	"context"
	"database/sql"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so repositories run the same
// statements inside and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	listCookiesSQL = `
SELECT origin, name, value, path, domain, expires_at, secure, http_only
FROM cookies
ORDER BY origin, name, path`

	upsertCookieSQL = `
INSERT INTO cookies (origin, name, value, path, domain, expires_at, secure, http_only, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (origin, name, path) DO UPDATE SET
	value      = excluded.value,
	domain     = excluded.domain,
	expires_at = excluded.expires_at,
	secure     = excluded.secure,
	http_only  = excluded.http_only,
	updated_at = CURRENT_TIMESTAMP`

	deleteCookieSQL = `DELETE FROM cookies WHERE origin = ? AND name = ? AND path = ?`

	getCacheEntrySQL = `SELECT value FROM cache_entries WHERE key = ?`

	putCacheEntrySQL = `
INSERT INTO cache_entries (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (key) DO UPDATE SET
	value      = excluded.value,
	updated_at = CURRENT_TIMESTAMP`

	deleteCacheEntrySQL = `DELETE FROM cache_entries WHERE key = ?`
)
