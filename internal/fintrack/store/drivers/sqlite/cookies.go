package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/store"
)

type cookiesRepo struct {
	db dbtx
}

func (r *cookiesRepo) ListCookies(ctx context.Context) ([]store.StoredCookie, error) {
	rows, err := r.db.QueryContext(ctx, listCookiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cookies []store.StoredCookie
	for rows.Next() {
		var (
			c       store.StoredCookie
			expires sql.NullTime
		)
		if err := rows.Scan(&c.Origin, &c.Name, &c.Value, &c.Path, &c.Domain, &expires, &c.Secure, &c.HTTPOnly); err != nil {
			return nil, err
		}
		c.Expires = mapNullTimePtr(expires)
		cookies = append(cookies, c)
	}
	return cookies, rows.Err()
}

func (r *cookiesRepo) UpsertCookie(ctx context.Context, c store.StoredCookie) error {
	if c.Path == "" {
		c.Path = "/"
	}
	_, err := r.db.ExecContext(ctx, upsertCookieSQL,
		c.Origin,
		c.Name,
		c.Value,
		c.Path,
		c.Domain,
		mapOptionalTime(c.Expires),
		c.Secure,
		c.HTTPOnly,
	)
	return err
}

func (r *cookiesRepo) DeleteCookie(ctx context.Context, origin, name, path string) error {
	if path == "" {
		path = "/"
	}
	_, err := r.db.ExecContext(ctx, deleteCookieSQL, origin, name, path)
	return err
}
