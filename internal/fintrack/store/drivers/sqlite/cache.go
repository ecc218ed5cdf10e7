package sqlite

import (
	"context"
)

type cacheRepo struct {
	db dbtx
}

func (r *cacheRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := r.db.QueryRowContext(ctx, getCacheEntrySQL, key).Scan(&value); err != nil {
		return nil, mapNotFound(err)
	}
	return value, nil
}

func (r *cacheRepo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, putCacheEntrySQL, key, value)
	return err
}

func (r *cacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := r.db.ExecContext(ctx, deleteCacheEntrySQL, key); err != nil {
			return err
		}
	}
	return nil
}
