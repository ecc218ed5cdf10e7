package sqlite

import (
	"database/sql"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Cookies() store.Cookies { return &cookiesRepo{db: t.tx} }
func (t *txStore) Cache() store.Cache     { return &cacheRepo{db: t.tx} }
