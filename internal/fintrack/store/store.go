package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root of the client's local persistence: the cookie jar's
// backing table and the session cache. Drivers implement it; only sqlite
// exists today.
type Store interface {
	Cookies() Cookies
	Cache() Cache

	ApplyMigrations() error

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx exposes the same repositories scoped to one transaction.
type Tx interface {
	Cookies() Cookies
	Cache() Cache
}

// StoredCookie is a cookie accepted by the jar, keyed by origin, name and
// path. An empty Path is stored as "/".
type StoredCookie struct {
	Origin   string // scheme://host the cookie was received from
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  *time.Time // nil for session cookies
	Secure   bool
	HTTPOnly bool
}

type Cookies interface {
	// ListCookies returns every persisted cookie.
	ListCookies(ctx context.Context) ([]StoredCookie, error)

	// UpsertCookie inserts or replaces the cookie for (origin, name, path).
	UpsertCookie(ctx context.Context, c StoredCookie) error

	// DeleteCookie removes the cookie for (origin, name, path), if any.
	DeleteCookie(ctx context.Context, origin, name, path string) error
}

type Cache interface {
	// Get returns the raw value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error
}
