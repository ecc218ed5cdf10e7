package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
)

// Fixed cache keys, kept from the browser client's local storage layout.
const (
	KeyUser       = "user"
	KeyStatements = "statement"
)

// SessionCache is the typed view over the cache used by the session
// resolver. The user and the statement set are always written together so a
// reader never sees a user paired with another resolution's statements.
type SessionCache struct {
	st Store
}

func NewSessionCache(st Store) *SessionCache {
	return &SessionCache{st: st}
}

// SaveSnapshot writes user and statements in one transaction.
func (c *SessionCache) SaveSnapshot(ctx context.Context, user domain.UserRecord, statements domain.StatementSet) error {
	if statements == nil {
		statements = domain.StatementSet{}
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	statementsJSON, err := json.Marshal(statements)
	if err != nil {
		return fmt.Errorf("encode statements: %w", err)
	}

	return c.st.WithTx(ctx, func(tx Tx) error {
		if err := tx.Cache().Put(ctx, KeyUser, userJSON); err != nil {
			return fmt.Errorf("cache user: %w", err)
		}
		if err := tx.Cache().Put(ctx, KeyStatements, statementsJSON); err != nil {
			return fmt.Errorf("cache statements: %w", err)
		}
		return nil
	})
}

// Snapshot reads the cached pair. ok is false when nothing is cached.
func (c *SessionCache) Snapshot(ctx context.Context) (user domain.UserRecord, statements domain.StatementSet, ok bool, err error) {
	err = c.st.WithTx(ctx, func(tx Tx) error {
		var found bool
		if found, err = getJSON(ctx, tx.Cache(), KeyUser, &user); err != nil || !found {
			return err
		}
		if _, err = getJSON(ctx, tx.Cache(), KeyStatements, &statements); err != nil {
			return err
		}
		ok = true
		return nil
	})
	return user, statements, ok, err
}

// User returns the cached user, if any.
func (c *SessionCache) User(ctx context.Context) (domain.UserRecord, bool, error) {
	var user domain.UserRecord
	found, err := getJSON(ctx, c.st.Cache(), KeyUser, &user)
	return user, found, err
}

// UpdateUser applies fn to the cached user and stores the result. It returns
// ErrNotFound when no user is cached.
func (c *SessionCache) UpdateUser(ctx context.Context, fn func(*domain.UserRecord)) (domain.UserRecord, error) {
	var user domain.UserRecord
	err := c.st.WithTx(ctx, func(tx Tx) error {
		found, err := getJSON(ctx, tx.Cache(), KeyUser, &user)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}

		fn(&user)

		raw, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		return tx.Cache().Put(ctx, KeyUser, raw)
	})
	return user, err
}

// Clear drops the cached user and statements.
func (c *SessionCache) Clear(ctx context.Context) error {
	return c.st.Cache().Delete(ctx, KeyUser, KeyStatements)
}

func getJSON(ctx context.Context, cache Cache, key string, dst any) (bool, error) {
	raw, err := cache.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}
