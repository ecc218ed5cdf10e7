package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/store"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
	"golang.org/x/sync/errgroup"
)

// Resolver turns the stored credential into a Session by fetching the
// current user and statements. Only the most recently started resolution may
// commit; results of older ones are dropped.
type Resolver struct {
	API         API
	Credentials Credentials
	Cache       *store.SessionCache
	Holder      *SessionHolder

	latest   atomic.Uint64
	commitMu sync.Mutex
}

// Resolve re-derives the session. A missing credential is not an error: the
// session becomes nil and no request is made. A failed fetch also leaves the
// session nil and returns ErrSessionFetchFailed.
func (r *Resolver) Resolve(ctx context.Context) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := slogx.FromContext(ctx)
	id := r.latest.Add(1)

	// 1. No credential, nothing to fetch
	if _, ok := r.Credentials.Read(ctx); !ok {
		r.commit(ctx, id, func() (func(), error) {
			return r.Holder.set(nil, nil), nil
		})
		l.Debug("no credential, session cleared", slog.Uint64("resolution", id))
		return nil, nil
	}

	// 2. Fetch user and statements together
	var (
		user       domain.UserRecord
		statements domain.StatementSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := r.API.GetCurrentUser(gctx)
		if err != nil {
			return fmt.Errorf("fetch user: %w", err)
		}
		user = mapUser(u)
		return nil
	})
	g.Go(func() error {
		rows, err := r.API.GetStatements(gctx)
		if err != nil {
			return fmt.Errorf("fetch statements: %w", err)
		}
		statements = mapStatements(rows)
		return nil
	})
	fetchErr := g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Fetch failed: signed out, recoverable
	if fetchErr != nil {
		l.Warn("session fetch failed", slog.Uint64("resolution", id), slog.Any("error", fetchErr))
		committed := r.commit(ctx, id, func() (func(), error) {
			return r.Holder.set(nil, nil), nil
		})
		if !committed {
			return r.Holder.Session(), nil
		}
		return nil, failure(domain.ErrSessionFetchFailed, fetchErr, "Could not load your session")
	}

	// 4. Cache the pair, then publish the session
	session := &domain.Session{User: user}
	var cacheErr error
	committed := r.commit(ctx, id, func() (func(), error) {
		if err := r.Cache.SaveSnapshot(ctx, user, statements); err != nil {
			cacheErr = err
			return nil, err
		}
		return r.Holder.set(session, statements), nil
	})
	if cacheErr != nil {
		l.Error("failed to cache session", slog.Any("error", cacheErr))
		return nil, fmt.Errorf("cache session: %w", cacheErr)
	}
	if !committed {
		return r.Holder.Session(), nil
	}

	l.Debug("session resolved", slog.Uint64("resolution", id), slog.String("user_id", user.ID))
	return copySession(session), nil
}

// commit runs fn under the commit lock if id is still the latest
// resolution. Subscribers are notified after the lock is released so they
// may call back into the Resolver. It reports whether fn ran successfully.
func (r *Resolver) commit(ctx context.Context, id uint64, fn func() (notify func(), err error)) bool {
	r.commitMu.Lock()
	if latest := r.latest.Load(); id != latest {
		r.commitMu.Unlock()
		slogx.FromContext(ctx).Debug("discarding stale resolution",
			slog.Uint64("resolution", id),
			slog.Uint64("latest", latest),
		)
		return false
	}
	notify, err := fn()
	r.commitMu.Unlock()

	if err != nil {
		return false
	}
	notify()
	return true
}

// Invalidate discards every in-flight resolution and signs the session out.
func (r *Resolver) Invalidate() {
	r.commitMu.Lock()
	r.latest.Add(1)
	notify := r.Holder.set(nil, nil)
	r.commitMu.Unlock()

	notify()
}

// PatchUser applies fn to the signed-in user, both in the cache and in the
// held session.
func (r *Resolver) PatchUser(ctx context.Context, fn func(*domain.UserRecord)) (*domain.Session, error) {
	notify, session, err := r.patchUser(ctx, fn)
	if err != nil {
		return nil, err
	}
	notify()
	return session, nil
}

func (r *Resolver) patchUser(ctx context.Context, fn func(*domain.UserRecord)) (func(), *domain.Session, error) {
	r.commitMu.Lock()
	defer r.commitMu.Unlock()

	current := r.Holder.Session()
	if current == nil {
		return nil, nil, domain.ErrNoSession
	}

	user := current.User
	fn(&user)

	if _, err := r.Cache.UpdateUser(ctx, fn); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("patch cached user: %w", err)
		}
		if err := r.Cache.SaveSnapshot(ctx, user, r.Holder.Statements()); err != nil {
			return nil, nil, fmt.Errorf("patch cached user: %w", err)
		}
	}

	return r.Holder.setUser(user), &domain.Session{User: user}, nil
}
