package service

import (
	"sync"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
)

// SessionHolder keeps the session most recently committed by the Resolver
// together with its statement set. Readers always get copies.
type SessionHolder struct {
	mu         sync.RWMutex
	session    *domain.Session
	statements domain.StatementSet

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(*domain.Session)
	reloads []func()
}

func NewSessionHolder() *SessionHolder {
	return &SessionHolder{subs: map[int]func(*domain.Session){}}
}

// Session returns a copy of the current session, or nil when signed out.
func (h *SessionHolder) Session() *domain.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return copySession(h.session)
}

// Statements returns the statement set resolved with the current session.
func (h *SessionHolder) Statements() domain.StatementSet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append(domain.StatementSet(nil), h.statements...)
}

// Subscribe registers fn to be called after every session change. The
// returned func removes the subscription.
func (h *SessionHolder) Subscribe(fn func(*domain.Session)) (unsubscribe func()) {
	h.subMu.Lock()
	defer h.subMu.Unlock()

	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn

	return func() {
		h.subMu.Lock()
		defer h.subMu.Unlock()
		delete(h.subs, id)
	}
}

// OnReload registers fn to be called when views must reload from scratch,
// e.g. after logout or wallet login.
func (h *SessionHolder) OnReload(fn func()) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	h.reloads = append(h.reloads, fn)
}

// set stores the session and returns the func that tells subscribers about
// it. Callers holding a lock must release it before calling notify.
func (h *SessionHolder) set(session *domain.Session, statements domain.StatementSet) (notify func()) {
	h.mu.Lock()
	h.session = copySession(session)
	if session == nil {
		statements = nil
	}
	h.statements = append(domain.StatementSet(nil), statements...)
	h.mu.Unlock()

	published := copySession(session)
	return func() { h.notify(published) }
}

func (h *SessionHolder) setUser(user domain.UserRecord) (notify func()) {
	h.mu.Lock()
	if h.session == nil {
		h.mu.Unlock()
		return func() {}
	}
	h.session = &domain.Session{User: user}
	h.mu.Unlock()

	return func() { h.notify(&domain.Session{User: user}) }
}

func (h *SessionHolder) notify(session *domain.Session) {
	h.subMu.Lock()
	subs := make([]func(*domain.Session), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.subMu.Unlock()

	for _, fn := range subs {
		fn(copySession(session))
	}
}

func (h *SessionHolder) reload() {
	h.subMu.Lock()
	reloads := append([]func(){}, h.reloads...)
	h.subMu.Unlock()

	for _, fn := range reloads {
		fn()
	}
}

func copySession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
