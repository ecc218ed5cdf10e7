package service

import (
	"context"
	"sync"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
)

// GuardState is what a protected page renders.
type GuardState int

const (
	// Unauthenticated shows the auth prompt.
	Unauthenticated GuardState = iota
	// PrerequisitePending shows the statement upload view.
	PrerequisitePending
	// Authorized renders the page.
	Authorized
)

func (s GuardState) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case PrerequisitePending:
		return "prerequisite_pending"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Evaluate decides what a guarded page shows for session and prerequisite.
func Evaluate(session *domain.Session, prerequisite bool) GuardState {
	switch {
	case session == nil:
		return Unauthenticated
	case !prerequisite:
		return PrerequisitePending
	default:
		return Authorized
	}
}

// Decision is the guard's verdict for one route.
type Decision struct {
	Route   Route
	State   GuardState
	Session *domain.Session

	// AuthViews lists the views offered by the auth prompt.
	AuthViews []domain.AuthView

	// Message explains why children are not rendered.
	Message string
}

// RouteGuard evaluates routes against the held session.
type RouteGuard struct {
	Holder *SessionHolder
}

// Check evaluates the route named by ref.
func (g *RouteGuard) Check(ref string) (Decision, error) {
	route, err := LookupRoute(ref)
	if err != nil {
		return Decision{}, err
	}

	session := g.Holder.Session()
	prerequisite := !route.Prerequisite || g.Holder.Statements().HasAny()

	d := Decision{
		Route:   route,
		State:   Evaluate(session, prerequisite),
		Session: session,
	}
	switch d.State {
	case Unauthenticated:
		d.AuthViews = []domain.AuthView{domain.AuthViewLogin, domain.AuthViewRegister}
		d.Message = "Please login or register to access this page."
	case PrerequisitePending:
		d.Message = "Upload a bank statement to continue."
	}
	return d, nil
}

// Resolving is implemented by Resolver.
type Resolving interface {
	Resolve(ctx context.Context) (*domain.Session, error)
}

// AuthViews tracks which auth modal is open. Closing an open view re-runs
// session resolution, which is how a login or registration becomes visible.
type AuthViews struct {
	Resolver Resolving

	mu   sync.Mutex
	view domain.AuthView
}

// Current returns the open view.
func (v *AuthViews) Current() domain.AuthView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.view
}

// Open switches to view. Opening AuthViewNone is the same as closing
// without resolving.
func (v *AuthViews) Open(view domain.AuthView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.view = view
}

// Close returns to AuthViewNone. When a view was open, the session is
// resolved again and the result returned.
func (v *AuthViews) Close(ctx context.Context) (*domain.Session, error) {
	v.mu.Lock()
	was := v.view
	v.view = domain.AuthViewNone
	v.mu.Unlock()

	if was == domain.AuthViewNone {
		return nil, nil
	}
	return v.Resolver.Resolve(ctx)
}
