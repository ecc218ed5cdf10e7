package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
)

// GateResult reports what CheckEntitlement did with the action.
type GateResult int

const (
	// Proceeded means the action ran.
	Proceeded GateResult = iota
	// PlanRequired means the plan dialog is open and the action did not run.
	PlanRequired
)

func (r GateResult) String() string {
	if r == Proceeded {
		return "proceeded"
	}
	return "plan_required"
}

// FeatureGate runs premium actions only for subscribed users.
type FeatureGate struct {
	API      API
	Resolver *Resolver
	Holder   *SessionHolder

	mu     sync.Mutex
	dialog *PlanDialog
}

// CheckEntitlement runs action when the signed-in user is subscribed.
// Otherwise it opens the plan dialog and returns PlanRequired.
func (g *FeatureGate) CheckEntitlement(ctx context.Context, action func(ctx context.Context) error) (GateResult, error) {
	// Read at call time so a just-finished upgrade is honoured.
	session := g.Holder.Session()
	if session == nil {
		return PlanRequired, domain.ErrNoSession
	}

	if session.User.Subscription {
		return Proceeded, action(ctx)
	}

	g.openDialog()
	slogx.FromContext(ctx).Debug("subscription required", slog.String("user_id", session.User.ID))
	return PlanRequired, nil
}

// Dialog returns the open plan dialog, or nil.
func (g *FeatureGate) Dialog() *PlanDialog {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dialog
}

func (g *FeatureGate) openDialog() *PlanDialog {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dialog == nil {
		g.dialog = &PlanDialog{gate: g, Plans: domain.Plans()}
	}
	return g.dialog
}

func (g *FeatureGate) closeDialog(d *PlanDialog) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dialog == d {
		g.dialog = nil
	}
}

// CancelSubscription ends the paid plan and marks the cached user as
// unsubscribed.
func (g *FeatureGate) CancelSubscription(ctx context.Context) (*domain.Session, error) {
	if g.Holder.Session() == nil {
		return nil, domain.ErrNoSession
	}

	if _, err := g.API.CancelSubscription(ctx); err != nil {
		slogx.FromContext(ctx).Warn("cancel subscription failed", slog.Any("error", err))
		return nil, failure(domain.ErrEntitlementActionFailed, err, "Failed to cancel subscription")
	}

	return g.Resolver.PatchUser(ctx, func(u *domain.UserRecord) { u.Subscription = false })
}

// PlanDialog is the plan-selection dialog opened by a failed entitlement
// check. At most one is open at a time.
type PlanDialog struct {
	Plans []domain.Plan

	gate *FeatureGate
}

// Upgrade subscribes to the paid plan. On success the cached user is marked
// subscribed and the dialog closes; on failure it stays open.
func (d *PlanDialog) Upgrade(ctx context.Context) (*domain.Session, error) {
	l := slogx.FromContext(ctx)

	if _, err := d.gate.API.AddSubscription(ctx, true); err != nil {
		l.Warn("add subscription failed", slog.Any("error", err))
		return nil, failure(domain.ErrEntitlementActionFailed, err, "Failed to add subscription")
	}

	session, err := d.gate.Resolver.PatchUser(ctx, func(u *domain.UserRecord) { u.Subscription = true })
	if err != nil {
		// The backend already holds the subscription at this point.
		l.Warn("subscription added but local session not updated", slog.Any("error", err))
		if errors.Is(err, domain.ErrNoSession) {
			d.gate.closeDialog(d)
		}
		return nil, err
	}

	d.gate.closeDialog(d)
	l.Info("subscription added", slog.String("user_id", session.User.ID))
	return session, nil
}

// Dismiss closes the dialog without changing the subscription.
func (d *PlanDialog) Dismiss() {
	d.gate.closeDialog(d)
}
