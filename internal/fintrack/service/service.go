// Package service holds the client-side session logic: resolving the stored
// credential into a session, guarding routes, gating premium actions and
// driving the authentication flows.
package service

import (
	"time"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/store"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	API         API
	Credentials Credentials
	Cache       *store.SessionCache

	OTPResendInterval time.Duration
}

// Services is the wired set of session services around one SessionHolder.
type Services struct {
	Holder   *SessionHolder
	Resolver *Resolver
	Views    *AuthViews
	Guard    *RouteGuard
	Gate     *FeatureGate
	Auth     *AuthFlow
	Uploader *StatementUploader
	Forecast *BudgetForecast
}

func New(d Deps) *Services {
	holder := NewSessionHolder()
	resolver := &Resolver{
		API:         d.API,
		Credentials: d.Credentials,
		Cache:       d.Cache,
		Holder:      holder,
	}
	views := &AuthViews{Resolver: resolver}
	gate := &FeatureGate{API: d.API, Resolver: resolver, Holder: holder}

	return &Services{
		Holder:   holder,
		Resolver: resolver,
		Views:    views,
		Guard:    &RouteGuard{Holder: holder},
		Gate:     gate,
		Auth: &AuthFlow{
			API:               d.API,
			Credentials:       d.Credentials,
			Resolver:          resolver,
			Holder:            holder,
			Views:             views,
			OTPResendInterval: d.OTPResendInterval,
		},
		Uploader: &StatementUploader{API: d.API, Resolver: resolver, Holder: holder},
		Forecast: &BudgetForecast{API: d.API, Gate: gate},
	}
}
