package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/fakeapi"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	session := &domain.Session{User: domain.UserRecord{ID: "u1"}}

	require.Equal(t, service.Unauthenticated, service.Evaluate(nil, false))
	require.Equal(t, service.Unauthenticated, service.Evaluate(nil, true))
	require.Equal(t, service.PrerequisitePending, service.Evaluate(session, false))
	require.Equal(t, service.Authorized, service.Evaluate(session, true))
}

func TestLookupRoute(t *testing.T) {
	r, err := service.LookupRoute("/")
	require.NoError(t, err)
	require.Equal(t, service.DefaultRoute, r.Name)

	r, err = service.LookupRoute("/pdf")
	require.NoError(t, err)
	require.Equal(t, "statements", r.Name)
	require.False(t, r.Prerequisite)

	r, err = service.LookupRoute("budget-forecast")
	require.NoError(t, err)
	require.True(t, r.Premium)

	_, err = service.LookupRoute("/nope")
	require.ErrorIs(t, err, domain.ErrUnknownRoute)
}

func TestGuardOffersAuthViewsWhenSignedOut(t *testing.T) {
	h := newHarness(t)

	d, err := h.Guard.Check("dashboard")
	require.NoError(t, err)
	require.Equal(t, service.Unauthenticated, d.State)
	require.Equal(t, []domain.AuthView{domain.AuthViewLogin, domain.AuthViewRegister}, d.AuthViews)
}

func TestUploadFlipsPrerequisite(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.signIn(t, fakeapi.Seed{})

	d, err := h.Guard.Check("history")
	require.NoError(t, err)
	require.Equal(t, service.PrerequisitePending, d.State)

	// The upload page itself only needs a session.
	d, err = h.Guard.Check("/pdf")
	require.NoError(t, err)
	require.Equal(t, service.Authorized, d.State)

	_, err = h.Uploader.Upload(ctx, "march.pdf", bytes.NewReader(pdf))
	require.NoError(t, err)

	d, err = h.Guard.Check("history")
	require.NoError(t, err)
	require.Equal(t, service.Authorized, d.State)

	_, statements, ok, err := h.cache.Snapshot(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, statements, 1)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.signIn(t, fakeapi.Seed{})

	_, err := h.Uploader.Upload(ctx, "notes.txt", bytes.NewReader([]byte("just some text")))
	require.ErrorIs(t, err, domain.ErrNotPDF)
	require.Zero(t, h.api.Calls("/statements/save"))
}

func TestUploadRequiresSession(t *testing.T) {
	h := newHarness(t)
	_, err := h.Uploader.Upload(context.Background(), "a.pdf", bytes.NewReader(pdf))
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestClosingUnopenedViewDoesNotResolve(t *testing.T) {
	h := newHarness(t)

	session, err := h.Views.Close(context.Background())
	require.NoError(t, err)
	require.Nil(t, session)
	require.Zero(t, h.api.Calls("/user"))
}
