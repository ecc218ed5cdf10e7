package service_test

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/fakeapi"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/stretchr/testify/require"
)

func TestLoginValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	cases := []struct {
		name, email, password string
	}{
		{"missing email", "", "pw"},
		{"malformed email", "not-an-email", "pw"},
		{"missing password", "ada@example.com", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.Auth.Login(ctx, tc.email, tc.password)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	require.Zero(t, h.api.Calls("/user/login"))
}

func TestLoginRejectedKeepsViewOpen(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.api.AddUser(fakeapi.Seed{Email: "ada@example.com", Password: "right"})

	session, err := h.Auth.Login(ctx, "ada@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrAuthRejected)
	require.Nil(t, session)

	var flowErr *domain.FlowError
	require.ErrorAs(t, err, &flowErr)
	require.Equal(t, "Invalid email or password", flowErr.Message)

	require.Equal(t, domain.AuthViewLogin, h.Views.Current())
	require.Nil(t, h.Holder.Session())
	require.Zero(t, h.api.Calls("/user"))
}

func TestLoginClosesViewAndResolves(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, fakeapi.Seed{})

	require.Equal(t, domain.AuthViewNone, h.Views.Current())
	_, ok := h.creds.Read(context.Background())
	require.True(t, ok)
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.signIn(t, fakeapi.Seed{Statements: 1})

	reloads := 0
	h.Holder.OnReload(func() { reloads++ })

	require.NoError(t, h.Auth.Logout(ctx))
	require.Nil(t, h.Holder.Session())
	require.Equal(t, 1, reloads)

	_, found, err := h.cache.User(ctx)
	require.NoError(t, err)
	require.False(t, found)

	_, ok := h.creds.Read(ctx)
	require.False(t, ok, "backend logout expires the cookies")
}

func TestLogoutClearsLocallyWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.signIn(t, fakeapi.Seed{Statements: 1})
	h.api.Fail("/user/logout", http.StatusServiceUnavailable, "maintenance")

	reloads := 0
	h.Holder.OnReload(func() { reloads++ })

	err := h.Auth.Logout(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "maintenance")

	require.Nil(t, h.Holder.Session())
	require.Equal(t, 1, reloads)

	_, found, err := h.cache.User(ctx)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRegistration(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	reg := h.Auth.Register()
	require.Equal(t, domain.AuthViewRegister, h.Views.Current())

	form := service.RegistrationForm{
		Username:        "ada",
		Name:            "Ada Lovelace",
		Password:        "analytical",
		ConfirmPassword: "analytical",
	}

	reg.SetEmail("ada@example.com")

	t.Run("unverified submit sends nothing", func(t *testing.T) {
		_, err := reg.Submit(ctx, form)
		require.ErrorIs(t, err, domain.ErrNotVerified)
		require.Zero(t, h.api.Calls("/user/save"))
	})

	require.NoError(t, reg.SendOTP(ctx))

	t.Run("wrong code", func(t *testing.T) {
		err := reg.VerifyOTP(ctx, "999999x")
		require.ErrorIs(t, err, domain.ErrVerificationFailed)
		require.False(t, reg.Verified())
	})

	require.NoError(t, reg.VerifyOTP(ctx, h.api.OTP("ada@example.com")))
	require.True(t, reg.Verified())

	t.Run("password mismatch sends nothing", func(t *testing.T) {
		bad := form
		bad.ConfirmPassword = "different"
		_, err := reg.Submit(ctx, bad)
		require.ErrorIs(t, err, domain.ErrPasswordMismatch)
		require.Zero(t, h.api.Calls("/user/save"))
	})

	session, err := reg.Submit(ctx, form)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, "ada@example.com", session.User.Email)
	require.Equal(t, domain.AuthViewNone, h.Views.Current())

	// No statements yet, so protected pages ask for an upload.
	d, err := h.Guard.Check("dashboard")
	require.NoError(t, err)
	require.Equal(t, service.PrerequisitePending, d.State)
}

func TestRegistrationEmailChangeResetsVerification(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reg := h.Auth.Register()

	reg.SetEmail("ada@example.com")
	require.NoError(t, reg.SendOTP(ctx))
	require.NoError(t, reg.VerifyOTP(ctx, h.api.OTP("ada@example.com")))
	require.True(t, reg.Verified())

	reg.SetEmail("ada@example.com")
	require.True(t, reg.Verified(), "same address keeps verification")

	reg.SetEmail("other@example.com")
	require.False(t, reg.Verified())

	_, err := reg.Submit(ctx, service.RegistrationForm{Password: "x", ConfirmPassword: "x"})
	require.ErrorIs(t, err, domain.ErrNotVerified)
}

func TestSendOTPIsThrottled(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reg := h.Auth.Register()
	reg.SetEmail("ada@example.com")

	require.NoError(t, reg.SendOTP(ctx))
	require.ErrorIs(t, reg.SendOTP(ctx), domain.ErrOTPThrottled)
	require.Equal(t, 1, h.api.Calls("/email/send-otp"))
}

func TestSendOTPFailureCarriesBackendMessage(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.api.Fail("/email/send-otp", http.StatusBadGateway, "mailer down")

	reg := h.Auth.Register()
	reg.SetEmail("ada@example.com")

	err := reg.SendOTP(ctx)
	require.ErrorIs(t, err, domain.ErrVerificationFailed)
	require.Contains(t, err.Error(), "mailer down")
}

func TestSaveProfileRefreshesCachedUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.signIn(t, fakeapi.Seed{Name: "Ada"})

	session, err := h.Auth.SaveProfile(ctx, service.ProfileForm{
		Name:      "Ada King",
		Image:     bytes.NewReader([]byte("png")),
		ImageName: "me.png",
	})
	require.NoError(t, err)
	require.Equal(t, "Ada King", session.User.Name)
	require.Equal(t, "Ada King", h.api.Name(id))
	require.True(t, strings.HasSuffix(session.User.Avatar, "me.png"))

	cached, _, err := h.cache.User(ctx)
	require.NoError(t, err)
	require.Equal(t, "Ada King", cached.Name)
}

func TestSaveProfileRequiresSession(t *testing.T) {
	h := newHarness(t)
	_, err := h.Auth.SaveProfile(context.Background(), service.ProfileForm{Name: "x"})
	require.ErrorIs(t, err, domain.ErrNoSession)
}
