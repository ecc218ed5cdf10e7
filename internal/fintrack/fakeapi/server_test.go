package fakeapi_test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/fakeapi"
	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, api *fakeapi.Server) *finsdk.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return finsdk.NewClient(api.URL(), jar)
}

func TestRegistrationRequiresVerifiedEmail(t *testing.T) {
	ctx := context.Background()
	api := fakeapi.New(nil)
	t.Cleanup(api.Close)
	client := newClient(t, api)

	form := finsdk.UserForm{Username: "ada", Name: "Ada", Email: "ada@example.com", Password: "pw"}

	_, err := client.SaveUser(ctx, form)
	require.Error(t, err)
	require.Equal(t, "Email not verified", finsdk.MessageOf(err))

	_, err = client.SendOTP(ctx, form.Email)
	require.NoError(t, err)

	_, err = client.VerifyOTP(ctx, form.Email, "000000x")
	require.Error(t, err)

	_, err = client.VerifyOTP(ctx, form.Email, api.OTP(form.Email))
	require.NoError(t, err)

	_, err = client.SaveUser(ctx, form)
	require.NoError(t, err)

	user, err := client.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
	require.False(t, user.Subscription)
}

func TestSessionCookiesAreScopedJWTs(t *testing.T) {
	ctx := context.Background()
	api := fakeapi.New(nil)
	t.Cleanup(api.Close)
	api.AddUser(fakeapi.Seed{Email: "bob@example.com", Password: "pw", Statements: 2})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := finsdk.NewClient(api.URL(), jar)

	_, err = client.GetCurrentUser(ctx)
	require.True(t, finsdk.IsUnauthorized(err))

	_, err = client.Login(ctx, finsdk.LoginRequest{Email: "bob@example.com", Password: "nope"})
	require.True(t, finsdk.IsUnauthorized(err))

	_, err = client.Login(ctx, finsdk.LoginRequest{Email: "bob@example.com", Password: "pw"})
	require.NoError(t, err)

	statements, err := client.GetStatements(ctx)
	require.NoError(t, err)
	require.Len(t, statements, 2)
	require.WithinDuration(t, time.Now(), statements[0].CreatedAt, time.Minute)

	require.NoError(t, client.Logout(ctx))
	_, err = client.GetCurrentUser(ctx)
	require.True(t, finsdk.IsUnauthorized(err))
}

func TestInjectedFailuresAndCounters(t *testing.T) {
	ctx := context.Background()
	api := fakeapi.New(nil)
	t.Cleanup(api.Close)
	client := newClient(t, api)

	api.Fail("/email/send-otp", http.StatusBadGateway, "mailer down")
	_, err := client.SendOTP(ctx, "x@example.com")
	require.Equal(t, "mailer down", finsdk.MessageOf(err))
	require.Equal(t, 1, api.Calls("/email/send-otp"))

	api.Recover("/email/send-otp")
	_, err = client.SendOTP(ctx, "x@example.com")
	require.NoError(t, err)
	require.Len(t, api.OTP("x@example.com"), 6)
}

func TestWeb3LinkThenLogin(t *testing.T) {
	ctx := context.Background()
	api := fakeapi.New(nil)
	t.Cleanup(api.Close)
	id := api.AddUser(fakeapi.Seed{Email: "w@example.com", Password: "pw"})
	client := newClient(t, api)

	const wallet = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	lower := strings.ToLower(wallet)

	verify := func() *finsdk.Web3Verification {
		challenge, err := client.InitiateWeb3Login(ctx, wallet)
		require.NoError(t, err)
		require.Contains(t, challenge.Message, "Nonce: "+challenge.Nonce)

		msg := "Authentication request for " + lower + " - Nonce: " + challenge.Nonce
		v, err := client.VerifyWeb3Login(ctx, finsdk.Web3VerifyRequest{
			WalletAddress: lower,
			Signature:     fakeapi.Signature(wallet, msg),
			Message:       msg,
		})
		require.NoError(t, err)
		return v
	}

	require.False(t, verify().UserExists)

	challenge, err := client.InitiateWeb3Login(ctx, wallet)
	require.NoError(t, err)
	msg := "Authentication request for " + lower + " - Nonce: " + challenge.Nonce
	sig := fakeapi.Signature(wallet, msg)
	_, err = client.VerifyWeb3Login(ctx, finsdk.Web3VerifyRequest{WalletAddress: lower, Signature: sig, Message: msg})
	require.NoError(t, err)

	_, err = client.LinkWallet(ctx, finsdk.Web3LinkRequest{
		WalletAddress: wallet,
		Email:         "w@example.com",
		Password:      "pw",
		Signature:     sig,
	})
	require.NoError(t, err)
	require.Equal(t, lower, api.Wallet(id))

	require.True(t, verify().UserExists)
}

func TestLoginChecksHashedPassword(t *testing.T) {
	ctx := context.Background()
	api := fakeapi.New(nil)
	t.Cleanup(api.Close)
	api.AddUser(fakeapi.Seed{Email: "Ada@Example.com", Password: "hunter2"})
	client := newClient(t, api)

	_, err := client.Login(ctx, finsdk.LoginRequest{Email: "ada@example.com", Password: "hunter3"})
	require.Error(t, err)

	_, err = client.Login(ctx, finsdk.LoginRequest{Email: "ada@example.com", Password: "hunter2"})
	require.NoError(t, err)
}

func TestForecastServedOutsideAPIPrefix(t *testing.T) {
	ctx := context.Background()
	api := fakeapi.New(nil)
	t.Cleanup(api.Close)
	api.AddUser(fakeapi.Seed{Email: "eve@example.com", Password: "pw"})
	client := newClient(t, api).WithForecastURL(api.ForecastURL())

	_, err := client.GetForecast(ctx)
	require.True(t, finsdk.IsUnauthorized(err))

	_, err = client.Login(ctx, finsdk.LoginRequest{Email: "eve@example.com", Password: "pw"})
	require.NoError(t, err)

	rows, err := client.GetForecast(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, row := range rows {
		require.Len(t, row.NextWeek, 7, row.Category)
	}
	require.Equal(t, 2, api.Calls(fakeapi.ForecastPath))
}
