package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/fakeapi"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/stretchr/testify/require"
)

func TestValidateWalletAddress(t *testing.T) {
	valid := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for _, addr := range valid {
		got, err := service.ValidateWalletAddress(addr)
		require.NoError(t, err, addr)
		require.Equal(t, addr, got)

		// Single-case forms carry no checksum and are accepted.
		got, err = service.ValidateWalletAddress(strings.ToLower(addr))
		require.NoError(t, err)
		require.Equal(t, addr, got)
	}

	invalid := []string{
		"",
		"5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAe",
		"0xZZAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", // checksum broken
	}
	for _, addr := range invalid {
		_, err := service.ValidateWalletAddress(addr)
		require.ErrorIs(t, err, domain.ErrInvalidWalletAddress, addr)
	}
}

func TestSigningMessage(t *testing.T) {
	require.Equal(t,
		"Authentication request for 0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed - Nonce: abc123",
		service.SigningMessage("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", "abc123"),
	)
}

const wallet = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"

func TestWalletLoginKnownUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.api.AddUser(fakeapi.Seed{Email: "w@example.com", Password: "pw", Wallet: wallet, Statements: 1})

	reloads := 0
	h.Holder.OnReload(func() { reloads++ })

	login := h.Auth.WalletLogin()
	_, err := login.Connect(ctx, wallet)
	require.NoError(t, err)

	session, needsLink, err := login.Sign(ctx, fakeapi.Signer{})
	require.NoError(t, err)
	require.False(t, needsLink)
	require.Equal(t, id, session.User.ID)
	require.Equal(t, 1, reloads)
	require.Equal(t, domain.AuthViewNone, h.Views.Current())
}

func TestWalletLoginLinksUnknownWallet(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.api.AddUser(fakeapi.Seed{Email: "w@example.com", Password: "pw"})

	login := h.Auth.WalletLogin()

	_, err := login.Link(ctx, "w@example.com", "pw")
	require.ErrorIs(t, err, domain.ErrWalletStep)

	_, err = login.Connect(ctx, wallet)
	require.NoError(t, err)

	session, needsLink, err := login.Sign(ctx, fakeapi.Signer{})
	require.NoError(t, err)
	require.True(t, needsLink)
	require.Nil(t, session)
	require.Equal(t, domain.AuthViewLogin, h.Views.Current())

	_, err = login.Link(ctx, "w@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrAuthRejected)

	session, err = login.Link(ctx, "w@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, id, session.User.ID)
	require.Equal(t, strings.ToLower(wallet), h.api.Wallet(id))
}

type refusingSigner struct{}

func (refusingSigner) SignMessage(context.Context, string, string) (string, error) {
	return "", errors.New("user rejected the request")
}

func TestWalletLoginSignerRefuses(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	login := h.Auth.WalletLogin()
	_, _, err := login.Sign(ctx, fakeapi.Signer{})
	require.ErrorIs(t, err, domain.ErrWalletStep)

	_, err = login.Connect(ctx, wallet)
	require.NoError(t, err)

	_, _, err = login.Sign(ctx, refusingSigner{})
	require.ErrorIs(t, err, domain.ErrAuthRejected)
	require.Contains(t, err.Error(), "user rejected")
	require.Zero(t, h.api.Calls("/web3/verify"))
}
