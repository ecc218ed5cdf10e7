package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
	"golang.org/x/crypto/sha3"
)

// WalletSigner is the external wallet provider. It signs message with the
// key behind address and returns the hex signature.
type WalletSigner interface {
	SignMessage(ctx context.Context, address, message string) (string, error)
}

var (
	hexAddressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	noncePattern      = regexp.MustCompile(`Nonce: (\w+)`)
)

// ValidateWalletAddress checks that addr is a 20-byte hex address. Mixed-case
// addresses must carry a valid EIP-55 checksum. The checksummed form is
// returned.
func ValidateWalletAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !hexAddressPattern.MatchString(addr) {
		return "", domain.ErrInvalidWalletAddress
	}

	body := addr[2:]
	checksummed := checksumAddress(body)
	mixed := strings.ToLower(body) != body && strings.ToUpper(body) != body
	if mixed && checksummed != "0x"+body {
		return "", fmt.Errorf("%w: bad checksum", domain.ErrInvalidWalletAddress)
	}
	return checksummed, nil
}

func checksumAddress(body string) string {
	lower := strings.ToLower(body)

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := hex.EncodeToString(h.Sum(nil))

	out := []byte(lower)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}

// SigningMessage is the exact text the wallet signs for nonce.
func SigningMessage(address, nonce string) string {
	return fmt.Sprintf("Authentication request for %s - Nonce: %s", strings.ToLower(address), nonce)
}

// WalletLogin is the three-step wallet sign-in: connect, sign, and link
// when the wallet is not yet attached to an account.
type WalletLogin struct {
	flow *AuthFlow

	mu        sync.Mutex
	address   string
	challenge *finsdk.Web3Challenge
	signature string
	needsLink bool
}

// WalletLogin opens the login view and starts a wallet sign-in.
func (f *AuthFlow) WalletLogin() *WalletLogin {
	f.Views.Open(domain.AuthViewLogin)
	return &WalletLogin{flow: f}
}

// Connect validates the wallet address and fetches a challenge for it.
func (w *WalletLogin) Connect(ctx context.Context, address string) (*finsdk.Web3Challenge, error) {
	checksummed, err := ValidateWalletAddress(address)
	if err != nil {
		return nil, err
	}

	challenge, err := w.flow.API.InitiateWeb3Login(ctx, checksummed)
	if err != nil {
		return nil, failure(domain.ErrAuthRejected, err, "Failed to connect wallet")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.address = checksummed
	w.challenge = challenge
	w.signature = ""
	w.needsLink = false
	return challenge, nil
}

// Sign has signer sign the challenge and submits it. When the wallet belongs
// to a known user the view closes and the session is resolved. Otherwise
// needsLink is true and Link must follow.
func (w *WalletLogin) Sign(ctx context.Context, signer WalletSigner) (session *domain.Session, needsLink bool, err error) {
	l := slogx.FromContext(ctx)

	w.mu.Lock()
	address, challenge := w.address, w.challenge
	w.mu.Unlock()

	if challenge == nil {
		return nil, false, domain.ErrWalletStep
	}
	if !noncePattern.MatchString(challenge.Message) {
		return nil, false, &domain.FlowError{Kind: domain.ErrAuthRejected, Message: "Invalid authentication message"}
	}

	message := SigningMessage(address, challenge.Nonce)
	signature, err := signer.SignMessage(ctx, address, message)
	if err != nil {
		return nil, false, &domain.FlowError{Kind: domain.ErrAuthRejected, Message: err.Error()}
	}

	verification, err := w.flow.API.VerifyWeb3Login(ctx, finsdk.Web3VerifyRequest{
		WalletAddress: strings.ToLower(address),
		Signature:     signature,
		Message:       message,
	})
	if err != nil {
		return nil, false, failure(domain.ErrAuthRejected, err, "Wallet verification failed")
	}

	w.mu.Lock()
	w.signature = signature
	w.needsLink = !verification.UserExists
	w.mu.Unlock()

	if !verification.UserExists {
		l.Info("wallet not linked to an account", slog.String("wallet", address))
		return nil, true, nil
	}

	session, err = w.flow.closeAndReload(ctx)
	return session, false, err
}

// Link attaches the verified wallet to the account for email and password.
func (w *WalletLogin) Link(ctx context.Context, email, password string) (*domain.Session, error) {
	w.mu.Lock()
	address, signature, needsLink := w.address, w.signature, w.needsLink
	w.mu.Unlock()

	if !needsLink {
		return nil, domain.ErrWalletStep
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, &domain.FlowError{Kind: domain.ErrInvalidInput, Message: "Password is required"}
	}

	_, err := w.flow.API.LinkWallet(ctx, finsdk.Web3LinkRequest{
		WalletAddress: address,
		Email:         email,
		Password:      password,
		Signature:     signature,
	})
	if err != nil {
		return nil, failure(domain.ErrAuthRejected, err, "Failed to link wallet")
	}

	w.mu.Lock()
	w.needsLink = false
	w.mu.Unlock()

	return w.flow.closeAndReload(ctx)
}

func (f *AuthFlow) closeAndReload(ctx context.Context) (*domain.Session, error) {
	session, err := f.Views.Close(ctx)
	f.Holder.reload()
	return session, err
}
