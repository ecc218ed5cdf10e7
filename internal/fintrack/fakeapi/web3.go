package fakeapi

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/aussiebroadwan/fintrack/pkg/httpx"
	"github.com/aussiebroadwan/fintrack/pkg/idx"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
	"golang.org/x/crypto/sha3"
)

// Signer stands in for a wallet provider. Its signatures are only
// meaningful to this server.
type Signer struct{}

// SignMessage returns the fake signature of message by address.
func (Signer) SignMessage(_ context.Context, address, message string) (string, error) {
	return Signature(address, message), nil
}

// Signature is Keccak-256 over the lower-case address and the message.
func Signature(address, message string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(strings.ToLower(address)))
	h.Write([]byte{0})
	h.Write([]byte(message))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

func challengeMessage(wallet, nonce string) string {
	return fmt.Sprintf("Authentication request for %s - Nonce: %s", wallet, nonce)
}

type web3Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeWeb3(w http.ResponseWriter, code int, ok bool, message string, data any) {
	httpx.WriteJSON(w, code, web3Envelope{Success: ok, Message: message, Data: data})
}

func (s *Server) handleWeb3Initiate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WalletAddress string `json:"walletAddress"`
	}
	if !decodeJSON(r, &req) || req.WalletAddress == "" {
		writeWeb3(w, http.StatusBadRequest, false, "Wallet address is required", nil)
		return
	}
	wallet := strings.ToLower(req.WalletAddress)
	nonce := idx.New().String()

	s.mu.Lock()
	s.nonces[wallet] = nonce
	delete(s.walletSigs, wallet)
	s.mu.Unlock()

	writeWeb3(w, http.StatusOK, true, "", finsdk.Web3Challenge{
		Message: challengeMessage(wallet, nonce),
		Nonce:   nonce,
	})
}

func (s *Server) handleWeb3Verify(w http.ResponseWriter, r *http.Request) {
	var req finsdk.Web3VerifyRequest
	if !decodeJSON(r, &req) {
		writeWeb3(w, http.StatusBadRequest, false, "Invalid request", nil)
		return
	}
	wallet := strings.ToLower(req.WalletAddress)

	s.mu.Lock()
	nonce, ok := s.nonces[wallet]
	valid := ok &&
		req.Message == challengeMessage(wallet, nonce) &&
		req.Signature == Signature(wallet, req.Message)
	var userID string
	if valid {
		delete(s.nonces, wallet)
		s.walletSigs[wallet] = req.Signature
		if a := s.accountByWalletLocked(wallet); a != nil {
			userID = a.ID
		}
	}
	s.mu.Unlock()

	if !valid {
		writeWeb3(w, http.StatusUnauthorized, false, "Signature verification failed", nil)
		return
	}

	if userID != "" {
		if err := s.setSessionCookies(w, userID); err != nil {
			slogx.FromContext(r.Context()).Error("issue tokens", slog.Any("error", err))
			writeWeb3(w, http.StatusInternalServerError, false, "Login failed", nil)
			return
		}
	}
	writeWeb3(w, http.StatusOK, true, "", finsdk.Web3Verification{UserExists: userID != ""})
}

func (s *Server) handleWeb3Link(w http.ResponseWriter, r *http.Request) {
	var req finsdk.Web3LinkRequest
	if !decodeJSON(r, &req) {
		writeWeb3(w, http.StatusBadRequest, false, "Invalid request", nil)
		return
	}
	wallet := strings.ToLower(req.WalletAddress)
	accountID, passwordOK := s.checkPassword(req.Email, req.Password)

	s.mu.Lock()
	sig, verified := s.walletSigs[wallet]
	a := s.accounts[accountID]
	var (
		userID string
		msg    string
	)
	switch {
	case !verified || sig != req.Signature:
		msg = "Wallet not verified"
	case !passwordOK || a == nil:
		msg = "Invalid email or password"
	default:
		a.Wallet = wallet
		userID = a.ID
		delete(s.walletSigs, wallet)
	}
	s.mu.Unlock()

	if userID == "" {
		writeWeb3(w, http.StatusUnauthorized, false, msg, nil)
		return
	}
	if err := s.setSessionCookies(w, userID); err != nil {
		writeWeb3(w, http.StatusInternalServerError, false, "Failed to link wallet", nil)
		return
	}
	writeWeb3(w, http.StatusOK, true, "Wallet linked successfully", nil)
}
