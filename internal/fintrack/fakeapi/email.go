package fakeapi

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/fintrack/pkg/httpx"
	"github.com/pquerna/otp/totp"
)

// Issuer names the TOTP key used for mailed one-time codes.
const Issuer = "FinTrack"

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(r, &req) || strings.TrimSpace(req.Email) == "" {
		httpx.WriteStatus(w, http.StatusBadRequest, false, "Email is required")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	key, err := totp.Generate(totp.GenerateOpts{Issuer: Issuer, AccountName: email})
	if err != nil {
		httpx.WriteStatus(w, http.StatusInternalServerError, false, "Failed to send OTP")
		return
	}

	s.mu.Lock()
	s.otpSecrets[email] = key.Secret()
	delete(s.verified, email)
	s.mu.Unlock()

	httpx.WriteStatus(w, http.StatusOK, true, "OTP sent to your email")
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if !decodeJSON(r, &req) {
		httpx.WriteStatus(w, http.StatusBadRequest, false, "Invalid request")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.mu.Lock()
	secret, ok := s.otpSecrets[email]
	s.mu.Unlock()

	if !ok || !totp.Validate(strings.TrimSpace(req.OTP), secret) {
		httpx.WriteStatus(w, http.StatusBadRequest, false, "Invalid OTP")
		return
	}

	s.mu.Lock()
	s.verified[email] = true
	delete(s.otpSecrets, email)
	s.mu.Unlock()

	httpx.WriteStatus(w, http.StatusOK, true, "Email verified")
}

// OTP returns the code that would have been mailed to email, or "" when no
// code was requested.
func (s *Server) OTP(email string) string {
	s.mu.Lock()
	secret, ok := s.otpSecrets[strings.ToLower(strings.TrimSpace(email))]
	s.mu.Unlock()
	if !ok {
		return ""
	}

	code, err := totp.GenerateCode(secret, s.now())
	if err != nil {
		return ""
	}
	return code
}
