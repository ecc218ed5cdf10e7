package fakeapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/aussiebroadwan/fintrack/pkg/httpx"
	"github.com/aussiebroadwan/fintrack/pkg/idx"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
)

func decodeJSON(r *http.Request, dst any) bool {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst) == nil
}

func userID(r *http.Request) string {
	id, _ := httpx.UserIDFromContext(r.Context())
	return id
}

func (a *account) view() finsdk.User {
	return finsdk.User{
		ID:            a.ID,
		Name:          a.Name,
		Username:      a.Username,
		Email:         a.Email,
		Phone:         a.Phone,
		Image:         a.Image,
		WalletAddress: a.Wallet,
		Subscription:  a.Subscription,
	}
}

// ============================================================================
// Users
// ============================================================================

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	a, ok := s.accounts[userID(r)]
	var view finsdk.User
	if ok {
		view = a.view()
	}
	s.mu.Unlock()

	if !ok {
		httpx.WriteStatus(w, http.StatusNotFound, false, "User not found")
		return
	}
	httpx.NoCache(w)
	httpx.WriteData(w, http.StatusOK, view)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req finsdk.LoginRequest
	if !decodeJSON(r, &req) || req.Email == "" || req.Password == "" {
		httpx.WriteStatus(w, http.StatusBadRequest, false, "Email and password are required")
		return
	}

	id, ok := s.checkPassword(req.Email, req.Password)
	if !ok {
		httpx.WriteStatus(w, http.StatusUnauthorized, false, "Invalid email or password")
		return
	}

	if err := s.setSessionCookies(w, id); err != nil {
		slogx.FromContext(r.Context()).Error("issue tokens", slog.Any("error", err))
		httpx.WriteStatus(w, http.StatusInternalServerError, false, "Login failed")
		return
	}
	httpx.WriteStatus(w, http.StatusOK, true, "Login successful")
}

// handleSaveUser updates the signed-in user, or registers a new one when
// the request carries no valid session.
func (s *Server) handleSaveUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		httpx.WriteStatus(w, http.StatusBadRequest, false, "Expected multipart form")
		return
	}

	image := ""
	if _, header, err := r.FormFile("image"); err == nil {
		image = "https://files.fintrack.local/avatars/" + header.Filename
	}

	if c, err := r.Cookie(accessCookie); err == nil {
		if id, err := s.verifyAccess(c.Value); err == nil {
			s.updateProfile(w, id, r, image)
			return
		}
	}
	s.register(w, r, image)
}

func (s *Server) updateProfile(w http.ResponseWriter, id string, r *http.Request, image string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.accounts[id]
	set := func(dst *string, field string) {
		if v := strings.TrimSpace(r.FormValue(field)); v != "" {
			*dst = v
		}
	}
	set(&a.Name, "name")
	set(&a.Username, "username")
	set(&a.Phone, "phone")
	if image != "" {
		a.Image = image
	}

	httpx.WriteStatus(w, http.StatusOK, true, "Profile updated")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, image string) {
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	username := strings.TrimSpace(r.FormValue("username"))

	if email == "" || password == "" {
		httpx.WriteStatus(w, http.StatusBadRequest, false, "Email and password are required")
		return
	}
	hash := mustHashPassword(password)

	s.mu.Lock()
	switch {
	case !s.verified[email]:
		s.mu.Unlock()
		httpx.WriteStatus(w, http.StatusBadRequest, false, "Email not verified")
		return
	case s.accountByEmailLocked(email) != nil:
		s.mu.Unlock()
		httpx.WriteStatus(w, http.StatusConflict, false, "User already exists")
		return
	}

	id := idx.New().String()
	s.accounts[id] = &account{
		ID:           id,
		Name:         strings.TrimSpace(r.FormValue("name")),
		Username:     username,
		Email:        email,
		Phone:        strings.TrimSpace(r.FormValue("phone")),
		PasswordHash: hash,
		Image:        image,
	}
	s.mu.Unlock()

	if err := s.setSessionCookies(w, id); err != nil {
		httpx.WriteStatus(w, http.StatusInternalServerError, false, "Registration failed")
		return
	}
	httpx.WriteStatus(w, http.StatusOK, true, "Registration successful!")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookies(w)
	httpx.WriteStatus(w, http.StatusOK, true, "Logged out successfully")
}

// ============================================================================
// Statements
// ============================================================================

func (s *Server) handleGetStatements(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rows := s.statements[userID(r)]
	out := make([]finsdk.Statement, len(rows))
	for i, row := range rows {
		out[i] = finsdk.Statement{ID: row.ID, CreatedAt: row.CreatedAt, URL: row.URL}
	}
	s.mu.Unlock()

	httpx.NoCache(w)
	httpx.WriteData(w, http.StatusOK, out)
}

func (s *Server) handleSaveStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpx.WriteStatus(w, http.StatusBadRequest, false, "Expected multipart form")
		return
	}

	file, _, err := r.FormFile("statements")
	if err != nil {
		httpx.WriteStatus(w, http.StatusBadRequest, false, "No file uploaded")
		return
	}
	defer file.Close()

	head := make([]byte, 5)
	if _, err := io.ReadFull(file, head); err != nil || !bytes.Equal(head, []byte("%PDF-")) {
		httpx.WriteStatus(w, http.StatusBadRequest, false, "Only PDF files are allowed")
		return
	}

	s.mu.Lock()
	s.addStatementLocked(userID(r))
	s.mu.Unlock()

	httpx.WriteStatus(w, http.StatusOK, true, "Statement uploaded successfully")
}

// ============================================================================
// Subscriptions
// ============================================================================

func (s *Server) handleAddSubscription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsPaid bool `json:"is_paid"`
	}
	if !decodeJSON(r, &req) {
		httpx.WriteStatus(w, http.StatusBadRequest, false, "Invalid request")
		return
	}

	s.mu.Lock()
	s.accounts[userID(r)].Subscription = req.IsPaid
	s.mu.Unlock()

	httpx.WriteStatus(w, http.StatusOK, true, "Subscription added")
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.accounts[userID(r)].Subscription = false
	s.mu.Unlock()

	httpx.WriteStatus(w, http.StatusOK, true, "Subscription cancelled")
}
