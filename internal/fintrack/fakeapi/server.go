// Package fakeapi is an in-process stand-in for the finance backend. It
// speaks the same REST contract as the real service, keeps its state in
// memory, and lets tests inject failures, hold requests and count calls.
package fakeapi

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/fintrack/pkg/cryptox"
	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/aussiebroadwan/fintrack/pkg/httpx"
	"github.com/aussiebroadwan/fintrack/pkg/idx"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
)

// BasePath is the prefix every endpoint is mounted under.
const BasePath = "/api/v1"

// ForecastPath is where the spend forecast is served, outside BasePath.
const ForecastPath = "/api/predict-spends/"

type account struct {
	ID           string
	Name         string
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Image        string
	Wallet       string
	Subscription bool
}

type statement struct {
	ID        string
	CreatedAt time.Time
	URL       string
}

type hold struct {
	ch   chan struct{}
	once sync.Once
}

func (h *hold) release() { h.once.Do(func() { close(h.ch) }) }

type failure struct {
	status  int
	message string
}

// Server is a running fake backend.
type Server struct {
	srv *httptest.Server
	log *slog.Logger

	mu         sync.Mutex
	accounts   map[string]*account // by id
	statements map[string][]statement
	otpSecrets map[string]string // email -> TOTP secret
	verified   map[string]bool   // verified emails
	nonces     map[string]string // lower-case wallet -> nonce
	walletSigs map[string]string // lower-case wallet -> verified signature
	failures   map[string]failure
	holds      map[string]*hold
	taken      []*hold
	calls      map[string]int
	forecast   []finsdk.CategoryForecast

	signingKey []byte
	now        func() time.Time
}

// New starts a fake backend. Close it when done.
func New(log *slog.Logger) *Server {
	if log == nil {
		log = slogx.Discard()
	}

	s := &Server{
		log:        log,
		accounts:   map[string]*account{},
		statements: map[string][]statement{},
		otpSecrets: map[string]string{},
		verified:   map[string]bool{},
		nonces:     map[string]string{},
		walletSigs: map[string]string{},
		failures:   map[string]failure{},
		holds:      map[string]*hold{},
		calls:      map[string]int{},
		forecast:   defaultForecast(),
		signingKey: []byte(cryptox.MustGenerateToken(cryptox.TokenSize256)),
		now:        time.Now,
	}

	s.srv = httptest.NewServer(httpx.Chain(s.routes(),
		slogx.HTTPMiddleware(log),
		s.control,
	))
	return s
}

// URL is the API base URL clients should be pointed at.
func (s *Server) URL() string { return s.srv.URL + BasePath }

// ForecastURL is the absolute URL of the forecast endpoint.
func (s *Server) ForecastURL() string { return s.srv.URL + ForecastPath }

// Close shuts the server down, releasing any held requests.
func (s *Server) Close() {
	s.mu.Lock()
	for path, h := range s.holds {
		h.release()
		delete(s.holds, path)
	}
	for _, h := range s.taken {
		h.release()
	}
	s.taken = nil
	s.mu.Unlock()
	s.srv.Close()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	auth := httpx.CookieAuthMiddleware(accessCookie, s.verifyAccess)
	otpLimit := httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email")
	signInLimit := httpx.RateLimitByIP(httpx.LenientLimit)

	mux.Handle("GET "+BasePath+"/user", auth(http.HandlerFunc(s.handleGetUser)))
	mux.Handle("POST "+BasePath+"/user/login", signInLimit(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("POST "+BasePath+"/user/save", s.handleSaveUser)
	mux.HandleFunc("GET "+BasePath+"/user/logout", s.handleLogout)

	mux.Handle("GET "+BasePath+"/statements/getAll", auth(http.HandlerFunc(s.handleGetStatements)))
	mux.Handle("POST "+BasePath+"/statements/save", auth(http.HandlerFunc(s.handleSaveStatement)))

	mux.Handle("POST "+BasePath+"/email/send-otp", otpLimit(http.HandlerFunc(s.handleSendOTP)))
	mux.HandleFunc("POST "+BasePath+"/email/verify-otp", s.handleVerifyOTP)

	mux.Handle("POST "+BasePath+"/subscription/add", auth(http.HandlerFunc(s.handleAddSubscription)))
	mux.Handle("POST "+BasePath+"/subscription/cancel", auth(http.HandlerFunc(s.handleCancelSubscription)))

	mux.Handle("GET "+ForecastPath, auth(http.HandlerFunc(s.handleForecast)))

	mux.Handle("POST "+BasePath+"/web3/initiate", signInLimit(http.HandlerFunc(s.handleWeb3Initiate)))
	mux.Handle("POST "+BasePath+"/web3/verify", signInLimit(http.HandlerFunc(s.handleWeb3Verify)))
	mux.Handle("POST "+BasePath+"/web3/link", signInLimit(http.HandlerFunc(s.handleWeb3Link)))

	return mux
}

// control counts calls and applies injected failures and holds.
func (s *Server) control(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, BasePath)

		s.mu.Lock()
		s.calls[path]++
		fail, failing := s.failures[path]
		held := s.holds[path]
		if held != nil {
			delete(s.holds, path)
			s.taken = append(s.taken, held)
		}
		s.mu.Unlock()

		if held != nil {
			select {
			case <-held.ch:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			httpx.WriteStatus(w, fail.status, false, fail.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every request to path (e.g. "/user") answer status with a
// {status:false} envelope until Recover is called.
func (s *Server) Fail(path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, message: message}
}

// Recover removes an injected failure.
func (s *Server) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// Hold blocks the next request to path until the returned release func is
// called.
func (s *Server) Hold(path string) (release func()) {
	h := &hold{ch: make(chan struct{})}

	s.mu.Lock()
	s.holds[path] = h
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		if s.holds[path] == h {
			delete(s.holds, path)
		}
		s.mu.Unlock()
		h.release()
	}
}

// Calls returns how many requests reached path.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

// Seed describes an account created directly, bypassing registration.
type Seed struct {
	Name         string
	Username     string
	Email        string
	Password     string
	Wallet       string
	Subscription bool
	Statements   int
}

// AddUser creates an account and returns its id.
func (s *Server) AddUser(seed Seed) string {
	hash := mustHashPassword(seed.Password)

	s.mu.Lock()
	defer s.mu.Unlock()

	a := &account{
		ID:           idx.New().String(),
		Name:         seed.Name,
		Username:     seed.Username,
		Email:        strings.ToLower(seed.Email),
		PasswordHash: hash,
		Wallet:       strings.ToLower(seed.Wallet),
		Subscription: seed.Subscription,
	}
	s.accounts[a.ID] = a

	for range seed.Statements {
		s.addStatementLocked(a.ID)
	}
	return a.ID
}

// Subscribed reports the backend's view of the user's subscription.
func (s *Server) Subscribed(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		return a.Subscription
	}
	return false
}

// SetSubscription changes the user's subscription behind the client's back.
func (s *Server) SetSubscription(userID string, subscribed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		a.Subscription = subscribed
	}
}

// Wallet returns the wallet linked to the user, lower-cased.
func (s *Server) Wallet(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		return a.Wallet
	}
	return ""
}

// Name returns the user's display name.
func (s *Server) Name(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		return a.Name
	}
	return ""
}

// UserByEmail returns the id of the account registered with email.
func (s *Server) UserByEmail(email string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accountByEmailLocked(email)
	if a == nil {
		return "", false
	}
	return a.ID, true
}

func (s *Server) accountByEmailLocked(email string) *account {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range s.accounts {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (s *Server) accountByWalletLocked(wallet string) *account {
	wallet = strings.ToLower(wallet)
	for _, a := range s.accounts {
		if a.Wallet != "" && a.Wallet == wallet {
			return a
		}
	}
	return nil
}

func (s *Server) addStatementLocked(userID string) statement {
	id := idx.New()
	st := statement{
		ID:        id.String(),
		CreatedAt: id.Time(),
		URL:       "https://files.fintrack.local/statements/" + id.String() + ".pdf",
	}
	s.statements[userID] = append(s.statements[userID], st)
	return st
}

// passwordParams trade strength for speed; accounts here are throwaway.
var passwordParams = cryptox.Params{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}

func mustHashPassword(password string) string {
	hash, err := cryptox.HashPasswordWith(password, passwordParams)
	if err != nil {
		panic(err)
	}
	return hash
}

// checkPassword verifies password against the stored hash of the account
// with email. It must be called without s.mu held.
func (s *Server) checkPassword(email, password string) (string, bool) {
	s.mu.Lock()
	a := s.accountByEmailLocked(email)
	var id, hash string
	if a != nil {
		id, hash = a.ID, a.PasswordHash
	}
	s.mu.Unlock()

	if id == "" || cryptox.VerifyPassword(password, hash) != nil {
		return "", false
	}
	return id, true
}
