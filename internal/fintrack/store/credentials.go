package store

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
)

// CredentialStore answers "is there a credential" from the cookie jar and
// owns the cached session data.
type CredentialStore struct {
	jar   http.CookieJar
	base  *url.URL
	cache *SessionCache
	log   *slog.Logger
}

// NewCredentialStore reads cookies scoped to apiURL from jar.
func NewCredentialStore(jar http.CookieJar, apiURL string, cache *SessionCache, log *slog.Logger) (*CredentialStore, error) {
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &CredentialStore{jar: jar, base: base, cache: cache, log: log}, nil
}

// Read returns the credential when both token cookies are present. Missing
// cookies are the normal logged-out state, not an error.
func (s *CredentialStore) Read(_ context.Context) (domain.Credential, bool) {
	var cred domain.Credential
	for _, c := range s.jar.Cookies(s.base) {
		switch c.Name {
		case domain.AccessTokenCookie:
			cred.AccessToken = c.Value
		case domain.RefreshTokenCookie:
			cred.RefreshToken = c.Value
		}
	}

	if !cred.Complete() {
		return domain.Credential{}, false
	}
	return cred, true
}

// Clear drops the cached user and statements. Cookies are left to the
// backend's logout response.
func (s *CredentialStore) Clear(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Error("failed to clear session cache", "error", err)
		return err
	}
	return nil
}

// Cache exposes the session cache backing this store.
func (s *CredentialStore) Cache() *SessionCache { return s.cache }
