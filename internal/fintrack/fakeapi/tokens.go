package fakeapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

const (
	accessCookie  = domain.AccessTokenCookie
	refreshCookie = domain.RefreshTokenCookie

	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

const tokenUseRefresh = "refresh"

type tokenClaims struct {
	Use string `json:"use,omitempty"`
	jwt.RegisteredClaims
}

func (s *Server) issue(userID, use string, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Use: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        idx.NewAt(now).String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	return signed, exp, err
}

// verifyAccess accepts only unexpired access tokens signed by this server.
func (s *Server) verifyAccess(raw string) (string, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.Use == tokenUseRefresh {
		return "", errors.New("refresh token used as access token")
	}

	s.mu.Lock()
	_, ok := s.accounts[claims.Subject]
	s.mu.Unlock()
	if !ok {
		return "", errors.New("unknown subject")
	}
	return claims.Subject, nil
}

// setSessionCookies issues both tokens for userID as HTTP-only cookies.
func (s *Server) setSessionCookies(w http.ResponseWriter, userID string) error {
	access, accessExp, err := s.issue(userID, "", AccessTokenTTL)
	if err != nil {
		return err
	}
	refresh, refreshExp, err := s.issue(userID, tokenUseRefresh, RefreshTokenTTL)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    access,
		Path:     "/",
		Expires:  accessExp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    refresh,
		Path:     "/",
		Expires:  refreshExp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookie, refreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}
