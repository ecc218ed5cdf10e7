package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Cookie names set by the backend on login and registration.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Credential is the pair of tokens proving an earlier successful login. The
// client never validates them; the backend does.
type Credential struct {
	AccessToken  string
	RefreshToken string
}

// Complete reports whether both tokens are present.
func (c Credential) Complete() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// ExpiresAt reads the exp claim of the access token without verifying the
// signature. It returns false when the token is opaque or carries no exp.
// Only used for diagnostics.
func (c Credential) ExpiresAt() (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
