package httpx

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/fintrack/pkg/slogx"
)

// TokenVerifier checks a raw token and returns the subject it was issued to.
type TokenVerifier func(raw string) (subject string, err error)

// CookieAuthMiddleware authenticates requests by the token carried in the
// named cookie and stores the subject under CtxKeyUserID.
func CookieAuthMiddleware(cookieName string, verify TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				WriteStatus(w, http.StatusUnauthorized, false, "Unauthorized")
				return
			}

			subject, err := verify(c.Value)
			if err != nil {
				log.Warn("token verify failed", "err", err)
				WriteStatus(w, http.StatusUnauthorized, false, "Unauthorized")
				return
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
