package httpx

import "context"

type ctxKey string

const CtxKeyUserID ctxKey = "user_id"

// UserIDFromContext returns the user id stored by CookieAuthMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}
