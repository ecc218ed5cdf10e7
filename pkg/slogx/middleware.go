package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// HTTPMiddleware is the server side of Transport: it adopts the caller's
// request id (or mints one), echoes it on the response and exposes a logger
// scoped to the request through the request context.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID, _ := requestID(r.Header)
			w.Header().Set(RequestIDHeader, reqID)

			ctx := With(WithContext(r.Context(), base),
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
			)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			level := slog.LevelDebug
			if rec.status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			FromContext(ctx).Log(ctx, level, "served_request",
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}
