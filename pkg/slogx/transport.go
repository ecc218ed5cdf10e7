package slogx

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/fintrack/pkg/idx"
)

// RequestIDHeader correlates a client request with the backend's logs.
const RequestIDHeader = "X-Request-ID"

// Transport is an http.RoundTripper that stamps every outgoing request with a
// request id and logs its outcome using the logger found in the request
// context.
type Transport struct {
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	reqID, minted := requestID(req.Header)
	if minted {
		// RoundTrippers must not mutate the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, reqID)
	}

	log := FromContext(req.Context()).With(
		"req_id", reqID,
		"method", req.Method,
		"path", req.URL.Path,
	)

	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		log.Warn("api_request_failed", "err", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	log.Debug("api_request",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// requestID returns the id carried by h, or a fresh one with minted set.
func requestID(h http.Header) (id string, minted bool) {
	if id = h.Get(RequestIDHeader); id != "" {
		return id, false
	}
	return idx.New().String(), true
}
