package slogx_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/fintrack/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestTransportStampsRequestID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(slogx.RequestIDHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := slogx.WithContext(context.Background(), logger)

	client := &http.Client{Transport: &slogx.Transport{}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/user", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.NotEmpty(t, seen)
	require.Empty(t, req.Header.Get(slogx.RequestIDHeader), "caller request must not be mutated")
	require.Contains(t, buf.String(), `"path":"/user"`)
	require.Contains(t, buf.String(), seen)
}

func TestTransportKeepsExistingRequestID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(slogx.RequestIDHeader)
	}))
	defer srv.Close()

	client := &http.Client{Transport: &slogx.Transport{}}
	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(slogx.RequestIDHeader, "fixed-id")

	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	require.Equal(t, "fixed-id", seen)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, slogx.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, slogx.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, slogx.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, slogx.ParseLevel("nonsense"))
}
