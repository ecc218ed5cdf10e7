package finsdk

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/fintrack/pkg/slogx"
)

// DefaultBaseURL is where the backend listens during local development.
const DefaultBaseURL = "http://localhost:5001/api/v1"

// Client is a client for the finance backend. Authentication is cookie based:
// the backend sets access and refresh token cookies on login, and the client
// replays them through HTTPClient.Jar on every request.
type Client struct {
	BaseURL     string
	ForecastURL string // absolute; the forecast service is hosted apart from the API
	HTTPClient  *http.Client
}

// NewClient creates a client whose requests carry the cookies held by jar.
// A nil jar is allowed but then nothing authenticated will work.
func NewClient(baseURL string, jar http.CookieJar) *Client {
	return &Client{
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		ForecastURL: DefaultForecastURL,
		HTTPClient: &http.Client{
			Jar:       jar,
			Timeout:   10 * time.Second,
			Transport: &slogx.Transport{},
		},
	}
}

// WithTimeout sets the per-request timeout and returns the client.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.HTTPClient.Timeout = d
	}
	return c
}
