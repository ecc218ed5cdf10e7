package finsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is returned when a 2xx response does not carry the
// payload the endpoint promises.
var ErrMalformedResponse = errors.New("finsdk: malformed response")

// APIError is returned when the backend rejects a request, either with a
// non-2xx status or with a {"status": false} envelope.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Message is the backend's human-readable explanation, when it sent one.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("finsdk: HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("finsdk: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// MessageOf returns the backend message carried by err, if any.
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// parseErrorResponse turns a non-2xx response body into an APIError. The
// backend usually answers {"status": false, "message": "..."}; anything else
// falls back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var env struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		if msg != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
	}

	return &APIError{StatusCode: resp.StatusCode}
}
