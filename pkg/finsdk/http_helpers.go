package finsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// url builds a complete URL by appending the path to the base URL. Absolute
// URLs are used as given.
func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.BaseURL + path
}

// doRequest performs an HTTP request; cookies are attached by the client's jar.
func (c *Client) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	return resp, nil
}

// doJSON sends payload (may be nil) as a JSON body.
func (c *Client) doJSON(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	if payload == nil {
		return c.doRequest(ctx, method, path, nil, nil)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	return c.doRequest(ctx, method, path, bytes.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
}

// multipartFile is an optional file part of a multipart body.
type multipartFile struct {
	field string
	name  string
	r     io.Reader
}

// doMultipart sends fields and files as multipart/form-data. Empty fields are
// skipped, matching what a browser form with blank inputs would submit.
func (c *Client) doMultipart(
	ctx context.Context,
	path string,
	fields map[string]string,
	files ...multipartFile,
) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %q: %w", name, err)
		}
	}

	for _, f := range files {
		if f.r == nil {
			continue
		}
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create form file %q: %w", f.field, err)
		}
		if _, err := io.Copy(part, f.r); err != nil {
			return nil, fmt.Errorf("failed to copy form file %q: %w", f.field, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.doRequest(ctx, http.MethodPost, path, &buf, map[string]string{
		"Content-Type": mw.FormDataContentType(),
	})
}

// decodeEnvelope reads the response, maps failures to *APIError and, when
// target is non-nil, decodes the envelope's data field into it.
func decodeEnvelope(resp *http.Response, target any) (envelope, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return envelope{}, parseErrorResponse(resp, body)
	}

	var env envelope
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			if target == nil {
				// Acknowledgement endpoints sometimes answer with plain text.
				return envelope{}, nil
			}
			return envelope{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	if env.rejected() {
		return env, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	if target == nil {
		return env, nil
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return env, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}

	if err := json.Unmarshal(env.Data, target); err != nil {
		return env, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return env, nil
}

// ack performs a request whose only interesting output is the message.
func ack(resp *http.Response, err error) (*Ack, error) {
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(resp, nil)
	if err != nil {
		return nil, err
	}

	return &Ack{Message: env.Message}, nil
}
