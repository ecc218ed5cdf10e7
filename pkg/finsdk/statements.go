package finsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GetStatements lists the statements uploaded by the current user. A missing
// or null data field is an empty list, not an error.
func (c *Client) GetStatements(ctx context.Context) ([]Statement, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/statements/getAll", nil, nil)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(resp, nil)
	if err != nil {
		return nil, err
	}

	statements := []Statement{}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return statements, nil
	}

	if err := json.Unmarshal(env.Data, &statements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return statements, nil
}

// UploadStatement sends a PDF statement as the "statements" form file.
func (c *Client) UploadStatement(ctx context.Context, filename string, r io.Reader) (*Ack, error) {
	return ack(c.doMultipart(ctx, "/statements/save", nil, multipartFile{
		field: "statements",
		name:  filename,
		r:     r,
	}))
}
