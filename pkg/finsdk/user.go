package finsdk

import (
	"context"
	"net/http"
)

// GetCurrentUser returns the user identified by the session cookies.
// A missing or expired session surfaces as a 401 *APIError.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/user", nil, nil)
	if err != nil {
		return nil, err
	}

	var user User
	if _, err := decodeEnvelope(resp, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// Login submits e-mail and password. On success the backend sets the access
// and refresh token cookies on the response, which land in the client's jar.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Ack, error) {
	return ack(c.doJSON(ctx, http.MethodPost, "/user/login", req))
}

// SaveUser registers a new user or updates the current user's profile.
func (c *Client) SaveUser(ctx context.Context, form UserForm) (*Ack, error) {
	fields := map[string]string{
		"username": form.Username,
		"name":     form.Name,
		"phone":    form.Phone,
		"email":    form.Email,
		"password": form.Password,
	}

	name := form.ImageName
	if name == "" {
		name = "avatar"
	}

	return ack(c.doMultipart(ctx, "/user/save", fields, multipartFile{
		field: "image",
		name:  name,
		r:     form.Image,
	}))
}

// Logout asks the backend to end the session; it clears the cookies with
// expired Set-Cookie headers.
func (c *Client) Logout(ctx context.Context) error {
	_, err := ack(c.doRequest(ctx, http.MethodGet, "/user/logout", nil, nil))
	return err
}
