package finsdk

import (
	"context"
	"net/http"
)

// SendOTP e-mails a one-time verification code to address.
func (c *Client) SendOTP(ctx context.Context, address string) (*Ack, error) {
	return ack(c.doJSON(ctx, http.MethodPost, "/email/send-otp", sendOTPRequest{Email: address}))
}

// VerifyOTP checks the code the user received. A wrong or expired code comes
// back as an *APIError.
func (c *Client) VerifyOTP(ctx context.Context, address, code string) (*Ack, error) {
	return ack(c.doJSON(ctx, http.MethodPost, "/email/verify-otp", verifyOTPRequest{
		Email: address,
		OTP:   code,
	}))
}
