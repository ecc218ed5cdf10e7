package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential is the normal logged-out state, not a failure.
	ErrNoCredential = errors.New("no credential")

	ErrSessionFetchFailed      = errors.New("session fetch failed")
	ErrAuthRejected            = errors.New("authentication rejected")
	ErrVerificationFailed      = errors.New("verification failed")
	ErrEntitlementActionFailed = errors.New("entitlement action failed")

	ErrNoSession            = errors.New("not signed in")
	ErrNotVerified          = errors.New("email not verified")
	ErrPasswordMismatch     = errors.New("passwords don't match")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotPDF               = errors.New("only PDF statements are accepted")
	ErrUploadFailed         = errors.New("statement upload failed")
	ErrInvalidWalletAddress = errors.New("invalid wallet address")
	ErrWalletStep           = errors.New("wallet login step out of order")
	ErrUnknownRoute         = errors.New("unknown route")
	ErrOTPThrottled         = errors.New("one-time code requested too often")
	ErrForecastUnavailable  = errors.New("forecast unavailable")
)

// FlowError carries the message a user should see alongside the category of
// failure. errors.Is matches on Kind.
type FlowError struct {
	Kind    error
	Message string
}

func (e *FlowError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *FlowError) Unwrap() error { return e.Kind }

// NewFlowError returns a FlowError, using fallback when message is empty.
func NewFlowError(kind error, message, fallback string) *FlowError {
	if message == "" {
		message = fallback
	}
	return &FlowError{Kind: kind, Message: message}
}
