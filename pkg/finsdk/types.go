package finsdk

import (
	"encoding/json"
	"io"
	"time"
)

// envelope is the wrapper the backend puts around most responses. Older
// endpoints report "status", the web3 endpoints report "success".
type envelope struct {
	Status  *bool           `json:"status,omitempty"`
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e envelope) rejected() bool {
	return (e.Status != nil && !*e.Status) || (e.Success != nil && !*e.Success)
}

// Ack is returned by endpoints that only acknowledge an action.
type Ack struct {
	Message string
}

// ============================================================================
// Users
// ============================================================================

// User is the current user as returned by GET /user.
type User struct {
	ID            string `json:"_id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Image         string `json:"image,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
	Subscription  bool   `json:"subscription"`
}

// LoginRequest is the body of POST /user/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserForm is sent as multipart/form-data to POST /user/save, both for
// registration and for profile edits. Image is optional.
type UserForm struct {
	Username  string
	Name      string
	Phone     string
	Email     string
	Password  string
	Image     io.Reader
	ImageName string
}

// ============================================================================
// Statements
// ============================================================================

// Statement is an uploaded statement descriptor.
type Statement struct {
	ID        string    `json:"_id"`
	CreatedAt time.Time `json:"createdAt"`
	URL       string    `json:"url"`
}

// ============================================================================
// Forecast
// ============================================================================

// CategoryForecast is the predicted spend of one category for each of the
// next seven days.
type CategoryForecast struct {
	Category  string    `json:"category"`
	NextWeek  []float64 `json:"next_week_predictions"`
	WeekTotal float64   `json:"total_predicted_next_week"`
}

// ============================================================================
// E-mail verification
// ============================================================================

type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// ============================================================================
// Subscriptions
// ============================================================================

type addSubscriptionRequest struct {
	IsPaid bool `json:"is_paid"`
}

// ============================================================================
// Wallet login
// ============================================================================

// Web3Challenge is the message and nonce the wallet has to sign.
type Web3Challenge struct {
	Message string `json:"message"`
	Nonce   string `json:"nonce"`
}

// Web3VerifyRequest is the body of POST /web3/verify.
type Web3VerifyRequest struct {
	WalletAddress string `json:"walletAddress"`
	Signature     string `json:"signature"`
	Message       string `json:"message"`
}

// Web3Verification reports whether the wallet already belongs to a user.
type Web3Verification struct {
	UserExists bool `json:"userExists"`
}

// Web3LinkRequest is the body of POST /web3/link.
type Web3LinkRequest struct {
	WalletAddress string `json:"walletAddress"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Signature     string `json:"signature"`
}

type web3InitiateRequest struct {
	WalletAddress string `json:"walletAddress"`
}
