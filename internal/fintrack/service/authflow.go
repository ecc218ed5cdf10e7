package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
	"golang.org/x/time/rate"
)

// DefaultOTPResendInterval spaces out one-time code requests.
const DefaultOTPResendInterval = 30 * time.Second

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// AuthFlow drives login, registration, wallet login, logout and profile
// edits. It changes credentials and re-resolves; it never decides access.
type AuthFlow struct {
	API         API
	Credentials Credentials
	Resolver    *Resolver
	Holder      *SessionHolder
	Views       *AuthViews

	// OTPResendInterval defaults to DefaultOTPResendInterval.
	OTPResendInterval time.Duration
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return &domain.FlowError{Kind: domain.ErrInvalidInput, Message: "Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return &domain.FlowError{Kind: domain.ErrInvalidInput, Message: "Email is invalid"}
	}
	return nil
}

// Login signs in with e-mail and password. The backend sets the credential
// cookies; closing the login view then resolves the new session.
func (f *AuthFlow) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	l := slogx.FromContext(ctx)

	// 1. Validate locally
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, &domain.FlowError{Kind: domain.ErrInvalidInput, Message: "Password is required"}
	}

	f.Views.Open(domain.AuthViewLogin)

	// 2. Submit
	if _, err := f.API.Login(ctx, finsdk.LoginRequest{Email: email, Password: password}); err != nil {
		l.Info("login rejected", slog.Any("error", err))
		return nil, failure(domain.ErrAuthRejected, err, "Login failed")
	}

	// 3. Close the view, which resolves the session
	l.Info("login accepted")
	return f.Views.Close(ctx)
}

// Logout ends the session. Local state is always cleared and listeners are
// told to reload, even when the backend call fails; that failure is still
// returned.
func (f *AuthFlow) Logout(ctx context.Context) error {
	l := slogx.FromContext(ctx)

	apiErr := f.API.Logout(ctx)
	if apiErr != nil {
		l.Warn("backend logout failed", slog.Any("error", apiErr))
	}

	if err := f.Credentials.Clear(ctx); err != nil {
		l.Error("failed to clear cached session", slog.Any("error", err))
	}
	f.Resolver.Invalidate()
	f.Views.Open(domain.AuthViewNone)
	f.Holder.reload()

	if apiErr != nil {
		return fmt.Errorf("logout: %w", apiErr)
	}
	l.Info("logged out")
	return nil
}

// ProfileForm is the editable part of the user record.
type ProfileForm struct {
	Username  string
	Name      string
	Phone     string
	Email     string
	Image     io.Reader
	ImageName string
}

// SaveProfile updates the signed-in user and resolves again so the cached
// user reflects the edit.
func (f *AuthFlow) SaveProfile(ctx context.Context, form ProfileForm) (*domain.Session, error) {
	current := f.Holder.Session()
	if current == nil {
		return nil, domain.ErrNoSession
	}

	email := form.Email
	if email == "" {
		email = current.User.Email
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	_, err := f.API.SaveUser(ctx, finsdk.UserForm{
		Username:  form.Username,
		Name:      form.Name,
		Phone:     form.Phone,
		Email:     email,
		Image:     form.Image,
		ImageName: form.ImageName,
	})
	if err != nil {
		return nil, failure(domain.ErrAuthRejected, err, "Failed to update profile")
	}

	return f.Resolver.Resolve(ctx)
}

// RegistrationForm is submitted once the e-mail is verified.
type RegistrationForm struct {
	Username        string
	Name            string
	Phone           string
	Password        string
	ConfirmPassword string
	Image           io.Reader
	ImageName       string
}

// Registration is one pass through the register view: verify an e-mail with
// a one-time code, then submit the account details.
type Registration struct {
	flow    *AuthFlow
	limiter *rate.Limiter

	mu       sync.Mutex
	email    string
	verified bool
}

// Register opens the register view and starts a registration.
func (f *AuthFlow) Register() *Registration {
	interval := f.OTPResendInterval
	if interval <= 0 {
		interval = DefaultOTPResendInterval
	}

	f.Views.Open(domain.AuthViewRegister)
	return &Registration{
		flow:    f,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// SetEmail changes the address being registered. A different address must
// be verified again.
func (r *Registration) SetEmail(email string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = strings.TrimSpace(email)
	if email != r.email {
		r.email = email
		r.verified = false
	}
}

// Email returns the address being registered.
func (r *Registration) Email() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.email
}

// Verified reports whether the current address passed verification.
func (r *Registration) Verified() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.verified
}

// SendOTP asks the backend to mail a one-time code to the address.
func (r *Registration) SendOTP(ctx context.Context) error {
	email := r.Email()
	if err := validateEmail(email); err != nil {
		return err
	}
	if !r.limiter.Allow() {
		return domain.ErrOTPThrottled
	}

	if _, err := r.flow.API.SendOTP(ctx, email); err != nil {
		slogx.FromContext(ctx).Warn("send otp failed", slog.Any("error", err))
		return failure(domain.ErrVerificationFailed, err, "Failed to send OTP")
	}
	return nil
}

// VerifyOTP checks code against the address. The address counts as verified
// only if it did not change while the check was in flight.
func (r *Registration) VerifyOTP(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return &domain.FlowError{Kind: domain.ErrInvalidInput, Message: "Please enter OTP"}
	}

	email := r.Email()
	if _, err := r.flow.API.VerifyOTP(ctx, email, code); err != nil {
		return failure(domain.ErrVerificationFailed, err, "Invalid OTP")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.email != email {
		return &domain.FlowError{Kind: domain.ErrVerificationFailed, Message: "Email changed during verification"}
	}
	r.verified = true
	return nil
}

// Submit creates the account. Nothing is sent until the address is
// verified and the passwords match. Success closes the register view,
// which resolves the new session.
func (r *Registration) Submit(ctx context.Context, form RegistrationForm) (*domain.Session, error) {
	r.mu.Lock()
	email, verified := r.email, r.verified
	r.mu.Unlock()

	if !verified {
		return nil, &domain.FlowError{Kind: domain.ErrNotVerified, Message: "Please verify your email first"}
	}
	if form.Password != form.ConfirmPassword {
		return nil, &domain.FlowError{Kind: domain.ErrPasswordMismatch, Message: "Passwords don't match!"}
	}
	if form.Password == "" {
		return nil, &domain.FlowError{Kind: domain.ErrInvalidInput, Message: "Password is required"}
	}

	_, err := r.flow.API.SaveUser(ctx, finsdk.UserForm{
		Username:  form.Username,
		Name:      form.Name,
		Phone:     form.Phone,
		Email:     email,
		Password:  form.Password,
		Image:     form.Image,
		ImageName: form.ImageName,
	})
	if err != nil {
		return nil, failure(domain.ErrAuthRejected, err, "Registration failed")
	}

	slogx.FromContext(ctx).Info("registration accepted")
	return r.flow.Views.Close(ctx)
}
