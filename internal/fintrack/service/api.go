package service

import (
	"context"
	"io"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
)

// API is the subset of the backend the session services talk to.
// *finsdk.Client satisfies it.
type API interface {
	GetCurrentUser(ctx context.Context) (*finsdk.User, error)
	GetStatements(ctx context.Context) ([]finsdk.Statement, error)
	UploadStatement(ctx context.Context, filename string, r io.Reader) (*finsdk.Ack, error)

	Login(ctx context.Context, req finsdk.LoginRequest) (*finsdk.Ack, error)
	SaveUser(ctx context.Context, form finsdk.UserForm) (*finsdk.Ack, error)
	Logout(ctx context.Context) error

	SendOTP(ctx context.Context, address string) (*finsdk.Ack, error)
	VerifyOTP(ctx context.Context, address, code string) (*finsdk.Ack, error)

	AddSubscription(ctx context.Context, paid bool) (*finsdk.Ack, error)
	CancelSubscription(ctx context.Context) (*finsdk.Ack, error)

	GetForecast(ctx context.Context) ([]finsdk.CategoryForecast, error)

	InitiateWeb3Login(ctx context.Context, walletAddress string) (*finsdk.Web3Challenge, error)
	VerifyWeb3Login(ctx context.Context, req finsdk.Web3VerifyRequest) (*finsdk.Web3Verification, error)
	LinkWallet(ctx context.Context, req finsdk.Web3LinkRequest) (*finsdk.Ack, error)
}

var _ API = (*finsdk.Client)(nil)

// Credentials reads the stored credential and clears the cached session.
// *store.CredentialStore satisfies it.
type Credentials interface {
	Read(ctx context.Context) (domain.Credential, bool)
	Clear(ctx context.Context) error
}

func mapUser(u *finsdk.User) domain.UserRecord {
	return domain.UserRecord{
		ID:            u.ID,
		Name:          u.Name,
		Username:      u.Username,
		Email:         u.Email,
		Phone:         u.Phone,
		Avatar:        u.Image,
		WalletAddress: u.WalletAddress,
		Subscription:  u.Subscription,
	}
}

func mapStatements(rows []finsdk.Statement) domain.StatementSet {
	set := make(domain.StatementSet, len(rows))
	for i, row := range rows {
		set[i] = domain.Statement{
			ID:        row.ID,
			CreatedAt: row.CreatedAt,
			URL:       row.URL,
		}
	}
	return set
}

func mapForecast(rows []finsdk.CategoryForecast) domain.Forecast {
	out := make(domain.Forecast, len(rows))
	for i, row := range rows {
		out[i] = domain.CategoryForecast{
			Category:  row.Category,
			Daily:     append([]float64(nil), row.NextWeek...),
			WeekTotal: row.WeekTotal,
		}
	}
	return out
}

// failure builds a FlowError of kind, preferring the backend's message.
func failure(kind error, err error, fallback string) *domain.FlowError {
	return domain.NewFlowError(kind, finsdk.MessageOf(err), fallback)
}
