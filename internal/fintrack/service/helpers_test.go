package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/fakeapi"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/store"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/store/drivers/sqlite"
	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
	"github.com/stretchr/testify/require"
)

// pdf is the smallest body that sniffs as application/pdf.
var pdf = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

type harness struct {
	*service.Services

	api   *fakeapi.Server
	st    *sqlite.Store
	tx    *txSwitch
	cache *store.SessionCache
	creds *store.CredentialStore
}

var errTxRefused = errors.New("transaction refused")

// txSwitch wraps a real store and refuses transactions while fail is set.
type txSwitch struct {
	*sqlite.Store
	fail atomic.Bool
}

func (s *txSwitch) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if s.fail.Load() {
		return errTxRefused
	}
	return s.Store.WithTx(ctx, fn)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	api := fakeapi.New(nil)
	t.Cleanup(api.Close)

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	jar, err := store.NewJar(ctx, st.Cookies(), slogx.Discard())
	require.NoError(t, err)

	tx := &txSwitch{Store: st}
	cache := store.NewSessionCache(tx)
	creds, err := store.NewCredentialStore(jar, api.URL(), cache, slogx.Discard())
	require.NoError(t, err)

	return &harness{
		Services: service.New(service.Deps{
			API:         finsdk.NewClient(api.URL(), jar).WithForecastURL(api.ForecastURL()),
			Credentials: creds,
			Cache:       cache,
		}),
		api:   api,
		st:    st,
		tx:    tx,
		cache: cache,
		creds: creds,
	}
}

// signIn seeds a user and logs in through the auth flow.
func (h *harness) signIn(t *testing.T, seed fakeapi.Seed) string {
	t.Helper()
	if seed.Email == "" {
		seed.Email = "ada@example.com"
	}
	if seed.Password == "" {
		seed.Password = "hunter2"
	}
	id := h.api.AddUser(seed)

	session, err := h.Auth.Login(context.Background(), seed.Email, seed.Password)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, id, session.User.ID)
	return id
}
