package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/fakeapi"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, apiURL, state string) *Application {
	t.Helper()
	a, err := New(context.Background(), Config{
		APIURL:    apiURL,
		StateFile: state,
		Env:       "test",
		LogLevel:  "error",
	}, io.Discard)
	require.NoError(t, err)
	return a
}

func TestApplicationRestoresSessionFromStateFile(t *testing.T) {
	ctx := context.Background()
	api := fakeapi.New(nil)
	t.Cleanup(api.Close)
	api.AddUser(fakeapi.Seed{Name: "Ada", Email: "ada@example.com", Password: "hunter2", Statements: 1})

	state := filepath.Join(t.TempDir(), "state.db")

	first := newTestApp(t, api.URL(), state)
	require.NoError(t, first.Boot(ctx))
	require.Nil(t, first.Holder.Session())

	session, err := first.Auth.Login(first.Context(ctx), "ada@example.com", "hunter2")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NoError(t, first.Close())

	second := newTestApp(t, api.URL(), state)
	t.Cleanup(func() { _ = second.Close() })

	require.NoError(t, second.Boot(ctx))
	require.NotNil(t, second.Holder.Session())
	require.Equal(t, "Ada", second.Holder.Session().User.Name)
	require.Len(t, second.Holder.Statements(), 1)

	cred, ok := second.Credentials().Read(ctx)
	require.True(t, ok)
	require.True(t, cred.Complete())
}

func TestApplicationRejectsBadStatePath(t *testing.T) {
	_, err := New(context.Background(), Config{
		APIURL:    "http://localhost:5001/api/v1",
		StateFile: filepath.Join(t.TempDir(), "missing", "dir", "state.db"),
	}, io.Discard)
	require.Error(t, err)
}
