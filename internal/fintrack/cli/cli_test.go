package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/domain"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/fakeapi"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/stretchr/testify/require"
)

var pdf = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

type cliHarness struct {
	api    *fakeapi.Server
	state  string
	signer service.WalletSigner
}

func newCLI(t *testing.T) *cliHarness {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	api := fakeapi.New(nil)
	t.Cleanup(api.Close)

	return &cliHarness{api: api, state: filepath.Join(t.TempDir(), "state.db")}
}

// run executes one fintrack invocation, as a separate process would.
func (h *cliHarness) run(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	if stdin == nil {
		stdin = strings.NewReader("")
	}

	var out, errOut bytes.Buffer
	e := &env{Streams: Streams{In: stdin, Out: &out, Err: &errOut}, signer: h.signer}
	root := newRootCommand(e)
	root.SetArgs(append([]string{
		"--api-url", h.api.URL(),
		"--forecast-url", h.api.ForecastURL(),
		"--state-file", h.state,
	}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *cliHarness) login(t *testing.T, seed fakeapi.Seed) string {
	t.Helper()
	seed.Email, seed.Password = "ada@example.com", "hunter2"
	if seed.Name == "" {
		seed.Name = "Ada"
	}
	id := h.api.AddUser(seed)

	out, err := h.run(t, strings.NewReader("hunter2\n"), "login", "--email", "ada@example.com")
	require.NoError(t, err)
	require.Contains(t, out, "Welcome back, Ada.")
	return id
}

// lazyInput builds stdin on first read, after earlier steps have run.
type lazyInput struct {
	build func() string
	r     io.Reader
}

func (l *lazyInput) Read(p []byte) (int, error) {
	if l.r == nil {
		l.r = strings.NewReader(l.build())
	}
	return l.r.Read(p)
}

func TestStatusSignedOutMakesNoRequest(t *testing.T) {
	h := newCLI(t)

	out, err := h.run(t, nil, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Not signed in.")
	require.Zero(t, h.api.Calls("/user"))
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	h := newCLI(t)
	h.login(t, fakeapi.Seed{Statements: 2})

	out, err := h.run(t, nil, "--json", "status")
	require.NoError(t, err)

	var v statusView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.True(t, v.SignedIn)
	require.Equal(t, "ada@example.com", v.User.Email)
	require.Equal(t, 2, v.Statements)
	require.False(t, v.Premium)
	require.NotNil(t, v.ExpiresAt)

	out, err = h.run(t, nil, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Signed out.")

	out, err = h.run(t, nil, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Not signed in.")
}

func TestLoginRejected(t *testing.T) {
	h := newCLI(t)
	h.api.AddUser(fakeapi.Seed{Email: "ada@example.com", Password: "hunter2"})

	_, err := h.run(t, strings.NewReader("wrong\n"), "login", "--email", "ada@example.com")
	require.ErrorIs(t, err, domain.ErrAuthRejected)

	out, err := h.run(t, nil, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Not signed in.")
}

func TestStatusReportsFetchFailure(t *testing.T) {
	h := newCLI(t)
	h.login(t, fakeapi.Seed{Statements: 1})
	h.api.Fail("/user", 500, "boom")

	out, err := h.run(t, nil, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Not signed in.")
	require.Contains(t, out, "session fetch failed")
}

func TestOpenWalksTheGuard(t *testing.T) {
	h := newCLI(t)

	_, err := h.run(t, nil, "open", "nowhere")
	require.ErrorIs(t, err, domain.ErrUnknownRoute)

	out, err := h.run(t, nil, "open", "dashboard")
	require.NoError(t, err)
	require.Contains(t, out, "unauthenticated")
	require.Contains(t, out, "login, register")

	h.login(t, fakeapi.Seed{})

	out, err = h.run(t, nil, "open", "/dashboard")
	require.NoError(t, err)
	require.Contains(t, out, "prerequisite_pending")

	// The upload page itself needs no statement.
	out, err = h.run(t, nil, "open", "statements")
	require.NoError(t, err)
	require.Contains(t, out, "authorized")

	file := filepath.Join(t.TempDir(), "june.pdf")
	require.NoError(t, os.WriteFile(file, pdf, 0o600))
	out, err = h.run(t, nil, "upload", file)
	require.NoError(t, err)
	require.Contains(t, out, "1 statement(s)")

	out, err = h.run(t, nil, "--json", "open", "dashboard")
	require.NoError(t, err)
	var v openView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.Equal(t, "authorized", v.State)
	require.Equal(t, "/dashboard", v.Route.Path)
}

func TestOpenListsRoutes(t *testing.T) {
	h := newCLI(t)

	out, err := h.run(t, nil, "open")
	require.NoError(t, err)
	for _, r := range service.Routes() {
		require.Contains(t, out, r.Path)
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	h := newCLI(t)
	h.login(t, fakeapi.Seed{})

	file := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o600))

	_, err := h.run(t, nil, "upload", file)
	require.ErrorIs(t, err, domain.ErrNotPDF)
	require.Zero(t, h.api.Calls("/statements/save"))
}

func TestSubscribeUnlocksPremiumPage(t *testing.T) {
	h := newCLI(t)
	id := h.login(t, fakeapi.Seed{Statements: 1})

	out, err := h.run(t, nil, "open", "budget-forecast")
	require.NoError(t, err)
	require.Contains(t, out, "plan_required")
	require.Contains(t, out, "Finance Tracker Premium")

	// Declining leaves the plan alone.
	out, err = h.run(t, strings.NewReader("n\n"), "subscribe")
	require.NoError(t, err)
	require.Contains(t, out, "Plan unchanged.")
	require.False(t, h.api.Subscribed(id))

	out, err = h.run(t, nil, "subscribe", "--yes")
	require.NoError(t, err)
	require.Contains(t, out, "Subscribed")
	require.True(t, h.api.Subscribed(id))

	out, err = h.run(t, nil, "open", "budget-forecast")
	require.NoError(t, err)
	require.Contains(t, out, "authorized")
	require.Contains(t, out, "Predicted spend next week")
	require.Equal(t, 1, h.api.Calls(fakeapi.ForecastPath))

	out, err = h.run(t, nil, "subscribe")
	require.NoError(t, err)
	require.Contains(t, out, "Already on the premium plan.")

	out, err = h.run(t, nil, "unsubscribe")
	require.NoError(t, err)
	require.Contains(t, out, "Subscription cancelled.")
	require.False(t, h.api.Subscribed(id))
}

func TestOpenForecastAsJSON(t *testing.T) {
	h := newCLI(t)
	h.login(t, fakeapi.Seed{Subscription: true, Statements: 1})
	h.api.SetForecast([]finsdk.CategoryForecast{
		{Category: "Food", NextWeek: []float64{1, 2, 3, 4, 5, 6, 7}, WeekTotal: 28},
	})

	out, err := h.run(t, nil, "--json", "open", "budget-forecast")
	require.NoError(t, err)

	var v openView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	require.Equal(t, "authorized", v.State)
	require.Len(t, v.Forecast, 1)
	require.Equal(t, "Food", v.Forecast[0].Category)
	require.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7}, v.Forecast[0].Daily)

	h.api.Fail(fakeapi.ForecastPath, http.StatusBadGateway, "forecast service offline")
	_, err = h.run(t, nil, "open", "budget-forecast")
	require.ErrorIs(t, err, domain.ErrForecastUnavailable)
}

func TestSubscribeNeedsSession(t *testing.T) {
	h := newCLI(t)

	_, err := h.run(t, nil, "subscribe", "--yes")
	require.ErrorIs(t, err, domain.ErrNoSession)
}

func TestRegister(t *testing.T) {
	h := newCLI(t)

	stdin := &lazyInput{build: func() string {
		return h.api.OTP("grace@example.com") + "\nsecret\nsecret\n"
	}}
	out, err := h.run(t, stdin, "register",
		"--email", "grace@example.com",
		"--username", "grace",
		"--name", "Grace",
	)
	require.NoError(t, err)
	require.Contains(t, out, "Welcome, Grace.")

	_, ok := h.api.UserByEmail("grace@example.com")
	require.True(t, ok)

	out, err = h.run(t, nil, "status")
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as Grace")
}

func TestRegisterWrongCode(t *testing.T) {
	h := newCLI(t)

	_, err := h.run(t, strings.NewReader("000000x\n"), "register", "--email", "grace@example.com")
	require.ErrorIs(t, err, domain.ErrVerificationFailed)
	require.Zero(t, h.api.Calls("/user/save"))
}

func TestProfileKeepsUnsetFields(t *testing.T) {
	h := newCLI(t)
	id := h.login(t, fakeapi.Seed{Username: "ada"})

	out, err := h.run(t, nil, "profile", "--name", "Ada Lovelace")
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as Ada Lovelace")
	require.Equal(t, "Ada Lovelace", h.api.Name(id))
}

func TestWalletLinksUnknownWallet(t *testing.T) {
	h := newCLI(t)
	h.signer = fakeapi.Signer{}
	id := h.api.AddUser(fakeapi.Seed{Name: "Ada", Email: "ada@example.com", Password: "hunter2"})

	const addr = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	out, err := h.run(t, strings.NewReader("hunter2\n"), "wallet", addr, "--email", "ada@example.com")
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as Ada")
	require.Equal(t, strings.ToLower(addr), strings.ToLower(h.api.Wallet(id)))

	// Known now, so a second sign-in needs no password.
	_, err = h.run(t, nil, "logout")
	require.NoError(t, err)
	out, err = h.run(t, nil, "wallet", addr)
	require.NoError(t, err)
	require.Contains(t, out, "Signed in as Ada")
}

func TestWalletRejectsBadAddress(t *testing.T) {
	h := newCLI(t)

	_, err := h.run(t, nil, "wallet", "0x123")
	require.ErrorIs(t, err, domain.ErrInvalidWalletAddress)
	require.Zero(t, h.api.Calls("/web3/initiate"))
}

func TestPromptSignerRejectsEmptySignature(t *testing.T) {
	h := newCLI(t)
	h.api.AddUser(fakeapi.Seed{Email: "ada@example.com", Password: "hunter2"})

	_, err := h.run(t, strings.NewReader("\n"), "wallet", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	require.ErrorIs(t, err, domain.ErrAuthRejected)
}

func TestPrompterReadsPasswordFromTerminal(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte(" s3cret "), nil }

	var out bytes.Buffer
	p := &prompter{out: &out, fd: 0}
	got, err := p.Password("Password")
	require.NoError(t, err)
	require.Equal(t, " s3cret ", got)
	require.Equal(t, "Password: \n", out.String())
}

func TestPrompterConfirm(t *testing.T) {
	for input, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "": false, "maybe\n": false} {
		p := newPrompter(strings.NewReader(input), io.Discard)
		got, err := p.Confirm("Continue?")
		require.NoError(t, err, "input %q", input)
		require.Equal(t, want, got, "input %q", input)
	}
}
