// Package cli is the fintrack command-line client. Each invocation restores
// the session from the state file, acts, and persists whatever cookies the
// backend set.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/app"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
	"github.com/spf13/cobra"
)

// Streams are the standard streams a command talks to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type env struct {
	Streams

	apiURL      string
	forecastURL string
	stateFile   string
	jsonOutput  bool

	prompt *prompter

	// signer overrides the interactive wallet signer.
	signer service.WalletSigner
}

// Execute runs the root command against the process streams.
func Execute(ctx context.Context) error {
	return NewRootCommand(Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree.
func NewRootCommand(s Streams) *cobra.Command {
	return newRootCommand(&env{Streams: s})
}

func newRootCommand(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "fintrack",
		Short: "Command-line client for the finance tracker",
		Long: `fintrack signs in to the finance tracker backend, keeps the session in a
local state file and drives the same flows as the web app.

Environment Variables:
  FINTRACK_API_URL              Backend API URL (default: http://localhost:5001/api/v1)
  FINTRACK_FORECAST_URL         Spend forecast endpoint (default: http://127.0.0.1:8000/api/predict-spends/)
  FINTRACK_STATE_FILE           State file (default: fintrack.db)
  FINTRACK_HTTP_TIMEOUT         Per-request timeout (default: 10s)
  FINTRACK_OTP_RESEND_INTERVAL  Minimum spacing of one-time codes (default: 30s)
  LOG_LEVEL, LOG_FORMAT, ENV    Logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       app.BuildVersion,
	}
	root.SetIn(e.In)
	root.SetOut(e.Out)
	root.SetErr(e.Err)

	root.PersistentFlags().StringVar(&e.apiURL, "api-url", "", "Backend API URL (overrides FINTRACK_API_URL)")
	root.PersistentFlags().StringVar(&e.forecastURL, "forecast-url", "", "Spend forecast URL (overrides FINTRACK_FORECAST_URL)")
	root.PersistentFlags().StringVar(&e.stateFile, "state-file", "", "State file (overrides FINTRACK_STATE_FILE)")
	root.PersistentFlags().BoolVar(&e.jsonOutput, "json", false, "Output JSON instead of human-readable text")

	root.AddCommand(
		newStatusCommand(e),
		newOpenCommand(e),
		newLoginCommand(e),
		newRegisterCommand(e),
		newLogoutCommand(e),
		newWalletCommand(e),
		newProfileCommand(e),
		newUploadCommand(e),
		newSubscribeCommand(e),
		newUnsubscribeCommand(e),
	)
	return root
}

// config applies the flag overrides to the environment configuration.
func (e *env) config() (app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, fmt.Errorf("load config: %w", err)
	}
	if e.apiURL != "" {
		cfg.APIURL = e.apiURL
	}
	if e.forecastURL != "" {
		cfg.ForecastURL = e.forecastURL
	}
	if e.stateFile != "" {
		cfg.StateFile = e.stateFile
	}
	return cfg, nil
}

// withApp opens the application for one command. With boot set, the stored
// credential is resolved first; a failure there is logged and the command
// still runs, seeing no session.
func (e *env) withApp(cmd *cobra.Command, boot bool, fn func(ctx context.Context, a *app.Application) error) error {
	cfg, err := e.config()
	if err != nil {
		return err
	}

	a, err := app.New(cmd.Context(), cfg, e.Err)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := slogx.With(a.Context(cmd.Context()), "command", cmd.Name())
	if boot {
		if err := a.Boot(ctx); err != nil {
			a.Logger().Warn("session resolution failed", "error", err)
		}
	}
	return fn(ctx, a)
}

func (e *env) prompter() *prompter {
	if e.prompt == nil {
		e.prompt = newPrompter(e.In, e.Err)
	}
	return e.prompt
}
