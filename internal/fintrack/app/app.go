package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aussiebroadwan/fintrack/internal/fintrack/service"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/store"
	"github.com/aussiebroadwan/fintrack/internal/fintrack/store/drivers/sqlite"
	"github.com/aussiebroadwan/fintrack/pkg/finsdk"
	"github.com/aussiebroadwan/fintrack/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the local state file, the backend client and the
// session services for one process.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	jar    *store.Jar
	creds  *store.CredentialStore
	client *finsdk.Client

	*service.Services
}

// New opens the state file, applies migrations and wires the services.
// Logs go to logOutput (stderr when nil).
func New(ctx context.Context, cfg Config, logOutput io.Writer) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "fintrack",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  logOutput,
		}),
	}

	if err := app.initStore(); err != nil {
		return nil, err
	}

	if err := app.initServices(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// initStore opens the state file and applies migrations
func (app *Application) initStore() error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.StateFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply state migrations: %w", err)
	}

	app.logger.Debug("state migrations applied", "file", app.cfg.StateFile)
	return nil
}

// initServices restores the cookie jar and wires the session services
func (app *Application) initServices(ctx context.Context) error {
	jar, err := store.NewJar(ctx, app.db.Cookies(), app.logger)
	if err != nil {
		return fmt.Errorf("failed to restore cookies: %w", err)
	}
	app.jar = jar

	cache := store.NewSessionCache(app.db)
	creds, err := store.NewCredentialStore(jar, app.cfg.APIURL, cache, app.logger)
	if err != nil {
		return fmt.Errorf("invalid api url: %w", err)
	}
	app.creds = creds

	app.client = finsdk.NewClient(app.cfg.APIURL, jar).
		WithTimeout(app.cfg.HTTPTimeout).
		WithForecastURL(app.cfg.ForecastURL)

	app.Services = service.New(service.Deps{
		API:               app.client,
		Credentials:       creds,
		Cache:             cache,
		OTPResendInterval: app.cfg.OTPResendInterval,
	})
	return nil
}

// Context returns ctx carrying the application logger.
func (app *Application) Context(ctx context.Context) context.Context {
	return slogx.WithContext(ctx, app.logger)
}

// Boot resolves the stored credential into a session, as on page load.
func (app *Application) Boot(ctx context.Context) error {
	_, err := app.Resolver.Resolve(app.Context(ctx))
	return err
}

// Credentials exposes the credential store, e.g. for diagnostics.
func (app *Application) Credentials() *store.CredentialStore { return app.creds }

// Config returns the configuration the application was built with.
func (app *Application) Config() Config { return app.cfg }

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Close releases the state file.
func (app *Application) Close() error {
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing state file", "error", err)
		return err
	}
	return nil
}
