// Package app wires the client core: configuration, logging, tracing, the
// credential store, the transport, the session, the guard and one controller
// per dashboard screen.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"writex/internal/api"
	"writex/internal/config"
	"writex/internal/controller"
	"writex/internal/credential"
	"writex/internal/guard"
	"writex/internal/notify"
	"writex/internal/observability"
	"writex/internal/session"
	"writex/internal/transport"
)

// Version is reported as the tracing service version.
const Version = "0.1.0"

// Options control how the app talks to its host.
type Options struct {
	// LogOutput receives structured logs. Defaults to stderr.
	LogOutput io.Writer
	// Notifier shows transient messages. Defaults to the logger.
	Notifier notify.Notifier
	// Confirmer answers destructive-action prompts. Defaults to declining.
	Confirmer controller.Confirmer
	// HTTPClient overrides the client built from the configured timeout.
	HTTPClient *http.Client
	// Credentials overrides the store selected by configuration.
	Credentials credential.Store
}

// App is a fully wired client.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Transport   *transport.Transport
	Credentials credential.Store
	Session     *session.Store
	Guard       *guard.Guard

	Auth    *api.Auth
	Posts   *controller.Posts
	Notes   *controller.Notes
	Profile *controller.Profile
	Users   *controller.Users

	stopGuard       func()
	shutdownTracing func(context.Context) error
}

// New builds the app from cfg. The session is still Loading; call Start.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	logger := observability.NewLogger(opts.LogOutput, observability.LoggerOptions{
		Format:     cfg.LogFormat,
		Level:      cfg.LogLevel,
		Production: cfg.IsProduction(),
	})

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "writex-client",
		ServiceVersion: Version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing initialization failed: %w", err)
	}

	creds := opts.Credentials
	if creds == nil {
		creds, err = credential.Open(ctx, cfg, logger)
		if err != nil {
			_ = shutdownTracing(ctx)
			return nil, fmt.Errorf("credential store initialization failed: %w", err)
		}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout()}
	}
	tr := transport.New(cfg.APIBaseURL, httpClient, logger)

	n := opts.Notifier
	if n == nil {
		n = notify.LogNotifier{Logger: logger}
	}
	confirm := opts.Confirmer
	if confirm == nil {
		confirm = controller.AutoConfirm(false)
	}

	auth := api.NewAuth(tr)
	sess := session.New(tr, auth, creds, logger)
	g := guard.New(logger)
	users := api.NewUsers(tr)

	a := &App{
		Config:          cfg,
		Logger:          logger,
		Transport:       tr,
		Credentials:     creds,
		Session:         sess,
		Guard:           g,
		Auth:            auth,
		Posts:           controller.NewPosts(api.NewPosts(tr), sess, n, confirm, logger),
		Notes:           controller.NewNotes(api.NewNotes(tr), n, confirm, logger),
		Profile:         controller.NewProfile(users, sess, n, logger),
		Users:           controller.NewUsers(users, sess, n, logger),
		stopGuard:       g.Follow(sess),
		shutdownTracing: shutdownTracing,
	}
	logger.Debug("client initialized",
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("credential_store", cfg.CredentialStore),
	)
	return a, nil
}

// Start restores the persisted session. It always leaves the session
// Authenticated or Anonymous.
func (a *App) Start(ctx context.Context) {
	a.Session.Initialize(ctx)
}

// Enter returns the guard decision for screen now that the session settled.
func (a *App) Enter(screen string) guard.Decision {
	return a.Guard.Decide(screen)
}

// Close releases the credential store and flushes traces.
func (a *App) Close(ctx context.Context) error {
	a.stopGuard()
	return errors.Join(a.Credentials.Close(), a.shutdownTracing(ctx))
}
