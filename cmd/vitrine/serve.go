// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/config"
	"github.com/vitrine/vitrine/internal/email"
	"github.com/vitrine/vitrine/internal/observability"
	"github.com/vitrine/vitrine/internal/session"
	"github.com/vitrine/vitrine/internal/store"
	"github.com/vitrine/vitrine/internal/web"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web application",
		Long: `Start the storefront and administration web application, plus the
metrics and health endpoints when metrics.addr is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cmd, deps, cfg)
		},
	}
}

// runServe runs the application until ctx is cancelled or a listener fails.
func runServe(ctx context.Context, cmd *cobra.Command, deps *Deps, cfg *config.Config) error {
	logger := commandLogger(cfg)
	logger.Info("starting vitrine",
		"addr", cfg.HTTP.Addr,
		"session_store", cfg.Session.Store,
		"email_provider", cfg.Email.Provider,
	)

	if cfg.Database.AutoMigrate {
		if err := migrateUp(deps, cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := openApp(ctx, deps, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		obsServer *observability.Server
		metrics   *observability.Metrics
	)
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, a.pool.Ping, logger)
		metrics = obsServer.Metrics()
	}

	sessionStore, closeSessions, err := openSessionStore(ctx, cfg, a.pool, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	codec, err := session.NewCookieCodec([]byte(cfg.Session.Secret))
	if err != nil {
		return oops.With("operation", "create cookie codec").Wrap(err)
	}
	sessions, err := session.NewManager(sessionStore, codec, session.Options{
		TTL:    cfg.Session.TTL,
		Secure: cfg.Session.CookieSecure,
		Logger: logger,
	})
	if err != nil {
		return oops.With("operation", "create session manager").Wrap(err)
	}

	mail, err := openMailer(cfg, logger, metrics)
	if err != nil {
		return err
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return oops.With("operation", "parse templates").Wrap(err)
	}

	handler, err := web.NewServer(web.Deps{
		Accounts:         a.accounts,
		Resets:           a.resets,
		Catalog:          a.catalog,
		Avatars:          a.photos,
		Sessions:         sessions,
		Mail:             mail,
		Composer:         email.NewComposer(cfg.HTTP.BaseURL, "Vitrine"),
		Renderer:         renderer,
		UploadsDir:       cfg.Uploads.Dir,
		ResetExpiryHours: auth.ResetTokenExpiryHours,
		Metrics:          metrics,
		Logger:           logger,
	})
	if err != nil {
		_ = mail.Close() //nolint:errcheck // setup error takes precedence
		return oops.With("operation", "create web server").Wrap(err)
	}

	listener, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		_ = mail.Close() //nolint:errcheck // listen error takes precedence
		return oops.Code("HTTP_LISTEN_FAILED").With("addr", cfg.HTTP.Addr).Wrap(err)
	}
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	httpErrCh := make(chan error, 1)
	go func() {
		defer close(httpErrCh)
		if serveErr := httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			httpErrCh <- serveErr
		}
	}()
	go monitorServerErrors(ctx, cancel, httpErrCh, "http")

	if obsServer != nil {
		obsErrCh, startErr := obsServer.Start()
		if startErr != nil {
			shutdown(logger, httpServer, nil, mail)
			return oops.With("operation", "start observability server").Wrap(startErr)
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
	}

	cmd.Printf("Vitrine listening on %s\n", listener.Addr())
	logger.Info("vitrine ready", "addr", listener.Addr().String(), "metrics_addr", cfg.Metrics.Addr)

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdown(logger, httpServer, obsServer, mail)
	logger.Info("shutdown complete")
	return nil
}

// shutdown stops the listeners, then drains queued mail.
func shutdown(logger *slog.Logger, httpServer *http.Server, obsServer *observability.Server, mail *email.AsyncSink) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("error stopping http server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(ctx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}
	if err := mail.Close(); err != nil {
		logger.Warn("error draining email queue", "error", err)
	}
}

// migrateUp applies pending migrations before the services start.
func migrateUp(deps *Deps, databaseURL string, logger *slog.Logger) error {
	m, err := deps.NewMigrator(databaseURL)
	if err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	defer closeMigrator(m, logger)

	pending, err := m.PendingMigrations()
	if err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	if len(pending) == 0 {
		logger.Info("database schema up to date")
		return nil
	}
	if err := m.Up(); err != nil {
		return oops.With("operation", "auto-migrate").Wrap(err)
	}
	logger.Info("database migrations applied", "count", len(pending))
	return nil
}

func closeMigrator(m Migrator, logger *slog.Logger) {
	if err := m.Close(); err != nil {
		logger.Warn("failed to close migrator", "error", err)
	}
}

// openSessionStore builds the configured session backend. The returned
// function releases it.
func openSessionStore(ctx context.Context, cfg *config.Config, pool store.Pool, logger *slog.Logger) (session.Store, func(), error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		client, err := session.DialRedis(ctx, session.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, oops.With("operation", "open redis session store").Wrap(err)
		}
		release := func() {
			if err := client.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}
		return session.NewRedisStore(client, ""), release, nil

	case config.SessionStorePostgres:
		s := session.NewPostgresStore(pool)
		go s.Sweep(ctx, session.DefaultSweepInterval, logger)
		return s, func() {}, nil

	default:
		s := session.NewMemoryStore(session.DefaultSweepInterval)
		return s, func() { _ = s.Close() }, nil //nolint:errcheck // janitor stop cannot fail
	}
}

// openMailer picks the delivery provider and queues in front of it.
func openMailer(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*email.AsyncSink, error) {
	var next email.Sink
	switch cfg.Email.Provider {
	case config.EmailProviderResend:
		sender, err := email.NewResendSender(email.ResendConfig{
			APIKey:      cfg.Email.APIKey,
			FromName:    cfg.Email.FromName,
			FromAddress: cfg.Email.FromAddress,
			Endpoint:    cfg.Email.Endpoint,
		})
		if err != nil {
			return nil, oops.With("operation", "create resend sender").Wrap(err)
		}
		next = sender
	default:
		next = email.NewLogSender(logger)
	}

	return email.NewAsyncSink(next, email.AsyncOptions{
		Logger: logger,
		OnResult: func(kind email.Kind, err error) {
			metrics.RecordEmail(string(kind), err)
		},
	}), nil
}

// monitorServerErrors monitors a server's error channel and cancels the context on error.
// It exits when either an error is received, the channel is closed, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
