// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/vitrine/vitrine/internal/auth"
	authpg "github.com/vitrine/vitrine/internal/auth/postgres"
	"github.com/vitrine/vitrine/internal/catalog"
	catalogpg "github.com/vitrine/vitrine/internal/catalog/postgres"
	"github.com/vitrine/vitrine/internal/config"
	"github.com/vitrine/vitrine/internal/logging"
	"github.com/vitrine/vitrine/internal/photo"
	"github.com/vitrine/vitrine/internal/store"
)

// Deps contains injectable dependencies for the subcommands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// Connect opens the database pool.
	// Default: store.Connect
	Connect func(ctx context.Context, databaseURL string, opts store.ConnectOptions) (*pgxpool.Pool, error)

	// NewMigrator opens a schema migrator.
	// Default: store.NewMigrator
	NewMigrator func(databaseURL string) (Migrator, error)
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Force(version int) error
	PendingMigrations() ([]uint, error)
	AppliedMigrations() ([]uint, error)
	Close() error
}

var _ Migrator = (*store.Migrator)(nil)

func (d *Deps) withDefaults() *Deps {
	out := &Deps{}
	if d != nil {
		*out = *d
	}
	if out.Connect == nil {
		out.Connect = store.Connect
	}
	if out.NewMigrator == nil {
		out.NewMigrator = func(databaseURL string) (Migrator, error) {
			m, err := store.NewMigrator(databaseURL)
			if err != nil {
				return nil, err //nolint:wrapcheck // already coded
			}
			return m, nil
		}
	}
	return out
}

// app holds the services shared by the subcommands that touch the database.
type app struct {
	pool     *pgxpool.Pool
	accounts *auth.Service
	resets   *auth.PasswordResetService
	catalog  *catalog.Service
	photos   *photo.Storage
}

// openApp connects to the database and builds the domain services over it.
func openApp(ctx context.Context, deps *Deps, cfg *config.Config, logger *slog.Logger) (*app, error) {
	pool, err := deps.Connect(ctx, cfg.Database.URL, store.ConnectOptions{Logger: logger})
	if err != nil {
		return nil, oops.With("operation", "connect to database").Wrap(err)
	}

	a, err := newApp(pool, cfg, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func newApp(pool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) (*app, error) {
	hasher, err := auth.NewHasher(cfg.Auth.HashAlgorithm, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, oops.With("operation", "create password hasher").Wrap(err)
	}

	users := authpg.NewUserRepository(pool)
	accounts, err := auth.NewAuthService(users, hasher,
		auth.WithLogger(logger),
		auth.WithLockoutPolicy(cfg.Auth.Lockout()),
		auth.WithTransactor(store.NewTransactor(pool)))
	if err != nil {
		return nil, oops.With("operation", "create auth service").Wrap(err)
	}
	resets, err := auth.NewPasswordResetService(users, hasher, auth.ResetTokenExpiryHours, auth.WithLogger(logger))
	if err != nil {
		return nil, oops.With("operation", "create reset service").Wrap(err)
	}

	photos, err := photo.NewStorage(cfg.Uploads.Dir)
	if err != nil {
		return nil, oops.With("operation", "open uploads directory").Wrap(err)
	}

	svc, err := catalog.NewService(catalog.Config{
		Categories:     catalogpg.NewCategoryRepository(pool),
		Products:       catalogpg.NewProductRepository(pool),
		Photos:         catalogpg.NewPhotoRepository(pool),
		PaymentMethods: catalogpg.NewPaymentMethodRepository(pool),
		Transactor:     catalogpg.NewTransactor(pool),
		Files:          photos,
		Logger:         logger,
	})
	if err != nil {
		return nil, oops.With("operation", "create catalog service").Wrap(err)
	}

	return &app{
		pool:     pool,
		accounts: accounts,
		resets:   resets,
		catalog:  svc,
		photos:   photos,
	}, nil
}

// Close releases the database pool.
func (a *app) Close() {
	a.pool.Close()
}

// commandLogger configures the process logger from cfg.
func commandLogger(cfg *config.Config) *slog.Logger {
	return logging.SetDefault(logging.Options{
		Service: "vitrine",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
	})
}
