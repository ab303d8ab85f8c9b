// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package pgtest starts a migrated PostgreSQL container for integration tests.
package pgtest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vitrine/vitrine/internal/store"
)

// Database is a running, migrated test database.
type Database struct {
	Pool    *pgxpool.Pool
	ConnStr string

	container *postgres.PostgresContainer
}

// Start runs postgres:16-alpine, applies every migration and opens a pool.
func Start(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("vitrine_test"),
		postgres.WithUsername("vitrine"),
		postgres.WithPassword("vitrine"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, oops.Code("PGTEST_START_FAILED").Wrap(err)
	}
	db := &Database{container: container}

	db.ConnStr, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		db.Close(ctx)
		return nil, oops.Code("PGTEST_START_FAILED").With("operation", "connection string").Wrap(err)
	}

	migrator, err := store.NewMigrator(db.ConnStr)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	err = migrator.Up()
	_ = migrator.Close()
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	db.Pool, err = store.Connect(ctx, db.ConnStr, store.ConnectOptions{Attempts: 5})
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}

// Truncate empties the named tables and resets their sequences.
func (db *Database) Truncate(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, `TRUNCATE `+table+` RESTART IDENTITY CASCADE`); err != nil {
			return oops.Code("PGTEST_TRUNCATE_FAILED").With("table", table).Wrap(err)
		}
	}
	return nil
}

// Close closes the pool and terminates the container.
func (db *Database) Close(ctx context.Context) {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.container != nil {
		_ = db.container.Terminate(ctx)
	}
}
