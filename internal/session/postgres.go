// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/vitrine/vitrine/internal/store"
)

// PostgresStore keeps sessions in the web_sessions table. Expired rows are
// invisible to Get and removed by DeleteExpired.
type PostgresStore struct {
	pool store.Pool
	now  func() time.Time
}

// NewPostgresStore creates a store over pool.
func NewPostgresStore(pool store.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM web_sessions
		WHERE id = $1 AND expires_at > $2
	`, key, s.now()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "select web_session").
			Wrap(err)
	}
	return data, nil
}

// Set implements Store.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return oops.Code("SESSION_INVALID_TTL").With("ttl", ttl).Errorf("ttl must be positive")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO web_sessions (id, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at
	`, key, value, s.now().Add(ttl))
	if err != nil {
		return oops.Code("SESSION_SET_FAILED").
			With("operation", "upsert web_session").
			Wrap(err)
	}
	return nil
}

// Delete implements Store.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM web_sessions WHERE id = $1`, key); err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete web_session").
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes all expired sessions and returns the count.
func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM web_sessions WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired web_sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Sweep calls DeleteExpired every interval until ctx is done.
func (s *PostgresStore) Sweep(ctx context.Context, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.WarnContext(ctx, "expired session sweep failed",
					"operation", "delete_expired",
					"error", err.Error())
				continue
			}
			if n > 0 {
				logger.DebugContext(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}

var _ Store = (*PostgresStore)(nil)
