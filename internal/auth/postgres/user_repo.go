// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/store"
)

const userColumns = `id, name, email, password_hash, role, cpf, phone, photo,
	reset_token_hash, reset_expires_at, failed_attempts, locked_until,
	created_at, updated_at`

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool store.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool store.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user and sets its ID.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	err := store.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (
			name, email, password_hash, role, cpf, phone, photo,
			failed_attempts, locked_until, created_at, updated_at
		) VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		user.Name,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.CPF,
		user.Phone,
		user.Photo,
		user.FailedAttempts,
		user.LockedUntil,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return oops.Code("USER_EMAIL_TAKEN").
				With("email", user.Email).
				Wrap(auth.ErrDuplicateEmail)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("email", user.Email).
			Wrap(err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, key string, value any, query string, args ...any) (*auth.User, error) {
	user, err := scanUser(store.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With(key, value).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_FAILED").
			With("operation", "get user by "+key).
			With(key, value).
			Wrap(err)
	}
	return user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*auth.User, error) {
	return r.getOne(ctx, "id", id,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, "email", email,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// GetByResetTokenHash retrieves the user holding an unexpired reset token.
func (r *UserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*auth.User, error) {
	return r.getOne(ctx, "reset_token", "redacted",
		`SELECT `+userColumns+` FROM users
		 WHERE reset_token_hash = $1 AND reset_expires_at > $2`, tokenHash, now)
}

// ListByRole returns users of role ordered by name.
func (r *UserRepository) ListByRole(ctx context.Context, role auth.Role) ([]*auth.User, error) {
	rows, err := store.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY name, id`, string(role))
	if err != nil {
		return nil, oops.Code("USER_LIST_FAILED").
			With("operation", "list users").
			With("role", string(role)).
			Wrap(err)
	}
	defer rows.Close()

	var users []*auth.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_LIST_FAILED").
			With("operation", "iterate users").
			Wrap(err)
	}
	return users, nil
}

// exec runs a single-row mutation and maps zero affected rows to ErrNotFound.
func (r *UserRepository) exec(ctx context.Context, code string, id int64, query string, args ...any) error {
	result, err := store.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return oops.Code("USER_EMAIL_TAKEN").
				With("id", id).
				Wrap(auth.ErrDuplicateEmail)
		}
		return oops.Code(code).
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Update stores profile, role and lockout fields. The password hash and
// reset token are written only through their own methods.
func (r *UserRepository) Update(ctx context.Context, user *auth.User) error {
	return r.exec(ctx, "USER_UPDATE_FAILED", user.ID, `
		UPDATE users SET
			name = $2,
			email = LOWER($3),
			role = $4,
			cpf = $5,
			phone = $6,
			failed_attempts = $7,
			locked_until = $8,
			updated_at = now()
		WHERE id = $1
	`,
		user.ID,
		user.Name,
		user.Email,
		string(user.Role),
		user.CPF,
		user.Phone,
		user.FailedAttempts,
		user.LockedUntil,
	)
}

// UpdatePassword replaces the password hash and clears any reset token.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.exec(ctx, "USER_UPDATE_PASSWORD_FAILED", id, `
		UPDATE users SET
			password_hash = $2,
			reset_token_hash = NULL,
			reset_expires_at = NULL,
			updated_at = now()
		WHERE id = $1
	`, id, passwordHash)
}

// UpdatePhoto sets the profile photo path.
func (r *UserRepository) UpdatePhoto(ctx context.Context, id int64, photo string) error {
	return r.exec(ctx, "USER_UPDATE_PHOTO_FAILED", id,
		`UPDATE users SET photo = $2, updated_at = now() WHERE id = $1`, id, photo)
}

// SetResetToken stores a reset token hash and its expiry, replacing any
// previous token.
func (r *UserRepository) SetResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error {
	return r.exec(ctx, "USER_SET_RESET_TOKEN_FAILED", id, `
		UPDATE users SET reset_token_hash = $2, reset_expires_at = $3, updated_at = now()
		WHERE id = $1
	`, id, tokenHash, expiresAt)
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "USER_DELETE_FAILED", id, `DELETE FROM users WHERE id = $1`, id)
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		u    auth.User
		role string
	)
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.CPF,
		&u.Phone,
		&u.Photo,
		&u.ResetTokenHash,
		&u.ResetExpiresAt,
		&u.FailedAttempts,
		&u.LockedUntil,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with lookup context
		}
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}
	u.Role = auth.Role(role)
	return &u, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
