// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/auth/postgres"
)

func createUser(ctx context.Context, t *testing.T, repo *postgres.UserRepository, email string) *auth.User {
	t.Helper()
	user, err := auth.NewUser("Test "+email, email, "hash123", auth.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, user))
	t.Cleanup(func() {
		_, _ = testPool.Exec(ctx, `DELETE FROM users WHERE id = $1`, user.ID)
	})
	return user
}

func TestUserRepository_Integration_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)

	user := createUser(ctx, t, repo, "crud@example.com")
	assert.NotZero(t, user.ID)

	got, err := repo.GetByEmail(ctx, "CRUD@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash123", got.PasswordHash)

	got.Name = "Renamed"
	got.CPF = "52998224725"
	got.FailedAttempts = 3
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "52998224725", got.CPF)
	assert.Equal(t, 3, got.FailedAttempts)

	require.NoError(t, repo.UpdatePhoto(ctx, user.ID, "usuarios/x.jpg"))
	require.NoError(t, repo.Delete(ctx, user.ID))
	_, err = repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestUserRepository_Integration_EmailUniqueIgnoresCase(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)
	createUser(ctx, t, repo, "dup@example.com")

	dup, err := auth.NewUser("Dup", "DUP@example.com", "hash123", auth.RoleCustomer)
	require.NoError(t, err)
	err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestUserRepository_Integration_ResetToken(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)
	user := createUser(ctx, t, repo, "reset@example.com")
	now := time.Now().UTC()

	require.NoError(t, repo.SetResetToken(ctx, user.ID, "tokenhash", now.Add(time.Hour)))

	got, err := repo.GetByResetTokenHash(ctx, "tokenhash", now)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByResetTokenHash(ctx, "tokenhash", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, auth.ErrNotFound, "expired tokens are not found")

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "newhash"))
	_, err = repo.GetByResetTokenHash(ctx, "tokenhash", now)
	assert.ErrorIs(t, err, auth.ErrNotFound, "password update consumes the token")
}

func TestUserRepository_Integration_ListByRole(t *testing.T) {
	ctx := context.Background()
	repo := postgres.NewUserRepository(testPool)
	createUser(ctx, t, repo, "list-b@example.com")
	createUser(ctx, t, repo, "list-a@example.com")

	users, err := repo.ListByRole(ctx, auth.RoleCustomer)
	require.NoError(t, err)
	var names []string
	for _, u := range users {
		names = append(names, u.Name)
	}
	assert.Contains(t, names, "Test list-a@example.com")
	assert.Contains(t, names, "Test list-b@example.com")
}
