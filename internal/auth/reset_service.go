// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// PasswordResetService handles password reset operations.
type PasswordResetService struct {
	users       UserRepository
	hasher      PasswordHasher
	logger      *slog.Logger
	now         func() time.Time
	expiryHours int
}

// NewPasswordResetService creates a new PasswordResetService.
// expiryHours 0 selects ResetTokenExpiryHours.
func NewPasswordResetService(users UserRepository, hasher PasswordHasher, expiryHours int, opts ...Option) (*PasswordResetService, error) {
	if users == nil {
		return nil, oops.Code("RESET_INVALID_SERVICE").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("RESET_INVALID_SERVICE").Errorf("password hasher is required")
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &PasswordResetService{
		users:       users,
		hasher:      hasher,
		logger:      o.logger,
		now:         o.now,
		expiryHours: expiryHours,
	}, nil
}

// RequestReset issues a reset token for the user registered under email.
// The plaintext token is returned for delivery; only its hash is stored.
// Unknown emails return an empty token and no error, so callers cannot
// tell registered addresses apart.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, *User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, nil
		}
		return "", nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "GetByEmail").
			Wrap(err)
	}

	token, err := GenerateResetToken(ResetTokenLength)
	if err != nil {
		return "", nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "GenerateResetToken").
			Wrap(err)
	}

	expiresAt := TokenExpiry(s.now(), s.expiryHours)
	if err := s.users.SetResetToken(ctx, user.ID, HashResetToken(token), expiresAt); err != nil {
		return "", nil, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "SetResetToken").
			With("user_id", user.ID).
			Wrap(err)
	}
	return token, user, nil
}

// ValidateToken returns the user owning an unexpired token. Unknown and
// expired tokens fail identically.
func (s *PasswordResetService) ValidateToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, oops.Code("RESET_TOKEN_INVALID").Wrap(ErrInvalidResetToken)
	}

	user, err := s.users.GetByResetTokenHash(ctx, HashResetToken(token), s.now())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("RESET_TOKEN_INVALID").Wrap(ErrInvalidResetToken)
		}
		return nil, oops.Code("RESET_VALIDATE_FAILED").
			With("operation", "GetByResetTokenHash").
			Wrap(err)
	}
	return user, nil
}

// ResetPassword consumes token and stores a hash of newPassword. The token
// is cleared with the password update, so it cannot be used twice.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return oops.Code("RESET_PASSWORD_EMPTY").Errorf("new password cannot be empty")
	}
	if ok, msg := CheckPasswordStrength(newPassword); !ok {
		return oops.Code("RESET_PASSWORD_WEAK").Errorf("%s", msg)
	}

	user, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "Hash").
			Wrap(err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "UpdatePassword").
			With("user_id", user.ID).
			Wrap(err)
	}

	if user.FailedAttempts > 0 || user.LockedUntil != nil {
		user.RecordSuccess(s.now())
		if err := s.users.Update(ctx, user); err != nil {
			s.logger.WarnContext(ctx, "best-effort lockout reset failed",
				"operation", "clear_lockout",
				"user_id", user.ID,
				"error", err.Error())
		}
	}
	return nil
}
