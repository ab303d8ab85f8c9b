// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"
)

// Option configures a service.
type Option func(*options) error

type options struct {
	logger  *slog.Logger
	now     func() time.Time
	lockout LockoutPolicy
	tx      Transactor
}

// Transactor runs fn in a database transaction carried by the context.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// noTx runs fn directly. Used when no Transactor is configured.
type noTx struct{}

func (noTx) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func defaultOptions() options {
	return options{logger: slog.Default(), now: time.Now, lockout: DefaultLockoutPolicy, tx: noTx{}}
}

func applyOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return o, err
		}
	}
	return o, nil
}

// WithLogger sets the logger used for best-effort failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return oops.Code("AUTH_INVALID_OPTION").Errorf("logger is required")
		}
		o.logger = logger
		return nil
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) error {
		if now == nil {
			return oops.Code("AUTH_INVALID_OPTION").Errorf("clock is required")
		}
		o.now = now
		return nil
	}
}

// WithLockoutPolicy replaces DefaultLockoutPolicy for sign-in failures.
func WithLockoutPolicy(p LockoutPolicy) Option {
	return func(o *options) error {
		if err := p.Validate(); err != nil {
			return err
		}
		o.lockout = p
		return nil
	}
}

// WithTransactor makes multi-write account updates atomic.
func WithTransactor(tx Transactor) Option {
	return func(o *options) error {
		if tx == nil {
			return oops.Code("AUTH_INVALID_OPTION").Errorf("transactor is required")
		}
		o.tx = tx
		return nil
	}
}

// Service provides authentication and account operations.
type Service struct {
	users   UserRepository
	hasher  PasswordHasher
	logger  *slog.Logger
	now     func() time.Time
	lockout LockoutPolicy
	tx      Transactor

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new Service.
func NewAuthService(users UserRepository, hasher PasswordHasher, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_SERVICE").Errorf("password hasher is required")
	}
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Service{users: users, hasher: hasher, logger: o.logger, now: o.now, lockout: o.lockout, tx: o.tx}, nil
}

// fallbackDummyHash is verified against when the configured hasher cannot
// produce a dummy hash of its own.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const fallbackDummyHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// dummy returns a hash in the preferred format so that unknown emails cost
// the same verification work as known ones.
func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("vitrine-dummy-password")
		if err != nil {
			s.dummyHash = fallbackDummyHash
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// Authenticate checks an email/password pair and returns the user.
// Unknown emails and wrong passwords produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, lookupErr := s.users.GetByEmail(ctx, email)

	var targetHash string
	switch {
	case lookupErr == nil:
		targetHash = user.PasswordHash
	case errors.Is(lookupErr, ErrNotFound):
		user = nil
		targetHash = s.dummy()
	default:
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	// Always verify, even for unknown users, to keep timing uniform.
	valid := s.hasher.Verify(password, targetHash)

	now := s.now()
	if user == nil || !valid {
		if user != nil {
			s.lockout.RecordFailure(user, now)
			if err := s.users.Update(ctx, user); err != nil {
				s.logger.WarnContext(ctx, "best-effort failure counter update failed",
					"operation", "record_failure",
					"user_id", user.ID,
					"error", err.Error())
			}
		}
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	// Lockout is checked after verification to keep timing uniform.
	if status := s.lockout.Status(user, now); status.Locked {
		return nil, oops.Code("AUTH_ACCOUNT_LOCKED").
			With("locked_until", user.LockedUntil).
			With("remaining", status.Remaining.Round(time.Second).String()).
			Wrap(&LockedError{Remaining: status.Remaining})
	}

	s.lockout.RecordSuccess(user, now)

	if s.hasher.NeedsUpgrade(user.PasswordHash) {
		if newHash, err := s.hasher.Hash(password); err == nil {
			if err := s.users.UpdatePassword(ctx, user.ID, newHash); err != nil {
				s.logger.WarnContext(ctx, "best-effort password rehash failed",
					"operation", "rehash_password",
					"user_id", user.ID,
					"error", err.Error())
			} else {
				user.PasswordHash = newHash
			}
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "best-effort failure counter reset failed",
			"operation", "record_success",
			"user_id", user.ID,
			"error", err.Error())
	}

	return user, nil
}
