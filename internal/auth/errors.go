// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package auth

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when an email is already registered to another user.
var ErrDuplicateEmail = errors.New("email already registered")

// Errors surfaced to handlers, always wrapped with an oops code.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
	ErrSelfDelete         = errors.New("users cannot delete themselves")
)

// LockedError carries how long a locked account stays locked. It matches
// ErrAccountLocked under errors.Is.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string { return ErrAccountLocked.Error() }

func (e *LockedError) Unwrap() error { return ErrAccountLocked }

// LockRemaining returns the time left on the lock behind err, or false when
// err is not a lockout.
func LockRemaining(err error) (time.Duration, bool) {
	var le *LockedError
	if errors.As(err, &le) {
		return le.Remaining, true
	}
	return 0, false
}
