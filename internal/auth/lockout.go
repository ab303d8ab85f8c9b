// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package auth

import (
	"time"

	"github.com/samber/oops"
)

// Default lockout settings.
const (
	LockoutThreshold = 7
	LockoutDuration  = 15 * time.Minute
)

// DefaultLockoutPolicy locks an account for LockoutDuration after
// LockoutThreshold consecutive failed sign-ins.
var DefaultLockoutPolicy = LockoutPolicy{Threshold: LockoutThreshold, Duration: LockoutDuration}

// LockoutPolicy decides when repeated sign-in failures lock an account.
type LockoutPolicy struct {
	Threshold int
	Duration  time.Duration
}

// Validate rejects a policy that could never lock or never unlock.
func (p LockoutPolicy) Validate() error {
	if p.Threshold < 1 {
		return oops.Code("AUTH_INVALID_LOCKOUT").With("threshold", p.Threshold).Errorf("lockout threshold must be at least 1")
	}
	if p.Duration <= 0 {
		return oops.Code("AUTH_INVALID_LOCKOUT").With("duration", p.Duration).Errorf("lockout duration must be positive")
	}
	return nil
}

// LockoutStatus is the state of an account's sign-in budget at a point in time.
type LockoutStatus struct {
	Locked       bool
	Remaining    time.Duration
	AttemptsLeft int
}

// Status evaluates u at now. An expired lock counts as unlocked even before
// the next successful sign-in clears it.
func (p LockoutPolicy) Status(u *User, now time.Time) LockoutStatus {
	if u.IsLocked(now) {
		return LockoutStatus{Locked: true, Remaining: u.LockedUntil.Sub(now)}
	}
	return LockoutStatus{AttemptsLeft: max(p.Threshold-u.FailedAttempts, 0)}
}

// RecordFailure counts one failed sign-in and starts a lock once the
// threshold is reached. Every failure past the threshold restarts it.
func (p LockoutPolicy) RecordFailure(u *User, now time.Time) {
	u.FailedAttempts++
	u.LockedUntil = nil
	if u.FailedAttempts >= p.Threshold {
		until := now.Add(p.Duration)
		u.LockedUntil = &until
	}
	u.UpdatedAt = now
}

// RecordSuccess clears the failure counter and any lock.
func (p LockoutPolicy) RecordSuccess(u *User, now time.Time) {
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = now
}
