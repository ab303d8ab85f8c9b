// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/pkg/errutil"
)

func TestLockoutPolicy_Status(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(10 * time.Minute)

	tests := []struct {
		name        string
		failures    int
		lockedUntil *time.Time
		want        auth.LockoutStatus
	}{
		{name: "clean account", want: auth.LockoutStatus{AttemptsLeft: 7}},
		{name: "one attempt left", failures: 6, want: auth.LockoutStatus{AttemptsLeft: 1}},
		{name: "lock in force", failures: 7, lockedUntil: &future, want: auth.LockoutStatus{Locked: true, Remaining: 10 * time.Minute}},
		{name: "expired lock", failures: 7, lockedUntil: &past, want: auth.LockoutStatus{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &auth.User{FailedAttempts: tt.failures, LockedUntil: tt.lockedUntil}
			assert.Equal(t, tt.want, auth.DefaultLockoutPolicy.Status(u, now))
		})
	}
}

func TestLockoutPolicy_RecordFailure(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	policy := auth.LockoutPolicy{Threshold: 3, Duration: time.Hour}
	u := &auth.User{}

	policy.RecordFailure(u, now)
	policy.RecordFailure(u, now)
	assert.Nil(t, u.LockedUntil)
	assert.Equal(t, 1, policy.Status(u, now).AttemptsLeft)

	policy.RecordFailure(u, now)
	require.NotNil(t, u.LockedUntil)
	assert.Equal(t, now.Add(time.Hour), *u.LockedUntil)

	later := now.Add(30 * time.Minute)
	policy.RecordFailure(u, later)
	assert.Equal(t, later.Add(time.Hour), *u.LockedUntil, "failures past the threshold restart the lock")

	policy.RecordSuccess(u, later)
	assert.Zero(t, u.FailedAttempts)
	assert.Nil(t, u.LockedUntil)
}

func TestLockoutPolicy_Validate(t *testing.T) {
	require.NoError(t, auth.DefaultLockoutPolicy.Validate())

	err := auth.LockoutPolicy{Threshold: 0, Duration: time.Minute}.Validate()
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_LOCKOUT")

	err = auth.LockoutPolicy{Threshold: 3}.Validate()
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_LOCKOUT")
}

func TestUser_LockoutLifecycle(t *testing.T) {
	now := time.Now()
	u := &auth.User{ID: 1}
	for range auth.LockoutThreshold - 1 {
		u.RecordFailure(now)
	}
	assert.False(t, u.IsLocked(now))

	u.RecordFailure(now)
	assert.True(t, u.IsLocked(now))
	assert.False(t, u.IsLocked(now.Add(auth.LockoutDuration+time.Second)))

	u.RecordSuccess(now)
	assert.Zero(t, u.FailedAttempts)
	assert.Nil(t, u.LockedUntil)
}
