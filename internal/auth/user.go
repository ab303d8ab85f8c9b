// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package auth

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Role is the closed set of authorization classes.
type Role string

// Known roles.
const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "cliente"
)

// Roles lists every known role in display order.
var Roles = []Role{RoleAdmin, RoleCustomer}

// ParseRole returns the role named s.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Roles, r) {
		return r, true
	}
	return "", false
}

// Label is the Portuguese display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleCustomer:
		return "Cliente"
	}
	return string(r)
}

// User is a persisted identity. CPF and Phone are empty for users that never
// supplied them (typically administrators).
type User struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	CPF            string
	Phone          string
	Photo          string
	ResetTokenHash *string
	ResetExpiresAt *time.Time
	FailedAttempts int
	LockedUntil    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser creates a User ready to be stored.
func NewUser(name, email, passwordHash string, role Role) (*User, error) {
	if passwordHash == "" {
		return nil, oops.Code("USER_INVALID").Errorf("password hash cannot be empty")
	}
	if _, ok := ParseRole(string(role)); !ok {
		return nil, oops.Code("USER_INVALID").With("role", string(role)).Errorf("unknown role")
	}
	now := time.Now()
	return &User{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Identity returns the sanitized snapshot of u held in sessions.
func (u *User) Identity() Identity {
	return Identity{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Photo: u.Photo,
	}
}

// IsLocked reports whether a lock is in force at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// RecordFailure applies DefaultLockoutPolicy to one failed sign-in.
func (u *User) RecordFailure(now time.Time) {
	DefaultLockoutPolicy.RecordFailure(u, now)
}

// RecordSuccess clears the failure counter and lock.
func (u *User) RecordSuccess(now time.Time) {
	DefaultLockoutPolicy.RecordSuccess(u, now)
}

// Identity is the subset of a User kept in session state. It deliberately has
// no password or token fields.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	Photo string `json:"photo,omitempty"`
}

// HasRole reports whether the identity holds one of roles.
func (i Identity) HasRole(roles ...Role) bool {
	return slices.Contains(roles, i.Role)
}

// IsAdmin reports whether the identity is an administrator.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user and sets its ID.
	// Returns ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	// Returns ErrNotFound if no user has the given email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByResetTokenHash retrieves the user holding an unexpired reset token.
	// Expired tokens are reported as ErrNotFound.
	GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*User, error)

	// ListByRole returns users of role ordered by name.
	ListByRole(ctx context.Context, role Role) ([]*User, error)

	// Update stores name, email, role, CPF, phone and lockout state.
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces the password hash and clears any reset token,
	// so outstanding reset links stop working.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// UpdatePhoto sets the profile photo path.
	UpdatePhoto(ctx context.Context, id int64, photo string) error

	// SetResetToken stores a reset token hash and its expiry.
	SetResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error

	// Delete removes a user.
	Delete(ctx context.Context, id int64) error
}
