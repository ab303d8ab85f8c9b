// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package auth provides authentication primitives for Vitrine.
//
// # Domain Types
//
// A User is the persisted identity record. Its Identity method returns the
// sanitized snapshot kept in web sessions; the snapshot never carries the
// password hash or reset token. Users should be created with NewUser, which
// enforces a known role and a non-empty password hash.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - sign-in with lockout, self-registration, profile and password
//     changes, and user administration
//   - PasswordResetService - the issue/consume reset token flow
//
// Services are created with New*Service constructors that validate dependencies.
//
// # Password policy
//
// CheckPasswordStrength enforces only a minimum length. StrengthPolicy also
// carries character-class rules, but DefaultStrengthPolicy leaves them off;
// enabling them is a product decision that has not been taken.
package auth
