// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package session keeps the signed-in identity of a browser between requests.
//
// A session is a server-held record addressed by a random id. The browser only
// carries that id, signed, in a cookie; the identity snapshot and pending
// flash messages live in a Store.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Store when a key is absent or expired.
var ErrNotFound = errors.New("session not found")

// Store persists encoded session records with a time-to-live.
type Store interface {
	// Get returns the record stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value. The record
	// expires ttl after the call.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
