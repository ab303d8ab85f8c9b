// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

const (
	cookieIssuer = "vitrine"
	// MinSecretLength is the shortest accepted signing secret, in bytes.
	MinSecretLength = 32
)

// ErrInvalidCookie is returned when a cookie value fails signature or claim
// checks.
var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieCodec signs session ids into HS256 tokens and verifies them.
type CookieCodec struct {
	secret []byte
	now    func() time.Time
}

// NewCookieCodec creates a codec. The secret must be at least
// MinSecretLength bytes.
func NewCookieCodec(secret []byte) (*CookieCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, oops.Code("SESSION_SECRET_TOO_SHORT").
			With("min_length", MinSecretLength).
			With("length", len(secret)).
			Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	return &CookieCodec{secret: append([]byte(nil), secret...), now: time.Now}, nil
}

// Encode returns the signed cookie value carrying id.
func (c *CookieCodec) Encode(id string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       id,
		Issuer:   cookieIssuer,
		IssuedAt: jwt.NewNumericDate(c.now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", oops.Code("SESSION_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Decode verifies value and returns the session id it carries.
func (c *CookieCodec) Decode(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", oops.Code("SESSION_COOKIE_INVALID").
			With("reason", err.Error()).
			Wrap(ErrInvalidCookie)
	}
	if claims.ID == "" {
		return "", oops.Code("SESSION_COOKIE_INVALID").
			With("reason", "missing session id").
			Wrap(ErrInvalidCookie)
	}
	return claims.ID, nil
}
