// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"time"

	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenLength      = 32
	ResetTokenExpiryHours = 24
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateResetToken returns a crypto-random alphanumeric token of length
// characters. Length 0 selects ResetTokenLength.
func GenerateResetToken(length int) (string, error) {
	if length == 0 {
		length = ResetTokenLength
	}
	if length < 0 {
		return "", oops.Code("RESET_TOKEN_GENERATE_FAILED").With("length", length).Errorf("negative token length")
	}
	limit := big.NewInt(int64(len(tokenAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
		}
		out[i] = tokenAlphabet[n.Int64()]
	}
	return string(out), nil
}

// HashResetToken computes the hex SHA-256 digest stored in place of the token.
func HashResetToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// TokenExpiry returns the absolute expiry for a token issued at now.
// Hours 0 selects ResetTokenExpiryHours.
func TokenExpiry(now time.Time, hours int) time.Time {
	if hours <= 0 {
		hours = ResetTokenExpiryHours
	}
	return now.Add(time.Duration(hours) * time.Hour)
}
