// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes
)

// DefaultBcryptCost is used when a BcryptHasher is built with cost 0.
const DefaultBcryptCost = bcrypt.DefaultCost

// Hash algorithm names accepted by NewHasher.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted hash of the password.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed or foreign
	// hash is a mismatch, never an error.
	Verify(password, hash string) bool

	// NeedsUpgrade returns true if hash was produced with weaker or other
	// parameters than the hasher would use today.
	NeedsUpgrade(hash string) bool
}

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. Cost 0 selects DefaultBcryptCost.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, oops.Code("AUTH_INVALID_COST").With("cost", cost).
			Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

// Hash produces a bcrypt hash of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}
	return string(out), nil
}

// Verify checks if the password matches the bcrypt hash.
func (h *BcryptHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsUpgrade returns true for non-bcrypt hashes and bcrypt hashes of a lower cost.
func (h *BcryptHasher) NeedsUpgrade(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < h.cost
}

// Argon2idHasher implements PasswordHasher using argon2id.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash in PHC string format.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

type argon2Params struct {
	memory, time uint32
	threads      uint8
	salt, key    []byte
}

func parseArgon2id(encoded string) (*argon2Params, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, false
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, false
	}
	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, false
	}
	if threads == 0 || threads > 255 || time == 0 {
		return nil, false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1<<10 {
		return nil, false
	}
	return &argon2Params{memory: memory, time: time, threads: uint8(threads), salt: salt, key: key}, true
}

// Verify checks if the password matches the argon2id hash.
func (h *Argon2idHasher) Verify(password, encoded string) bool {
	p, ok := parseArgon2id(encoded)
	if !ok {
		return false
	}
	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(computed, p.key) == 1
}

// NeedsUpgrade returns true if the hash is not argon2id with the current parameters.
func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	p, ok := parseArgon2id(hash)
	if !ok {
		return true
	}
	return p.memory < argon2Memory || p.time < argon2Time
}

// MultiHasher hashes with a preferred algorithm and verifies every supported
// format, so stored hashes migrate on the next successful login.
type MultiHasher struct {
	preferred PasswordHasher
	bcrypt    *BcryptHasher
	argon2    *Argon2idHasher
}

// NewHasher builds a MultiHasher preferring algorithm. bcryptCost applies to
// bcrypt hashes whichever algorithm is preferred.
func NewHasher(algorithm string, bcryptCost int) (*MultiHasher, error) {
	bc, err := NewBcryptHasher(bcryptCost)
	if err != nil {
		return nil, err
	}
	m := &MultiHasher{bcrypt: bc, argon2: NewArgon2idHasher()}
	switch algorithm {
	case "", AlgorithmBcrypt:
		m.preferred = m.bcrypt
	case AlgorithmArgon2id:
		m.preferred = m.argon2
	default:
		return nil, oops.Code("AUTH_UNKNOWN_ALGORITHM").With("algorithm", algorithm).
			Errorf("unsupported hash algorithm")
	}
	return m, nil
}

func (m *MultiHasher) hasherFor(hash string) PasswordHasher {
	if strings.HasPrefix(hash, "$argon2id$") {
		return m.argon2
	}
	return m.bcrypt
}

// Hash hashes with the preferred algorithm.
func (m *MultiHasher) Hash(password string) (string, error) {
	return m.preferred.Hash(password)
}

// Verify checks password against a hash of any supported format.
func (m *MultiHasher) Verify(password, hash string) bool {
	return m.hasherFor(hash).Verify(password, hash)
}

// NeedsUpgrade is true when hash is of a non-preferred algorithm or uses
// outdated parameters.
func (m *MultiHasher) NeedsUpgrade(hash string) bool {
	if m.hasherFor(hash) != m.preferred {
		return true
	}
	return m.preferred.NeedsUpgrade(hash)
}
