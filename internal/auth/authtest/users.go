// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package authtest provides an in-memory auth.UserRepository for tests.
package authtest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vitrine/vitrine/internal/auth"
)

// Users is an in-memory UserRepository with the same reset token and
// uniqueness semantics as the Postgres one.
type Users struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*auth.User
}

// NewUsers returns an empty repository.
func NewUsers() *Users {
	return &Users{byID: make(map[int64]*auth.User)}
}

func (m *Users) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.byID {
		if strings.EqualFold(other.Email, u.Email) {
			return auth.ErrDuplicateEmail
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *Users) get(id int64) (*auth.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Users) GetByID(_ context.Context, id int64) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *Users) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return m.get(id)
		}
	}
	return nil, auth.ErrNotFound
}

func (m *Users) GetByResetTokenHash(_ context.Context, hash string, now time.Time) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.byID {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == hash && u.ResetExpiresAt.After(now) {
			return m.get(id)
		}
	}
	return nil, auth.ErrNotFound
}

func (m *Users) ListByRole(_ context.Context, role auth.Role) ([]*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*auth.User
	for id, u := range m.byID {
		if u.Role == role {
			cp, _ := m.get(id)
			out = append(out, cp)
		}
	}
	slices.SortFunc(out, func(a, b *auth.User) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Users) Update(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[u.ID]
	if !ok {
		return auth.ErrNotFound
	}
	cur.Name, cur.Email, cur.Role = u.Name, u.Email, u.Role
	cur.CPF, cur.Phone = u.CPF, u.Phone
	cur.FailedAttempts, cur.LockedUntil = u.FailedAttempts, u.LockedUntil
	return nil
}

func (m *Users) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	cur.PasswordHash = hash
	cur.ResetTokenHash, cur.ResetExpiresAt = nil, nil
	return nil
}

func (m *Users) UpdatePhoto(_ context.Context, id int64, photo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	cur.Photo = photo
	return nil
}

func (m *Users) SetResetToken(_ context.Context, id int64, hash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	cur.ResetTokenHash, cur.ResetExpiresAt = &hash, &expiresAt
	return nil
}

func (m *Users) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return auth.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

var _ auth.UserRepository = (*Users)(nil)
