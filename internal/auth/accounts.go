// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"
)

// NewAccount describes a user to create. Password is plaintext.
type NewAccount struct {
	Name     string
	Email    string
	Password string
	Role     Role
	CPF      string
	Phone    string
}

// AccountChanges describes an update to an existing user. A nil Role keeps
// the current one and an empty Password keeps the current hash.
type AccountChanges struct {
	Name     string
	Email    string
	CPF      string
	Phone    string
	Role     *Role
	Password string
}

// CreateUser hashes the password and stores a new user.
func (s *Service) CreateUser(ctx context.Context, in NewAccount) (*User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("AUTH_CREATE_FAILED").With("operation", "hash password").Wrap(err)
	}
	user, err := NewUser(in.Name, in.Email, hash, in.Role)
	if err != nil {
		return nil, err
	}
	user.CPF = in.CPF
	user.Phone = in.Phone

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, oops.Code("AUTH_EMAIL_TAKEN").With("email", user.Email).Wrap(err)
		}
		return nil, oops.Code("AUTH_CREATE_FAILED").With("operation", "create user").Wrap(err)
	}
	return user, nil
}

// Register creates a customer account through public self-registration.
func (s *Service) Register(ctx context.Context, in NewAccount) (*User, error) {
	in.Role = RoleCustomer
	return s.CreateUser(ctx, in)
}

// GetUser returns the user with id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, oops.Code("AUTH_GET_FAILED").With("user_id", id).Wrap(err)
	}
	return user, nil
}

// ListUsers returns every user of role.
func (s *Service) ListUsers(ctx context.Context, role Role) ([]*User, error) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, oops.Code("AUTH_LIST_FAILED").With("role", string(role)).Wrap(err)
	}
	return users, nil
}

// ensureEmailFree fails when email belongs to a user other than id.
func (s *Service) ensureEmailFree(ctx context.Context, email string, id int64) error {
	other, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil
	case err != nil:
		return oops.Code("AUTH_UPDATE_FAILED").With("operation", "get user by email").Wrap(err)
	case other.ID != id:
		return oops.Code("AUTH_EMAIL_TAKEN").With("email", email).Wrap(ErrDuplicateEmail)
	}
	return nil
}

// UpdateUser applies changes to user id and returns the updated record.
// A new password is hashed before anything is written, and the profile and
// password writes share one transaction, so a failed request leaves the
// stored user untouched.
func (s *Service) UpdateUser(ctx context.Context, id int64, changes AccountChanges) (*User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(changes.Email)
	if email != user.Email {
		if err := s.ensureEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
	}
	if changes.Role != nil {
		if _, ok := ParseRole(string(*changes.Role)); !ok {
			return nil, oops.Code("USER_INVALID").With("role", string(*changes.Role)).Errorf("unknown role")
		}
	}

	var hash string
	if changes.Password != "" {
		if hash, err = s.hashPassword(changes.Password); err != nil {
			return nil, err
		}
	}

	updated := *user
	updated.Name = changes.Name
	updated.Email = email
	updated.CPF = changes.CPF
	updated.Phone = changes.Phone
	if changes.Role != nil {
		updated.Role = *changes.Role
	}
	updated.UpdatedAt = s.now()

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Update(ctx, &updated); err != nil {
			if errors.Is(err, ErrDuplicateEmail) {
				return oops.Code("AUTH_EMAIL_TAKEN").With("email", email).Wrap(err)
			}
			return oops.Code("AUTH_UPDATE_FAILED").With("user_id", id).Wrap(err)
		}
		if hash == "" {
			return nil
		}
		if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
			return oops.Code("AUTH_PASSWORD_FAILED").With("user_id", id).Wrap(err)
		}
		updated.PasswordHash = hash
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateProfile lets a signed-in user edit their own name, email and documents.
func (s *Service) UpdateProfile(ctx context.Context, id int64, name, email, cpf, phone string) (*User, error) {
	return s.UpdateUser(ctx, id, AccountChanges{Name: name, Email: email, CPF: cpf, Phone: phone})
}

func (s *Service) hashPassword(plain string) (string, error) {
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return "", oops.Code("AUTH_PASSWORD_FAILED").With("operation", "hash password").Wrap(err)
	}
	return hash, nil
}

func (s *Service) setPassword(ctx context.Context, user *User, plain string) error {
	hash, err := s.hashPassword(plain)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return oops.Code("AUTH_PASSWORD_FAILED").With("user_id", user.ID).Wrap(err)
	}
	user.PasswordHash = hash
	return nil
}

// ChangePassword replaces the password of user id after checking current.
func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, user.PasswordHash) {
		return oops.Code("AUTH_WRONG_PASSWORD").With("user_id", id).Wrap(ErrWrongPassword)
	}
	return s.setPassword(ctx, user, next)
}

// UpdatePhoto records the stored photo path and returns the updated user.
func (s *Service) UpdatePhoto(ctx context.Context, id int64, photo string) (*User, error) {
	if err := s.users.UpdatePhoto(ctx, id, photo); err != nil {
		return nil, oops.Code("AUTH_PHOTO_FAILED").With("user_id", id).Wrap(err)
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes user id on behalf of actorID.
func (s *Service) DeleteUser(ctx context.Context, id, actorID int64) error {
	if id == actorID {
		return oops.Code("AUTH_SELF_DELETE").With("user_id", id).Wrap(ErrSelfDelete)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return oops.Code("AUTH_DELETE_FAILED").With("user_id", id).Wrap(err)
	}
	return nil
}
