// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package dto

import (
	"strings"

	"github.com/vitrine/vitrine/internal/validation"
)

// Login is the payload of the sign-in form.
type Login struct {
	Email    string
	Password string
	// Redirect is where to go after signing in; always a local path.
	Redirect string
}

// ParseLogin validates the sign-in form. Only presence and email shape are
// checked so that failures never hint at whether the account exists.
func ParseLogin(f Form) (*Login, error) {
	var c validation.Collector
	out := &Login{
		Email:    email(&c, f),
		Redirect: SafeRedirect(f.Get(FieldRedirect), "/"),
	}
	out.Password = f.Get(FieldPassword)
	if strings.TrimSpace(out.Password) == "" {
		c.Fail(FieldPassword, "Senha é obrigatória")
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Register is the payload of the public sign-up form. Accounts created this
// way are customers.
type Register struct {
	CustomerFields
	Password string
}

// ParseRegister validates the public sign-up form. The name must also pass
// PersonName, and the confirmation is compared only when the password itself is
// valid.
func ParseRegister(f Form) (*Register, error) {
	var c validation.Collector
	out := &Register{CustomerFields: customerFields(&c, f)}
	if c.Valid(FieldName) {
		out.Name = fullName(&c, f)
	}
	out.Password = requiredPassword(&c, f, FieldPassword)
	if c.Valid(FieldPassword) {
		c.Add(FieldConfirmPassword, validation.PasswordsMatch(out.Password, f.Get(FieldConfirmPassword)))
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ForgotPassword is the payload of the reset-request form.
type ForgotPassword struct {
	Email string
}

// ParseForgotPassword validates the reset-request form.
func ParseForgotPassword(f Form) (*ForgotPassword, error) {
	var c validation.Collector
	out := &ForgotPassword{Email: email(&c, f)}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResetPassword is the payload of the new-password form reached from a reset link.
type ResetPassword struct {
	Token    string
	Password string
}

// ParseResetPassword validates the new-password form. token comes from the URL.
func ParseResetPassword(token string, f Form) (*ResetPassword, error) {
	var c validation.Collector
	out := &ResetPassword{Token: strings.TrimSpace(token)}
	if out.Token == "" {
		c.Fail(FieldToken, "Link inválido ou expirado")
	}
	out.Password = requiredPassword(&c, f, FieldPassword)
	if c.Valid(FieldPassword) {
		c.Add(FieldConfirmPassword, validation.PasswordsMatch(out.Password, f.Get(FieldConfirmPassword)))
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile is the payload of the own-profile form. CPF and Phone are
// optional and empty when not supplied.
type UpdateProfile struct {
	Name  string
	Email string
	CPF   string
	Phone string
}

// ParseUpdateProfile validates the own-profile form.
func ParseUpdateProfile(f Form) (*UpdateProfile, error) {
	var c validation.Collector
	out := &UpdateProfile{
		Name:  fullName(&c, f),
		Email: email(&c, f),
	}
	var err error
	if strings.TrimSpace(f.Get(FieldCPF)) != "" {
		out.CPF, err = validation.CPF(f.Get(FieldCPF))
		c.Add(FieldCPF, err)
	}
	if strings.TrimSpace(f.Get(FieldPhone)) != "" {
		out.Phone, err = validation.Phone(f.Get(FieldPhone))
		c.Add(FieldPhone, err)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangePassword is the payload of the change-own-password form.
type ChangePassword struct {
	Current string
	New     string
}

// ParseChangePassword validates the change-own-password form. The "differs from
// current" and confirmation rules run only when their inputs are themselves
// valid, so a weak new password reports only the strength problem.
func ParseChangePassword(f Form) (*ChangePassword, error) {
	var c validation.Collector
	out := &ChangePassword{Current: f.Get(FieldCurrentPassword)}
	if strings.TrimSpace(out.Current) == "" {
		c.Fail(FieldCurrentPassword, "Senha atual é obrigatória")
	}

	out.New = requiredPassword(&c, f, FieldNewPassword)

	if c.Valid(FieldCurrentPassword, FieldNewPassword) && out.New == out.Current {
		c.Fail(FieldNewPassword, "A nova senha deve ser diferente da senha atual")
	}
	if c.Valid(FieldNewPassword) {
		c.Add(FieldConfirmPassword, validation.PasswordsMatch(out.New, f.Get(FieldConfirmPassword)))
	}

	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
