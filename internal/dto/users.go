// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package dto

import (
	"strings"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/validation"
)

// CustomerFields are the attributes shared by customer create and edit forms.
type CustomerFields struct {
	Name  string
	Email string
	CPF   string
	Phone string
}

// CreateCustomer is the payload of the admin new-customer form.
type CreateCustomer struct {
	CustomerFields
	Password string
}

// AlterCustomer is the payload of the admin edit-customer form. An empty
// Password keeps the current one.
type AlterCustomer struct {
	ID int64
	CustomerFields
	Password string
}

// DeleteCustomer identifies the customer to remove.
type DeleteCustomer struct {
	ID int64
}

func personName(c *validation.Collector, f Form) string {
	name, err := validation.RequiredText(f.Get(FieldName), "Nome", 2, 200)
	c.Add(FieldName, err)
	return name
}

// fullName is the stricter rule for names people type about themselves:
// first and last name, letters only.
func fullName(c *validation.Collector, f Form) string {
	name, err := validation.PersonName(f.Get(FieldName), 2, 200)
	return validation.Check(c, FieldName, name, err)
}

func email(c *validation.Collector, f Form) string {
	addr, err := validation.Email(f.Get(FieldEmail))
	c.Add(FieldEmail, err)
	return addr
}

func customerFields(c *validation.Collector, f Form) CustomerFields {
	cf := CustomerFields{
		Name:  personName(c, f),
		Email: email(c, f),
	}
	cpf, err := validation.CPF(f.Get(FieldCPF))
	cf.CPF = validation.Check(c, FieldCPF, cpf, err)

	phone, err := validation.Phone(f.Get(FieldPhone))
	cf.Phone = validation.Check(c, FieldPhone, phone, err)

	return cf
}

// ParseCreateCustomer validates a new customer.
func ParseCreateCustomer(f Form) (*CreateCustomer, error) {
	var c validation.Collector
	out := &CreateCustomer{CustomerFields: customerFields(&c, f)}
	out.Password = requiredPassword(&c, f, FieldPassword)
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseAlterCustomer validates a customer edit.
func ParseAlterCustomer(f Form) (*AlterCustomer, error) {
	var c validation.Collector
	out := &AlterCustomer{
		ID:             parseID(&c, f, "ID do Cliente"),
		CustomerFields: customerFields(&c, f),
	}
	out.Password = optionalPassword(&c, f, FieldPassword)
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseDeleteCustomer validates a customer removal.
func ParseDeleteCustomer(f Form) (*DeleteCustomer, error) {
	var c validation.Collector
	out := &DeleteCustomer{ID: parseID(&c, f, "ID do Cliente")}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAdminUser is the payload of the new-user form in the admin area.
type CreateAdminUser struct {
	Name     string
	Email    string
	Password string
	Role     auth.Role
}

// AlterAdminUser is the payload of the edit-user form. An empty Password keeps
// the current one.
type AlterAdminUser struct {
	ID       int64
	Name     string
	Email    string
	Password string
	Role     auth.Role
}

// DeleteAdminUser identifies the user to remove.
type DeleteAdminUser struct {
	ID int64
}

// role defaults to administrator when the form has no role selector.
func role(c *validation.Collector, f Form) auth.Role {
	raw := strings.TrimSpace(f.Get(FieldRole))
	if raw == "" {
		return auth.RoleAdmin
	}
	r, ok := auth.ParseRole(raw)
	if !ok {
		c.Fail(FieldRole, "Perfil inválido")
	}
	return r
}

// ParseCreateAdminUser validates a new user created by an administrator.
func ParseCreateAdminUser(f Form) (*CreateAdminUser, error) {
	var c validation.Collector
	out := &CreateAdminUser{
		Name:     personName(&c, f),
		Email:    email(&c, f),
		Password: requiredPassword(&c, f, FieldPassword),
		Role:     role(&c, f),
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseAlterAdminUser validates a user edit made by an administrator.
func ParseAlterAdminUser(f Form) (*AlterAdminUser, error) {
	var c validation.Collector
	out := &AlterAdminUser{
		ID:       parseID(&c, f, "ID do Usuário"),
		Name:     personName(&c, f),
		Email:    email(&c, f),
		Password: optionalPassword(&c, f, FieldPassword),
		Role:     role(&c, f),
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseDeleteAdminUser validates a user removal.
func ParseDeleteAdminUser(f Form) (*DeleteAdminUser, error) {
	var c validation.Collector
	out := &DeleteAdminUser{ID: parseID(&c, f, "ID do Usuário")}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
