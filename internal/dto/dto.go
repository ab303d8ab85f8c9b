// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package dto parses submitted forms into validated request objects.
//
// Each ParseX function either returns a fully normalized value or nil and a
// validation.Errors holding every failure found. Nothing is returned half-built.
package dto

import (
	"strings"

	"github.com/vitrine/vitrine/internal/validation"
)

// Form is the read side of a submitted form. url.Values satisfies it.
type Form interface {
	Get(key string) string
}

// Form field names shared by templates and parsers.
const (
	FieldID              = "id"
	FieldName            = "nome"
	FieldEmail           = "email"
	FieldPassword        = "senha"
	FieldConfirmPassword = "confirmar_senha"
	FieldCurrentPassword = "senha_atual"
	FieldNewPassword     = "senha_nova"
	FieldCPF             = "cpf"
	FieldPhone           = "telefone"
	FieldRole            = "perfil"
	FieldDescription     = "descricao"
	FieldPrice           = "preco"
	FieldQuantity        = "quantidade"
	FieldCategoryID      = "categoria_id"
	FieldDiscount        = "desconto"
	FieldToken           = "token"
	FieldRedirect        = "redirect"
	FieldNewOrder        = "nova_ordem"
)

// maxID bounds identifiers to the BIGSERIAL range.
const maxID = 1<<63 - 1

func parseID(c *validation.Collector, f Form, label string) int64 {
	id, err := validation.Integer(f.Get(FieldID), label, 1, maxID)
	c.Add(FieldID, err)
	return id
}

// optionalPassword validates a password only when one was typed.
func optionalPassword(c *validation.Collector, f Form, field string) string {
	raw := f.Get(field)
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	pw, err := validation.Password(raw, validation.PasswordMin, validation.PasswordMax, false)
	c.Add(field, err)
	return pw
}

func requiredPassword(c *validation.Collector, f Form, field string) string {
	pw, err := validation.Password(f.Get(field), validation.PasswordMin, validation.PasswordMax, true)
	c.Add(field, err)
	return pw
}

// SafeRedirect returns target when it is a local absolute path, otherwise fallback.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
