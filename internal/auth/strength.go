// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package auth

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// StrengthPolicy describes what a new password must contain.
type StrengthPolicy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// DefaultStrengthPolicy only enforces a minimum length.
var DefaultStrengthPolicy = StrengthPolicy{MinLength: 6}

// Check returns ok, or false with the first unmet requirement.
func (p StrengthPolicy) Check(plain string) (bool, string) {
	if utf8.RuneCountInString(plain) < p.MinLength {
		return false, fmt.Sprintf("Senha deve ter pelo menos %d caracteres", p.MinLength)
	}
	var upper, lower, digit, special bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	switch {
	case p.RequireUpper && !upper:
		return false, "Senha deve conter pelo menos uma letra maiúscula"
	case p.RequireLower && !lower:
		return false, "Senha deve conter pelo menos uma letra minúscula"
	case p.RequireDigit && !digit:
		return false, "Senha deve conter pelo menos um número"
	case p.RequireSpecial && !special:
		return false, "Senha deve conter pelo menos um caractere especial"
	}
	return true, ""
}

// CheckPasswordStrength applies DefaultStrengthPolicy.
func CheckPasswordStrength(plain string) (bool, string) {
	return DefaultStrengthPolicy.Check(plain)
}
