// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package validation

import (
	"strconv"
	"unicode/utf8"
)

// Default password length bounds. PasswordMaxBytes is bcrypt's input limit;
// multi-byte characters reach it before PasswordMax.
const (
	PasswordMin      = 6
	PasswordMax      = 128
	PasswordMaxBytes = 72
)

// Password checks a password's length. When required is false an empty value
// is accepted and returned as "".
func Password(value string, minLen, maxLen int, required bool) (string, error) {
	if value == "" {
		if required {
			return "", &Error{Message: "Senha é obrigatória"}
		}
		return "", nil
	}
	n := utf8.RuneCountInString(value)
	if n < minLen {
		return "", &Error{Message: "Senha deve ter pelo menos " + strconv.Itoa(minLen) + " caracteres"}
	}
	if n > maxLen {
		return "", &Error{Message: "Senha deve ter no máximo " + strconv.Itoa(maxLen) + " caracteres"}
	}
	if len(value) > PasswordMaxBytes {
		return "", &Error{Message: "Senha deve ter no máximo " + strconv.Itoa(PasswordMaxBytes) + " bytes"}
	}
	return value, nil
}

// PasswordsMatch fails when the confirmation differs from the password.
func PasswordsMatch(password, confirmation string) error {
	if password != confirmation {
		return &Error{Message: "As senhas não coincidem"}
	}
	return nil
}
