// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// validate is shared; a Validate is safe for concurrent use.
var validate = validator.New()

// collapse trims value and replaces every whitespace run with a single space.
func collapse(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// RequiredText checks a mandatory free-text value and returns it with
// whitespace collapsed. Length is measured in characters, not bytes.
func RequiredText(value, label string, minLen, maxLen int) (string, error) {
	if isBlank(value) {
		return "", newError(value, "%s é obrigatório", label)
	}
	clean := collapse(value)
	n := utf8.RuneCountInString(clean)
	if n < minLen {
		return "", newError(value, "%s deve ter pelo menos %d caracteres", label, minLen)
	}
	if n > maxLen {
		return "", newError(value, "%s deve ter no máximo %d caracteres", label, maxLen)
	}
	return clean, nil
}

// Email checks a bare address (no display name) with a dotted domain and
// returns it lower-cased.
func Email(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", newError(value, "Email é obrigatório")
	}
	if err := validate.Var(clean, "email"); err != nil {
		return "", newError(value, "Email inválido")
	}
	domain := clean[strings.LastIndexByte(clean, '@')+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", newError(value, "Email inválido")
	}
	return strings.ToLower(clean), nil
}

var personNamePattern = regexp.MustCompile(`^[a-zA-ZÀ-ÿ ]+$`)

// PersonName requires a first and last name made of letters only.
func PersonName(value string, minLen, maxLen int) (string, error) {
	if isBlank(value) {
		return "", newError(value, "Nome é obrigatório")
	}
	words := strings.Fields(value)
	if len(words) < 2 {
		return "", newError(value, "Nome deve conter pelo menos nome e sobrenome")
	}
	clean := strings.Join(words, " ")
	n := utf8.RuneCountInString(clean)
	if n < minLen {
		return "", newError(value, "Nome deve ter pelo menos %d caracteres", minLen)
	}
	if n > maxLen {
		return "", newError(value, "Nome deve ter no máximo %d caracteres", maxLen)
	}
	if !personNamePattern.MatchString(clean) {
		return "", newError(value, "Nome deve conter apenas letras e espaços")
	}
	return clean, nil
}
