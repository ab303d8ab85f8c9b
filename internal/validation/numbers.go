// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package validation

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyCeiling is the largest accepted monetary amount.
var MoneyCeiling = decimal.RequireFromString("9999999.99")

var plainDecimal = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

var errNotPlainDecimal = errors.New("not a plain decimal")

// parseDecimal accepts both "1234.56" and the Brazilian "1.234,56". Exponent
// notation is refused before it reaches the decimal parser.
func parseDecimal(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	if !plainDecimal.MatchString(s) {
		return decimal.Zero, errNotPlainDecimal
	}
	return decimal.NewFromString(s)
}

// Money parses an exact decimal amount with at most two fractional digits
// within [min, MoneyCeiling].
func Money(value, label string, minValue decimal.Decimal) (decimal.Decimal, error) {
	if isBlank(value) {
		return decimal.Zero, newError(value, "%s é obrigatório", label)
	}
	d, err := parseDecimal(value)
	if err != nil {
		return decimal.Zero, newError(value, "%s deve ser um número válido", label)
	}
	if d.LessThan(minValue) {
		if minValue.IsZero() {
			return decimal.Zero, newError(value, "%s não pode ser negativo", label)
		}
		return decimal.Zero, newError(value, "%s deve ser maior ou igual a %s", label, minValue.String())
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, newError(value, "%s deve ter no máximo 2 casas decimais", label)
	}
	if d.GreaterThan(MoneyCeiling) {
		return decimal.Zero, newError(value, "%s não pode ser superior a R$ 9.999.999,99", label)
	}
	return d, nil
}

// Integer parses a whole number within [minValue, maxValue]. A value that is not
// a number gets a different message from one that is out of range.
func Integer(value, label string, minValue, maxValue int64) (int64, error) {
	if isBlank(value) {
		return 0, newError(value, "%s é obrigatório", label)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, newError(value, "%s deve ser um número inteiro válido", label)
	}
	if n < minValue {
		return 0, newError(value, "%s deve ser maior ou igual a %d", label, minValue)
	}
	if n > maxValue {
		return 0, newError(value, "%s deve ser menor ou igual a %d", label, maxValue)
	}
	return n, nil
}

// PositiveIntList parses a comma-separated list of unique positive integers,
// preserving order.
func PositiveIntList(value, label string) ([]int64, error) {
	if isBlank(value) {
		return nil, newError(value, "%s é obrigatória", label)
	}
	parts := strings.Split(value, ",")
	out := make([]int64, 0, len(parts))
	seen := make(map[int64]struct{}, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, newError(value, "%s deve conter apenas números separados por vírgula", label)
		}
		if n <= 0 {
			return nil, newError(value, "Todos os números devem ser maiores que zero")
		}
		if _, dup := seen[n]; dup {
			return nil, newError(value, "Não pode haver números duplicados na ordem")
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}
