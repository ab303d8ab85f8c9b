// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package validation

import "strings"

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// digitsOnly drops every character that is not an ASCII digit.
func digitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}

func allSame(digits string) bool {
	return strings.Count(digits, digits[:1]) == len(digits)
}

// checkDigit computes a mod-11 verifier: remainder below 2 maps to 0.
func checkDigit(digits string, weights []int) byte {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + 11 - r)
}

func descending(from, n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = from - i
	}
	return w
}

// CPF validates a Brazilian individual taxpayer number and returns its 11 digits.
func CPF(value string) (string, error) {
	if isBlank(value) {
		return "", newError(value, "CPF é obrigatório")
	}
	d := digitsOnly(value)
	if len(d) != 11 {
		return "", newError(value, "CPF deve ter 11 dígitos")
	}
	if allSame(d) {
		return "", newError(value, "CPF inválido")
	}
	if d[9] != checkDigit(d, descending(10, 9)) || d[10] != checkDigit(d, descending(11, 10)) {
		return "", newError(value, "CPF inválido")
	}
	return d, nil
}

// CNPJ validates a Brazilian company registration number and returns its 14 digits.
func CNPJ(value string) (string, error) {
	if isBlank(value) {
		return "", newError(value, "CNPJ é obrigatório")
	}
	d := digitsOnly(value)
	if len(d) != 14 {
		return "", newError(value, "CNPJ deve ter 14 dígitos")
	}
	if allSame(d) {
		return "", newError(value, "CNPJ inválido")
	}
	if d[12] != checkDigit(d, cnpjWeights1) || d[13] != checkDigit(d, cnpjWeights2) {
		return "", newError(value, "CNPJ inválido")
	}
	return d, nil
}

// Phone validates a Brazilian landline or mobile number with area code and
// returns its digits.
func Phone(value string) (string, error) {
	if isBlank(value) {
		return "", newError(value, "Telefone é obrigatório")
	}
	d := digitsOnly(value)
	if len(d) < 10 || len(d) > 11 {
		return "", newError(value, "Telefone deve ter 10 ou 11 dígitos")
	}
	ddd := int(d[0]-'0')*10 + int(d[1]-'0')
	if ddd < 11 || ddd > 99 {
		return "", newError(value, "DDD inválido")
	}
	return d, nil
}
