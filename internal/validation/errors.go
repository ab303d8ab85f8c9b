// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package validation provides the field rules used to check and normalize form input.
//
// Every rule is a pure function that returns the normalized value or a *Error.
// Rules never know which form field they are applied to; the Collector attaches
// the field name when a DTO parser records the failure.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a single validation failure.
type Error struct {
	// Field is the form field the failure belongs to. Empty for rule-level errors
	// that have not been attributed yet.
	Field string
	// Message is the user-facing text.
	Message string
	// Value is the offending raw value. Nil for secrets.
	Value any
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func newError(value any, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Value: value}
}

// Errors is an ordered collection of validation failures.
type Errors []*Error

func (es Errors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ByField returns the first message per field.
func (es Errors) ByField() map[string]string {
	out := make(map[string]string, len(es))
	for _, e := range es {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}

// Messages returns every message in order.
func (es Errors) Messages() []string {
	out := make([]string, 0, len(es))
	for _, e := range es {
		out = append(out, e.Message)
	}
	return out
}

// As reports whether err carries validation failures and returns them.
// A lone *Error is returned as a one-element collection.
func As(err error) (Errors, bool) {
	var es Errors
	if errors.As(err, &es) {
		return es, true
	}
	var e *Error
	if errors.As(err, &e) {
		return Errors{e}, true
	}
	return nil, false
}

// Collector gathers failures for a whole payload so every problem can be
// reported at once.
type Collector struct {
	errs   Errors
	failed map[string]bool
}

// Add records err against field. It returns true when err is nil.
func (c *Collector) Add(field string, err error) bool {
	if err == nil {
		return true
	}
	var ve *Error
	if errors.As(err, &ve) {
		cp := *ve
		cp.Field = field
		c.append(&cp)
		return false
	}
	c.append(&Error{Field: field, Message: err.Error()})
	return false
}

// Fail records a message against field.
func (c *Collector) Fail(field, message string) {
	c.append(&Error{Field: field, Message: message})
}

func (c *Collector) append(e *Error) {
	if c.failed == nil {
		c.failed = make(map[string]bool)
	}
	c.failed[e.Field] = true
	c.errs = append(c.errs, e)
}

// Valid reports whether none of the given fields has failed so far.
// Cross-field rules use it to skip checks whose inputs are already invalid.
func (c *Collector) Valid(fields ...string) bool {
	for _, f := range fields {
		if c.failed[f] {
			return false
		}
	}
	return true
}

// Err returns the collected failures, or nil when there are none.
func (c *Collector) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	out := make(Errors, len(c.errs))
	copy(out, c.errs)
	return out
}

// Check records err against field and passes v through, so a parser can
// assign and collect in one statement.
func Check[T any](c *Collector, field string, v T, err error) T {
	c.Add(field, err)
	return v
}
