// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package email composes and delivers transactional messages.
package email

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// Kind names the purpose of a message, for logs and metrics.
type Kind string

// Message kinds.
const (
	KindWelcome       Kind = "welcome"
	KindPasswordReset Kind = "password_reset"
)

// Message is one outgoing email.
type Message struct {
	Kind    Kind
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Sink delivers messages.
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. It is
// the development provider: reset links can be copied from the output.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender. A nil logger selects slog.Default.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send implements Sink.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return oops.Code("EMAIL_NO_RECIPIENT").With("kind", string(msg.Kind)).Errorf("recipient is required")
	}
	s.logger.InfoContext(ctx, "email not sent, log provider active",
		"kind", string(msg.Kind),
		"to", msg.To,
		"subject", msg.Subject,
		"html", msg.HTML)
	return nil
}

var _ Sink = (*LogSender)(nil)
