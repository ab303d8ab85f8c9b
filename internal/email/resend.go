// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package email

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/samber/oops"
)

// DefaultResendBaseURL is the root of the Resend API.
const DefaultResendBaseURL = "https://api.resend.com/"

// ResendConfig configures a ResendSender.
type ResendConfig struct {
	APIKey      string
	FromName    string
	FromAddress string
	// Endpoint overrides DefaultResendBaseURL.
	Endpoint string
	Client   *http.Client
}

// ResendSender delivers mail through the Resend API client.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender validates cfg and creates a sender.
func NewResendSender(cfg ResendConfig) (*ResendSender, error) {
	if cfg.APIKey == "" {
		return nil, oops.Code("EMAIL_INVALID_CONFIG").Errorf("resend api key is required")
	}
	if cfg.FromAddress == "" {
		return nil, oops.Code("EMAIL_INVALID_CONFIG").Errorf("from address is required")
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}

	client := resend.NewCustomClient(cfg.Client, cfg.APIKey)
	if cfg.Endpoint != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.Endpoint, "/") + "/")
		if err != nil || base.Scheme == "" || base.Host == "" {
			return nil, oops.Code("EMAIL_INVALID_CONFIG").With("endpoint", cfg.Endpoint).Errorf("endpoint must be an absolute URL")
		}
		client.BaseURL = base
	}

	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = cfg.FromName + " <" + cfg.FromAddress + ">"
	}
	return &ResendSender{client: client, from: from}, nil
}

// Send implements Sink. Transport failures and provider rejections get
// different codes so that only the former are worth retrying.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return oops.Code("EMAIL_NO_RECIPIENT").With("kind", string(msg.Kind)).Errorf("recipient is required")
	}
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err == nil {
		return nil
	}
	var transport *url.Error
	if errors.As(err, &transport) {
		return oops.Code("EMAIL_SEND_FAILED").With("kind", string(msg.Kind)).Wrap(err)
	}
	return oops.Code("EMAIL_REJECTED").
		With("kind", string(msg.Kind)).
		With("provider_message", err.Error()).
		Wrap(err)
}

var _ Sink = (*ResendSender)(nil)
