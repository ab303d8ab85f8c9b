// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginLocked  = "locked"
)

// Password reset stages.
const (
	ResetRequested = "requested"
	ResetCompleted = "completed"
	ResetInvalid   = "invalid_token"
)

// Metrics holds the application counters. A nil *Metrics records nothing,
// so components can take one optionally.
type Metrics struct {
	HTTPRequests   *prometheus.CounterVec
	Logins         *prometheus.CounterVec
	Emails         *prometheus.CounterVec
	PasswordResets *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitrine_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitrine_logins_total",
			Help: "Login attempts by result",
		}, []string{"result"}),
		Emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitrine_emails_total",
			Help: "Email deliveries by kind and status",
		}, []string{"kind", "status"}),
		PasswordResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vitrine_password_resets_total",
			Help: "Password reset flow events by stage",
		}, []string{"stage"}),
	}
	reg.MustRegister(m.HTTPRequests, m.Logins, m.Emails, m.PasswordResets)
	return m
}

// RecordRequest counts one served request.
func (m *Metrics) RecordRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// RecordLogin counts a login attempt.
func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

// RecordEmail counts a delivery attempt; its signature matches
// email.ResultFunc once the kind is converted.
func (m *Metrics) RecordEmail(kind string, err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.Emails.WithLabelValues(kind, status).Inc()
}

// RecordPasswordReset counts a reset flow event.
func (m *Metrics) RecordPasswordReset(stage string) {
	if m == nil {
		return
	}
	m.PasswordResets.WithLabelValues(stage).Inc()
}
