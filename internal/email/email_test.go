// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package email_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vitrine/vitrine/internal/email"
	"github.com/vitrine/vitrine/pkg/errutil"
)

func TestComposer_PasswordReset(t *testing.T) {
	c := email.NewComposer("https://loja.example.com/", "")
	msg, err := c.PasswordReset("ana@example.com", "Ana <script>", "AbC123", 24)
	require.NoError(t, err)

	assert.Equal(t, email.KindPasswordReset, msg.Kind)
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Contains(t, msg.HTML, `href="https://loja.example.com/redefinir-senha/AbC123"`)
	assert.Contains(t, msg.HTML, "24 horas")
	assert.Contains(t, msg.HTML, "Ana &lt;script&gt;", "names are escaped")
}

func TestComposer_Welcome(t *testing.T) {
	c := email.NewComposer("http://localhost:8080", "Loja da Ana")
	msg, err := c.Welcome("ana@example.com", "Ana")
	require.NoError(t, err)
	assert.Equal(t, "Bem-vindo(a) à Loja da Ana", msg.Subject)
	assert.Contains(t, msg.HTML, "http://localhost:8080/login")
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := email.NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, s.Send(context.Background(), email.Message{Kind: email.KindWelcome, To: "ana@example.com", Subject: "Oi"}))
	assert.Contains(t, buf.String(), `"to":"ana@example.com"`)

	err := s.Send(context.Background(), email.Message{})
	errutil.AssertErrorCode(t, err, "EMAIL_NO_RECIPIENT")
}

func TestNewResendSender_Validation(t *testing.T) {
	_, err := email.NewResendSender(email.ResendConfig{FromAddress: "no-reply@example.com"})
	assert.ErrorContains(t, err, "api key is required")

	_, err = email.NewResendSender(email.ResendConfig{APIKey: "k"})
	assert.ErrorContains(t, err, "from address is required")
}

func TestResendSender_Send(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	s, err := email.NewResendSender(email.ResendConfig{
		APIKey: "re_test", FromName: "Vitrine", FromAddress: "no-reply@example.com", Endpoint: srv.URL,
	})
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), email.Message{To: "ana@example.com", Subject: "Oi", HTML: "<p>oi</p>"}))
	assert.Equal(t, "/emails", gotPath)
	assert.Equal(t, "Bearer re_test", gotAuth)
	assert.Equal(t, "Vitrine <no-reply@example.com>", gotBody["from"])
	assert.Equal(t, []any{"ana@example.com"}, gotBody["to"])
	assert.Equal(t, "<p>oi</p>", gotBody["html"])
}

func TestResendSender_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	s, err := email.NewResendSender(email.ResendConfig{APIKey: "k", FromAddress: "x@example.com", Endpoint: srv.URL})
	require.NoError(t, err)

	err = s.Send(context.Background(), email.Message{To: "ana@example.com"})
	errutil.AssertErrorCode(t, err, "EMAIL_REJECTED")
	assert.ErrorContains(t, err, "invalid from")
}

func TestResendSender_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	s, err := email.NewResendSender(email.ResendConfig{APIKey: "k", FromAddress: "x@example.com", Endpoint: endpoint})
	require.NoError(t, err)

	err = s.Send(context.Background(), email.Message{To: "ana@example.com"})
	errutil.AssertErrorCode(t, err, "EMAIL_SEND_FAILED")
}

func TestNewResendSender_RejectsRelativeEndpoint(t *testing.T) {
	_, err := email.NewResendSender(email.ResendConfig{APIKey: "k", FromAddress: "x@example.com", Endpoint: "api.local"})
	errutil.AssertErrorCode(t, err, "EMAIL_INVALID_CONFIG")
}

// recordingSink captures delivered messages.
type recordingSink struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
	gate chan struct{}
}

func (r *recordingSink) Send(_ context.Context, msg email.Message) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func TestAsyncSink_DeliversAndDrainsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	next := &recordingSink{}
	var (
		mu      sync.Mutex
		results []error
	)
	s := email.NewAsyncSink(next, email.AsyncOptions{
		Workers: 2,
		OnResult: func(_ email.Kind, err error) {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, err)
		},
	})

	for range 5 {
		require.NoError(t, s.Send(context.Background(), email.Message{Kind: email.KindWelcome, To: "a@example.com"}))
	}
	require.NoError(t, s.Close())

	assert.Len(t, next.sent, 5)
	assert.Len(t, results, 5)
	assert.ErrorIs(t, s.Send(context.Background(), email.Message{To: "a@example.com"}), email.ErrClosed)
}

func TestAsyncSink_FailuresAreReportedNotReturned(t *testing.T) {
	defer goleak.VerifyNone(t)

	next := &recordingSink{err: errors.New("provider down")}
	var buf bytes.Buffer
	var got error
	s := email.NewAsyncSink(next, email.AsyncOptions{
		Workers:  1,
		Logger:   slog.New(slog.NewJSONHandler(&buf, nil)),
		OnResult: func(_ email.Kind, err error) { got = err },
	})

	require.NoError(t, s.Send(context.Background(), email.Message{Kind: email.KindPasswordReset, To: "a@example.com"}))
	require.NoError(t, s.Close())

	assert.ErrorContains(t, got, "provider down")
	assert.Contains(t, buf.String(), "email delivery failed")
}

func TestAsyncSink_NeverBlocks(t *testing.T) {
	defer goleak.VerifyNone(t)

	next := &recordingSink{gate: make(chan struct{})}
	s := email.NewAsyncSink(next, email.AsyncOptions{Workers: 1, QueueSize: 1, Timeout: time.Second})

	// The worker takes the first message and blocks on the gate; the second
	// fills the queue.
	require.NoError(t, s.Send(context.Background(), email.Message{To: "1@example.com"}))
	assert.Eventually(t, func() bool {
		return s.Send(context.Background(), email.Message{To: "2@example.com"}) == nil
	}, time.Second, time.Millisecond)

	err := s.Send(context.Background(), email.Message{To: "3@example.com"})
	assert.ErrorIs(t, err, email.ErrQueueFull)

	close(next.gate)
	require.NoError(t, s.Close())
}
