// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/vitrine/vitrine/internal/auth"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "vitrine_session"
	// DefaultTTL is the inactivity window after which a session expires.
	DefaultTTL = time.Hour
)

// FlashKind selects how a flash message is styled.
type FlashKind string

// Flash kinds.
const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Data is the record kept in the Store for one session.
type Data struct {
	Identity *auth.Identity `json:"identity,omitempty"`
	Flashes  []Flash        `json:"flashes,omitempty"`
}

// Options configure a Manager.
type Options struct {
	// TTL is the inactivity window. Defaults to DefaultTTL.
	TTL time.Duration
	// Secure marks the cookie HTTPS-only.
	Secure bool
	Logger *slog.Logger
}

// Manager issues, resolves and destroys sessions.
type Manager struct {
	store  Store
	codec  *CookieCodec
	ttl    time.Duration
	secure bool
	logger *slog.Logger
}

// NewManager creates a manager over store, signing cookies with codec.
func NewManager(store Store, codec *CookieCodec, opts Options) (*Manager, error) {
	if store == nil {
		return nil, oops.Code("SESSION_INVALID_MANAGER").Errorf("session store is required")
	}
	if codec == nil {
		return nil, oops.Code("SESSION_INVALID_MANAGER").Errorf("cookie codec is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		store:  store,
		codec:  codec,
		ttl:    opts.TTL,
		secure: opts.Secure,
		logger: opts.Logger,
	}, nil
}

// state is the per-request view of the session, shared through the context
// so that writes made by a handler are seen by later reads in the same
// request.
type state struct {
	id     string
	data   Data
	loaded bool
}

type stateKey struct{}

func stateFrom(ctx context.Context) *state {
	s, _ := ctx.Value(stateKey{}).(*state) //nolint:errcheck // type assertion, not an error
	return s
}

// load resolves the session of r. A missing, forged or expired session
// yields an empty state without error.
func (m *Manager) load(ctx context.Context, r *http.Request) (*state, error) {
	if s := stateFrom(r.Context()); s != nil && s.loaded {
		return s, nil
	}
	s := stateFrom(r.Context())
	if s == nil {
		s = &state{}
	}
	s.loaded = true
	s.id, s.data = "", Data{}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return s, nil
	}
	id, err := m.codec.Decode(cookie.Value)
	if err != nil {
		m.logger.DebugContext(ctx, "rejected session cookie", "error", err.Error())
		return s, nil
	}
	raw, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return s, oops.With("operation", "load session").Wrap(err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		m.logger.WarnContext(ctx, "discarding undecodable session",
			"operation", "decode_session",
			"error", err.Error())
		return s, nil
	}
	s.id, s.data = id, data
	return s, nil
}

func (m *Manager) save(ctx context.Context, w http.ResponseWriter, s *state) error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return oops.Code("SESSION_ENCODE_FAILED").Wrap(err)
	}
	if err := m.store.Set(ctx, s.id, raw, m.ttl); err != nil {
		return oops.With("operation", "save session").Wrap(err)
	}
	value, err := m.codec.Encode(s.id)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(value, int(m.ttl/time.Second)))
	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Create starts a new session for identity. Any session the client already
// held is deleted, so a fixed or stolen id never becomes authenticated.
// Pending flashes carry over.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, r *http.Request, identity auth.Identity) error {
	s, err := m.load(ctx, r)
	if err != nil {
		return err
	}
	if s.id != "" {
		if err := m.store.Delete(ctx, s.id); err != nil {
			return oops.With("operation", "delete previous session").Wrap(err)
		}
	}
	s.id = ulid.Make().String()
	s.data.Identity = &identity
	return m.save(ctx, w, s)
}

// Refresh replaces the identity snapshot, keeping the session id when the
// client has one.
func (m *Manager) Refresh(ctx context.Context, w http.ResponseWriter, r *http.Request, identity auth.Identity) error {
	s, err := m.load(ctx, r)
	if err != nil {
		return err
	}
	if s.id == "" {
		s.id = ulid.Make().String()
	}
	s.data.Identity = &identity
	return m.save(ctx, w, s)
}

// Current returns the identity of the request's session, if any.
func (m *Manager) Current(ctx context.Context, r *http.Request) (*auth.Identity, bool) {
	s, err := m.load(ctx, r)
	if err != nil {
		m.logger.ErrorContext(ctx, "session lookup failed", "error", err.Error())
		return nil, false
	}
	if s.data.Identity == nil {
		return nil, false
	}
	identity := *s.data.Identity
	return &identity, true
}

// Destroy deletes the session record and expires the cookie. The cookie is
// expired even when the record could not be deleted.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, m.cookie("", -1))
	s, err := m.load(ctx, r)
	if err != nil {
		return err
	}
	id := s.id
	s.id, s.data = "", Data{}
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return oops.With("operation", "destroy session").Wrap(err)
	}
	return nil
}

// Touch renews the inactivity window of an existing session.
func (m *Manager) Touch(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s, err := m.load(ctx, r)
	if err != nil {
		return err
	}
	if s.id == "" {
		return nil
	}
	return m.save(ctx, w, s)
}

// AddFlash queues a message for the next page. Anonymous visitors get a
// session without identity to hold it.
func (m *Manager) AddFlash(ctx context.Context, w http.ResponseWriter, r *http.Request, kind FlashKind, message string) error {
	s, err := m.load(ctx, r)
	if err != nil {
		return err
	}
	if s.id == "" {
		s.id = ulid.Make().String()
	}
	s.data.Flashes = append(s.data.Flashes, Flash{Kind: kind, Message: message})
	return m.save(ctx, w, s)
}

// PopFlashes returns and clears the pending messages.
func (m *Manager) PopFlashes(ctx context.Context, w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	s, err := m.load(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(s.data.Flashes) == 0 {
		return nil, nil
	}
	flashes := s.data.Flashes
	s.data.Flashes = nil
	if err := m.save(ctx, w, s); err != nil {
		return nil, err
	}
	return flashes, nil
}

// Middleware attaches a per-request session state and renews the
// inactivity window of authenticated sessions.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(context.WithValue(r.Context(), stateKey{}, &state{}))
		ctx := r.Context()
		if _, ok := m.Current(ctx, r); ok {
			if err := m.Touch(ctx, w, r); err != nil {
				m.logger.WarnContext(ctx, "session renewal failed, continuing (best-effort)",
					"operation", "touch_session",
					"error", err.Error())
			}
		}
		next.ServeHTTP(w, r)
	})
}
