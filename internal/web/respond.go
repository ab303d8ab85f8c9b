// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/session"
	"github.com/vitrine/vitrine/internal/validation"
	"github.com/vitrine/vitrine/pkg/errutil"
)

// identity returns the signed-in user, whether or not the route is gated.
func (s *Server) identity(r *http.Request) *auth.Identity {
	if id, ok := IdentityFrom(r.Context()); ok {
		return id
	}
	id, _ := s.Sessions.Current(r.Context(), r)
	return id
}

// render fills in the identity and pending flashes and writes the page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, page *Page) {
	ctx := r.Context()
	page.Identity = s.identity(r)
	flashes, err := s.Sessions.PopFlashes(ctx, w, r)
	if err != nil {
		s.Logger.WarnContext(ctx, "flash retrieval failed, continuing (best-effort)",
			"operation", "pop_flashes",
			"error", err.Error())
	}
	page.Flashes = flashes
	if page.Form == nil {
		page.Form = url.Values{}
	}
	if err := s.Renderer.Render(w, status, name, page); err != nil {
		errutil.LogError(ctx, s.Logger, "render failed", err, "template", name)
		http.Error(w, MsgInternal, http.StatusInternalServerError)
	}
}

func (s *Server) errorPage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	title := http.StatusText(status)
	switch status {
	case http.StatusForbidden:
		title = "Acesso negado"
	case http.StatusNotFound:
		title = MsgPageNotFound
	case http.StatusInternalServerError:
		title = "Erro interno"
	}
	s.render(w, r, status, "error", &Page{Title: title, Data: msg})
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	s.errorPage(w, r, http.StatusForbidden, MsgForbidden)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.errorPage(w, r, http.StatusNotFound, MsgPageNotFound)
}

// flash queues a message for the next page. Failures only lose the message.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, kind session.FlashKind, msg string) {
	if err := s.Sessions.AddFlash(r.Context(), w, r, kind, msg); err != nil {
		s.Logger.WarnContext(r.Context(), "flash not stored, continuing (best-effort)",
			"operation", "add_flash",
			"error", err.Error())
	}
}

// redirect sends a 303 after a flash.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, kind session.FlashKind, msg, target string) {
	s.flash(w, r, kind, msg)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// internal logs err and answers without leaking detail. With a fallback the
// user is redirected there with a generic flash, otherwise a 500 page is
// shown.
func (s *Server) internal(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	errutil.LogError(r.Context(), s.Logger, "request failed", err,
		"method", r.Method,
		"path", r.URL.Path)
	if fallback != "" {
		s.redirect(w, r, session.FlashError, MsgInternal, fallback)
		return
	}
	s.errorPage(w, r, http.StatusInternalServerError, MsgInternal)
}

// missing handles a lookup error: not-found goes back to list with a
// flash, anything else is internal.
func (s *Server) missing(w http.ResponseWriter, r *http.Request, err error, list string) {
	if isNotFound(err) {
		s.redirect(w, r, session.FlashError, MsgNotFound, list)
		return
	}
	s.internal(w, r, err, list)
}

// formFailed re-renders a form after err when the user can fix it.
// Anything else is answered as not-found or internal.
func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, name string, page *Page, err error, list string) {
	if errs, ok := validation.As(err); ok {
		page.Errors = errs.ByField()
	} else if field, msg, ok := fieldMessage(err); ok {
		page.Errors = map[string]string{field: msg}
	} else if isNotFound(err) && list != "" {
		s.redirect(w, r, session.FlashError, MsgNotFound, list)
		return
	} else {
		s.internal(w, r, err, list)
		return
	}
	page.Form = keepForm(r.PostForm)
	s.render(w, r, http.StatusUnprocessableEntity, name, page)
}

// pathID parses the {id} path value; ok is false (and a 404 is written)
// when it is not a positive integer.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		s.notFound(w, r)
		return 0, false
	}
	return id, true
}

// postForm parses the body and copies the path id into the form, so DTO
// parsers see a single source of input.
func postForm(r *http.Request) (url.Values, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err //nolint:wrapcheck // mapped to a 400 by the caller
	}
	if id := r.PathValue("id"); id != "" {
		r.PostForm.Set(dto.FieldID, id)
	}
	return r.PostForm, nil
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.Logger.InfoContext(r.Context(), "malformed request body", "path", r.URL.Path, "error", err.Error())
	s.errorPage(w, r, http.StatusBadRequest, "Requisição inválida")
}
