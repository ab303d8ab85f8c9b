// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/email"
	"github.com/vitrine/vitrine/internal/observability"
	"github.com/vitrine/vitrine/internal/session"
)

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	redirect := dto.SafeRedirect(r.URL.Query().Get(dto.FieldRedirect), "/")
	if s.identity(r) != nil {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login", &Page{
		Title: "Entrar",
		Form:  url.Values{dto.FieldRedirect: {redirect}},
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Entrar"}
	in, err := dto.ParseLogin(form)
	if err != nil {
		s.formFailed(w, r, "login", page, err, "")
		return
	}

	user, err := s.Accounts.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			s.Metrics.RecordLogin(observability.LoginFailure)
			msg = MsgInvalidCredentials
		case errors.Is(err, auth.ErrAccountLocked):
			s.Metrics.RecordLogin(observability.LoginLocked)
			remaining, _ := auth.LockRemaining(err)
			msg = accountLockedMessage(remaining)
		default:
			s.internal(w, r, err, "")
			return
		}
		page.Errors = map[string]string{"": msg}
		page.Form = keepForm(form)
		s.render(w, r, http.StatusUnauthorized, "login", page)
		return
	}

	if err := s.Sessions.Create(r.Context(), w, r, user.Identity()); err != nil {
		s.internal(w, r, err, "")
		return
	}
	s.Metrics.RecordLogin(observability.LoginSuccess)
	s.redirect(w, r, session.FlashSuccess, "Bem-vindo(a), "+user.Name+"!", in.Redirect)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Destroy(r.Context(), w, r); err != nil {
		s.Logger.WarnContext(r.Context(), "session delete failed, cookie expired anyway (best-effort)",
			"operation", "destroy_session",
			"error", err.Error())
	}
	s.redirect(w, r, session.FlashInfo, "Você saiu da sua conta.", "/login")
}

func (s *Server) registerForm(w http.ResponseWriter, r *http.Request) {
	if s.identity(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "register", &Page{Title: "Criar conta"})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Criar conta"}
	in, err := dto.ParseRegister(form)
	if err != nil {
		s.formFailed(w, r, "register", page, err, "")
		return
	}
	user, err := s.Accounts.Register(r.Context(), auth.NewAccount{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		CPF:      in.CPF,
		Phone:    in.Phone,
	})
	if err != nil {
		s.formFailed(w, r, "register", page, err, "")
		return
	}
	if err := s.Sessions.Create(r.Context(), w, r, user.Identity()); err != nil {
		s.internal(w, r, err, "")
		return
	}

	if msg, err := s.Composer.Welcome(user.Email, user.Name); err != nil {
		s.Logger.WarnContext(r.Context(), "welcome email not composed (best-effort)",
			"operation", "compose_welcome",
			"error", err.Error())
	} else {
		s.send(r, msg)
	}
	s.redirect(w, r, session.FlashSuccess, "Cadastro realizado com sucesso!", "/")
}

// send hands msg to the mail sink. Delivery problems never reach the user.
func (s *Server) send(r *http.Request, msg email.Message) {
	if err := s.Mail.Send(r.Context(), msg); err != nil {
		s.Logger.WarnContext(r.Context(), "email not queued (best-effort)",
			"operation", "send_email",
			"kind", string(msg.Kind),
			"error", err.Error())
	}
}

func (s *Server) forgotForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "forgot_password", &Page{Title: "Esqueci minha senha"})
}

// forgot always answers with the same message so the form cannot be used to
// probe for registered emails.
func (s *Server) forgot(w http.ResponseWriter, r *http.Request) {
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	in, err := dto.ParseForgotPassword(form)
	if err != nil {
		s.formFailed(w, r, "forgot_password", &Page{Title: "Esqueci minha senha"}, err, "")
		return
	}

	token, user, err := s.Resets.RequestReset(r.Context(), in.Email)
	if err != nil {
		s.internal(w, r, err, "/esqueci-senha")
		return
	}
	if user != nil {
		s.Metrics.RecordPasswordReset(observability.ResetRequested)
		msg, err := s.Composer.PasswordReset(user.Email, user.Name, token, s.ResetExpiryHours)
		if err != nil {
			s.internal(w, r, err, "/esqueci-senha")
			return
		}
		s.send(r, msg)
	}
	s.redirect(w, r, session.FlashInfo, MsgResetSent, "/login")
}

func (s *Server) resetForm(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if _, err := s.Resets.ValidateToken(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrInvalidResetToken) {
			s.Metrics.RecordPasswordReset(observability.ResetInvalid)
			s.redirect(w, r, session.FlashError, MsgInvalidResetLink, "/esqueci-senha")
			return
		}
		s.internal(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "reset_password", &Page{Title: "Redefinir senha", Data: token})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	token := r.PathValue("token")
	page := &Page{Title: "Redefinir senha", Data: token}
	in, err := dto.ParseResetPassword(token, form)
	if err != nil {
		s.formFailed(w, r, "reset_password", page, err, "")
		return
	}
	if err := s.Resets.ResetPassword(r.Context(), in.Token, in.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidResetToken) {
			s.Metrics.RecordPasswordReset(observability.ResetInvalid)
			s.redirect(w, r, session.FlashError, MsgInvalidResetLink, "/esqueci-senha")
			return
		}
		s.internal(w, r, err, "")
		return
	}
	s.Metrics.RecordPasswordReset(observability.ResetCompleted)
	s.redirect(w, r, session.FlashSuccess, "Senha redefinida. Entre com a nova senha.", "/login")
}
