// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package web

import (
	"net/http"
	"net/url"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/photo"
	"github.com/vitrine/vitrine/internal/session"
)

// photoField is the multipart field of the profile photo form.
const photoField = "foto"

func userForm(u *auth.User) url.Values {
	return url.Values{
		dto.FieldName:  {u.Name},
		dto.FieldEmail: {u.Email},
		dto.FieldCPF:   {u.CPF},
		dto.FieldPhone: {u.Phone},
		dto.FieldRole:  {string(u.Role)},
	}
}

func (s *Server) profileForm(w http.ResponseWriter, r *http.Request) {
	me, _ := IdentityFrom(r.Context())
	user, err := s.Accounts.GetUser(r.Context(), me.ID)
	if err != nil {
		s.internal(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "profile", &Page{Title: "Meu perfil", Form: userForm(user)})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	me, _ := IdentityFrom(r.Context())
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Meu perfil"}
	in, err := dto.ParseUpdateProfile(form)
	if err != nil {
		s.formFailed(w, r, "profile", page, err, "")
		return
	}
	user, err := s.Accounts.UpdateProfile(r.Context(), me.ID, in.Name, in.Email, in.CPF, in.Phone)
	if err != nil {
		s.formFailed(w, r, "profile", page, err, "")
		return
	}
	if err := s.Sessions.Refresh(r.Context(), w, r, user.Identity()); err != nil {
		s.internal(w, r, err, "/perfil")
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Perfil atualizado com sucesso", "/perfil")
}

func (s *Server) changePasswordForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "change_password", &Page{Title: "Alterar senha"})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	me, _ := IdentityFrom(r.Context())
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Alterar senha"}
	in, err := dto.ParseChangePassword(form)
	if err != nil {
		s.formFailed(w, r, "change_password", page, err, "")
		return
	}
	if err := s.Accounts.ChangePassword(r.Context(), me.ID, in.Current, in.New); err != nil {
		s.formFailed(w, r, "change_password", page, err, "")
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Senha alterada com sucesso", "/perfil")
}

// changePhoto stores a new avatar, then removes the previous file.
func (s *Server) changePhoto(w http.ResponseWriter, r *http.Request) {
	me, _ := IdentityFrom(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, photo.MaxUploadBytes+1<<20)
	file, _, err := r.FormFile(photoField)
	if err != nil {
		s.redirect(w, r, session.FlashError, "Selecione uma imagem JPEG ou PNG de até 5 MB", "/perfil")
		return
	}
	defer file.Close() //nolint:errcheck // read-only upload

	rel, err := s.Avatars.SaveAvatar(me.ID, file)
	if err != nil {
		if _, msg, ok := fieldMessage(err); ok {
			s.redirect(w, r, session.FlashError, msg, "/perfil")
			return
		}
		s.internal(w, r, err, "/perfil")
		return
	}

	previous := me.Photo
	user, err := s.Accounts.UpdatePhoto(r.Context(), me.ID, rel)
	if err != nil {
		if rmErr := s.Avatars.Remove(rel); rmErr != nil {
			s.Logger.WarnContext(r.Context(), "orphan avatar not removed (best-effort)",
				"operation", "remove_avatar",
				"path", rel,
				"error", rmErr.Error())
		}
		s.internal(w, r, err, "/perfil")
		return
	}
	if previous != "" && previous != rel {
		if err := s.Avatars.Remove(previous); err != nil {
			s.Logger.WarnContext(r.Context(), "previous avatar not removed (best-effort)",
				"operation", "remove_avatar",
				"path", previous,
				"error", err.Error())
		}
	}
	if err := s.Sessions.Refresh(r.Context(), w, r, user.Identity()); err != nil {
		s.internal(w, r, err, "/perfil")
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Foto atualizada com sucesso", "/perfil")
}
