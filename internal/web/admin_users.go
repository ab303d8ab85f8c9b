// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package web

import (
	"context"
	"net/http"
	"net/url"

	"github.com/samber/oops"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/session"
)

const (
	customersPath = "/admin/clientes"
	usersPath     = "/admin/usuarios"
)

// userOfRole loads user id and treats a user of another role as missing, so
// the customer pages never touch administrators and vice versa.
func (s *Server) userOfRole(ctx context.Context, id int64, role auth.Role) (*auth.User, error) {
	user, err := s.Accounts.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != role {
		return nil, oops.Code("USER_NOT_FOUND").
			With("user_id", id).
			With("role", string(role)).
			Wrap(auth.ErrNotFound)
	}
	return user, nil
}

// Customers.

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.Accounts.ListUsers(r.Context(), auth.RoleCustomer)
	if err != nil {
		s.internal(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "customers", &Page{Title: "Clientes", Data: customers})
}

func (s *Server) customerDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	customer, err := s.userOfRole(r.Context(), id, auth.RoleCustomer)
	if err != nil {
		s.missing(w, r, err, customersPath)
		return
	}
	s.render(w, r, http.StatusOK, "customer_detail", &Page{Title: customer.Name, Data: customer})
}

func (s *Server) newCustomerForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "customer_form", &Page{
		Title: "Novo cliente",
		Data:  formMeta{Action: customersPath + "/cadastrar"},
	})
}

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Novo cliente", Data: formMeta{Action: customersPath + "/cadastrar"}}
	in, err := dto.ParseCreateCustomer(form)
	if err == nil {
		_, err = s.Accounts.CreateUser(r.Context(), auth.NewAccount{
			Name:     in.Name,
			Email:    in.Email,
			Password: in.Password,
			Role:     auth.RoleCustomer,
			CPF:      in.CPF,
			Phone:    in.Phone,
		})
	}
	if err != nil {
		s.formFailed(w, r, "customer_form", page, err, customersPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Cliente cadastrado com sucesso", customersPath)
}

func (s *Server) editCustomerForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	customer, err := s.userOfRole(r.Context(), id, auth.RoleCustomer)
	if err != nil {
		s.missing(w, r, err, customersPath)
		return
	}
	s.render(w, r, http.StatusOK, "customer_form", &Page{
		Title: "Alterar cliente",
		Form:  userForm(customer),
		Data:  formMeta{Action: idPath(customersPath+"/alterar", id), Editing: true},
	})
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Alterar cliente", Data: formMeta{Action: idPath(customersPath+"/alterar", id), Editing: true}}
	in, err := dto.ParseAlterCustomer(form)
	if err == nil {
		_, err = s.userOfRole(r.Context(), in.ID, auth.RoleCustomer)
	}
	if err == nil {
		_, err = s.Accounts.UpdateUser(r.Context(), in.ID, auth.AccountChanges{
			Name:     in.Name,
			Email:    in.Email,
			CPF:      in.CPF,
			Phone:    in.Phone,
			Password: in.Password,
		})
	}
	if err != nil {
		s.formFailed(w, r, "customer_form", page, err, customersPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Cliente alterado com sucesso", idPath(customersPath+"/detalhar", id))
}

func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	me, _ := IdentityFrom(r.Context())
	s.deleteWith(w, r, customersPath, func(form url.Values) error {
		in, err := dto.ParseDeleteCustomer(form)
		if err != nil {
			return err
		}
		if _, err := s.userOfRole(r.Context(), in.ID, auth.RoleCustomer); err != nil {
			return err
		}
		return s.Accounts.DeleteUser(r.Context(), in.ID, me.ID)
	})
}

// Administrators.

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Accounts.ListUsers(r.Context(), auth.RoleAdmin)
	if err != nil {
		s.internal(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "users", &Page{Title: "Usuários", Data: users})
}

func (s *Server) newUserForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "user_form", &Page{
		Title: "Novo usuário",
		Form:  url.Values{dto.FieldRole: {string(auth.RoleAdmin)}},
		Data:  formMeta{Action: usersPath + "/cadastrar"},
	})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Novo usuário", Data: formMeta{Action: usersPath + "/cadastrar"}}
	in, err := dto.ParseCreateAdminUser(form)
	if err == nil {
		_, err = s.Accounts.CreateUser(r.Context(), auth.NewAccount{
			Name:     in.Name,
			Email:    in.Email,
			Password: in.Password,
			Role:     in.Role,
		})
	}
	if err != nil {
		s.formFailed(w, r, "user_form", page, err, usersPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Usuário cadastrado com sucesso", usersPath)
}

func (s *Server) editUserForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := s.Accounts.GetUser(r.Context(), id)
	if err != nil {
		s.missing(w, r, err, usersPath)
		return
	}
	s.render(w, r, http.StatusOK, "user_form", &Page{
		Title: "Alterar usuário",
		Form:  userForm(user),
		Data:  formMeta{Action: idPath(usersPath+"/alterar", id), Editing: true},
	})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Alterar usuário", Data: formMeta{Action: idPath(usersPath+"/alterar", id), Editing: true}}
	in, err := dto.ParseAlterAdminUser(form)
	if err != nil {
		s.formFailed(w, r, "user_form", page, err, usersPath)
		return
	}
	current, err := s.Accounts.GetUser(r.Context(), in.ID)
	if err == nil {
		// CPF and phone are not on this form; keep what the user has.
		_, err = s.Accounts.UpdateUser(r.Context(), in.ID, auth.AccountChanges{
			Name:     in.Name,
			Email:    in.Email,
			CPF:      current.CPF,
			Phone:    current.Phone,
			Role:     &in.Role,
			Password: in.Password,
		})
	}
	if err != nil {
		s.formFailed(w, r, "user_form", page, err, usersPath)
		return
	}

	// An administrator who edits themselves gets a fresh session identity.
	if me, _ := IdentityFrom(r.Context()); me != nil && me.ID == in.ID {
		if updated, err := s.Accounts.GetUser(r.Context(), in.ID); err == nil {
			if err := s.Sessions.Refresh(r.Context(), w, r, updated.Identity()); err != nil {
				s.Logger.WarnContext(r.Context(), "session refresh failed, continuing (best-effort)",
					"operation", "refresh_session",
					"error", err.Error())
			}
		}
	}
	s.redirect(w, r, session.FlashSuccess, "Usuário alterado com sucesso", usersPath)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	me, _ := IdentityFrom(r.Context())
	s.deleteWith(w, r, usersPath, func(form url.Values) error {
		in, err := dto.ParseDeleteAdminUser(form)
		if err != nil {
			return err
		}
		return s.Accounts.DeleteUser(r.Context(), in.ID, me.ID)
	})
}
