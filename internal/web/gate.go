// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package web

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vitrine/vitrine/internal/auth"
)

// MsgForbidden is shown on the access-denied page.
const MsgForbidden = "Você não tem permissão para acessar este recurso"

// IdentitySource resolves the signed-in identity of a request.
// *session.Manager implements it.
type IdentitySource interface {
	Current(ctx context.Context, r *http.Request) (*auth.Identity, bool)
}

type identityKey struct{}

// WithIdentity returns a context carrying identity.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the identity the Gate attached to ctx.
func IdentityFrom(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(*auth.Identity)
	return identity, ok && identity != nil
}

// Gate guards routes that need a signed-in user.
type Gate struct {
	identities IdentitySource
	forbidden  http.Handler
}

// NewGate creates a Gate. forbidden renders the 403 page; nil writes a
// plain-text 403.
func NewGate(identities IdentitySource, forbidden http.Handler) *Gate {
	if forbidden == nil {
		forbidden = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, MsgForbidden, http.StatusForbidden)
		})
	}
	return &Gate{identities: identities, forbidden: forbidden}
}

// LoginURL is the sign-in page that returns to target afterwards.
func LoginURL(target string) string {
	return "/login?" + url.Values{"redirect": {target}}.Encode()
}

// Require admits requests from a signed-in user holding one of roles. With
// no roles any signed-in user is admitted. Anonymous requests are sent to
// the login page; signed-in users without the role get a 403.
func (g *Gate) Require(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := g.identities.Current(r.Context(), r)
			if !ok {
				http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}
			if len(roles) > 0 && !identity.HasRole(roles...) {
				g.forbidden.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
