// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package email

import (
	"bytes"
	"embed"
	"html/template"
	"net/url"
	"strings"

	"github.com/samber/oops"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Composer renders the application's messages.
type Composer struct {
	baseURL string
	site    string
}

// NewComposer creates a Composer. Links are built on baseURL.
func NewComposer(baseURL, site string) *Composer {
	if site == "" {
		site = "Vitrine"
	}
	return &Composer{baseURL: strings.TrimRight(baseURL, "/"), site: site}
}

type templateData struct {
	Site        string
	Name        string
	Link        string
	ExpiryHours int
}

func (c *Composer) render(name string, data templateData) (string, error) {
	data.Site = c.site
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", oops.Code("EMAIL_RENDER_FAILED").With("template", name).Wrap(err)
	}
	return buf.String(), nil
}

// Welcome is sent after self-registration.
func (c *Composer) Welcome(to, name string) (Message, error) {
	html, err := c.render("welcome.html", templateData{Name: name, Link: c.baseURL + "/login"})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindWelcome,
		To:      to,
		ToName:  name,
		Subject: "Bem-vindo(a) à " + c.site,
		HTML:    html,
	}, nil
}

// ResetLink returns the page where token can be redeemed.
func (c *Composer) ResetLink(token string) string {
	return c.baseURL + "/redefinir-senha/" + url.PathEscape(token)
}

// PasswordReset carries the reset link for token.
func (c *Composer) PasswordReset(to, name, token string, expiryHours int) (Message, error) {
	html, err := c.render("password_reset.html", templateData{
		Name:        name,
		Link:        c.ResetLink(token),
		ExpiryHours: expiryHours,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		Kind:    KindPasswordReset,
		To:      to,
		ToName:  name,
		Subject: "Recuperação de Senha",
		HTML:    html,
	}, nil
}
