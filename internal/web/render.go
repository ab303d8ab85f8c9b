// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/shopspring/decimal"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/session"
)

//go:embed templates
var templateFS embed.FS

// Page is the data every template receives.
type Page struct {
	Title    string
	Identity *auth.Identity
	Flashes  []session.Flash
	// Errors maps form fields to their first validation message. The ""
	// key holds messages not tied to a field.
	Errors map[string]string
	// Form holds the submitted values to redisplay. Password fields are
	// never included.
	Form url.Values
	Data any
}

// Value returns the submitted value of field.
func (p *Page) Value(field string) string {
	return p.Form.Get(field)
}

// Error returns the validation message of field.
func (p *Page) Error(field string) string {
	return p.Errors[field]
}

var secretFields = []string{
	dto.FieldPassword,
	dto.FieldConfirmPassword,
	dto.FieldCurrentPassword,
	dto.FieldNewPassword,
}

// keepForm copies form without password fields.
func keepForm(form url.Values) url.Values {
	out := make(url.Values, len(form))
	for k, v := range form {
		out[k] = append([]string(nil), v...)
	}
	for _, f := range secretFields {
		delete(out, f)
	}
	return out
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"brl":       FormatBRL,
	"date":      func(t time.Time) string { return t.Format("02/01/2006 15:04") },
	"upload":    func(rel string) string { return "/uploads/" + rel },
	"roleLabel": func(r auth.Role) string { return r.Label() },
	"roles":     func() []auth.Role { return auth.Roles },
	"join":      strings.Join,
}

// NewRenderer parses every page under templates/pages.
func NewRenderer() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, oops.Code("TEMPLATE_PARSE_FAILED").With("template", "layout.html").Wrap(err)
	}
	names, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, oops.Code("TEMPLATE_PARSE_FAILED").Wrap(err)
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		t, err := template.Must(layout.Clone()).ParseFS(templateFS, name)
		if err != nil {
			return nil, oops.Code("TEMPLATE_PARSE_FAILED").With("template", name).Wrap(err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return r, nil
}

// Render writes page name with status. The page is executed into a buffer
// first so a template error never produces a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page *Page) error {
	t, ok := r.pages[name]
	if !ok {
		return oops.Code("TEMPLATE_NOT_FOUND").With("template", name).Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", page); err != nil {
		return oops.Code("TEMPLATE_EXEC_FAILED").With("template", name).Wrap(err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err //nolint:wrapcheck // client went away
}

// FormatBRL formats d as Brazilian reais, e.g. R$ 1.234,50.
func FormatBRL(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	var grouped strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(c)
	}
	return sign + "R$ " + grouped.String() + "," + frac
}
