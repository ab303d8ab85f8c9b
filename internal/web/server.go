// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package web serves the storefront, the account pages and the admin area.
// Pages are rendered on the server; every mutation is a POST answered with
// a 303 redirect on success or the re-rendered form on failure.
package web

import (
	"context"
	"embed"
	"io"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/catalog"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/email"
	"github.com/vitrine/vitrine/internal/observability"
	"github.com/vitrine/vitrine/internal/session"
)

//go:embed static
var staticFS embed.FS

// Accounts is the user-management surface the handlers need.
// *auth.Service implements it.
type Accounts interface {
	Authenticate(ctx context.Context, email, password string) (*auth.User, error)
	Register(ctx context.Context, in auth.NewAccount) (*auth.User, error)
	CreateUser(ctx context.Context, in auth.NewAccount) (*auth.User, error)
	GetUser(ctx context.Context, id int64) (*auth.User, error)
	ListUsers(ctx context.Context, role auth.Role) ([]*auth.User, error)
	UpdateUser(ctx context.Context, id int64, changes auth.AccountChanges) (*auth.User, error)
	UpdateProfile(ctx context.Context, id int64, name, email, cpf, phone string) (*auth.User, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
	UpdatePhoto(ctx context.Context, id int64, photo string) (*auth.User, error)
	DeleteUser(ctx context.Context, id, actorID int64) error
}

// Resets runs the forgot-password flow. *auth.PasswordResetService
// implements it.
type Resets interface {
	RequestReset(ctx context.Context, email string) (string, *auth.User, error)
	ValidateToken(ctx context.Context, token string) (*auth.User, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// Catalog is the catalog surface the handlers need. *catalog.Service
// implements it.
type Catalog interface {
	ListCategories(ctx context.Context) ([]*catalog.Category, error)
	GetCategory(ctx context.Context, id int64) (*catalog.Category, error)
	CreateCategory(ctx context.Context, in dto.CreateCategory) (*catalog.Category, error)
	UpdateCategory(ctx context.Context, in dto.AlterCategory) (*catalog.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	ListProducts(ctx context.Context) ([]*catalog.Product, error)
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	CreateProduct(ctx context.Context, in dto.CreateProduct) (*catalog.Product, error)
	UpdateProduct(ctx context.Context, in dto.AlterProduct) (*catalog.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ProductPhotos(ctx context.Context, productID int64) ([]*catalog.Photo, error)
	AddPhotos(ctx context.Context, productID int64, uploads []io.Reader) ([]*catalog.Photo, error)
	DeletePhoto(ctx context.Context, productID, photoID int64) error
	ReorderPhotos(ctx context.Context, in dto.ReorderPhotos) error

	ListPaymentMethods(ctx context.Context) ([]*catalog.PaymentMethod, error)
	GetPaymentMethod(ctx context.Context, id int64) (*catalog.PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, in dto.CreatePaymentMethod) (*catalog.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, in dto.AlterPaymentMethod) (*catalog.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, id int64) error

	ImportProducts(ctx context.Context, r io.Reader) (*catalog.ImportResult, error)
	ExportProducts(ctx context.Context, w io.Writer) error
}

// Avatars stores profile photos. *photo.Storage implements it.
type Avatars interface {
	SaveAvatar(userID int64, r io.Reader) (string, error)
	Remove(rel string) error
}

// Deps are the collaborators of a Server.
type Deps struct {
	Accounts Accounts
	Resets   Resets
	Catalog  Catalog
	Avatars  Avatars
	Sessions *session.Manager
	Mail     email.Sink
	Composer *email.Composer
	Renderer *Renderer
	// UploadsDir is served under /uploads/. Empty disables the route.
	UploadsDir string
	// ResetExpiryHours is quoted in the reset email.
	ResetExpiryHours int
	// Metrics may be nil.
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Server holds the routes of the web application.
type Server struct {
	Deps
	gate    *Gate
	handler http.Handler
}

// NewServer wires the routes.
func NewServer(d Deps) (*Server, error) {
	switch {
	case d.Accounts == nil:
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("accounts service is required")
	case d.Resets == nil:
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("reset service is required")
	case d.Catalog == nil:
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("catalog service is required")
	case d.Avatars == nil:
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("avatar storage is required")
	case d.Sessions == nil:
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("session manager is required")
	case d.Mail == nil || d.Composer == nil:
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("email sink and composer are required")
	case d.Renderer == nil:
		return nil, oops.Code("WEB_INVALID_SERVER").Errorf("renderer is required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.ResetExpiryHours <= 0 {
		d.ResetExpiryHours = auth.ResetTokenExpiryHours
	}

	s := &Server{Deps: d}
	s.gate = NewGate(d.Sessions, http.HandlerFunc(s.forbidden))
	s.handler = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc, guard ...func(http.Handler) http.Handler) {
		var handler http.Handler = h
		for i := len(guard) - 1; i >= 0; i-- {
			handler = guard[i](handler)
		}
		mux.Handle(pattern, withRoute(pattern, handler))
	}
	signedIn := s.gate.Require()
	admin := s.gate.Require(auth.RoleAdmin)

	static, _ := fs.Sub(staticFS, "static") //nolint:errcheck // embedded path is fixed
	mux.Handle("GET /static/", withRoute("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static))))
	if s.UploadsDir != "" {
		mux.Handle("GET /uploads/", withRoute("GET /uploads/",
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.UploadsDir)))))
	}

	// Storefront.
	handle("GET /{$}", s.home)
	handle("GET /produtos/{id}", s.productPage)

	// Accounts.
	handle("GET /login", s.loginForm)
	handle("POST /login", s.login)
	handle("GET /logout", s.logout)
	handle("GET /cadastro", s.registerForm)
	handle("POST /cadastro", s.register)
	handle("GET /esqueci-senha", s.forgotForm)
	handle("POST /esqueci-senha", s.forgot)
	handle("GET /redefinir-senha/{token}", s.resetForm)
	handle("POST /redefinir-senha/{token}", s.reset)
	handle("GET /perfil", s.profileForm, signedIn)
	handle("POST /perfil", s.updateProfile, signedIn)
	handle("GET /perfil/alterar-senha", s.changePasswordForm, signedIn)
	handle("POST /perfil/alterar-senha", s.changePassword, signedIn)
	handle("POST /perfil/alterar-foto", s.changePhoto, signedIn)

	// Admin.
	handle("GET /admin", redirectTo("/admin/produtos"), admin)

	handle("GET /admin/categorias", s.listCategories, admin)
	handle("GET /admin/categorias/cadastrar", s.newCategoryForm, admin)
	handle("POST /admin/categorias/cadastrar", s.createCategory, admin)
	handle("GET /admin/categorias/alterar/{id}", s.editCategoryForm, admin)
	handle("POST /admin/categorias/alterar/{id}", s.updateCategory, admin)
	handle("POST /admin/categorias/excluir/{id}", s.deleteCategory, admin)

	handle("GET /admin/produtos", s.listProducts, admin)
	handle("GET /admin/produtos/detalhar/{id}", s.productDetail, admin)
	handle("GET /admin/produtos/cadastrar", s.newProductForm, admin)
	handle("POST /admin/produtos/cadastrar", s.createProduct, admin)
	handle("GET /admin/produtos/alterar/{id}", s.editProductForm, admin)
	handle("POST /admin/produtos/alterar/{id}", s.updateProduct, admin)
	handle("POST /admin/produtos/excluir/{id}", s.deleteProduct, admin)
	handle("POST /admin/produtos/fotos/{id}", s.uploadPhotos, admin)
	handle("POST /admin/produtos/fotos/{id}/reordenar", s.reorderPhotos, admin)
	handle("POST /admin/produtos/fotos/{id}/excluir/{photo}", s.deletePhoto, admin)
	handle("GET /admin/produtos/importar", s.importForm, admin)
	handle("POST /admin/produtos/importar", s.importProducts, admin)
	handle("GET /admin/produtos/exportar", s.exportProducts, admin)

	handle("GET /admin/clientes", s.listCustomers, admin)
	handle("GET /admin/clientes/detalhar/{id}", s.customerDetail, admin)
	handle("GET /admin/clientes/cadastrar", s.newCustomerForm, admin)
	handle("POST /admin/clientes/cadastrar", s.createCustomer, admin)
	handle("GET /admin/clientes/alterar/{id}", s.editCustomerForm, admin)
	handle("POST /admin/clientes/alterar/{id}", s.updateCustomer, admin)
	handle("POST /admin/clientes/excluir/{id}", s.deleteCustomer, admin)

	handle("GET /admin/formas-pagamento", s.listPaymentMethods, admin)
	handle("GET /admin/formas-pagamento/cadastrar", s.newPaymentMethodForm, admin)
	handle("POST /admin/formas-pagamento/cadastrar", s.createPaymentMethod, admin)
	handle("GET /admin/formas-pagamento/alterar/{id}", s.editPaymentMethodForm, admin)
	handle("POST /admin/formas-pagamento/alterar/{id}", s.updatePaymentMethod, admin)
	handle("POST /admin/formas-pagamento/excluir/{id}", s.deletePaymentMethod, admin)

	handle("GET /admin/usuarios", s.listUsers, admin)
	handle("GET /admin/usuarios/cadastrar", s.newUserForm, admin)
	handle("POST /admin/usuarios/cadastrar", s.createUser, admin)
	handle("GET /admin/usuarios/alterar/{id}", s.editUserForm, admin)
	handle("POST /admin/usuarios/alterar/{id}", s.updateUser, admin)
	handle("POST /admin/usuarios/excluir/{id}", s.deleteUser, admin)

	mux.Handle("/", withRoute("unmatched", http.HandlerFunc(s.notFound)))

	var h http.Handler = mux
	h = s.Sessions.Middleware(h)
	h = s.recoverer(h)
	h = s.observe(h)
	return tracing(h)
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
