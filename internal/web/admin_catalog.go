// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package web

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vitrine/vitrine/internal/catalog"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/photo"
	"github.com/vitrine/vitrine/internal/session"
	"github.com/vitrine/vitrine/internal/validation"
	"github.com/vitrine/vitrine/pkg/errutil"
)

const (
	categoriesPath     = "/admin/categorias"
	productsPath       = "/admin/produtos"
	paymentMethodsPath = "/admin/formas-pagamento"

	// maxPhotosPerUpload bounds one multipart photo upload.
	maxPhotosPerUpload = 10
	// maxSheetBytes bounds an uploaded spreadsheet.
	maxSheetBytes = 10 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// formMeta tells a shared create/edit template where to post.
type formMeta struct {
	Action     string
	Editing    bool
	Categories []*catalog.Category
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

// Categories.

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.Catalog.ListCategories(r.Context())
	if err != nil {
		s.internal(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "categories", &Page{Title: "Categorias", Data: categories})
}

func (s *Server) newCategoryForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "category_form", &Page{
		Title: "Nova categoria",
		Data:  formMeta{Action: categoriesPath + "/cadastrar"},
	})
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Nova categoria", Data: formMeta{Action: categoriesPath + "/cadastrar"}}
	in, err := dto.ParseCreateCategory(form)
	if err == nil {
		_, err = s.Catalog.CreateCategory(r.Context(), *in)
	}
	if err != nil {
		s.formFailed(w, r, "category_form", page, err, categoriesPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Categoria cadastrada com sucesso", categoriesPath)
}

func (s *Server) editCategoryForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	category, err := s.Catalog.GetCategory(r.Context(), id)
	if err != nil {
		s.missing(w, r, err, categoriesPath)
		return
	}
	s.render(w, r, http.StatusOK, "category_form", &Page{
		Title: "Alterar categoria",
		Form:  url.Values{dto.FieldName: {category.Name}},
		Data:  formMeta{Action: idPath(categoriesPath+"/alterar", id), Editing: true},
	})
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Alterar categoria", Data: formMeta{Action: idPath(categoriesPath+"/alterar", id), Editing: true}}
	in, err := dto.ParseAlterCategory(form)
	if err == nil {
		_, err = s.Catalog.UpdateCategory(r.Context(), *in)
	}
	if err != nil {
		s.formFailed(w, r, "category_form", page, err, categoriesPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Categoria alterada com sucesso", categoriesPath)
}

// deleteWith runs a delete form through parse and del, then returns to list.
func (s *Server) deleteWith(w http.ResponseWriter, r *http.Request, list string, del func(form url.Values) error) {
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := del(form); err != nil {
		switch _, msg, ok := fieldMessage(err); {
		case ok:
			s.redirect(w, r, session.FlashError, msg, list)
		case isNotFound(err):
			s.redirect(w, r, session.FlashError, MsgNotFound, list)
		default:
			if _, invalid := validation.As(err); invalid {
				s.redirect(w, r, session.FlashError, MsgNotFound, list)
				return
			}
			s.internal(w, r, err, list)
		}
		return
	}
	s.redirect(w, r, session.FlashSuccess, MsgDeleted, list)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, categoriesPath, func(form url.Values) error {
		in, err := dto.ParseDeleteCategory(form)
		if err != nil {
			return err
		}
		return s.Catalog.DeleteCategory(r.Context(), in.ID)
	})
}

// Products.

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Catalog.ListProducts(r.Context())
	if err != nil {
		s.internal(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "products", &Page{Title: "Produtos", Data: products})
}

func (s *Server) productDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := s.productView(r, id)
	if err != nil {
		s.missing(w, r, err, productsPath)
		return
	}
	s.render(w, r, http.StatusOK, "product_detail", &Page{Title: view.Product.Name, Data: view})
}

// productForm loads the category choices for a product form.
func (s *Server) productForm(r *http.Request, action string, editing bool) (formMeta, error) {
	categories, err := s.Catalog.ListCategories(r.Context())
	if err != nil {
		return formMeta{}, err
	}
	return formMeta{Action: action, Editing: editing, Categories: categories}, nil
}

func (s *Server) newProductForm(w http.ResponseWriter, r *http.Request) {
	meta, err := s.productForm(r, productsPath+"/cadastrar", false)
	if err != nil {
		s.internal(w, r, err, productsPath)
		return
	}
	s.render(w, r, http.StatusOK, "product_form", &Page{Title: "Novo produto", Data: meta})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	meta, err := s.productForm(r, productsPath+"/cadastrar", false)
	if err != nil {
		s.internal(w, r, err, productsPath)
		return
	}
	page := &Page{Title: "Novo produto", Data: meta}
	in, err := dto.ParseCreateProduct(form)
	if err != nil {
		s.formFailed(w, r, "product_form", page, err, productsPath)
		return
	}
	product, err := s.Catalog.CreateProduct(r.Context(), *in)
	if err != nil {
		s.formFailed(w, r, "product_form", page, err, productsPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Produto cadastrado com sucesso", idPath(productsPath+"/detalhar", product.ID))
}

func (s *Server) editProductForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	product, err := s.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		s.missing(w, r, err, productsPath)
		return
	}
	meta, err := s.productForm(r, idPath(productsPath+"/alterar", id), true)
	if err != nil {
		s.internal(w, r, err, productsPath)
		return
	}
	s.render(w, r, http.StatusOK, "product_form", &Page{
		Title: "Alterar produto",
		Data:  meta,
		Form: url.Values{
			dto.FieldName:        {product.Name},
			dto.FieldDescription: {product.Description},
			dto.FieldPrice:       {product.Price.StringFixed(2)},
			dto.FieldQuantity:    {strconv.FormatInt(product.Quantity, 10)},
			dto.FieldCategoryID:  {strconv.FormatInt(product.CategoryID, 10)},
		},
	})
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	meta, err := s.productForm(r, idPath(productsPath+"/alterar", id), true)
	if err != nil {
		s.internal(w, r, err, productsPath)
		return
	}
	page := &Page{Title: "Alterar produto", Data: meta}
	in, err := dto.ParseAlterProduct(form)
	if err == nil {
		_, err = s.Catalog.UpdateProduct(r.Context(), *in)
	}
	if err != nil {
		s.formFailed(w, r, "product_form", page, err, productsPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Produto alterado com sucesso", idPath(productsPath+"/detalhar", id))
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, productsPath, func(form url.Values) error {
		in, err := dto.ParseDeleteProduct(form)
		if err != nil {
			return err
		}
		return s.Catalog.DeleteProduct(r.Context(), in.ID)
	})
}

// Photos.

func (s *Server) uploadPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	detail := idPath(productsPath+"/detalhar", id)

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotosPerUpload*photo.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(photo.MaxUploadBytes); err != nil {
		s.redirect(w, r, session.FlashError, fmt.Sprintf("Envie até %d imagens de no máximo 5 MB", maxPhotosPerUpload), detail)
		return
	}
	headers := r.MultipartForm.File["fotos"]
	if len(headers) == 0 || len(headers) > maxPhotosPerUpload {
		s.redirect(w, r, session.FlashError, fmt.Sprintf("Selecione de 1 a %d imagens", maxPhotosPerUpload), detail)
		return
	}

	files := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range files {
			_ = f.Close() //nolint:errcheck // read-only upload
		}
	}()
	readers := make([]io.Reader, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			s.internal(w, r, err, detail)
			return
		}
		files = append(files, f)
		readers = append(readers, f)
	}

	added, err := s.Catalog.AddPhotos(r.Context(), id, readers)
	if err != nil {
		if _, msg, ok := fieldMessage(err); ok {
			s.redirect(w, r, session.FlashError, msg, detail)
			return
		}
		s.missing(w, r, err, productsPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, fmt.Sprintf("%d foto(s) adicionada(s)", len(added)), detail)
}

func (s *Server) reorderPhotos(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	detail := idPath(productsPath+"/detalhar", id)
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	in, err := dto.ParseReorderPhotos(form)
	if err == nil {
		err = s.Catalog.ReorderPhotos(r.Context(), *in)
	}
	if err != nil {
		if errs, ok := validation.As(err); ok {
			s.redirect(w, r, session.FlashError, errs.Messages()[0], detail)
			return
		}
		if _, msg, ok := fieldMessage(err); ok {
			s.redirect(w, r, session.FlashError, msg, detail)
			return
		}
		s.missing(w, r, err, productsPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Fotos reordenadas", detail)
}

func (s *Server) deletePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	photoID, ok := s.pathID(w, r, "photo")
	if !ok {
		return
	}
	detail := idPath(productsPath+"/detalhar", id)
	if err := s.Catalog.DeletePhoto(r.Context(), id, photoID); err != nil {
		s.missing(w, r, err, detail)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Foto removida", detail)
}

// Spreadsheets.

func (s *Server) importForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "product_import", &Page{Title: "Importar produtos"})
}

func (s *Server) importProducts(w http.ResponseWriter, r *http.Request) {
	page := &Page{Title: "Importar produtos"}
	r.Body = http.MaxBytesReader(w, r.Body, maxSheetBytes+1<<20)
	file, _, err := r.FormFile("planilha")
	if err != nil {
		page.Errors = map[string]string{"planilha": "Selecione uma planilha .xlsx de até 10 MB"}
		s.render(w, r, http.StatusUnprocessableEntity, "product_import", page)
		return
	}
	defer file.Close() //nolint:errcheck // read-only upload

	result, err := s.Catalog.ImportProducts(r.Context(), file)
	if err != nil {
		if code := errutil.Code(err); code == "IMPORT_INVALID_FILE" {
			page.Errors = map[string]string{"planilha": "O arquivo não é uma planilha .xlsx válida"}
			s.render(w, r, http.StatusUnprocessableEntity, "product_import", page)
			return
		}
		s.internal(w, r, err, productsPath)
		return
	}
	if !result.OK() {
		page.Data = result
		page.Errors = map[string]string{"": "Nenhum produto foi importado. Corrija as linhas abaixo e envie novamente."}
		s.render(w, r, http.StatusUnprocessableEntity, "product_import", page)
		return
	}
	s.redirect(w, r, session.FlashSuccess, fmt.Sprintf("%d produto(s) importado(s)", result.Created), productsPath)
}

func (s *Server) exportProducts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="produtos-%s.xlsx"`, time.Now().Format("20060102")))
	if err := s.Catalog.ExportProducts(r.Context(), w); err != nil {
		w.Header().Del("Content-Disposition")
		s.internal(w, r, err, productsPath)
	}
}

// Payment methods.

func (s *Server) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := s.Catalog.ListPaymentMethods(r.Context())
	if err != nil {
		s.internal(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "payment_methods", &Page{Title: "Formas de pagamento", Data: methods})
}

func (s *Server) newPaymentMethodForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "payment_method_form", &Page{
		Title: "Nova forma de pagamento",
		Data:  formMeta{Action: paymentMethodsPath + "/cadastrar"},
	})
}

func (s *Server) createPaymentMethod(w http.ResponseWriter, r *http.Request) {
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Nova forma de pagamento", Data: formMeta{Action: paymentMethodsPath + "/cadastrar"}}
	in, err := dto.ParseCreatePaymentMethod(form)
	if err == nil {
		_, err = s.Catalog.CreatePaymentMethod(r.Context(), *in)
	}
	if err != nil {
		s.formFailed(w, r, "payment_method_form", page, err, paymentMethodsPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Forma de pagamento cadastrada com sucesso", paymentMethodsPath)
}

func (s *Server) editPaymentMethodForm(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	method, err := s.Catalog.GetPaymentMethod(r.Context(), id)
	if err != nil {
		s.missing(w, r, err, paymentMethodsPath)
		return
	}
	s.render(w, r, http.StatusOK, "payment_method_form", &Page{
		Title: "Alterar forma de pagamento",
		Data:  formMeta{Action: idPath(paymentMethodsPath+"/alterar", id), Editing: true},
		Form: url.Values{
			dto.FieldName:     {method.Name},
			dto.FieldDiscount: {method.Discount.String()},
		},
	})
}

func (s *Server) updatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	form, err := postForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	page := &Page{Title: "Alterar forma de pagamento", Data: formMeta{Action: idPath(paymentMethodsPath+"/alterar", id), Editing: true}}
	in, err := dto.ParseAlterPaymentMethod(form)
	if err == nil {
		_, err = s.Catalog.UpdatePaymentMethod(r.Context(), *in)
	}
	if err != nil {
		s.formFailed(w, r, "payment_method_form", page, err, paymentMethodsPath)
		return
	}
	s.redirect(w, r, session.FlashSuccess, "Forma de pagamento alterada com sucesso", paymentMethodsPath)
}

func (s *Server) deletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	s.deleteWith(w, r, paymentMethodsPath, func(form url.Values) error {
		in, err := dto.ParseDeletePaymentMethod(form)
		if err != nil {
			return err
		}
		return s.Catalog.DeletePaymentMethod(r.Context(), in.ID)
	})
}
