// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/vitrine/vitrine/internal/catalog"
)

// priceOption is the product price under one payment method.
type priceOption struct {
	Method *catalog.PaymentMethod
	Price  decimal.Decimal
}

type productView struct {
	Product *catalog.Product
	Photos  []*catalog.Photo
	Prices  []priceOption
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	products, err := s.Catalog.ListProducts(r.Context())
	if err != nil {
		s.internal(w, r, err, "")
		return
	}
	s.render(w, r, http.StatusOK, "home", &Page{Title: "Produtos", Data: products})
}

func (s *Server) productPage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := s.productView(r, id)
	if err != nil {
		if isNotFound(err) {
			s.notFound(w, r)
			return
		}
		s.internal(w, r, err, "")
		return
	}
	methods, err := s.Catalog.ListPaymentMethods(r.Context())
	if err != nil {
		s.internal(w, r, err, "")
		return
	}
	for _, m := range methods {
		view.Prices = append(view.Prices, priceOption{Method: m, Price: m.Apply(view.Product.Price)})
	}
	s.render(w, r, http.StatusOK, "product", &Page{Title: view.Product.Name, Data: view})
}

func (s *Server) productView(r *http.Request, id int64) (*productView, error) {
	product, err := s.Catalog.GetProduct(r.Context(), id)
	if err != nil {
		return nil, err
	}
	photos, err := s.Catalog.ProductPhotos(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return &productView{Product: product, Photos: photos}, nil
}
