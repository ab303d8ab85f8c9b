// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vitrine/vitrine/internal/validation"
)

var (
	minPrice    = decimal.RequireFromString("0.01")
	maxDiscount = decimal.NewFromInt(100)
)

// CreateCategory is the payload of the new-category form.
type CreateCategory struct {
	Name string
}

// AlterCategory is the payload of the edit-category form.
type AlterCategory struct {
	ID   int64
	Name string
}

// DeleteCategory identifies the category to remove.
type DeleteCategory struct {
	ID int64
}

func categoryName(c *validation.Collector, f Form) string {
	name, err := validation.RequiredText(f.Get(FieldName), "Nome da Categoria", 8, 32)
	c.Add(FieldName, err)
	return name
}

// ParseCreateCategory validates a new category.
func ParseCreateCategory(f Form) (*CreateCategory, error) {
	var c validation.Collector
	out := &CreateCategory{Name: categoryName(&c, f)}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseAlterCategory validates a category edit.
func ParseAlterCategory(f Form) (*AlterCategory, error) {
	var c validation.Collector
	out := &AlterCategory{
		ID:   parseID(&c, f, "ID da Categoria"),
		Name: categoryName(&c, f),
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseDeleteCategory validates a category removal.
func ParseDeleteCategory(f Form) (*DeleteCategory, error) {
	var c validation.Collector
	out := &DeleteCategory{ID: parseID(&c, f, "ID da Categoria")}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductFields are the editable attributes of a product.
type ProductFields struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int64
	CategoryID  int64
}

// CreateProduct is the payload of the new-product form.
type CreateProduct struct {
	ProductFields
}

// AlterProduct is the payload of the edit-product form.
type AlterProduct struct {
	ID int64
	ProductFields
}

// DeleteProduct identifies the product to remove.
type DeleteProduct struct {
	ID int64
}

func productFields(c *validation.Collector, f Form) ProductFields {
	var p ProductFields
	var err error

	p.Name, err = validation.RequiredText(f.Get(FieldName), "Nome do Produto", 3, 200)
	c.Add(FieldName, err)

	p.Description, err = validation.RequiredText(f.Get(FieldDescription), "Descrição do Produto", 10, 5000)
	c.Add(FieldDescription, err)

	p.Price, err = validation.Money(f.Get(FieldPrice), "Preço", minPrice)
	c.Add(FieldPrice, err)

	p.Quantity, err = validation.Integer(f.Get(FieldQuantity), "Quantidade", 0, 999999)
	c.Add(FieldQuantity, err)

	p.CategoryID, err = validation.Integer(f.Get(FieldCategoryID), "ID da Categoria", 1, maxID)
	c.Add(FieldCategoryID, err)

	return p
}

// ParseCreateProduct validates a new product.
func ParseCreateProduct(f Form) (*CreateProduct, error) {
	var c validation.Collector
	out := &CreateProduct{ProductFields: productFields(&c, f)}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseAlterProduct validates a product edit.
func ParseAlterProduct(f Form) (*AlterProduct, error) {
	var c validation.Collector
	out := &AlterProduct{
		ID:            parseID(&c, f, "ID do Produto"),
		ProductFields: productFields(&c, f),
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseDeleteProduct validates a product removal.
func ParseDeleteProduct(f Form) (*DeleteProduct, error) {
	var c validation.Collector
	out := &DeleteProduct{ID: parseID(&c, f, "ID do Produto")}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReorderPhotos carries the new display order of a product's photos. Order[i]
// is the current number of the photo that should become photo i+1.
type ReorderPhotos struct {
	ProductID int64
	Order     []int64
}

// ParseReorderPhotos validates a photo reordering request.
func ParseReorderPhotos(f Form) (*ReorderPhotos, error) {
	var c validation.Collector
	id := parseID(&c, f, "ID do Produto")
	order, err := validation.PositiveIntList(f.Get(FieldNewOrder), "Nova ordem")
	c.Add(FieldNewOrder, err)
	if err := c.Err(); err != nil {
		return nil, err
	}
	return &ReorderPhotos{ProductID: id, Order: order}, nil
}

// PaymentMethodFields are the editable attributes of a payment method.
type PaymentMethodFields struct {
	Name string
	// Discount is a percentage in [0, 100].
	Discount decimal.Decimal
}

// CreatePaymentMethod is the payload of the new-payment-method form.
type CreatePaymentMethod struct {
	PaymentMethodFields
}

// AlterPaymentMethod is the payload of the edit-payment-method form.
type AlterPaymentMethod struct {
	ID int64
	PaymentMethodFields
}

// DeletePaymentMethod identifies the payment method to remove.
type DeletePaymentMethod struct {
	ID int64
}

func paymentMethodFields(c *validation.Collector, f Form) PaymentMethodFields {
	var p PaymentMethodFields
	var err error

	p.Name, err = validation.RequiredText(f.Get(FieldName), "Nome da Forma de Pagamento", 2, 100)
	c.Add(FieldName, err)

	p.Discount, err = validation.Money(f.Get(FieldDiscount), "Desconto", decimal.Zero)
	if c.Add(FieldDiscount, err) && p.Discount.GreaterThan(maxDiscount) {
		c.Fail(FieldDiscount, "Desconto deve estar entre 0 e 100")
	}
	return p
}

// ParseCreatePaymentMethod validates a new payment method.
func ParseCreatePaymentMethod(f Form) (*CreatePaymentMethod, error) {
	var c validation.Collector
	out := &CreatePaymentMethod{PaymentMethodFields: paymentMethodFields(&c, f)}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseAlterPaymentMethod validates a payment method edit.
func ParseAlterPaymentMethod(f Form) (*AlterPaymentMethod, error) {
	var c validation.Collector
	out := &AlterPaymentMethod{
		ID:                  parseID(&c, f, "ID da Forma de Pagamento"),
		PaymentMethodFields: paymentMethodFields(&c, f),
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseDeletePaymentMethod validates a payment method removal.
func ParseDeletePaymentMethod(f Form) (*DeletePaymentMethod, error) {
	var c validation.Collector
	out := &DeletePaymentMethod{ID: parseID(&c, f, "ID da Forma de Pagamento")}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
