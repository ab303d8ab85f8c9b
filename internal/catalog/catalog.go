// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package catalog manages the store's categories, products, product photos
// and payment methods.
package catalog

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for errors.Is checks.
var (
	// ErrNotFound is returned when a catalog record does not exist.
	ErrNotFound = errors.New("catalog record not found")
	// ErrDuplicateName is returned when a category or payment method name
	// is already taken, ignoring case.
	ErrDuplicateName = errors.New("name already in use")
	// ErrCategoryInUse is returned when deleting a category that still has
	// products.
	ErrCategoryInUse = errors.New("category has products")
	// ErrUnknownCategory is returned when a product references a category
	// that does not exist.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidOrder is returned when a photo reordering is not a
	// permutation of the product's photos.
	ErrInvalidOrder = errors.New("invalid photo order")
)

// Category groups products.
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product is an item for sale.
type Product struct {
	ID           int64
	Name         string
	Description  string
	Price        decimal.Decimal
	Quantity     int64
	CategoryID   int64
	CategoryName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InStock reports whether at least one unit is available.
func (p *Product) InStock() bool {
	return p.Quantity > 0
}

// Photo is one picture of a product. Position starts at 1 and is the display
// order; the first photo is the product's main picture.
type Photo struct {
	ID        int64
	ProductID int64
	Path      string
	Position  int
	CreatedAt time.Time
}

// PaymentMethod is an accepted way to pay, with a percentage discount.
type PaymentMethod struct {
	ID        int64
	Name      string
	Discount  decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply returns price with the method's discount applied, rounded to cents.
func (m *PaymentMethod) Apply(price decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(100).Sub(m.Discount).Div(decimal.NewFromInt(100))
	return price.Mul(factor).Round(2)
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]*Category, error)
	Get(ctx context.Context, id int64) (*Category, error)
	// GetByName matches ignoring case.
	GetByName(ctx context.Context, name string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	// Delete fails with ErrCategoryInUse while products reference the category.
	Delete(ctx context.Context, id int64) error
}

// ProductRepository persists products.
type ProductRepository interface {
	// List returns every product with its category name, ordered by name.
	List(ctx context.Context) ([]*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	// Create fails with ErrUnknownCategory for a missing category.
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}

// PhotoRepository persists product photo records.
type PhotoRepository interface {
	// ListByProduct returns the photos ordered by position.
	ListByProduct(ctx context.Context, productID int64) ([]*Photo, error)
	// Add appends a photo after the product's last position and sets its ID
	// and Position.
	Add(ctx context.Context, p *Photo) error
	// Delete removes a photo and closes the gap in positions.
	Delete(ctx context.Context, productID, photoID int64) (*Photo, error)
	// SetPositions assigns positions 1..n to photoIDs in order.
	SetPositions(ctx context.Context, productID int64, photoIDs []int64) error
}

// PaymentMethodRepository persists payment methods.
type PaymentMethodRepository interface {
	List(ctx context.Context) ([]*PaymentMethod, error)
	Get(ctx context.Context, id int64) (*PaymentMethod, error)
	Create(ctx context.Context, m *PaymentMethod) error
	Update(ctx context.Context, m *PaymentMethod) error
	Delete(ctx context.Context, id int64) error
}

// Transactor runs fn in a database transaction carried by the context.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PhotoFiles stores and removes the image files behind Photo records.
// *photo.Storage satisfies it.
type PhotoFiles interface {
	SaveProductPhoto(productID int64, r io.Reader) (string, error)
	Remove(rel string) error
	RemoveProduct(productID int64) error
}
