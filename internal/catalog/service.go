// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/samber/oops"

	"github.com/vitrine/vitrine/internal/dto"
)

// Config holds the dependencies of a Service.
type Config struct {
	Categories     CategoryRepository
	Products       ProductRepository
	Photos         PhotoRepository
	PaymentMethods PaymentMethodRepository
	Transactor     Transactor
	Files          PhotoFiles
	Logger         *slog.Logger
}

// Service implements the catalog operations of the admin area and the
// storefront.
type Service struct {
	categories CategoryRepository
	products   ProductRepository
	photos     PhotoRepository
	payments   PaymentMethodRepository
	tx         Transactor
	files      PhotoFiles
	logger     *slog.Logger
}

// NewService validates cfg and creates a Service.
func NewService(cfg Config) (*Service, error) {
	switch {
	case cfg.Categories == nil:
		return nil, oops.Code("CATALOG_INVALID_SERVICE").Errorf("category repository is required")
	case cfg.Products == nil:
		return nil, oops.Code("CATALOG_INVALID_SERVICE").Errorf("product repository is required")
	case cfg.Photos == nil:
		return nil, oops.Code("CATALOG_INVALID_SERVICE").Errorf("photo repository is required")
	case cfg.PaymentMethods == nil:
		return nil, oops.Code("CATALOG_INVALID_SERVICE").Errorf("payment method repository is required")
	case cfg.Transactor == nil:
		return nil, oops.Code("CATALOG_INVALID_SERVICE").Errorf("transactor is required")
	case cfg.Files == nil:
		return nil, oops.Code("CATALOG_INVALID_SERVICE").Errorf("photo files are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		categories: cfg.Categories,
		products:   cfg.Products,
		photos:     cfg.Photos,
		payments:   cfg.PaymentMethods,
		tx:         cfg.Transactor,
		files:      cfg.Files,
		logger:     cfg.Logger,
	}, nil
}

// ListCategories returns every category ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.categories.List(ctx)
}

// GetCategory returns one category.
func (s *Service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	return s.categories.Get(ctx, id)
}

// CreateCategory stores a new category.
func (s *Service) CreateCategory(ctx context.Context, in dto.CreateCategory) (*Category, error) {
	c := &Category{Name: in.Name}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "category created", "category_id", c.ID)
	return c, nil
}

// UpdateCategory renames a category.
func (s *Service) UpdateCategory(ctx context.Context, in dto.AlterCategory) (*Category, error) {
	c, err := s.categories.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	c.Name = in.Name
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category that has no products.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "category deleted", "category_id", id)
	return nil
}

// ListProducts returns every product ordered by name.
func (s *Service) ListProducts(ctx context.Context) ([]*Product, error) {
	return s.products.List(ctx)
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.products.Get(ctx, id)
}

// ProductPhotos returns a product's photos in display order.
func (s *Service) ProductPhotos(ctx context.Context, productID int64) ([]*Photo, error) {
	return s.photos.ListByProduct(ctx, productID)
}

func applyProductFields(p *Product, f dto.ProductFields) {
	p.Name = f.Name
	p.Description = f.Description
	p.Price = f.Price
	p.Quantity = f.Quantity
	p.CategoryID = f.CategoryID
}

// CreateProduct stores a new product.
func (s *Service) CreateProduct(ctx context.Context, in dto.CreateProduct) (*Product, error) {
	p := &Product{}
	applyProductFields(p, in.ProductFields)
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "product created", "product_id", p.ID)
	return p, nil
}

// UpdateProduct replaces the editable fields of a product.
func (s *Service) UpdateProduct(ctx context.Context, in dto.AlterProduct) (*Product, error) {
	p, err := s.products.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	applyProductFields(p, in.ProductFields)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteProduct removes a product, its photo records and its photo files.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.files.RemoveProduct(id); err != nil {
		s.logger.WarnContext(ctx, "product photo cleanup failed (best-effort)",
			"operation", "remove_product_photos",
			"product_id", id,
			"error", err.Error())
	}
	s.logger.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

// AddPhotos stores each upload as the next photo of a product. Uploads are
// processed in order; the first failure stops the batch and earlier photos
// are kept.
func (s *Service) AddPhotos(ctx context.Context, productID int64, uploads []io.Reader) ([]*Photo, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	added := make([]*Photo, 0, len(uploads))
	for i, upload := range uploads {
		rel, err := s.files.SaveProductPhoto(productID, upload)
		if err != nil {
			return added, oops.With("upload", i+1).Wrap(err)
		}
		p := &Photo{ProductID: productID, Path: rel}
		if err := s.photos.Add(ctx, p); err != nil {
			if rmErr := s.files.Remove(rel); rmErr != nil {
				s.logger.WarnContext(ctx, "orphan photo cleanup failed (best-effort)",
					"operation", "remove_photo_file",
					"path", rel,
					"error", rmErr.Error())
			}
			return added, err
		}
		added = append(added, p)
	}
	return added, nil
}

// DeletePhoto removes one photo and its file.
func (s *Service) DeletePhoto(ctx context.Context, productID, photoID int64) error {
	p, err := s.photos.Delete(ctx, productID, photoID)
	if err != nil {
		return err
	}
	if err := s.files.Remove(p.Path); err != nil {
		s.logger.WarnContext(ctx, "photo file removal failed (best-effort)",
			"operation", "remove_photo_file",
			"path", p.Path,
			"error", err.Error())
	}
	return nil
}

// ReorderPhotos applies a new display order. in.Order lists current
// positions; in.Order[i] becomes position i+1. It must name every photo of
// the product exactly once.
func (s *Service) ReorderPhotos(ctx context.Context, in dto.ReorderPhotos) error {
	return s.tx.InTransaction(ctx, func(ctx context.Context) error {
		current, err := s.photos.ListByProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		ids, err := permute(current, in.Order)
		if err != nil {
			return oops.Code("PHOTO_ORDER_INVALID").
				With("product_id", in.ProductID).
				With("order", in.Order).
				Wrap(err)
		}
		return s.photos.SetPositions(ctx, in.ProductID, ids)
	})
}

// permute maps an order of positions onto photo IDs.
func permute(photos []*Photo, order []int64) ([]int64, error) {
	if len(order) != len(photos) {
		return nil, ErrInvalidOrder
	}
	byPosition := make(map[int64]int64, len(photos))
	for _, p := range photos {
		byPosition[int64(p.Position)] = p.ID
	}
	ids := make([]int64, 0, len(order))
	seen := make(map[int64]bool, len(order))
	for _, pos := range order {
		id, ok := byPosition[pos]
		if !ok || seen[pos] {
			return nil, ErrInvalidOrder
		}
		seen[pos] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// ListPaymentMethods returns every payment method ordered by name.
func (s *Service) ListPaymentMethods(ctx context.Context) ([]*PaymentMethod, error) {
	return s.payments.List(ctx)
}

// GetPaymentMethod returns one payment method.
func (s *Service) GetPaymentMethod(ctx context.Context, id int64) (*PaymentMethod, error) {
	return s.payments.Get(ctx, id)
}

// CreatePaymentMethod stores a new payment method.
func (s *Service) CreatePaymentMethod(ctx context.Context, in dto.CreatePaymentMethod) (*PaymentMethod, error) {
	m := &PaymentMethod{Name: in.Name, Discount: in.Discount}
	if err := s.payments.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdatePaymentMethod replaces a payment method's name and discount.
func (s *Service) UpdatePaymentMethod(ctx context.Context, in dto.AlterPaymentMethod) (*PaymentMethod, error) {
	m, err := s.payments.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	m.Name, m.Discount = in.Name, in.Discount
	if err := s.payments.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeletePaymentMethod removes a payment method.
func (s *Service) DeletePaymentMethod(ctx context.Context, id int64) error {
	return s.payments.Delete(ctx, id)
}

// IsNotFound reports whether err means a catalog record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
