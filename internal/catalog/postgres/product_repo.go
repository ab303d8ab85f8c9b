// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/vitrine/vitrine/internal/catalog"
	"github.com/vitrine/vitrine/internal/store"
)

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.quantity, p.category_id,
	       c.name, p.created_at, p.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id`

// ProductRepository implements catalog.ProductRepository.
type ProductRepository struct {
	pool store.Pool
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(pool store.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CategoryID,
		&p.CategoryName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with lookup context
	}
	return &p, nil
}

// List returns every product ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]*catalog.Product, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, productSelect+` ORDER BY LOWER(p.name), p.id`)
	if err != nil {
		return nil, oops.Code("PRODUCT_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var out []*catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, oops.Code("PRODUCT_SCAN_FAILED").Wrap(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PRODUCT_LIST_FAILED").With("operation", "iterate products").Wrap(err)
	}
	return out, nil
}

// Get retrieves a product by ID.
func (r *ProductRepository) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	p, err := scanProduct(conn(ctx, r.pool).QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("PRODUCT_NOT_FOUND", "product", id)
	}
	if err != nil {
		return nil, oops.Code("PRODUCT_GET_FAILED").With("id", id).Wrap(err)
	}
	return p, nil
}

func categoryError(err error, categoryID int64) error {
	if store.IsForeignKeyViolation(err) {
		return oops.Code("PRODUCT_UNKNOWN_CATEGORY").
			With("category_id", categoryID).
			Wrap(catalog.ErrUnknownCategory)
	}
	return nil
}

// Create stores a new product and sets its ID and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO products (name, description, price, quantity, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Description, p.Price, p.Quantity, p.CategoryID).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if catErr := categoryError(err, p.CategoryID); catErr != nil {
			return catErr
		}
		return oops.Code("PRODUCT_CREATE_FAILED").With("name", p.Name).Wrap(err)
	}
	return nil
}

// Update stores the editable fields of a product.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	err := execOne(ctx, conn(ctx, r.pool), "PRODUCT_NOT_FOUND", "product", p.ID, `
		UPDATE products SET
			name = $2,
			description = $3,
			price = $4,
			quantity = $5,
			category_id = $6,
			updated_at = now()
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price, p.Quantity, p.CategoryID)
	if err == nil || errors.Is(err, catalog.ErrNotFound) {
		return err
	}
	if catErr := categoryError(err, p.CategoryID); catErr != nil {
		return catErr
	}
	return oops.Code("PRODUCT_UPDATE_FAILED").With("id", p.ID).Wrap(err)
}

// Delete removes a product. Its photo records go with it.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	err := execOne(ctx, conn(ctx, r.pool), "PRODUCT_NOT_FOUND", "product", id,
		`DELETE FROM products WHERE id = $1`, id)
	if err == nil || errors.Is(err, catalog.ErrNotFound) {
		return err
	}
	return oops.Code("PRODUCT_DELETE_FAILED").With("id", id).Wrap(err)
}

var _ catalog.ProductRepository = (*ProductRepository)(nil)
