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

const categoryColumns = `id, name, created_at, updated_at`

// CategoryRepository implements catalog.CategoryRepository.
type CategoryRepository struct {
	pool store.Pool
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(pool store.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func scanCategory(row pgx.Row) (*catalog.Category, error) {
	var c catalog.Category
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with lookup context
	}
	return &c, nil
}

// List returns every category ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]*catalog.Category, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY LOWER(name), id`)
	if err != nil {
		return nil, oops.Code("CATEGORY_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var out []*catalog.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, oops.Code("CATEGORY_SCAN_FAILED").Wrap(err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CATEGORY_LIST_FAILED").With("operation", "iterate categories").Wrap(err)
	}
	return out, nil
}

// Get retrieves a category by ID.
func (r *CategoryRepository) Get(ctx context.Context, id int64) (*catalog.Category, error) {
	c, err := scanCategory(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("CATEGORY_NOT_FOUND", "category", id)
	}
	if err != nil {
		return nil, oops.Code("CATEGORY_GET_FAILED").With("id", id).Wrap(err)
	}
	return c, nil
}

// GetByName retrieves a category by name, ignoring case.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*catalog.Category, error) {
	c, err := scanCategory(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE LOWER(name) = LOWER($1)`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("CATEGORY_NOT_FOUND").With("name", name).Wrap(catalog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("CATEGORY_GET_FAILED").With("name", name).Wrap(err)
	}
	return c, nil
}

// Create stores a new category and sets its ID and timestamps.
func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO categories (name) VALUES ($1)
		RETURNING id, created_at, updated_at
	`, c.Name).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return oops.Code("CATEGORY_NAME_TAKEN").With("name", c.Name).Wrap(catalog.ErrDuplicateName)
		}
		return oops.Code("CATEGORY_CREATE_FAILED").With("name", c.Name).Wrap(err)
	}
	return nil
}

// Update renames a category.
func (r *CategoryRepository) Update(ctx context.Context, c *catalog.Category) error {
	err := execOne(ctx, conn(ctx, r.pool), "CATEGORY_NOT_FOUND", "category", c.ID,
		`UPDATE categories SET name = $2, updated_at = now() WHERE id = $1`, c.ID, c.Name)
	switch {
	case err == nil, errors.Is(err, catalog.ErrNotFound):
		return err
	case store.IsUniqueViolation(err):
		return oops.Code("CATEGORY_NAME_TAKEN").With("name", c.Name).Wrap(catalog.ErrDuplicateName)
	default:
		return oops.Code("CATEGORY_UPDATE_FAILED").With("id", c.ID).Wrap(err)
	}
}

// Delete removes a category without products.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	err := execOne(ctx, conn(ctx, r.pool), "CATEGORY_NOT_FOUND", "category", id,
		`DELETE FROM categories WHERE id = $1`, id)
	switch {
	case err == nil, errors.Is(err, catalog.ErrNotFound):
		return err
	case store.IsForeignKeyViolation(err):
		return oops.Code("CATEGORY_IN_USE").With("id", id).Wrap(catalog.ErrCategoryInUse)
	default:
		return oops.Code("CATEGORY_DELETE_FAILED").With("id", id).Wrap(err)
	}
}

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)
