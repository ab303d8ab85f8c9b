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

// PhotoRepository implements catalog.PhotoRepository.
type PhotoRepository struct {
	pool store.Pool
	tx   *Transactor
}

// NewPhotoRepository creates a new PhotoRepository.
func NewPhotoRepository(pool store.Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool, tx: NewTransactor(pool)}
}

// ListByProduct returns the photos of a product ordered by position.
func (r *PhotoRepository) ListByProduct(ctx context.Context, productID int64) ([]*catalog.Photo, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, product_id, path, position, created_at
		FROM product_photos
		WHERE product_id = $1
		ORDER BY position, id
	`, productID)
	if err != nil {
		return nil, oops.Code("PHOTO_LIST_FAILED").With("product_id", productID).Wrap(err)
	}
	defer rows.Close()

	var out []*catalog.Photo
	for rows.Next() {
		var p catalog.Photo
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Path, &p.Position, &p.CreatedAt); err != nil {
			return nil, oops.Code("PHOTO_SCAN_FAILED").Wrap(err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PHOTO_LIST_FAILED").With("operation", "iterate photos").Wrap(err)
	}
	return out, nil
}

// Add appends a photo after the product's last position.
func (r *PhotoRepository) Add(ctx context.Context, p *catalog.Photo) error {
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO product_photos (product_id, path, position)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1
		FROM product_photos WHERE product_id = $1
		RETURNING id, position, created_at
	`, p.ProductID, p.Path).Scan(&p.ID, &p.Position, &p.CreatedAt)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return notFound("PRODUCT_NOT_FOUND", "product", p.ProductID)
		}
		return oops.Code("PHOTO_ADD_FAILED").With("product_id", p.ProductID).Wrap(err)
	}
	return nil
}

// Delete removes a photo and shifts the later photos up one position.
func (r *PhotoRepository) Delete(ctx context.Context, productID, photoID int64) (*catalog.Photo, error) {
	p := &catalog.Photo{ID: photoID, ProductID: productID}
	err := r.tx.InTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.pool)
		err := db.QueryRow(ctx, `
			DELETE FROM product_photos WHERE id = $1 AND product_id = $2
			RETURNING path, position, created_at
		`, photoID, productID).Scan(&p.Path, &p.Position, &p.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound("PHOTO_NOT_FOUND", "photo", photoID)
		}
		if err != nil {
			return oops.Code("PHOTO_DELETE_FAILED").With("id", photoID).Wrap(err)
		}
		if _, err := db.Exec(ctx, `
			UPDATE product_photos SET position = position - 1
			WHERE product_id = $1 AND position > $2
		`, productID, p.Position); err != nil {
			return oops.Code("PHOTO_DELETE_FAILED").With("operation", "close position gap").Wrap(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetPositions assigns positions 1..n to photoIDs in order.
func (r *PhotoRepository) SetPositions(ctx context.Context, productID int64, photoIDs []int64) error {
	return r.tx.InTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.pool)
		for i, id := range photoIDs {
			err := execOne(ctx, db, "PHOTO_NOT_FOUND", "photo", id,
				`UPDATE product_photos SET position = $3 WHERE id = $1 AND product_id = $2`,
				id, productID, i+1)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return err
				}
				return oops.Code("PHOTO_REORDER_FAILED").With("id", id).Wrap(err)
			}
		}
		return nil
	})
}

var _ catalog.PhotoRepository = (*PhotoRepository)(nil)
