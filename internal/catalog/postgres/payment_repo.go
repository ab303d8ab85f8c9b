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

const paymentColumns = `id, name, discount, created_at, updated_at`

// PaymentMethodRepository implements catalog.PaymentMethodRepository.
type PaymentMethodRepository struct {
	pool store.Pool
}

// NewPaymentMethodRepository creates a new PaymentMethodRepository.
func NewPaymentMethodRepository(pool store.Pool) *PaymentMethodRepository {
	return &PaymentMethodRepository{pool: pool}
}

func scanPaymentMethod(row pgx.Row) (*catalog.PaymentMethod, error) {
	var m catalog.PaymentMethod
	if err := row.Scan(&m.ID, &m.Name, &m.Discount, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with lookup context
	}
	return &m, nil
}

// List returns every payment method ordered by name.
func (r *PaymentMethodRepository) List(ctx context.Context) ([]*catalog.PaymentMethod, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+paymentColumns+` FROM payment_methods ORDER BY LOWER(name), id`)
	if err != nil {
		return nil, oops.Code("PAYMENT_METHOD_LIST_FAILED").Wrap(err)
	}
	defer rows.Close()

	var out []*catalog.PaymentMethod
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, oops.Code("PAYMENT_METHOD_SCAN_FAILED").Wrap(err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PAYMENT_METHOD_LIST_FAILED").With("operation", "iterate payment methods").Wrap(err)
	}
	return out, nil
}

// Get retrieves a payment method by ID.
func (r *PaymentMethodRepository) Get(ctx context.Context, id int64) (*catalog.PaymentMethod, error) {
	m, err := scanPaymentMethod(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payment_methods WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("PAYMENT_METHOD_NOT_FOUND", "payment method", id)
	}
	if err != nil {
		return nil, oops.Code("PAYMENT_METHOD_GET_FAILED").With("id", id).Wrap(err)
	}
	return m, nil
}

// Create stores a new payment method and sets its ID and timestamps.
func (r *PaymentMethodRepository) Create(ctx context.Context, m *catalog.PaymentMethod) error {
	err := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO payment_methods (name, discount) VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, m.Name, m.Discount).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return oops.Code("PAYMENT_METHOD_NAME_TAKEN").With("name", m.Name).Wrap(catalog.ErrDuplicateName)
		}
		return oops.Code("PAYMENT_METHOD_CREATE_FAILED").With("name", m.Name).Wrap(err)
	}
	return nil
}

// Update stores a payment method's name and discount.
func (r *PaymentMethodRepository) Update(ctx context.Context, m *catalog.PaymentMethod) error {
	err := execOne(ctx, conn(ctx, r.pool), "PAYMENT_METHOD_NOT_FOUND", "payment method", m.ID,
		`UPDATE payment_methods SET name = $2, discount = $3, updated_at = now() WHERE id = $1`,
		m.ID, m.Name, m.Discount)
	switch {
	case err == nil, errors.Is(err, catalog.ErrNotFound):
		return err
	case store.IsUniqueViolation(err):
		return oops.Code("PAYMENT_METHOD_NAME_TAKEN").With("name", m.Name).Wrap(catalog.ErrDuplicateName)
	default:
		return oops.Code("PAYMENT_METHOD_UPDATE_FAILED").With("id", m.ID).Wrap(err)
	}
}

// Delete removes a payment method.
func (r *PaymentMethodRepository) Delete(ctx context.Context, id int64) error {
	err := execOne(ctx, conn(ctx, r.pool), "PAYMENT_METHOD_NOT_FOUND", "payment method", id,
		`DELETE FROM payment_methods WHERE id = $1`, id)
	if err == nil || errors.Is(err, catalog.ErrNotFound) {
		return err
	}
	return oops.Code("PAYMENT_METHOD_DELETE_FAILED").With("id", id).Wrap(err)
}

var _ catalog.PaymentMethodRepository = (*PaymentMethodRepository)(nil)
