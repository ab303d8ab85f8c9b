// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Package postgres implements the catalog repositories on PostgreSQL.
package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/vitrine/vitrine/internal/catalog"
	"github.com/vitrine/vitrine/internal/store"
)

// dbtx is the pool or the open transaction a repository query runs on.
type dbtx = store.DBTX

func conn(ctx context.Context, pool store.Pool) dbtx {
	return store.Conn(ctx, pool)
}

// Transactor implements catalog.Transactor.
type Transactor = store.Transactor

// NewTransactor creates a Transactor backed by pool.
func NewTransactor(pool store.Pool) *Transactor {
	return store.NewTransactor(pool)
}

var _ catalog.Transactor = (*Transactor)(nil)

// notFound wraps catalog.ErrNotFound with the record kind and id.
func notFound(code, kind string, id int64) error {
	return oops.Code(code).
		With("kind", kind).
		With("id", id).
		Wrap(catalog.ErrNotFound)
}

// execOne runs a single-row mutation and reports zero affected rows as not
// found.
func execOne(ctx context.Context, db dbtx, notFoundCode, kind string, id int64, query string, args ...any) error {
	result, err := db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return notFound(notFoundCode, kind, id)
	}
	return nil
}
