// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package catalog_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/vitrine/internal/catalog"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/pkg/errutil"
)

type fixture struct {
	svc   *catalog.Service
	mem   *memCatalog
	files *fakeFiles
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := newMemCatalog()
	files := newFakeFiles()
	svc, err := catalog.NewService(catalog.Config{
		Categories:     memCategories{mem},
		Products:       memProducts{mem},
		Photos:         memPhotos{mem},
		PaymentMethods: memPayments{mem},
		Transactor:     mem,
		Files:          files,
	})
	require.NoError(t, err)
	return &fixture{svc: svc, mem: mem, files: files}
}

func (f *fixture) category(t *testing.T, name string) *catalog.Category {
	t.Helper()
	c, err := f.svc.CreateCategory(context.Background(), dto.CreateCategory{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, name string, categoryID int64) *catalog.Product {
	t.Helper()
	p, err := f.svc.CreateProduct(context.Background(), dto.CreateProduct{ProductFields: dto.ProductFields{
		Name: name, Description: "Descrição longa o bastante", Price: decimal.RequireFromString("19.90"),
		Quantity: 3, CategoryID: categoryID,
	}})
	require.NoError(t, err)
	return p
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := catalog.NewService(catalog.Config{})
	errutil.AssertErrorCode(t, err, "CATALOG_INVALID_SERVICE")
	assert.ErrorContains(t, err, "category repository is required")
}

func TestService_Categories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c := f.category(t, "Eletrônicos")
	_, err := f.svc.CreateCategory(ctx, dto.CreateCategory{Name: "ELETRÔNICOS"})
	assert.ErrorIs(t, err, catalog.ErrDuplicateName)

	renamed, err := f.svc.UpdateCategory(ctx, dto.AlterCategory{ID: c.ID, Name: "Eletrodomésticos"})
	require.NoError(t, err)
	assert.Equal(t, "Eletrodomésticos", renamed.Name)

	_, err = f.svc.UpdateCategory(ctx, dto.AlterCategory{ID: 999, Name: "Qualquer coisa"})
	assert.True(t, catalog.IsNotFound(err))

	f.product(t, "Geladeira", c.ID)
	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, c.ID), catalog.ErrCategoryInUse)
}

func TestService_ProductLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t, "Cozinha e Mesa")
	p := f.product(t, "Caneca", c.ID)

	got, err := f.svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cozinha e Mesa", got.CategoryName)

	updated, err := f.svc.UpdateProduct(ctx, dto.AlterProduct{ID: p.ID, ProductFields: dto.ProductFields{
		Name: "Caneca grande", Description: "Descrição longa o bastante", Price: decimal.RequireFromString("24.90"),
		Quantity: 0, CategoryID: c.ID,
	}})
	require.NoError(t, err)
	assert.False(t, updated.InStock())

	_, err = f.svc.UpdateProduct(ctx, dto.AlterProduct{ID: p.ID, ProductFields: dto.ProductFields{
		Name: "Caneca", Description: "Descrição longa o bastante", Price: decimal.NewFromInt(1), CategoryID: 777,
	}})
	assert.ErrorIs(t, err, catalog.ErrUnknownCategory)

	require.NoError(t, f.svc.DeleteProduct(ctx, p.ID))
	assert.Equal(t, []int64{p.ID}, f.files.products, "photo directory removed")
	_, err = f.svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func uploads(n int) []io.Reader {
	out := make([]io.Reader, n)
	for i := range out {
		out[i] = strings.NewReader("img")
	}
	return out
}

func TestService_Photos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Caneca", f.category(t, "Cozinha e Mesa").ID)

	added, err := f.svc.AddPhotos(ctx, p.ID, uploads(3))
	require.NoError(t, err)
	require.Len(t, added, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{added[0].Position, added[1].Position, added[2].Position})

	require.NoError(t, f.svc.ReorderPhotos(ctx, dto.ReorderPhotos{ProductID: p.ID, Order: []int64{3, 1, 2}}))
	photos, err := f.svc.ProductPhotos(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{added[2].ID, added[0].ID, added[1].ID},
		[]int64{photos[0].ID, photos[1].ID, photos[2].ID})

	require.NoError(t, f.svc.DeletePhoto(ctx, p.ID, added[2].ID))
	assert.Equal(t, []string{added[2].Path}, f.files.removed)
	photos, err = f.svc.ProductPhotos(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, 1, photos[0].Position, "gap closed")
	assert.Equal(t, added[0].ID, photos[0].ID)
}

func TestService_ReorderPhotos_Invalid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Caneca", f.category(t, "Cozinha e Mesa").ID)
	_, err := f.svc.AddPhotos(ctx, p.ID, uploads(2))
	require.NoError(t, err)

	for _, order := range [][]int64{{1}, {1, 3}, {1, 1}, {2, 1, 3}} {
		err := f.svc.ReorderPhotos(ctx, dto.ReorderPhotos{ProductID: p.ID, Order: order})
		assert.ErrorIs(t, err, catalog.ErrInvalidOrder, "order %v", order)
		errutil.AssertErrorCode(t, err, "PHOTO_ORDER_INVALID")
	}
}

func TestService_AddPhotos(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown product", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.AddPhotos(ctx, 42, uploads(1))
		assert.ErrorIs(t, err, catalog.ErrNotFound)
		assert.Empty(t, f.files.saved)
	})

	t.Run("file failure stops the batch", func(t *testing.T) {
		f := newFixture(t)
		p := f.product(t, "Caneca", f.category(t, "Cozinha e Mesa").ID)
		f.files.saveErr = errors.New("disk full")
		added, err := f.svc.AddPhotos(ctx, p.ID, uploads(2))
		assert.ErrorContains(t, err, "disk full")
		assert.Empty(t, added)
	})
}

func TestService_PaymentMethods(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	m, err := f.svc.CreatePaymentMethod(ctx, dto.CreatePaymentMethod{PaymentMethodFields: dto.PaymentMethodFields{
		Name: "PIX", Discount: decimal.NewFromInt(5),
	}})
	require.NoError(t, err)

	m, err = f.svc.UpdatePaymentMethod(ctx, dto.AlterPaymentMethod{ID: m.ID, PaymentMethodFields: dto.PaymentMethodFields{
		Name: "PIX", Discount: decimal.NewFromInt(10),
	}})
	require.NoError(t, err)
	assert.Equal(t, "90", m.Apply(decimal.NewFromInt(100)).String())

	require.NoError(t, f.svc.DeletePaymentMethod(ctx, m.ID))
	assert.ErrorIs(t, f.svc.DeletePaymentMethod(ctx, m.ID), catalog.ErrNotFound)
}

func TestPaymentMethod_Apply(t *testing.T) {
	tests := []struct {
		discount, price, want string
	}{
		{"0", "19.90", "19.9"},
		{"5", "19.90", "18.91"},
		{"12.5", "80", "70"},
		{"100", "10", "0"},
	}
	for _, tt := range tests {
		m := catalog.PaymentMethod{Discount: decimal.RequireFromString(tt.discount)}
		assert.Equal(t, tt.want, m.Apply(decimal.RequireFromString(tt.price)).String(), "%s%% of %s", tt.discount, tt.price)
	}
}
