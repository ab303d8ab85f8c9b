// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package catalog_test

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/vitrine/vitrine/internal/catalog"
)

// memCatalog is an in-memory implementation of every catalog repository.
type memCatalog struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]*catalog.Category
	products   map[int64]*catalog.Product
	photos     map[int64]*catalog.Photo
	payments   map[int64]*catalog.PaymentMethod

	failCreateProduct error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		categories: map[int64]*catalog.Category{},
		products:   map[int64]*catalog.Product{},
		photos:     map[int64]*catalog.Photo{},
		payments:   map[int64]*catalog.PaymentMethod{},
	}
}

func (m *memCatalog) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memCatalog) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memCategories struct{ *memCatalog }

func (m memCategories) List(context.Context) ([]*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*catalog.Category
	for _, c := range m.categories {
		cp := *c
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *catalog.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m memCategories) Get(_ context.Context, id int64) (*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memCategories) GetByName(_ context.Context, name string) (*catalog.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m memCategories) nameTaken(name string, except int64) bool {
	for _, c := range m.categories {
		if c.ID != except && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func (m memCategories) Create(_ context.Context, c *catalog.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(c.Name, 0) {
		return catalog.ErrDuplicateName
	}
	c.ID = m.id()
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m memCategories) Update(_ context.Context, c *catalog.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return catalog.ErrNotFound
	}
	if m.nameTaken(c.Name, c.ID) {
		return catalog.ErrDuplicateName
	}
	cp := *c
	m.categories[c.ID] = &cp
	return nil
}

func (m memCategories) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return catalog.ErrNotFound
	}
	for _, p := range m.products {
		if p.CategoryID == id {
			return catalog.ErrCategoryInUse
		}
	}
	delete(m.categories, id)
	return nil
}

type memProducts struct{ *memCatalog }

func (m memProducts) List(context.Context) ([]*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*catalog.Product
	for _, p := range m.products {
		cp := *p
		cp.CategoryName = m.categories[p.CategoryID].Name
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *catalog.Product) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m memProducts) Get(_ context.Context, id int64) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	cp.CategoryName = m.categories[p.CategoryID].Name
	return &cp, nil
}

func (m memProducts) Create(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateProduct != nil {
		return m.failCreateProduct
	}
	if _, ok := m.categories[p.CategoryID]; !ok {
		return catalog.ErrUnknownCategory
	}
	p.ID = m.id()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m memProducts) Update(_ context.Context, p *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	if _, ok := m.categories[p.CategoryID]; !ok {
		return catalog.ErrUnknownCategory
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m memProducts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(m.products, id)
	for pid, ph := range m.photos {
		if ph.ProductID == id {
			delete(m.photos, pid)
		}
	}
	return nil
}

type memPhotos struct{ *memCatalog }

func (m memPhotos) listLocked(productID int64) []*catalog.Photo {
	var out []*catalog.Photo
	for _, p := range m.photos {
		if p.ProductID == productID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b *catalog.Photo) int { return a.Position - b.Position })
	return out
}

func (m memPhotos) ListByProduct(_ context.Context, productID int64) ([]*catalog.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*catalog.Photo
	for _, p := range m.listLocked(productID) {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m memPhotos) Add(_ context.Context, p *catalog.Photo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ProductID]; !ok {
		return catalog.ErrNotFound
	}
	p.ID = m.id()
	p.Position = len(m.listLocked(p.ProductID)) + 1
	cp := *p
	m.photos[p.ID] = &cp
	return nil
}

func (m memPhotos) Delete(_ context.Context, productID, photoID int64) (*catalog.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.photos[photoID]
	if !ok || p.ProductID != productID {
		return nil, catalog.ErrNotFound
	}
	delete(m.photos, photoID)
	for _, other := range m.listLocked(productID) {
		if other.Position > p.Position {
			other.Position--
		}
	}
	return p, nil
}

func (m memPhotos) SetPositions(_ context.Context, productID int64, photoIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range photoIDs {
		p, ok := m.photos[id]
		if !ok || p.ProductID != productID {
			return catalog.ErrNotFound
		}
		p.Position = i + 1
	}
	return nil
}

type memPayments struct{ *memCatalog }

func (m memPayments) List(context.Context) ([]*catalog.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*catalog.PaymentMethod
	for _, p := range m.payments {
		cp := *p
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *catalog.PaymentMethod) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m memPayments) Get(_ context.Context, id int64) (*catalog.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m memPayments) Create(_ context.Context, p *catalog.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m memPayments) Update(_ context.Context, p *catalog.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m memPayments) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(m.payments, id)
	return nil
}

// fakeFiles records saved and removed photo files.
type fakeFiles struct {
	mu       sync.Mutex
	next     map[int64]int
	saved    []string
	removed  []string
	products []int64
	saveErr  error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{next: map[int64]int{}}
}

func (f *fakeFiles) SaveProductPhoto(productID int64, r io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.next[productID]++
	rel := fmt.Sprintf("produtos/%06d/%03d.jpg", productID, f.next[productID])
	f.saved = append(f.saved, rel)
	return rel, nil
}

func (f *fakeFiles) Remove(rel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, rel)
	return nil
}

func (f *fakeFiles) RemoveProduct(productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, productID)
	return nil
}
