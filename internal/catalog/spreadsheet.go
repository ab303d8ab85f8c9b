// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/oops"
	"github.com/xuri/excelize/v2"

	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/validation"
)

// ProductSheet is the worksheet name used for import and export.
const ProductSheet = "Produtos"

// Spreadsheet columns, in order. Import ignores the ID column.
var productColumns = []string{"ID", "Nome", "Descrição", "Preço", "Quantidade", "Categoria"}

// RowError lists the problems found on one spreadsheet row.
type RowError struct {
	// Row is the 1-based spreadsheet row number, header included.
	Row      int
	Messages []string
}

// ImportResult summarizes a product import.
type ImportResult struct {
	Created int
	Errors  []RowError
}

// OK reports whether every row was valid and imported.
func (r *ImportResult) OK() bool {
	return len(r.Errors) == 0
}

// ExportProducts writes every product to an xlsx workbook.
func (s *Service) ExportProducts(ctx context.Context, w io.Writer) error {
	products, err := s.products.List(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName("Sheet1", ProductSheet); err != nil {
		return oops.Code("EXPORT_FAILED").With("operation", "name sheet").Wrap(err)
	}
	if err := f.SetSheetRow(ProductSheet, "A1", &productColumns); err != nil {
		return oops.Code("EXPORT_FAILED").With("operation", "write header").Wrap(err)
	}
	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return oops.Code("EXPORT_FAILED").Wrap(err)
		}
		price, _ := p.Price.Float64()
		row := []any{p.ID, p.Name, p.Description, price, p.Quantity, p.CategoryName}
		if err := f.SetSheetRow(ProductSheet, cell, &row); err != nil {
			return oops.Code("EXPORT_FAILED").With("operation", "write row").With("product_id", p.ID).Wrap(err)
		}
	}
	if err := f.Write(w); err != nil {
		return oops.Code("EXPORT_FAILED").With("operation", "write workbook").Wrap(err)
	}
	return nil
}

// ImportProducts reads products from the first worksheet of an xlsx
// workbook laid out like ExportProducts writes it. Rows are validated with
// the same rules as the product form and categories are matched by name.
// Nothing is stored unless every row is valid.
func (s *Service) ImportProducts(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, oops.Code("IMPORT_INVALID_FILE").Wrap(err)
	}
	defer f.Close() //nolint:errcheck // read-only workbook

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, oops.Code("IMPORT_INVALID_FILE").Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, oops.Code("IMPORT_INVALID_FILE").With("sheet", sheets[0]).Wrap(err)
	}

	result := &ImportResult{}
	var pending []dto.CreateProduct
	categoryIDs := map[string]int64{}

	for i, row := range rows {
		if i == 0 || blankRow(row) {
			continue
		}
		rowNum := i + 1
		form, categoryName := rowForm(row)

		id, known := categoryIDs[strings.ToLower(categoryName)]
		if !known && categoryName != "" {
			c, err := s.categories.GetByName(ctx, categoryName)
			switch {
			case err == nil:
				id = c.ID
				categoryIDs[strings.ToLower(categoryName)] = id
			case !errors.Is(err, ErrNotFound):
				return nil, err
			}
		}
		if id > 0 {
			form.Set(dto.FieldCategoryID, strconv.FormatInt(id, 10))
		}

		in, err := dto.ParseCreateProduct(form)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Messages: rowMessages(err, categoryName, id)})
			continue
		}
		pending = append(pending, *in)
	}

	if !result.OK() {
		return result, nil
	}

	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		for _, in := range pending {
			p := &Product{}
			applyProductFields(p, in.ProductFields)
			if err := s.products.Create(ctx, p); err != nil {
				return oops.With("product", p.Name).Wrap(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, oops.Code("IMPORT_FAILED").Wrap(err)
	}
	result.Created = len(pending)
	s.logger.InfoContext(ctx, "products imported", "count", result.Created)
	return result, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// rowForm maps a spreadsheet row onto the product form fields.
func rowForm(row []string) (url.Values, string) {
	form := url.Values{}
	form.Set(dto.FieldName, cellAt(row, 1))
	form.Set(dto.FieldDescription, cellAt(row, 2))
	form.Set(dto.FieldPrice, cellAt(row, 3))
	form.Set(dto.FieldQuantity, cellAt(row, 4))
	return form, cellAt(row, 5)
}

func rowMessages(err error, categoryName string, categoryID int64) []string {
	verrs, ok := validation.As(err)
	if !ok {
		return []string{err.Error()}
	}
	var out []string
	for _, e := range verrs {
		if e.Field != dto.FieldCategoryID {
			out = append(out, e.Message)
		}
	}
	switch {
	case categoryName == "":
		out = append(out, "Categoria é obrigatória")
	case categoryID == 0:
		out = append(out, fmt.Sprintf("Categoria %q não encontrada", categoryName))
	}
	return out
}
