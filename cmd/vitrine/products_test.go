// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vitrine/vitrine/internal/catalog"
	"github.com/vitrine/vitrine/pkg/errutil"
)

func TestExportFileName(t *testing.T) {
	day := time.Date(2026, time.March, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "produtos-20260307.xlsx", exportFileName(day))
}

func TestFormatImportErrors(t *testing.T) {
	result := &catalog.ImportResult{Errors: []catalog.RowError{
		{Row: 2, Messages: []string{"Preço é obrigatório"}},
		{Row: 5, Messages: []string{"Nome do Produto é obrigatório", "Categoria desconhecida"}},
	}}

	assert.Equal(t,
		"row 2: Preço é obrigatório\nrow 5: Nome do Produto é obrigatório; Categoria desconhecida\n",
		formatImportErrors(result))
}

func TestProductsImport_MissingFile(t *testing.T) {
	_, err := execute(t, nil, "products", "import", filepath.Join(t.TempDir(), "none.xlsx"))
	errutil.AssertErrorCode(t, err, "IMPORT_READ_FAILED")
}

func TestProductsCommand_Help(t *testing.T) {
	output, err := execute(t, nil, "products", "--help")
	assert.NoError(t, err)
	assert.Contains(t, output, "import")
	assert.Contains(t, output, "export")
}
