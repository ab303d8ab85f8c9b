// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vitrine/vitrine/internal/catalog"
)

// newProductsCmd creates the products command with its import and export
// subcommands.
func newProductsCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Import or export the product catalog as an xlsx spreadsheet",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Create products from an xlsx spreadsheet",
		Long: `Reads the "` + catalog.ProductSheet + `" worksheet and creates one product per row.
The import is all or nothing: any invalid row rejects the whole file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductsImport(cmd, deps, args[0])
		},
	})

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write every product to an xlsx spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProductsExport(cmd, deps, out)
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default: produtos-YYYYMMDD.xlsx)`)
	cmd.AddCommand(export)

	return cmd
}

func runProductsImport(cmd *cobra.Command, deps *Deps, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return oops.Code("IMPORT_READ_FAILED").With("file", path).Wrap(err)
	}
	defer f.Close() //nolint:errcheck // read-only

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := commandLogger(cfg)

	a, err := openApp(cmd.Context(), deps, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.catalog.ImportProducts(cmd.Context(), f)
	if err != nil {
		return oops.With("file", path).Wrap(err)
	}
	if !result.OK() {
		cmd.PrintErr(formatImportErrors(result))
		return oops.Code("IMPORT_REJECTED").
			With("file", path).
			With("rows", len(result.Errors)).
			Errorf("%d row(s) rejected, nothing imported", len(result.Errors))
	}
	cmd.Printf("Imported %d product(s)\n", result.Created)
	return nil
}

// formatImportErrors lists the rejected rows, one per line.
func formatImportErrors(result *catalog.ImportResult) string {
	var b strings.Builder
	for _, rowErr := range result.Errors {
		fmt.Fprintf(&b, "row %d: %s\n", rowErr.Row, strings.Join(rowErr.Messages, "; "))
	}
	return b.String()
}

func runProductsExport(cmd *cobra.Command, deps *Deps, out string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := commandLogger(cfg)

	a, err := openApp(cmd.Context(), deps, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if out == "-" {
		return a.catalog.ExportProducts(cmd.Context(), cmd.OutOrStdout()) //nolint:wrapcheck // already coded
	}
	if out == "" {
		out = exportFileName(time.Now())
	}

	f, err := os.Create(out) //nolint:gosec // path chosen by the operator
	if err != nil {
		return oops.Code("EXPORT_WRITE_FAILED").With("file", out).Wrap(err)
	}
	if err := a.catalog.ExportProducts(cmd.Context(), f); err != nil {
		_ = f.Close() //nolint:errcheck // export error takes precedence
		return oops.With("file", out).Wrap(err)
	}
	if err := f.Close(); err != nil {
		return oops.Code("EXPORT_WRITE_FAILED").With("file", out).Wrap(err)
	}
	cmd.Printf("Exported products to %s\n", out)
	return nil
}

// exportFileName is the default export file name for day.
func exportFileName(day time.Time) string {
	return "produtos-" + day.Format("20060102") + ".xlsx"
}
