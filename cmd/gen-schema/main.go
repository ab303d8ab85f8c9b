// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

// Command gen-schema writes the JSON Schema of the configuration file.
// With -check it writes nothing and exits non-zero when the file on disk
// differs from what the Config struct produces.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vitrine/vitrine/internal/config"
)

func main() {
	out := flag.String("out", filepath.Join("schemas", "config.schema.json"), "output path")
	check := flag.Bool("check", false, "verify the schema file is current instead of writing it")
	flag.Parse()

	if err := run(*out, *check, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "gen-schema: %v\n", err)
		os.Exit(1)
	}
}

func run(out string, check bool, stdout io.Writer) error {
	schema, err := config.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	schema = append(schema, '\n')

	if check {
		current, err := os.ReadFile(out) //nolint:gosec // path comes from the -out flag
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s is missing; run gen-schema", out)
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", out, err)
		}
		if !bytes.Equal(current, schema) {
			return fmt.Errorf("%s is stale; run gen-schema", out)
		}
		fmt.Fprintf(stdout, "%s is up to date\n", out)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(out, schema, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(stdout, "Generated %s\n", out)
	return nil
}
