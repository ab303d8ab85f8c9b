// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package main

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/catalog"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/validation"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

//go:embed fixtures/seed.yaml
var defaultFixtures []byte

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	file    string
	timeout time.Duration
}

// fixtures is the YAML layout read by the seed command.
type fixtures struct {
	Categories     []string               `yaml:"categories"`
	PaymentMethods []paymentMethodFixture `yaml:"payment_methods"`
	Users          []userFixture          `yaml:"users"`
}

type paymentMethodFixture struct {
	Name     string `yaml:"name"`
	Discount string `yaml:"discount"`
}

type userFixture struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	// Role is admin or cliente; empty means admin.
	Role string `yaml:"role"`
}

// seedPlan holds validated fixtures ready to insert.
type seedPlan struct {
	categories []dto.CreateCategory
	payments   []dto.CreatePaymentMethod
	users      []auth.NewAccount
}

// seedReport counts what a seed run did.
type seedReport struct {
	Created int
	Skipped int
}

type catalogSeeder interface {
	CreateCategory(ctx context.Context, in dto.CreateCategory) (*catalog.Category, error)
	CreatePaymentMethod(ctx context.Context, in dto.CreatePaymentMethod) (*catalog.PaymentMethod, error)
}

type accountSeeder interface {
	CreateUser(ctx context.Context, in auth.NewAccount) (*auth.User, error)
}

// newSeedCmd creates the seed subcommand.
func newSeedCmd(deps *Deps) *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, payment methods and users from YAML fixtures",
		Long: `Inserts the records listed in a YAML fixtures file. Without --file the
built-in development fixtures are used.
This command is idempotent - records whose name or email already exists are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, deps, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.file, "file", "", "fixtures file (default: built-in development data)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, deps *Deps, seedCfg *seedConfig) error {
	data := defaultFixtures
	if seedCfg.file != "" {
		var err error
		data, err = os.ReadFile(seedCfg.file)
		if err != nil {
			return oops.Code("SEED_READ_FAILED").With("file", seedCfg.file).Wrap(err)
		}
	}
	plan, err := parseFixtures(data)
	if err != nil {
		return oops.With("file", seedCfg.file).Wrap(err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := commandLogger(cfg)

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), seedCfg.timeout)
	defer cancel()

	if cfg.Database.AutoMigrate {
		cmd.Println("Running migrations...")
		if err := migrateUp(deps, cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	cmd.Println("Connecting to database...")
	a, err := openApp(ctx, deps, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := applySeed(ctx, cmd, plan, a.catalog, a.accounts, logger)
	if err != nil {
		return err
	}
	cmd.Printf("Seeding complete: %d created, %d skipped\n", report.Created, report.Skipped)
	return nil
}

// parseFixtures decodes and validates a fixtures file with the same rules
// as the admin forms.
func parseFixtures(data []byte) (*seedPlan, error) {
	var f fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, oops.Code("SEED_INVALID").With("operation", "decode fixtures").Wrap(err)
	}

	plan := &seedPlan{}
	for i, name := range f.Categories {
		in, err := dto.ParseCreateCategory(url.Values{dto.FieldName: {name}})
		if err != nil {
			return nil, invalidFixture("categories", i, err)
		}
		plan.categories = append(plan.categories, *in)
	}
	for i, pm := range f.PaymentMethods {
		in, err := dto.ParseCreatePaymentMethod(url.Values{
			dto.FieldName:     {pm.Name},
			dto.FieldDiscount: {pm.Discount},
		})
		if err != nil {
			return nil, invalidFixture("payment_methods", i, err)
		}
		plan.payments = append(plan.payments, *in)
	}
	for i, u := range f.Users {
		in, err := dto.ParseCreateAdminUser(url.Values{
			dto.FieldName:     {u.Name},
			dto.FieldEmail:    {u.Email},
			dto.FieldPassword: {u.Password},
			dto.FieldRole:     {u.Role},
		})
		if err != nil {
			return nil, invalidFixture("users", i, err)
		}
		plan.users = append(plan.users, auth.NewAccount{
			Name:     in.Name,
			Email:    in.Email,
			Password: in.Password,
			Role:     in.Role,
		})
	}
	return plan, nil
}

func invalidFixture(section string, index int, err error) error {
	msg := err.Error()
	if verrs, ok := validation.As(err); ok {
		msg = strings.Join(verrs.Messages(), "; ")
	}
	return oops.Code("SEED_INVALID").
		With("section", section).
		With("index", index).
		Errorf("%s[%d]: %s", section, index, msg)
}

// applySeed inserts plan, skipping records that already exist.
func applySeed(ctx context.Context, cmd *cobra.Command, plan *seedPlan, cat catalogSeeder, accounts accountSeeder, logger *slog.Logger) (seedReport, error) {
	var report seedReport
	record := func(kind, key string, err error, duplicate error) error {
		switch {
		case err == nil:
			report.Created++
			cmd.Printf("Created %s: %s\n", kind, key)
			return nil
		case errors.Is(err, duplicate):
			report.Skipped++
			logger.Info("seed record already exists, skipping", "kind", kind, "key", key)
			return nil
		default:
			return oops.Code("SEED_FAILED").With("kind", kind).With("key", key).Wrap(err)
		}
	}

	for _, in := range plan.categories {
		_, err := cat.CreateCategory(ctx, in)
		if err := record("category", in.Name, err, catalog.ErrDuplicateName); err != nil {
			return report, err
		}
	}
	for _, in := range plan.payments {
		_, err := cat.CreatePaymentMethod(ctx, in)
		if err := record("payment method", in.Name, err, catalog.ErrDuplicateName); err != nil {
			return report, err
		}
	}
	for _, in := range plan.users {
		_, err := accounts.CreateUser(ctx, in)
		if err := record("user", in.Email, err, auth.ErrDuplicateEmail); err != nil {
			return report, err
		}
	}
	return report, nil
}
