// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package main

import (
	"net/url"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/vitrine/vitrine/internal/auth"
	"github.com/vitrine/vitrine/internal/dto"
	"github.com/vitrine/vitrine/internal/validation"
)

type createAdminConfig struct {
	name     string
	email    string
	password string
}

// newCreateAdminCmd creates the create-admin subcommand.
func newCreateAdminCmd(deps *Deps) *cobra.Command {
	cfg := &createAdminConfig{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long: `Creates an administrator so the admin area can be reached on a fresh
database. Fails if the email is already registered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCreateAdmin(cmd, deps, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.name, "name", "", "full name")
	cmd.Flags().StringVar(&cfg.email, "email", "", "login email")
	cmd.Flags().StringVar(&cfg.password, "password", "", "initial password")
	for _, name := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name) //nolint:errcheck // flag is registered above
	}

	return cmd
}

func runCreateAdmin(cmd *cobra.Command, deps *Deps, in *createAdminConfig) error {
	account, err := parseAdminAccount(in)
	if err != nil {
		return err
	}

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

	user, err := a.accounts.CreateUser(cmd.Context(), account)
	if err != nil {
		return oops.With("operation", "create administrator").Wrap(err)
	}
	cmd.Printf("Created administrator %s (id %d)\n", user.Email, user.ID)
	return nil
}

// parseAdminAccount validates the flags with the admin user form rules.
func parseAdminAccount(in *createAdminConfig) (auth.NewAccount, error) {
	form := url.Values{
		dto.FieldName:     {in.name},
		dto.FieldEmail:    {in.email},
		dto.FieldPassword: {in.password},
		dto.FieldRole:     {string(auth.RoleAdmin)},
	}
	parsed, err := dto.ParseCreateAdminUser(form)
	if err != nil {
		msg := err.Error()
		if verrs, ok := validation.As(err); ok {
			msg = strings.Join(verrs.Messages(), "; ")
		}
		return auth.NewAccount{}, oops.Code("ADMIN_INVALID").Errorf("invalid administrator: %s", msg)
	}
	return auth.NewAccount{
		Name:     parsed.Name,
		Email:    parsed.Email,
		Password: parsed.Password,
		Role:     auth.RoleAdmin,
	}, nil
}
