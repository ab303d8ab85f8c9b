// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

//go:build integration

package cli_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
)

var _ = Describe("Seed Command", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		cleanupDatabase(ctx)
	})

	It("loads the built-in fixtures", func() {
		output, err := vitrine(ctx, "seed")
		Expect(err).NotTo(HaveOccurred(), "seed command failed: %s", output)
		Expect(output).To(ContainSubstring("Created category: Eletrônicos"))
		Expect(output).To(ContainSubstring("Seeding complete: 8 created, 0 skipped"))

		var categories, methods, admins int
		Expect(db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&categories)).To(Succeed())
		Expect(db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM payment_methods`).Scan(&methods)).To(Succeed())
		Expect(db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&admins)).To(Succeed())
		Expect(categories).To(Equal(4))
		Expect(methods).To(Equal(3))
		Expect(admins).To(Equal(1))
	})

	It("is idempotent (running twice succeeds without duplicates)", func() {
		output, err := vitrine(ctx, "seed")
		Expect(err).NotTo(HaveOccurred(), "first seed failed: %s", output)

		output, err = vitrine(ctx, "seed")
		Expect(err).NotTo(HaveOccurred(), "second seed failed: %s", output)
		Expect(output).To(ContainSubstring("Seeding complete: 0 created, 8 skipped"))

		var count int
		Expect(db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count)).To(Succeed())
		Expect(count).To(Equal(4))
	})
})

var _ = Describe("Create Admin Command", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		cleanupDatabase(ctx)
	})

	It("creates an administrator who can be found by email", func() {
		output, err := vitrine(ctx, "create-admin", "--name", "Maria Admin", "--email", "Maria@Loja.com.br", "--password", "segredo1")
		Expect(err).NotTo(HaveOccurred(), "create-admin failed: %s", output)
		Expect(output).To(ContainSubstring("Created administrator maria@loja.com.br"))

		var role string
		Expect(db.Pool.QueryRow(ctx, `SELECT role FROM users WHERE email = 'maria@loja.com.br'`).Scan(&role)).To(Succeed())
		Expect(role).To(Equal("admin"))
	})

	It("refuses an email that is already registered", func() {
		args := []string{"create-admin", "--name", "Maria Admin", "--email", "maria@loja.com.br", "--password", "segredo1"}
		_, err := vitrine(ctx, args...)
		Expect(err).NotTo(HaveOccurred())

		output, err := vitrine(ctx, args...)
		Expect(err).To(HaveOccurred())
		Expect(output).To(ContainSubstring("email already registered"))
	})
})

var _ = Describe("Migrate Command", func() {
	It("reports an up-to-date schema", func() {
		output, err := vitrine(context.Background(), "migrate", "status")
		Expect(err).NotTo(HaveOccurred(), "migrate status failed: %s", output)
		Expect(output).To(ContainSubstring("Current version: 000003_web_sessions"))
		Expect(output).To(ContainSubstring("Pending: none"))
	})
})
