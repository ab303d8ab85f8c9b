// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

//go:build integration

package integration_test

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/shopspring/decimal"

	"github.com/vitrine/vitrine/internal/dto"
)

type response struct {
	status   int
	location string
	body     string
}

func send(c *http.Client, req *http.Request) response {
	resp, err := c.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return response{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func get(c *http.Client, path string) response {
	req, err := http.NewRequest(http.MethodGet, env.server.URL+path, nil)
	Expect(err).NotTo(HaveOccurred())
	return send(c, req)
}

func post(c *http.Client, path string, form url.Values) response {
	req, err := http.NewRequest(http.MethodPost, env.server.URL+path, strings.NewReader(form.Encode()))
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return send(c, req)
}

func loginAsAdmin(c *http.Client) {
	res := post(c, "/login", url.Values{"email": {adminEmail}, "senha": {adminPassword}})
	Expect(res.status).To(Equal(http.StatusSeeOther))
	Expect(res.location).To(Equal("/"))
}

var _ = Describe("Sessions", func() {
	BeforeEach(func() {
		env.reset()
	})

	It("keeps the login in PostgreSQL until logout", func() {
		browser := newBrowser()
		loginAsAdmin(browser)

		var count int
		Expect(env.db.Pool.QueryRow(env.ctx, `SELECT COUNT(*) FROM web_sessions`).Scan(&count)).To(Succeed())
		Expect(count).To(BeNumerically(">=", 1))

		Expect(get(browser, "/").body).To(ContainSubstring("Admin Geral"))
		Expect(get(browser, "/admin/categorias").status).To(Equal(http.StatusOK))

		Expect(get(browser, "/logout").status).To(Equal(http.StatusSeeOther))
		res := get(browser, "/admin/categorias")
		Expect(res.status).To(Equal(http.StatusSeeOther))
		Expect(res.location).To(HavePrefix("/login"))
	})

	It("rejects a wrong password", func() {
		res := post(newBrowser(), "/login", url.Values{"email": {adminEmail}, "senha": {"errada123"}})
		Expect(res.status).To(Equal(http.StatusUnauthorized))
	})
})

var _ = Describe("Catalog administration", func() {
	var browser *http.Client

	BeforeEach(func() {
		env.reset()
		browser = newBrowser()
		loginAsAdmin(browser)
	})

	categoryID := func(name string) string {
		var id int64
		Expect(env.db.Pool.QueryRow(env.ctx, `SELECT id FROM categories WHERE name = $1`, name).Scan(&id)).To(Succeed())
		return strconv.FormatInt(id, 10)
	}

	It("publishes a product on the storefront with payment method prices", func() {
		res := post(browser, "/admin/categorias/cadastrar", url.Values{dto.FieldName: {"Eletrodomésticos"}})
		Expect(res.status).To(Equal(http.StatusSeeOther))

		res = post(browser, "/admin/formas-pagamento/cadastrar", url.Values{
			dto.FieldName:     {"Pix"},
			dto.FieldDiscount: {"10"},
		})
		Expect(res.status).To(Equal(http.StatusSeeOther))

		res = post(browser, "/admin/produtos/cadastrar", url.Values{
			dto.FieldName:        {"Cafeteira Expresso"},
			dto.FieldDescription: {"Cafeteira elétrica com moedor"},
			dto.FieldPrice:       {"1.234,50"},
			dto.FieldQuantity:    {"3"},
			dto.FieldCategoryID:  {categoryID("Eletrodomésticos")},
		})
		Expect(res.status).To(Equal(http.StatusSeeOther))
		Expect(res.location).To(MatchRegexp(`^/admin/produtos/detalhar/\d+$`))
		productID := strings.TrimPrefix(res.location, "/admin/produtos/detalhar/")

		home := get(newBrowser(), "/")
		Expect(home.status).To(Equal(http.StatusOK))
		Expect(home.body).To(ContainSubstring("Cafeteira Expresso"))

		page := get(newBrowser(), "/produtos/"+productID)
		Expect(page.status).To(Equal(http.StatusOK))
		Expect(page.body).To(ContainSubstring("R$ 1.234,50"))
		Expect(page.body).To(ContainSubstring("R$ 1.111,05"))
	})

	It("keeps a category that still has products", func() {
		post(browser, "/admin/categorias/cadastrar", url.Values{dto.FieldName: {"Ferramentas"}})
		id := categoryID("Ferramentas")
		post(browser, "/admin/produtos/cadastrar", url.Values{
			dto.FieldName:        {"Furadeira"},
			dto.FieldDescription: {"Furadeira de impacto 650W"},
			dto.FieldPrice:       {"299.90"},
			dto.FieldQuantity:    {"1"},
			dto.FieldCategoryID:  {id},
		})

		res := post(browser, "/admin/categorias/excluir/"+id, nil)
		Expect(res.status).To(Equal(http.StatusSeeOther))
		Expect(get(browser, "/admin/categorias").body).To(ContainSubstring("não pode ser excluída"))

		var count int
		Expect(env.db.Pool.QueryRow(env.ctx, `SELECT COUNT(*) FROM categories WHERE id = $1`, id).Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))
	})

	It("rejects a duplicate category name regardless of case", func() {
		post(browser, "/admin/categorias/cadastrar", url.Values{dto.FieldName: {"Jardinagem"}})
		res := post(browser, "/admin/categorias/cadastrar", url.Values{dto.FieldName: {"JARDINAGEM"}})
		Expect(res.status).To(Equal(http.StatusUnprocessableEntity))
	})
})

var _ = Describe("Product spreadsheets", func() {
	BeforeEach(func() {
		env.reset()
	})

	It("imports what it exports", func() {
		category, err := env.catalog.CreateCategory(env.ctx, dto.CreateCategory{Name: "Papelaria"})
		Expect(err).NotTo(HaveOccurred())
		for _, name := range []string{"Caderno Universitário", "Caneta Esferográfica"} {
			_, err := env.catalog.CreateProduct(env.ctx, dto.CreateProduct{ProductFields: dto.ProductFields{
				Name:        name,
				Description: "Material escolar de qualidade",
				Price:       decimal.RequireFromString("19.90"),
				Quantity:    50,
				CategoryID:  category.ID,
			}})
			Expect(err).NotTo(HaveOccurred())
		}

		var sheet bytes.Buffer
		Expect(env.catalog.ExportProducts(env.ctx, &sheet)).To(Succeed())
		Expect(env.db.Truncate(env.ctx, "products")).To(Succeed())

		result, err := env.catalog.ImportProducts(env.ctx, &sheet)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.OK()).To(BeTrue(), "row errors: %v", result.Errors)
		Expect(result.Created).To(Equal(2))

		products, err := env.catalog.ListProducts(env.ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(products).To(HaveLen(2))
		Expect(products[0].CategoryID).To(Equal(category.ID))
		Expect(products[0].Price.Equal(decimal.RequireFromString("19.9"))).To(BeTrue())
	})
})
