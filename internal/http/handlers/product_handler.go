package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "bukroadmin/internal/log"
	"bukroadmin/internal/services"
	"bukroadmin/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// GET /products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, categories, err := h.Catalog.ProductPage(c.Context())
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return renderFail(c, 502, "Could not load products from the store backend")
	}
	// Category names for the table; products reference categories by id.
	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return render(c, "products", fiber.Map{
		"Products":      products,
		"CategoryNames": names,
	})
}

// POST /products/:id/delete
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(400).SendString("invalid product id")
	}
	if err := h.Catalog.DeleteProduct(c.Context(), id); err != nil {
		applog.Error(c, "products.delete.fail", err, map[string]any{"product_id": id})
		return renderFail(c, 502, "Could not delete the product")
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": id})
	return c.Redirect("/products")
}
