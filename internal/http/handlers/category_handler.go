package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"bukroadmin/internal/api"
	"bukroadmin/internal/domain"
	applog "bukroadmin/internal/log"
	"bukroadmin/internal/services"
	"bukroadmin/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.Context())
	if err != nil {
		applog.Error(c, "categories.list.fail", err, nil)
		return renderFail(c, 502, "Could not load categories from the store backend")
	}
	return render(c, "categories", fiber.Map{"Categories": cats})
}

// GET /categories/new
func (h *CategoryHandler) NewForm(c *fiber.Ctx) error {
	cats, err := h.Catalog.Categories(c.Context())
	if err != nil {
		applog.Error(c, "categories.list.fail", err, nil)
		return renderFail(c, 502, "Could not load categories from the store backend")
	}
	return render(c, "category_form", fiber.Map{"Categories": cats})
}

// GET /categories/:id/edit
func (h *CategoryHandler) EditForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return renderFail(c, 404, "This category is no longer available")
	}
	cats, err := h.Catalog.Categories(c.Context())
	if err != nil {
		applog.Error(c, "categories.list.fail", err, nil)
		return renderFail(c, 502, "Could not load categories from the store backend")
	}
	var current *domain.Category
	for i := range cats {
		if cats[i].ID == id {
			current = &cats[i]
			break
		}
	}
	if current == nil {
		return renderFail(c, 404, "This category is no longer available")
	}
	return render(c, "category_form", fiber.Map{"Categories": cats, "Category": current})
}

func categoryForm(c *fiber.Ctx) (api.CategoryForm, bool) {
	name, okName := validate.Name(c.FormValue("name"))
	slug, okSlug := validate.Slug(c.FormValue("slug"))
	if !okName || !okSlug {
		return api.CategoryForm{}, false
	}
	form := api.CategoryForm{Name: name, Slug: slug}
	if parent := c.FormValue("parentCategory"); parent != "" {
		id, ok := validate.ID(parent)
		if !ok {
			return api.CategoryForm{}, false
		}
		form.Parent = id
	}
	if mf, err := c.MultipartForm(); err == nil {
		form.Image = firstFile(mf.File["image"])
		form.Banner = firstFile(mf.File["banner"])
		form.Logo = firstFile(mf.File["logo"])
	}
	return form, true
}

func firstFile(fhs []*multipart.FileHeader) *multipart.FileHeader {
	if len(fhs) == 0 {
		return nil
	}
	return fhs[0]
}

// POST /categories
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	form, ok := categoryForm(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "category"})
		return c.Status(400).SendString("invalid category fields")
	}
	if err := h.Catalog.CreateCategory(c.Context(), form); err != nil {
		applog.Error(c, "categories.create.fail", err, map[string]any{"slug": form.Slug})
		return renderFail(c, 502, "Could not create the category")
	}
	applog.Audit(c, "categories.create", map[string]any{"slug": form.Slug})
	return c.Redirect("/categories")
}

// POST /categories/:id
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	form, okForm := categoryForm(c)
	if !okID || !okForm {
		applog.Security(c, "validation.fail", map[string]any{"field": "category"})
		return c.Status(400).SendString("invalid category fields")
	}
	if err := h.Catalog.UpdateCategory(c.Context(), id, form); err != nil {
		applog.Error(c, "categories.update.fail", err, map[string]any{"category_id": id})
		return renderFail(c, 502, "Could not update the category")
	}
	applog.Audit(c, "categories.update", map[string]any{"category_id": id})
	return c.Redirect("/categories")
}

// POST /categories/:id/delete
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(400).SendString("invalid category id")
	}
	if err := h.Catalog.DeleteCategory(c.Context(), id); err != nil {
		applog.Error(c, "categories.delete.fail", err, map[string]any{"category_id": id})
		return renderFail(c, 502, "Could not delete the category")
	}
	applog.Audit(c, "categories.delete", map[string]any{"category_id": id})
	return c.Redirect("/categories")
}
