package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"bukroadmin/internal/api"
	"bukroadmin/internal/draft"
	applog "bukroadmin/internal/log"
	"bukroadmin/internal/services"
	"bukroadmin/internal/validate"
)

// DraftHandler drives the product add/edit workflow. Every button in
// the form posts one editor operation against a server-held draft and
// lands back on the form, so the draft is only ever mutated through
// the editor's named operations.
type DraftHandler struct {
	Catalog    *services.CatalogService
	Drafts     *draft.Store
	ScratchDir string
}

// GET /products/new
func (h *DraftHandler) New(c *fiber.Ctx) error {
	s := h.Drafts.Put(draft.New())
	applog.Info(c, "draft.open", map[string]any{"draft_id": s.ID, "mode": "create"})
	return c.Redirect("/drafts/" + s.ID)
}

// GET /products/:id/edit
func (h *DraftHandler) Edit(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return renderFail(c, 404, "This product is no longer available")
	}
	p, err := h.Catalog.Product(c.Context(), id)
	if err != nil {
		applog.Error(c, "draft.hydrate.fail", err, map[string]any{"product_id": id})
		return renderFail(c, 502, "Could not load the product from the store backend")
	}
	s := h.Drafts.Put(draft.FromProduct(p))
	applog.Info(c, "draft.open", map[string]any{"draft_id": s.ID, "mode": "edit", "product_id": id})
	return c.Redirect("/drafts/" + s.ID)
}

func (h *DraftHandler) session(c *fiber.Ctx) (*draft.Session, bool) {
	id, ok := validate.ID(c.Params("draft"))
	if !ok {
		return nil, false
	}
	s, ok := h.Drafts.Get(id)
	return s, ok
}

// GET /drafts/:draft
func (h *DraftHandler) Form(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}
	return h.renderForm(c, s, nil, "")
}

func (h *DraftHandler) renderForm(c *fiber.Ctx, s *draft.Session, errs draft.ValidationError, failMsg string) error {
	categories, err := h.Catalog.Categories(c.Context())
	if err != nil {
		applog.Error(c, "draft.categories.fail", err, nil)
		return renderFail(c, 502, "Could not load categories from the store backend")
	}
	s.Lock()
	defer s.Unlock()
	s.Touch()
	return render(c, "product_form", fiber.Map{
		"Session":    s.ID,
		"Draft":      s.Draft,
		"Categories": categories,
		"Sizes":      draft.SizeOptions,
		"Errors":     errs,
		"FailMsg":    failMsg,
	})
}

func (h *DraftHandler) back(c *fiber.Ctx, s *draft.Session) error {
	return c.Redirect("/drafts/" + s.ID)
}

// POST /drafts/:draft/field
func (h *DraftHandler) SetScalar(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}
	s.Lock()
	s.Touch()
	err := s.Draft.SetScalar(c.FormValue("field"), c.FormValue("value"))
	s.Unlock()
	if err != nil {
		return c.Status(400).SendString(err.Error())
	}
	return h.back(c, s)
}

// POST /drafts/:draft/images
func (h *DraftHandler) StageImages(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(400).SendString("bad upload")
	}
	files, err := draft.Spool(h.ScratchDir, form.File["images"])
	if err != nil {
		applog.Error(c, "draft.stage.fail", err, nil)
		return renderFail(c, 500, "Could not stage the selected files")
	}
	s.Lock()
	s.Touch()
	s.Draft.Images.Stage(files)
	s.Unlock()
	return h.back(c, s)
}

// POST /drafts/:draft/images/remove
func (h *DraftHandler) RemoveImage(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}
	idx, okIdx := validate.Index(c.FormValue("index"))
	kind := c.FormValue("kind")
	if !okIdx || (kind != "persisted" && kind != "staged") {
		return c.Status(400).SendString("invalid image reference")
	}
	s.Lock()
	s.Touch()
	var err error
	if kind == "persisted" {
		err = s.Draft.Images.RemovePersisted(idx)
	} else {
		err = s.Draft.Images.RemoveStaged(idx)
	}
	s.Unlock()
	if err != nil {
		return c.Status(400).SendString(err.Error())
	}
	return h.back(c, s)
}

// POST /drafts/:draft/variants
func (h *DraftHandler) AddVariant(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}
	s.Lock()
	s.Touch()
	s.Draft.AddVariant()
	s.Unlock()
	return h.back(c, s)
}

// POST /drafts/:draft/variants/:idx/remove
func (h *DraftHandler) RemoveVariant(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}
	idx, okIdx := validate.Index(c.Params("idx"))
	if !okIdx {
		return c.Status(400).SendString("invalid variation index")
	}
	s.Lock()
	s.Touch()
	err := s.Draft.RemoveVariant(idx)
	s.Unlock()
	if errors.Is(err, draft.ErrLastVariant) {
		// The form hides the remove button on the last variant, but a
		// stale tab can still post this; keep the draft as it is.
		return h.back(c, s)
	}
	if err != nil {
		return c.Status(400).SendString(err.Error())
	}
	return h.back(c, s)
}

// POST /drafts/:draft/variants/:idx/field
func (h *DraftHandler) SetVariantField(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}
	idx, okIdx := validate.Index(c.Params("idx"))
	if !okIdx {
		return c.Status(400).SendString("invalid variation index")
	}
	s.Lock()
	s.Touch()
	err := s.Draft.UpdateField(idx, c.FormValue("field"), c.FormValue("value"))
	s.Unlock()
	if err != nil {
		return c.Status(400).SendString(err.Error())
	}
	return h.back(c, s)
}

// POST /drafts/:draft/variants/:idx/size
func (h *DraftHandler) ToggleSize(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}
	idx, okIdx := validate.Index(c.Params("idx"))
	if !okIdx {
		return c.Status(400).SendString("invalid variation index")
	}
	s.Lock()
	s.Touch()
	err := s.Draft.ToggleSize(idx, c.FormValue("size"))
	s.Unlock()
	if err != nil {
		return c.Status(400).SendString(err.Error())
	}
	return h.back(c, s)
}

// POST /drafts/:draft/variants/:idx/images
func (h *DraftHandler) StageVariantImages(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}
	idx, okIdx := validate.Index(c.Params("idx"))
	if !okIdx {
		return c.Status(400).SendString("invalid variation index")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(400).SendString("bad upload")
	}
	files, err := draft.Spool(h.ScratchDir, form.File["images"])
	if err != nil {
		applog.Error(c, "draft.stage.fail", err, nil)
		return renderFail(c, 500, "Could not stage the selected files")
	}
	s.Lock()
	s.Touch()
	if idx >= len(s.Draft.Variants) {
		s.Unlock()
		// Spooled for a variant that no longer exists; free the files.
		draft.Discard(files)
		return c.Status(400).SendString("invalid variation index")
	}
	s.Draft.Variants[idx].Images.Stage(files)
	s.Unlock()
	return h.back(c, s)
}

// POST /drafts/:draft/variants/:idx/images/remove
func (h *DraftHandler) RemoveVariantImage(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}
	idx, okIdx := validate.Index(c.Params("idx"))
	imgIdx, okImg := validate.Index(c.FormValue("index"))
	kind := c.FormValue("kind")
	if !okIdx || !okImg || (kind != "persisted" && kind != "staged") {
		return c.Status(400).SendString("invalid image reference")
	}
	s.Lock()
	s.Touch()
	var err error
	if idx >= len(s.Draft.Variants) {
		err = errors.New("variation out of range")
	} else if kind == "persisted" {
		err = s.Draft.Variants[idx].Images.RemovePersisted(imgIdx)
	} else {
		err = s.Draft.Variants[idx].Images.RemoveStaged(imgIdx)
	}
	s.Unlock()
	if err != nil {
		return c.Status(400).SendString(err.Error())
	}
	return h.back(c, s)
}

// POST /drafts/:draft/submit
func (h *DraftHandler) Submit(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if !ok {
		return renderFail(c, 404, "This draft has expired. Start again from the product list.")
	}

	s.Lock()
	s.Touch()
	if err := s.Draft.BeginSubmit(); err != nil {
		s.Unlock()
		return c.Status(409).SendString("a submission for this draft is already in flight")
	}
	sub, err := s.Draft.Assemble()
	s.Unlock()

	if err != nil {
		s.Lock()
		s.Draft.EndSubmit()
		s.Unlock()
		var verrs draft.ValidationError
		if errors.As(err, &verrs) {
			applog.Info(c, "draft.submit.invalid", map[string]any{"errors": len(verrs)})
			return h.renderForm(c, s, verrs, "")
		}
		applog.Error(c, "draft.assemble.fail", err, nil)
		return h.renderForm(c, s, nil, "Could not assemble the submission. Please try again.")
	}

	err = h.Catalog.Submit(c.Context(), sub)
	s.Lock()
	s.Draft.EndSubmit()
	s.Unlock()
	if err != nil {
		applog.Error(c, "draft.submit.fail", err, map[string]any{"product_id": sub.ProductID})
		msg := "The store backend rejected the submission. Your changes are still here."
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			msg = apiErr.Message
		}
		return h.renderForm(c, s, nil, msg)
	}

	applog.Audit(c, "draft.submit", map[string]any{"product_id": sub.ProductID, "update": sub.IsUpdate()})
	h.Drafts.Discard(s.ID)
	return c.Redirect("/products")
}

// POST /drafts/:draft/cancel
func (h *DraftHandler) Cancel(c *fiber.Ctx) error {
	s, ok := h.session(c)
	if ok {
		h.Drafts.Discard(s.ID)
		applog.Info(c, "draft.cancel", map[string]any{"draft_id": s.ID})
	}
	return c.Redirect("/products")
}
