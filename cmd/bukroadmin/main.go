package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/robfig/cron/v3"

	"bukroadmin/internal/api"
	"bukroadmin/internal/config"
	"bukroadmin/internal/http/handlers"
	applog "bukroadmin/internal/log"
	"bukroadmin/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	client := api.New(cfg.BackendURL)

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			// Avoid leaking internals; best-effort render
			if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
				"Message": "Something went wrong. Please try again.",
			}); rerr != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Something went wrong. Please try again.")
			}
			return nil
		},
	})
	// Image uploads flow through the panel before reaching the backend.
	app.Server().MaxRequestBodySize = 32 << 20 // 32 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/previews/")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"form": c.FormValue("csrf")})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- Static assets & previews ----------
	scratchDir := cfg.ScratchDir
	if !filepath.IsAbs(scratchDir) {
		if abs, err := filepath.Abs(scratchDir); err == nil {
			scratchDir = abs
		}
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		log.Fatal(err)
	}
	log.Printf("[static] /static   -> ./web/static")
	log.Printf("[static] /previews -> %s", scratchDir)

	app.Static("/static", "./web/static")
	// Guarded preview serving to avoid traversal out of the scratch dir
	app.Get("/previews/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "previews.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "previews.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(scratchDir, clean), true)
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, client)

	app.Get("/", deps.DashboardHandler.Home)

	// Products
	app.Get("/products", deps.ProductHandler.List)
	app.Post("/products/:id/delete", deps.ProductHandler.Delete)
	app.Get("/products/new", deps.DraftHandler.New)
	app.Get("/products/:id/edit", deps.DraftHandler.Edit)

	// Draft editing workflow
	app.Get("/drafts/:draft", deps.DraftHandler.Form)
	app.Post("/drafts/:draft/field", deps.DraftHandler.SetScalar)
	app.Post("/drafts/:draft/images", deps.DraftHandler.StageImages)
	app.Post("/drafts/:draft/images/remove", deps.DraftHandler.RemoveImage)
	app.Post("/drafts/:draft/variants", deps.DraftHandler.AddVariant)
	app.Post("/drafts/:draft/variants/:idx/remove", deps.DraftHandler.RemoveVariant)
	app.Post("/drafts/:draft/variants/:idx/field", deps.DraftHandler.SetVariantField)
	app.Post("/drafts/:draft/variants/:idx/size", deps.DraftHandler.ToggleSize)
	app.Post("/drafts/:draft/variants/:idx/images", deps.DraftHandler.StageVariantImages)
	app.Post("/drafts/:draft/variants/:idx/images/remove", deps.DraftHandler.RemoveVariantImage)
	app.Post("/drafts/:draft/submit", deps.DraftHandler.Submit)
	app.Post("/drafts/:draft/cancel", deps.DraftHandler.Cancel)

	// Categories
	app.Get("/categories", deps.CategoryHandler.List)
	app.Get("/categories/new", deps.CategoryHandler.NewForm)
	app.Post("/categories", deps.CategoryHandler.Create)
	app.Get("/categories/:id/edit", deps.CategoryHandler.EditForm)
	app.Post("/categories/:id", deps.CategoryHandler.Update)
	app.Post("/categories/:id/delete", deps.CategoryHandler.Delete)

	// Orders
	app.Get("/orders", deps.OrderHandler.List)
	app.Post("/orders/:id/status", deps.OrderHandler.UpdateStatus)

	// Janitor: abandoned drafts keep spool files on disk until purged.
	sched := cron.New()
	if _, err := sched.AddFunc("@every 10m", func() {
		if n := deps.Drafts.PurgeIdle(cfg.DraftTTL); n > 0 {
			log.Printf("[janitor] purged %d idle draft(s)", n)
		}
	}); err != nil {
		log.Fatal(err)
	}
	sched.Start()

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
