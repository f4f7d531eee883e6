package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"bukroadmin/internal/api"
	"bukroadmin/internal/config"
	"bukroadmin/internal/http/handlers"
	"bukroadmin/internal/repos"
)

// newCsrfApp builds an app with the same csrf wiring main uses, so the
// token lifecycle is tested the way the browser sees it.
func newCsrfApp(t *testing.T, backend http.Handler) *fiber.App {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{BackendURL: srv.URL, ScratchDir: t.TempDir(), DBDSN: ":memory:"}
	deps := handlers.NewDeps(db, cfg, api.New(srv.URL))

	engine := html.New("../../web/templates", ".html")
	app := fiber.New(fiber.Config{Views: engine})
	app.Use(requestid.New())
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	app.Get("/orders", deps.OrderHandler.List)
	app.Post("/orders/:id/status", deps.OrderHandler.UpdateStatus)
	return app
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestFormsCarryUsableCsrfToken(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	app := newCsrfApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "GET" && r.URL.Path == "/api/orders/allorder":
			io.WriteString(w, ordersJSON)
		case r.Method == http.MethodPatch:
			gotPath = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		default:
			t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
			w.WriteHeader(404)
		}
	}))

	// A plain page load must issue the token: cookie set, hidden field
	// populated with the same value.
	resp, err := app.Test(httptest.NewRequest("GET", "/orders", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("GET /orders status = %d", resp.StatusCode)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf_ cookie not issued on GET")
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `name="csrf" value="`+tok+`"`) {
		t.Fatal("form's hidden csrf field does not carry the issued token")
	}

	// Without the token the mutation is refused before the handler runs.
	bare := httptest.NewRequest("POST", "/orders/o1/status", strings.NewReader("status=shipped"))
	bare.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = app.Test(bare, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("tokenless POST status = %d, want 403", resp.StatusCode)
	}
	if gotPath != "" {
		t.Fatal("tokenless POST must not reach the backend")
	}

	// With cookie and matching form field the flow goes through.
	form := url.Values{"status": {"shipped"}, "csrf": {tok}}
	req := httptest.NewRequest("POST", "/orders/o1/status", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 302 {
		t.Fatalf("tokened POST status = %d, want 302", resp.StatusCode)
	}
	if gotPath != "/api/orders/order/o1/status" || gotBody["status"] != "shipped" {
		t.Fatalf("backend saw path=%q body=%v", gotPath, gotBody)
	}
}
