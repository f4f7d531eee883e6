package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

const ordersJSON = `[{"_id":"o1","customerName":"Dana","email":"dana@example.com",
	"totalAmount":59.97,"paymentStatus":"pending","createdAt":"2026-08-20T10:00:00Z"}]`

func TestOrdersListRenders(t *testing.T) {
	app, _ := newApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" && r.URL.Path == "/api/orders/allorder" {
			io.WriteString(w, ordersJSON)
			return
		}
		t.Errorf("unexpected backend call %s %s", r.Method, r.URL.Path)
		w.WriteHeader(404)
	}))

	resp := get(t, app, "/orders")
	if resp.StatusCode != 200 {
		t.Fatalf("orders status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Dana") || !strings.Contains(string(body), "pending") {
		t.Fatal("orders table missing order data")
	}
	// Every status option is offered for the change dropdown.
	for _, status := range []string{"processing", "shipped", "delivered", "cancelled"} {
		if !strings.Contains(string(body), status) {
			t.Fatalf("status option %q not rendered", status)
		}
	}
}

func TestOrderStatusUpdate(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	app, _ := newApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("want PATCH, got %s %s", r.Method, r.URL.Path)
			w.WriteHeader(404)
			return
		}
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
	}))

	resp := postForm(t, app, "/orders/o1/status", url.Values{"status": {"shipped"}})
	if resp.StatusCode != 302 || resp.Header.Get("Location") != "/orders" {
		t.Fatalf("update: status=%d location=%q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if gotPath != "/api/orders/order/o1/status" {
		t.Fatalf("backend path = %s", gotPath)
	}
	if gotBody["status"] != "shipped" {
		t.Fatalf("backend body = %v", gotBody)
	}
}

func TestOrderStatusRejectsUnknownValue(t *testing.T) {
	app, _ := newApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("invalid status must not reach the backend: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(404)
	}))

	resp := postForm(t, app, "/orders/o1/status", url.Values{"status": {"teleported"}})
	if resp.StatusCode != 400 {
		t.Fatalf("want 400, got %d", resp.StatusCode)
	}
}
