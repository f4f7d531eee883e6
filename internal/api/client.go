// Package api is the HTTP client for the bukro store backend. The
// backend is treated as a black box: JSON for reads, multipart for the
// product and category submissions.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"bukroadmin/internal/domain"
	"bukroadmin/internal/draft"
)

type Client struct {
	base string
	hc   *http.Client
}

func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Error is a non-2xx backend response. The backend reports failures as
// {"message": ...}; when it does not, the HTTP status text stands in.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: %s (status %d)", e.Message, e.Status)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Message != "" {
			apiErr.Message = body.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := c.getJSON(ctx, "/api/categories", &out)
	return out, err
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := c.getJSON(ctx, "/api/products", &out)
	return out, err
}

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	var out domain.Product
	err := c.getJSON(ctx, "/api/products/"+id, &out)
	return out, err
}

// SubmitProduct sends an assembled draft submission: POST for a new
// product, PUT for an update. The body is passed through untouched.
func (c *Client) SubmitProduct(ctx context.Context, sub *draft.Submission) error {
	method, path := http.MethodPost, "/api/products"
	if sub.IsUpdate() {
		method, path = http.MethodPut, "/api/products/"+sub.ProductID
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(sub.Body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", sub.ContentType)
	return c.do(req, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/products/"+id)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/categories/"+id)
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := c.getJSON(ctx, "/api/orders/allorder", &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) error {
	b, _ := json.Marshal(map[string]string{"status": status})
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.base+"/api/orders/order/"+id+"/status", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// CategoryForm carries the category create/edit fields. The three file
// slots are optional single uploads.
type CategoryForm struct {
	Name   string
	Slug   string
	Parent string // parent category id, optional
	Image  *multipart.FileHeader
	Banner *multipart.FileHeader
	Logo   *multipart.FileHeader
}

func (c *Client) CreateCategory(ctx context.Context, form CategoryForm) error {
	return c.sendCategory(ctx, http.MethodPost, "/api/categories", form)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, form CategoryForm) error {
	return c.sendCategory(ctx, http.MethodPut, "/api/categories/"+id, form)
}

func (c *Client) sendCategory(ctx context.Context, method, path string, form CategoryForm) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("name", form.Name); err != nil {
		return err
	}
	if err := w.WriteField("slug", form.Slug); err != nil {
		return err
	}
	if form.Parent != "" {
		if err := w.WriteField("parentCategory", form.Parent); err != nil {
			return err
		}
	}
	files := []struct {
		field string
		fh    *multipart.FileHeader
	}{
		{"image", form.Image},
		{"banner", form.Banner},
		{"logo", form.Logo},
	}
	for _, f := range files {
		if f.fh == nil {
			continue
		}
		src, err := f.fh.Open()
		if err != nil {
			return err
		}
		part, err := w.CreateFormFile(f.field, f.fh.Filename)
		if err == nil {
			_, err = io.Copy(part, src)
		}
		src.Close()
		if err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req, nil)
}
