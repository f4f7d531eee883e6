// Package domain holds the wire shapes of the bukro store backend.
// The backend is MongoDB-flavored: ids travel as "_id" strings and
// category references may arrive populated or as a bare id.
package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID     string    `json:"_id"`
	Name   string    `json:"name"`
	Slug   string    `json:"slug"`
	Parent *Category `json:"parentCategory,omitempty"`
}

type Attributes struct {
	Size     []string `json:"size"`
	Color    string   `json:"color"`
	Material string   `json:"material"`
}

type Variation struct {
	ID         string          `json:"_id"`
	SKU        string          `json:"sku"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	Attributes Attributes      `json:"attributes"`
	Images     []string        `json:"images"`
}

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	Category    CategoryRef     `json:"category"`
	Images      []string        `json:"images"`
	Variations  []Variation     `json:"variations"`
	TotalStock  int             `json:"totalStock"`
}

// CategoryRef tolerates both representations the backend uses for a
// product's category: a populated {_id, name, ...} object or a plain id.
type CategoryRef struct {
	ID   string
	Name string
}

func (r *CategoryRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.ID = s
		return nil
	}
	var c Category
	if err := json.Unmarshal(b, &c); err != nil {
		return err
	}
	r.ID = c.ID
	r.Name = c.Name
	return nil
}

func (r CategoryRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

type Order struct {
	ID            string          `json:"_id"`
	CustomerName  string          `json:"customerName"`
	Email         string          `json:"email"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentStatus string          `json:"paymentStatus"`
	CreatedAt     string          `json:"createdAt"`
}

// OrderStatuses is the closed set accepted by the status PATCH.
var OrderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}
