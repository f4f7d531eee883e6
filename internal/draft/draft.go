// Package draft holds the in-memory product being created or edited in
// the admin panel. A draft is mutated only through the operations here;
// it never outlives the editing session and is thrown away after a
// successful submission.
package draft

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bukroadmin/internal/domain"
)

// DescSeparator joins the short and full description parts into the
// single description field the backend stores.
const DescSeparator = "\n\n"

// SizeOptions is the closed size vocabulary offered by the form.
var SizeOptions = []string{"XS", "S", "M", "L", "XL", "XXL"}

var (
	ErrLastVariant = errors.New("a product keeps at least one variation")
	ErrSubmitting  = errors.New("submission already in flight")
)

// Variant is one SKU-level configuration of the product. Scalar fields
// hold the raw form input and are checked by Validate before any
// submission is assembled.
type Variant struct {
	ID       string // backend id; empty until the variant is persisted
	SKU      string
	Price    string
	Stock    string
	Sizes    []string
	Color    string
	Material string
	Images   StagingArea
}

func (v *Variant) HasSize(token string) bool {
	for _, s := range v.Sizes {
		if s == token {
			return true
		}
	}
	return false
}

type Draft struct {
	ID        string // backend product id; empty for a new product
	Name      string
	ShortDesc string
	FullDesc  string
	BasePrice string
	Category  string // category id
	Images    StagingArea
	Variants  []*Variant

	submitting bool
}

// New returns an empty draft seeded with one blank variant, mirroring
// the add-product form's initial state.
func New() *Draft {
	return &Draft{Variants: []*Variant{{}}}
}

// FromProduct hydrates a draft from a fetched product for edit mode.
// The stored description splits on the first blank line into the short
// and full parts. Products without variations still get one blank
// variant so the editor's minimum holds.
func FromProduct(p domain.Product) *Draft {
	short, full, _ := strings.Cut(p.Description, DescSeparator)
	d := &Draft{
		ID:        p.ID,
		Name:      p.Name,
		ShortDesc: short,
		FullDesc:  full,
		BasePrice: p.BasePrice.String(),
		Category:  p.Category.ID,
	}
	d.Images.setPersisted(p.Images)
	for _, v := range p.Variations {
		dv := &Variant{
			ID:       v.ID,
			SKU:      v.SKU,
			Price:    v.Price.String(),
			Stock:    strconv.Itoa(v.Stock),
			Sizes:    append([]string(nil), v.Attributes.Size...),
			Color:    v.Attributes.Color,
			Material: v.Attributes.Material,
		}
		dv.Images.setPersisted(v.Images)
		d.Variants = append(d.Variants, dv)
	}
	if len(d.Variants) == 0 {
		d.Variants = []*Variant{{}}
	}
	return d
}

func (d *Draft) IsUpdate() bool { return d.ID != "" }

func (d *Draft) variant(i int) (*Variant, error) {
	if i < 0 || i >= len(d.Variants) {
		return nil, fmt.Errorf("variation %d out of range", i)
	}
	return d.Variants[i], nil
}

// AddVariant appends a blank variant. There is no upper bound.
func (d *Draft) AddVariant() *Variant {
	v := &Variant{}
	d.Variants = append(d.Variants, v)
	return v
}

// RemoveVariant drops the variant at i and releases its staged files.
// The collection never shrinks below one element.
func (d *Draft) RemoveVariant(i int) error {
	if _, err := d.variant(i); err != nil {
		return err
	}
	if len(d.Variants) == 1 {
		return ErrLastVariant
	}
	d.Variants[i].Images.releaseAll()
	d.Variants = append(d.Variants[:i], d.Variants[i+1:]...)
	return nil
}

// UpdateField sets a scalar field on the variant at i.
func (d *Draft) UpdateField(i int, field, value string) error {
	v, err := d.variant(i)
	if err != nil {
		return err
	}
	switch field {
	case "sku":
		v.SKU = value
	case "price":
		v.Price = value
	case "stock":
		v.Stock = value
	case "color":
		v.Color = value
	case "material":
		v.Material = value
	default:
		return fmt.Errorf("unknown variation field %q", field)
	}
	return nil
}

// ToggleSize flips token membership in the variant's size set. Two
// toggles of the same token cancel out.
func (d *Draft) ToggleSize(i int, token string) error {
	v, err := d.variant(i)
	if err != nil {
		return err
	}
	if !knownSize(token) {
		return fmt.Errorf("unknown size %q", token)
	}
	for j, s := range v.Sizes {
		if s == token {
			v.Sizes = append(v.Sizes[:j], v.Sizes[j+1:]...)
			return nil
		}
	}
	v.Sizes = append(v.Sizes, token)
	return nil
}

func knownSize(token string) bool {
	for _, s := range SizeOptions {
		if s == token {
			return true
		}
	}
	return false
}

// SetScalar sets a product-level field.
func (d *Draft) SetScalar(field, value string) error {
	switch field {
	case "name":
		d.Name = value
	case "shortDescription":
		d.ShortDesc = value
	case "description":
		d.FullDesc = value
	case "basePrice":
		d.BasePrice = value
	case "category":
		d.Category = value
	default:
		return fmt.Errorf("unknown product field %q", field)
	}
	return nil
}

// BeginSubmit marks the draft as having a submission in flight so a
// double-click cannot post the same draft twice. EndSubmit clears the
// mark whether the submission succeeded or failed.
func (d *Draft) BeginSubmit() error {
	if d.submitting {
		return ErrSubmitting
	}
	d.submitting = true
	return nil
}

func (d *Draft) EndSubmit() { d.submitting = false }

// Release frees every spool file the draft still holds. Called when the
// draft is discarded: after a successful submission, on explicit cancel
// or when the janitor purges an idle session.
func (d *Draft) Release() {
	d.Images.releaseAll()
	for _, v := range d.Variants {
		v.Images.releaseAll()
	}
}
