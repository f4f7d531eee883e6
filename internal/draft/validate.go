package draft

import (
	"fmt"
	"strings"

	"bukroadmin/internal/validate"
)

// FieldError points at one invalid field. Variant is the position in
// the variant collection, or -1 for a product-level field.
type FieldError struct {
	Variant int
	Field   string
	Reason  string
}

func (e FieldError) Error() string {
	if e.Variant < 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("variation #%d %s: %s", e.Variant+1, e.Field, e.Reason)
}

// ValidationError carries every field error found in one pass, so the
// form can mark all of them at once.
type ValidationError []FieldError

func (e ValidationError) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks everything a submission requires. An empty result
// means the draft may be assembled; anything else must block the
// network call.
func (d *Draft) Validate() ValidationError {
	var errs ValidationError
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, FieldError{-1, "name", "required"})
	}
	if strings.TrimSpace(d.BasePrice) == "" {
		errs = append(errs, FieldError{-1, "basePrice", "required"})
	} else if _, ok := validate.Price(d.BasePrice); !ok {
		errs = append(errs, FieldError{-1, "basePrice", "must be a non-negative amount"})
	}
	if strings.TrimSpace(d.Category) == "" {
		errs = append(errs, FieldError{-1, "category", "required"})
	}
	for i, v := range d.Variants {
		if strings.TrimSpace(v.SKU) == "" {
			errs = append(errs, FieldError{i, "sku", "required"})
		}
		if strings.TrimSpace(v.Price) == "" {
			errs = append(errs, FieldError{i, "price", "required"})
		} else if _, ok := validate.Price(v.Price); !ok {
			errs = append(errs, FieldError{i, "price", "must be a non-negative amount"})
		}
		if strings.TrimSpace(v.Stock) == "" {
			errs = append(errs, FieldError{i, "stock", "required"})
		} else if _, ok := validate.Stock(v.Stock); !ok {
			errs = append(errs, FieldError{i, "stock", "must be a non-negative whole number"})
		}
	}
	return errs
}
