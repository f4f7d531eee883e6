package draft

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"os"
	"strconv"
	"strings"

	"bukroadmin/internal/validate"
)

// Submission is a fully assembled multipart body ready for the backend.
type Submission struct {
	ProductID   string // set for updates, empty for creates
	ContentType string
	Body        []byte
}

func (s *Submission) IsUpdate() bool { return s.ProductID != "" }

type wireAttributes struct {
	Size     []string `json:"size"`
	Color    string   `json:"color"`
	Material string   `json:"material"`
}

type createVariation struct {
	SKU        string         `json:"sku"`
	Price      json.Number    `json:"price"`
	Stock      int            `json:"stock"`
	Attributes wireAttributes `json:"attributes"`
}

type updateVariation struct {
	ID         string         `json:"_id,omitempty"`
	SKU        string         `json:"sku"`
	Price      json.Number    `json:"price"`
	Stock      int            `json:"stock"`
	Attributes wireAttributes `json:"attributes"`
	OldImages  []string       `json:"oldImages"`
}

// Assemble validates the draft and lays out the multipart body the
// backend expects. It never partially constructs a payload: any
// validation failure or unreadable spool file aborts before a
// Submission exists. Variant image parts are keyed by the variant's
// position in the collection as it stands right now, so removals
// earlier in the session shift later variants' field names down.
func (d *Draft) Assemble() (*Submission, error) {
	if errs := d.Validate(); len(errs) > 0 {
		return nil, errs
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	var err error
	if d.IsUpdate() {
		err = d.writeUpdate(w)
	} else {
		err = d.writeCreate(w)
	}
	if err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return &Submission{ProductID: d.ID, ContentType: w.FormDataContentType(), Body: buf.Bytes()}, nil
}

// writeCreate lays the parts out in the add-product order: file parts
// first, then the scalar fields, then the variations JSON.
func (d *Draft) writeCreate(w *multipart.Writer) error {
	for _, f := range d.Images.Staged() {
		if err := writeFilePart(w, "images", f); err != nil {
			return err
		}
	}
	for idx, v := range d.Variants {
		field := "variantImages[" + strconv.Itoa(idx) + "]"
		for _, f := range v.Images.Staged() {
			if err := writeFilePart(w, field, f); err != nil {
				return err
			}
		}
	}

	if err := w.WriteField("name", d.Name); err != nil {
		return err
	}
	if err := w.WriteField("description", d.Description()); err != nil {
		return err
	}
	// Creates send the base price as typed; only updates re-emit the
	// parsed number.
	if err := w.WriteField("basePrice", strings.TrimSpace(d.BasePrice)); err != nil {
		return err
	}
	if err := w.WriteField("category", d.Category); err != nil {
		return err
	}

	variations := make([]createVariation, len(d.Variants))
	for i, v := range d.Variants {
		variations[i] = createVariation{
			SKU:        v.SKU,
			Price:      numString(v.Price),
			Stock:      mustStock(v.Stock),
			Attributes: attributesOf(v),
		}
	}
	return writeJSONField(w, "variations", variations)
}

// writeUpdate lays the parts out in the edit-product order and adds
// what only updates carry: the product's remaining persisted images,
// variant ids, and per-variant remaining image lists.
func (d *Draft) writeUpdate(w *multipart.Writer) error {
	if err := w.WriteField("name", d.Name); err != nil {
		return err
	}
	if err := w.WriteField("description", d.Description()); err != nil {
		return err
	}
	if err := w.WriteField("basePrice", numString(d.BasePrice).String()); err != nil {
		return err
	}
	if err := w.WriteField("category", d.Category); err != nil {
		return err
	}
	if err := writeJSONField(w, "oldImages", nonNil(d.Images.Persisted())); err != nil {
		return err
	}
	for _, f := range d.Images.Staged() {
		if err := writeFilePart(w, "images", f); err != nil {
			return err
		}
	}

	variations := make([]updateVariation, len(d.Variants))
	for i, v := range d.Variants {
		variations[i] = updateVariation{
			ID:         v.ID,
			SKU:        v.SKU,
			Price:      numString(v.Price),
			Stock:      mustStock(v.Stock),
			Attributes: attributesOf(v),
			OldImages:  nonNil(v.Images.Persisted()),
		}
	}
	if err := writeJSONField(w, "variations", variations); err != nil {
		return err
	}

	for idx, v := range d.Variants {
		field := "variantImages[" + strconv.Itoa(idx) + "]"
		for _, f := range v.Images.Staged() {
			if err := writeFilePart(w, field, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Description joins the short and full parts with the fixed separator.
// The separator is emitted even when the short part is empty, which
// yields a leading blank line; the backend splits on the same marker,
// so the round trip depends on it.
func (d *Draft) Description() string {
	return d.ShortDesc + DescSeparator + d.FullDesc
}

func attributesOf(v *Variant) wireAttributes {
	return wireAttributes{Size: nonNil(v.Sizes), Color: v.Color, Material: v.Material}
}

// numString renders a validated amount as a bare JSON number in its
// shortest form (10.50 becomes 10.5, matching what the backend stores).
func numString(raw string) json.Number {
	dec, _ := validate.Price(raw)
	f, _ := dec.Float64()
	return json.Number(strconv.FormatFloat(f, 'f', -1, 64))
}

func mustStock(raw string) int {
	n, _ := validate.Stock(raw)
	return n
}

// nonNil keeps empty collections as [] rather than null on the wire.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func writeJSONField(w *multipart.Writer, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteField(name, string(b))
}

func writeFilePart(w *multipart.Writer, field string, f StagedFile) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer src.Close()
	part, err := w.CreateFormFile(field, f.Name)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, src)
	return err
}
