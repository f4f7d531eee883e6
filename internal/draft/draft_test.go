package draft_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"bukroadmin/internal/domain"
	"bukroadmin/internal/draft"
)

// mkStaged spools a fake upload into dir so release paths hit real files.
func mkStaged(t *testing.T, dir, name string) draft.StagedFile {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("img-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return draft.StagedFile{Name: name, Path: path, Preview: "/previews/" + name}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestVariantCollectionNeverEmpty(t *testing.T) {
	d := draft.New()
	if len(d.Variants) != 1 {
		t.Fatalf("new draft should start with one variant, got %d", len(d.Variants))
	}
	if err := d.RemoveVariant(0); !errors.Is(err, draft.ErrLastVariant) {
		t.Fatalf("want ErrLastVariant, got %v", err)
	}
	if len(d.Variants) != 1 {
		t.Fatalf("collection shrank below one: %d", len(d.Variants))
	}

	d.AddVariant()
	if err := d.RemoveVariant(1); err != nil {
		t.Fatal(err)
	}
	if len(d.Variants) != 1 {
		t.Fatalf("want 1 variant after removal, got %d", len(d.Variants))
	}

	if err := d.RemoveVariant(5); err == nil {
		t.Fatal("out-of-range removal should fail")
	}
}

func TestToggleSizeParity(t *testing.T) {
	d := draft.New()
	for i := 1; i <= 5; i++ {
		if err := d.ToggleSize(0, "M"); err != nil {
			t.Fatal(err)
		}
		want := i%2 == 1
		if got := d.Variants[0].HasSize("M"); got != want {
			t.Fatalf("after %d toggles membership = %v, want %v", i, got, want)
		}
	}
	if err := d.ToggleSize(0, "XXXL"); err == nil {
		t.Fatal("unknown size token should be rejected")
	}
	if err := d.ToggleSize(3, "M"); err == nil {
		t.Fatal("out-of-range variant should be rejected")
	}
}

func TestUpdateField(t *testing.T) {
	d := draft.New()
	if err := d.UpdateField(0, "sku", "SKU-1"); err != nil {
		t.Fatal(err)
	}
	if err := d.UpdateField(0, "color", "red"); err != nil {
		t.Fatal(err)
	}
	if d.Variants[0].SKU != "SKU-1" || d.Variants[0].Color != "red" {
		t.Fatalf("fields not applied: %+v", d.Variants[0])
	}
	if err := d.UpdateField(0, "weight", "1"); err == nil {
		t.Fatal("unknown field should be rejected")
	}
	if err := d.UpdateField(9, "sku", "x"); err == nil {
		t.Fatal("out-of-range index should be rejected")
	}
}

func TestStagingKeepsPairsAndReleases(t *testing.T) {
	dir := t.TempDir()
	d := draft.New()

	first := []draft.StagedFile{mkStaged(t, dir, "a.jpg"), mkStaged(t, dir, "b.jpg")}
	d.Images.Stage(first)
	if got := len(d.Images.Staged()); got != 2 {
		t.Fatalf("want 2 staged, got %d", got)
	}
	for _, f := range d.Images.Staged() {
		if f.Preview == "" {
			t.Fatalf("staged file %s has no preview", f.Name)
		}
	}

	// A new selection replaces the batch and frees the old spool files.
	second := []draft.StagedFile{mkStaged(t, dir, "c.jpg")}
	d.Images.Stage(second)
	if exists(first[0].Path) || exists(first[1].Path) {
		t.Fatal("replaced batch should have been released")
	}
	if got := len(d.Images.Staged()); got != 1 {
		t.Fatalf("want 1 staged after restage, got %d", got)
	}

	if err := d.Images.RemoveStaged(0); err != nil {
		t.Fatal(err)
	}
	if exists(second[0].Path) {
		t.Fatal("removed staged file should have been released")
	}
	if err := d.Images.RemoveStaged(0); err == nil {
		t.Fatal("remove on empty staged set should fail")
	}
}

func TestRemoveVariantReleasesItsFiles(t *testing.T) {
	dir := t.TempDir()
	d := draft.New()
	d.AddVariant()
	f := mkStaged(t, dir, "v.jpg")
	d.Variants[1].Images.Stage([]draft.StagedFile{f})

	if err := d.RemoveVariant(1); err != nil {
		t.Fatal(err)
	}
	if exists(f.Path) {
		t.Fatal("removing a variant should release its staged files")
	}
}

func TestRemovePersistedIsLocalOnly(t *testing.T) {
	p := domain.Product{
		ID:     "p1",
		Name:   "Tee",
		Images: []string{"uploads/a.jpg", "uploads/b.jpg", "uploads/c.jpg"},
	}
	d := draft.FromProduct(p)
	if err := d.Images.RemovePersisted(1); err != nil {
		t.Fatal(err)
	}
	got := d.Images.Persisted()
	if len(got) != 2 || got[0] != "uploads/a.jpg" || got[1] != "uploads/c.jpg" {
		t.Fatalf("unexpected persisted set: %v", got)
	}
	if err := d.Images.RemovePersisted(7); err == nil {
		t.Fatal("out-of-range persisted removal should fail")
	}
}

func TestValidateGatesSubmission(t *testing.T) {
	d := draft.New()
	errs := d.Validate()
	if len(errs) == 0 {
		t.Fatal("empty draft must not validate")
	}

	d.Name = "Tee"
	d.BasePrice = "19.99"
	d.Category = "cat-1"
	d.Variants[0].SKU = "SKU-1"
	d.Variants[0].Price = "21.50"
	d.Variants[0].Stock = "3"
	if errs := d.Validate(); len(errs) != 0 {
		t.Fatalf("valid draft rejected: %v", errs)
	}

	d.AddVariant()
	errs = d.Validate()
	if len(errs) != 3 {
		t.Fatalf("blank variant should fail sku/price/stock, got %v", errs)
	}
	for _, e := range errs {
		if e.Variant != 1 {
			t.Fatalf("error should point at variant 1: %+v", e)
		}
	}

	d.Variants[1].SKU = "SKU-2"
	d.Variants[1].Price = "-4"
	d.Variants[1].Stock = "2.5"
	errs = d.Validate()
	if len(errs) != 2 {
		t.Fatalf("negative price and fractional stock should fail, got %v", errs)
	}
}

func TestSubmitGuardIsExclusive(t *testing.T) {
	d := draft.New()
	if err := d.BeginSubmit(); err != nil {
		t.Fatal(err)
	}
	if err := d.BeginSubmit(); !errors.Is(err, draft.ErrSubmitting) {
		t.Fatalf("want ErrSubmitting while in flight, got %v", err)
	}
	d.EndSubmit()
	if err := d.BeginSubmit(); err != nil {
		t.Fatalf("guard should clear after EndSubmit: %v", err)
	}
}

func TestFromProductHydration(t *testing.T) {
	p := domain.Product{
		ID:          "p1",
		Name:        "Tee",
		Description: "Soft cotton tee\n\nLong form copy.\n\nSecond paragraph.",
		BasePrice:   decimal.RequireFromString("19.99"),
		Category:    domain.CategoryRef{ID: "cat-1", Name: "Shirts"},
		Images:      []string{"uploads/a.jpg"},
		Variations: []domain.Variation{{
			ID:    "v1",
			SKU:   "SKU-1",
			Price: decimal.RequireFromString("21.50"),
			Stock: 3,
			Attributes: domain.Attributes{
				Size: []string{"S", "M"}, Color: "black", Material: "cotton",
			},
			Images: []string{"uploads/v1.jpg"},
		}},
	}
	d := draft.FromProduct(p)
	if !d.IsUpdate() {
		t.Fatal("hydrated draft should be an update")
	}
	if d.ShortDesc != "Soft cotton tee" {
		t.Fatalf("short description = %q", d.ShortDesc)
	}
	if d.FullDesc != "Long form copy.\n\nSecond paragraph." {
		t.Fatalf("full description = %q", d.FullDesc)
	}
	if d.Category != "cat-1" || d.BasePrice != "19.99" {
		t.Fatalf("scalars not hydrated: %+v", d)
	}
	v := d.Variants[0]
	if v.ID != "v1" || v.Price != "21.5" || v.Stock != "3" {
		t.Fatalf("variant not hydrated: %+v", v)
	}
	if got := v.Images.Persisted(); len(got) != 1 || got[0] != "uploads/v1.jpg" {
		t.Fatalf("variant persisted images: %v", got)
	}

	// No variations on the backend still means one editable variant.
	d2 := draft.FromProduct(domain.Product{ID: "p2", Name: "Bare"})
	if len(d2.Variants) != 1 {
		t.Fatalf("want one seeded variant, got %d", len(d2.Variants))
	}
}
