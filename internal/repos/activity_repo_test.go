package repos_test

import (
	"errors"
	"testing"

	"bukroadmin/internal/repos"
)

func newRepo(t *testing.T) *repos.ActivityRepo {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewActivityRepo(db)
}

func TestRecordOutcomes(t *testing.T) {
	repo := newRepo(t)

	if err := repo.Record("product.submit", "product", "p1", "created", nil); err != nil {
		t.Fatal(err)
	}
	if err := repo.Record("product.submit", "product", "p2", "", errors.New("backend said no")); err != nil {
		t.Fatal(err)
	}

	rows, err := repo.ListLatest(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	// Newest first.
	if rows[0].EntityID != "p2" || rows[0].Outcome != "error" {
		t.Fatalf("latest row: %+v", rows[0])
	}
	if rows[0].Detail != "backend said no" {
		t.Fatalf("error detail should fall back to the error text: %q", rows[0].Detail)
	}
	if rows[1].EntityID != "p1" || rows[1].Outcome != "ok" || rows[1].Detail != "created" {
		t.Fatalf("ok row: %+v", rows[1])
	}
}

func TestListLatestHonorsLimit(t *testing.T) {
	repo := newRepo(t)
	for i := 0; i < 5; i++ {
		if err := repo.Record("category.delete", "category", "c1", "", nil); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := repo.ListLatest(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 rows, got %d", len(rows))
	}
	// A zero limit falls back to the default instead of returning nothing.
	rows, err = repo.ListLatest(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Fatalf("want 5 rows with default limit, got %d", len(rows))
	}
}
