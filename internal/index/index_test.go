package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "inkwell-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func row(id, title, category string) DocumentRow {
	return DocumentRow{
		ID:        id,
		Title:     title,
		Category:  category,
		Checksum:  "cs-" + id,
		UpdatedAt: time.Now(),
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	if err := db.UpsertDocument(row("a", "A", "general"), "hello world"); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}
	cs, err := db.GetChecksum("a")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "cs-a" {
		t.Errorf("checksum = %q", cs)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("missing")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "" {
		t.Errorf("checksum = %q, want empty", cs)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("a", "Old", "general"), "old body")
	r := row("a", "New", "work")
	r.Checksum = "cs-new"
	if err := db.UpsertDocument(r, "new body"); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	rows, total, err := db.ListDocuments(10, 0, "", "")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("total = %d, len = %d", total, len(rows))
	}
	if rows[0].Title != "New" || rows[0].Category != "work" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestDeleteDocument(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("a", "A", "general"), "body")
	if err := db.DeleteDocument("a"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	_, total, _ := db.ListDocuments(10, 0, "", "")
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestListDocuments_CategoryFilterAndSort(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("a", "zeta", "work"), "")
	_ = db.UpsertDocument(row("b", "alpha", "work"), "")
	_ = db.UpsertDocument(row("c", "mid", "general"), "")

	rows, total, err := db.ListDocuments(10, 0, "work", "title")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	if len(rows) != 2 || rows[0].Title != "alpha" || rows[1].Title != "zeta" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestListDocuments_Pagination(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("a", "A", "general"), "")
	_ = db.UpsertDocument(row("b", "B", "general"), "")
	_ = db.UpsertDocument(row("c", "C", "general"), "")

	rows, total, err := db.ListDocuments(2, 2, "", "title")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(rows) != 1 || rows[0].Title != "C" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestCategories(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("a", "A", "work"), "")
	_ = db.UpsertDocument(row("b", "B", "work"), "")
	_ = db.UpsertDocument(row("c", "C", "general"), "")

	cats, err := db.Categories()
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if cats["work"] != 2 || cats["general"] != 1 {
		t.Errorf("categories = %v", cats)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(row("a", "Groceries", "general"), "buy milk and bread")
	_ = db.UpsertDocument(row("b", "Meeting", "work"), "quarterly planning agenda")

	hits, err := db.Search("milk", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "a" {
		t.Errorf("hits = %+v", hits)
	}
}
