package index

import (
	"errors"
	"os"
	"testing"

	"github.com/starford/notesift/internal/apperr"
	"github.com/starford/notesift/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "notesift-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var sample = []models.NoteRecord{
	{Timestamp: "2024-06-21T00:00:00Z", Content: "Who is Mike?"},
	{Timestamp: "2024-06-22T00:00:00Z", Content: "Plan trip to Europe."},
	{Timestamp: "2024-06-23T08:00:00Z", Filename: "todo", Content: "uniqueword appears here"},
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestSyncInsertsAndRemoves(t *testing.T) {
	db := testDB(t)
	stats, err := db.Sync(sample)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Added != 3 || stats.Removed != 0 || stats.Total != 3 {
		t.Errorf("stats = %+v", stats)
	}

	stats, err = db.Sync(sample[1:])
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Added != 0 || stats.Removed != 1 || stats.Total != 2 {
		t.Errorf("second stats = %+v", stats)
	}
	digests, _ := db.AllDigests()
	if len(digests) != 2 {
		t.Errorf("digests = %v", digests)
	}
}

func TestSyncCollapsesDuplicates(t *testing.T) {
	db := testDB(t)
	stats, err := db.Sync([]models.NoteRecord{sample[0], sample[0]})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Added != 1 || stats.Total != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestListNotes(t *testing.T) {
	db := testDB(t)
	if _, err := db.Sync(sample); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	rows, total, err := db.ListNotes(2, 0, "")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Fatalf("total = %d, rows = %d", total, len(rows))
	}
	if rows[0].Filename != "todo" {
		t.Errorf("newest first: got %+v", rows[0])
	}

	rows, total, err = db.ListNotes(10, 0, "todo")
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Errorf("filtered total = %d, rows = %d", total, len(rows))
	}
}

func TestGetNote(t *testing.T) {
	db := testDB(t)
	if _, err := db.Sync(sample); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	rows, _, _ := db.ListNotes(1, 0, "")
	got, err := db.GetNote(rows[0].Digest)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Record() != sample[2] {
		t.Errorf("record = %+v", got.Record())
	}
	if _, err := db.GetNote("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	if _, err := db.Sync(sample); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Filename != "todo" {
		t.Errorf("search results = %+v, want 1 hit for todo", results)
	}
}
