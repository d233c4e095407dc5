package storage

import (
	"path/filepath"
	"testing"
)

func TestOpenSQLite_CreatesSchema(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	db, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer db.Close()

	recs, err := db.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("List() returned %d records, want 0", len(recs))
	}
}

func TestSQLite_NullableColumns(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer db.Close()

	// A note has no tags, due or priority: all stored as NULL.
	note := sampleNote(3)
	if err := db.Put(note); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := db.Get(3)
	if err != nil || !ok {
		t.Fatalf("Get(3) = ok %v, err %v", ok, err)
	}
	if got.Tags != nil || got.Due != nil || got.Priority != 0 {
		t.Errorf("Get(3) = %+v, want empty task fields", got)
	}

	recs, err := db.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("List() returned %d records, want 1", len(recs))
	}
}
