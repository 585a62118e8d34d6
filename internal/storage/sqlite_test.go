package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func testSQLite(t *testing.T) *SQLite {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "jera.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteEmpty(t *testing.T) {
	db := testSQLite(t)
	notes, err := db.Load()
	if err != nil {
		t.Fatal(err)
	}
	if notes == nil || len(notes) != 0 {
		t.Errorf("notes = %#v, want empty", notes)
	}
}

func TestSQLiteRoundTripKeepsOrder(t *testing.T) {
	db := testSQLite(t)
	in := sampleNotes()
	// Reverse so that position, not id, drives the order.
	in[0], in[1] = in[1], in[0]
	if err := db.Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 || out[0].ID != "n2" || out[1].ID != "n1" {
		t.Fatalf("order = %+v", out)
	}
	if out[1].Title != "A" || out[1].Category != "Work" {
		t.Errorf("fields = %+v", out[1])
	}
	if !out[1].Modified.Equal(in[1].Modified.Truncate(time.Second)) {
		t.Errorf("modified = %v", out[1].Modified)
	}
}

func TestSQLiteSaveReplaces(t *testing.T) {
	db := testSQLite(t)
	if err := db.Save(sampleNotes()); err != nil {
		t.Fatal(err)
	}
	if err := db.Save(sampleNotes()[:1]); err != nil {
		t.Fatal(err)
	}
	out, _ := db.Load()
	if len(out) != 1 || out[0].ID != "n1" {
		t.Errorf("after replace = %+v", out)
	}
}
