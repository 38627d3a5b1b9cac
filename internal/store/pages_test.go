package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"plugincrawler/internal/models"
)

func samplePage(ids ...string) []models.Plugin {
	records := make([]models.Plugin, len(ids))
	for i, id := range ids {
		records[i] = models.Plugin{
			ID:        id,
			Name:      "plugin " + id,
			Downloads: 100,
			Tags:      []string{"Tools"},
		}
	}
	return records
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := NewPageStore(dir)
	if err != nil {
		t.Fatalf("new page store: %v", err)
	}

	if err := s.SavePage(0, samplePage("1", "2")); err != nil {
		t.Fatalf("save page 0: %v", err)
	}
	if err := s.SavePage(1, samplePage("3")); err != nil {
		t.Fatalf("save page 1: %v", err)
	}

	records, err := LoadAll(dir)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}

	want := append(samplePage("1", "2"), samplePage("3")...)
	if !reflect.DeepEqual(records, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", records, want)
	}
}

func TestLoadAllPreservesPageOrder(t *testing.T) {
	dir := t.TempDir()

	s, err := NewPageStore(dir)
	if err != nil {
		t.Fatalf("new page store: %v", err)
	}

	// Save out of order; load must follow page numbering.
	if err := s.SavePage(10, samplePage("b")); err != nil {
		t.Fatalf("save page 10: %v", err)
	}
	if err := s.SavePage(2, samplePage("a")); err != nil {
		t.Fatalf("save page 2: %v", err)
	}

	records, err := LoadAll(dir)
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if records[0].ID != "a" || records[1].ID != "b" {
		t.Fatalf("order = [%s %s], want [a b]", records[0].ID, records[1].ID)
	}
}

func TestSavePageLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()

	s, err := NewPageStore(dir)
	if err != nil {
		t.Fatalf("new page store: %v", err)
	}
	if err := s.SavePage(0, samplePage("1")); err != nil {
		t.Fatalf("save page: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "page_0000.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("dir contents = %v, want only page_0000.json", names)
	}
}

func TestLoadAllEmptyDirFails(t *testing.T) {
	if _, err := LoadAll(t.TempDir()); err == nil {
		t.Fatalf("LoadAll on empty dir = nil error, want failure")
	}
}

func TestLoadAllRejectsMalformedPage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "page_0000.json"), []byte("{broken"), 0644); err != nil {
		t.Fatalf("write malformed page: %v", err)
	}
	if _, err := LoadAll(dir); err == nil {
		t.Fatalf("LoadAll with malformed page = nil error, want failure")
	}
}
