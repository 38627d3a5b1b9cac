package export

import (
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"

	"plugincrawler/internal/models"
)

func newTestWriter(t *testing.T) (*SQLiteWriter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugins.db")
	writer, err := NewSQLiteWriter(path)
	if err != nil {
		t.Fatalf("new sqlite writer: %v", err)
	}
	t.Cleanup(func() { writer.Close() })
	return writer, path
}

func TestUpsertInsertsRecords(t *testing.T) {
	writer, _ := newTestWriter(t)

	if err := writer.Upsert(sampleRecords()); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	count, err := writer.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestUpsertSameIDUpdatesInPlace(t *testing.T) {
	writer, path := newTestWriter(t)

	record := models.Plugin{
		ID:        "1347",
		Name:      "Scala",
		Downloads: 100,
		Rating:    4.0,
		Vendor:    "JetBrains",
	}
	if err := writer.Upsert([]models.Plugin{record}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	record.Downloads = 200
	record.Rating = 4.5
	if err := writer.Upsert([]models.Plugin{record}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	count, err := writer.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want exactly 1 row after double insert", count)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	var downloads int64
	var rating float64
	err = db.QueryRow("SELECT downloads, rating FROM plugins WHERE id = ?", "1347").
		Scan(&downloads, &rating)
	if err != nil {
		t.Fatalf("query row: %v", err)
	}
	if downloads != 200 || rating != 4.5 {
		t.Fatalf("row = (%d, %v), want latest values (200, 4.5)", downloads, rating)
	}
}

func TestTableColumnsMatchCSVHeader(t *testing.T) {
	_, path := newTestWriter(t)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT name FROM pragma_table_info('plugins') ORDER BY cid")
	if err != nil {
		t.Fatalf("query table info: %v", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column name: %v", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("iterate table info: %v", err)
	}

	if !reflect.DeepEqual(columns, models.CSVHeader) {
		t.Fatalf("table columns = %v, want the CSV header %v", columns, models.CSVHeader)
	}
}

func TestUpsertJoinsTags(t *testing.T) {
	writer, path := newTestWriter(t)

	record := models.Plugin{ID: "1", Name: "p", Tags: []string{"Tools", "Editor"}}
	if err := writer.Upsert([]models.Plugin{record}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	defer db.Close()

	var tags string
	if err := db.QueryRow("SELECT tags FROM plugins WHERE id = ?", "1").Scan(&tags); err != nil {
		t.Fatalf("query row: %v", err)
	}
	if tags != "Tools,Editor" {
		t.Fatalf("tags = %q, want %q", tags, "Tools,Editor")
	}
}
