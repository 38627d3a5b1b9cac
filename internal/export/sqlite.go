package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"plugincrawler/internal/models"
)

// SQLiteWriter maintains the plugins table, with id as primary key so
// reruns update rows instead of duplicating them. Column names match
// the CSV header exactly, publishedDate included.
type SQLiteWriter struct {
	db *sql.DB
}

func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := createTable(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return &SQLiteWriter{db: db}, nil
}

func createTable(db *sql.DB) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS plugins (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		downloads INTEGER NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0,
		pricing TEXT,
		vendor TEXT,
		tags TEXT,
		publishedDate TEXT,
		date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_plugins_vendor ON plugins(vendor);
	CREATE INDEX IF NOT EXISTS idx_plugins_downloads ON plugins(downloads);
	`

	_, err := db.Exec(createTableSQL)
	return err
}

func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

// Upsert inserts all records in a single transaction. A record whose
// id already exists has its fields updated in place.
func (w *SQLiteWriter) Upsert(records []models.Plugin) error {
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	query := `
		INSERT INTO plugins (id, name, downloads, rating, pricing, vendor, tags, publishedDate, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			downloads = excluded.downloads,
			rating = excluded.rating,
			pricing = excluded.pricing,
			vendor = excluded.vendor,
			tags = excluded.tags,
			publishedDate = excluded.publishedDate,
			date = excluded.date
	`

	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err := stmt.Exec(
			record.ID, record.Name, record.Downloads, record.Rating,
			record.Pricing, record.Vendor, strings.Join(record.Tags, ","),
			record.PublishedDate, record.UpdatedDate,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert plugin %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Count returns the number of rows in the plugins table.
func (w *SQLiteWriter) Count() (int, error) {
	var count int
	if err := w.db.QueryRow("SELECT COUNT(*) FROM plugins").Scan(&count); err != nil {
		return 0, fmt.Errorf("count plugins: %w", err)
	}
	return count, nil
}
