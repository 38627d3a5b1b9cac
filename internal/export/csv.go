// Package export turns a crawled record set into durable CSV and
// SQLite outputs.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"plugincrawler/internal/models"
)

// WriteCSV writes all records to path: one header row with the nine
// columns, then one row per record, tags joined with commas. The file
// is written to a temp path and renamed, so an existing file is
// replaced atomically and a crash never leaves a half-written export.
func WriteCSV(path string, records []models.Plugin) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, "plugins_*.csv.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(models.CSVHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range records {
		row := []string{
			record.ID,
			record.Name,
			strconv.FormatInt(record.Downloads, 10),
			strconv.FormatFloat(record.Rating, 'f', -1, 64),
			record.Pricing,
			record.Vendor,
			strings.Join(record.Tags, ","),
			record.PublishedDate,
			record.UpdatedDate,
		}
		if err := writer.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename csv into place: %w", err)
	}
	return nil
}
