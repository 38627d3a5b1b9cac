// Package store persists crawled pages as JSON files so the process
// stage can run independently of the crawl.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"plugincrawler/internal/models"
)

// PageStore writes one JSON file per fetched page into a directory.
type PageStore struct {
	dir string
}

func NewPageStore(dir string) (*PageStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create pages directory: %w", err)
	}
	return &PageStore{dir: dir}, nil
}

// SavePage writes the records of one page as page_NNNN.json. The file
// is written to a temp path first and renamed so a crash never leaves
// a partial page behind.
func (s *PageStore) SavePage(page int, records []models.Plugin) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode page %d: %w", page, err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("page_%04d.json", page))
	tmp, err := os.CreateTemp(s.dir, "page_*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write page %d: %w", page, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close page %d: %w", page, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename page %d: %w", page, err)
	}
	return nil
}

// LoadAll reads every page_*.json file in dir in name order and
// returns the combined records.
func LoadAll(dir string) ([]models.Plugin, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "page_*.json"))
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no page files found in %s", dir)
	}
	sort.Strings(paths)

	var records []models.Plugin
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var page []models.Plugin
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		records = append(records, page...)
	}
	return records, nil
}
