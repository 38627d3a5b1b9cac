// Package models defines the data contract shared by the crawl and
// export stages.
package models

// Plugin is one marketplace listing in normalized form.
type Plugin struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Downloads     int64    `json:"downloads"`
	Rating        float64  `json:"rating"`
	Pricing       string   `json:"pricing"`
	Vendor        string   `json:"vendor"`
	Tags          []string `json:"tags,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	UpdatedDate   string   `json:"date,omitempty"`
}

// CSVHeader is the fixed column order of the CSV export and the SQLite
// table. The last column is named "date" for compatibility with the
// previous exporter.
var CSVHeader = []string{
	"id", "name", "downloads", "rating", "pricing",
	"vendor", "tags", "publishedDate", "date",
}

// PageResult is the outcome of fetching a single listing page.
type PageResult struct {
	Records []Plugin
	HasMore bool
}

// StopReason records why a crawl loop ended.
type StopReason string

const (
	// StopExhausted means the upstream reported no further pages.
	StopExhausted StopReason = "exhausted"

	// StopPageLimit means the configured page limit was reached while
	// the upstream still had more data.
	StopPageLimit StopReason = "page_limit"

	// StopFetchError means a page failed fatally or exhausted its
	// retries and the crawl ended early with a partial result.
	StopFetchError StopReason = "fetch_error"
)

// CrawlResult accumulates the records of one crawl invocation. It is
// owned by the crawl driver until the loop ends, then handed to export
// as-is.
type CrawlResult struct {
	Records      []Plugin
	PagesFetched int
	Stop         StopReason
}
