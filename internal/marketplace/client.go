// Package marketplace implements the JetBrains plugin marketplace
// search API client used by the crawl stage.
package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"plugincrawler/internal/config"
	"plugincrawler/internal/models"
)

// Client issues one GET per listing page against the searchPlugins
// endpoint. It performs no caching and no retries; retry policy belongs
// to the crawl driver.
type Client struct {
	baseURL   string
	products  []string
	pageSize  int
	userAgent string
	client    *http.Client
	logger    zerolog.Logger
}

func NewClient(cfg config.Config, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		products:  cfg.Products,
		pageSize:  cfg.PageSize,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// SetTransport replaces the underlying HTTP transport. Used by tests.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.client.Transport = rt
}

// searchResponse is the payload shape of the searchPlugins endpoint.
type searchResponse struct {
	Plugins []json.RawMessage `json:"plugins"`
	Total   int               `json:"total"`
}

// FetchPage fetches one page of listings. Pages are zero-based; the
// caller enforces the upper page bound.
func (c *Client) FetchPage(ctx context.Context, page int) (*models.PageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(page), nil)
	if err != nil {
		return nil, &FatalError{Page: page, Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts and connection failures are retryable.
		return nil, &TransientError{Page: page, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Page: page, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %s", resp.Status)
		if retryableStatus(resp.StatusCode) {
			return nil, &TransientError{Page: page, Status: resp.StatusCode, Err: err}
		}
		return nil, &FatalError{Page: page, Status: resp.StatusCode, Err: err}
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FatalError{Page: page, Status: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
	}

	records := make([]models.Plugin, 0, len(payload.Plugins))
	for i, raw := range payload.Plugins {
		plugin, err := parsePlugin(raw)
		if err != nil {
			c.logger.Warn().
				Int("page", page).
				Int("index", i).
				Err(err).
				Msg("skipping malformed listing record")
			continue
		}
		records = append(records, plugin)
	}

	// An empty page always means exhausted, even when the reported
	// total claims otherwise: a stale total must not keep the loop
	// issuing empty fetches.
	hasMore := false
	if len(payload.Plugins) > 0 {
		if payload.Total > 0 {
			hasMore = page*c.pageSize+len(payload.Plugins) < payload.Total
		} else {
			hasMore = len(payload.Plugins) == c.pageSize
		}
	}

	return &models.PageResult{Records: records, HasMore: hasMore}, nil
}

func (c *Client) buildURL(page int) string {
	params := url.Values{}
	params.Set("excludeTags", "internal")
	params.Set("max", strconv.Itoa(c.pageSize))
	params.Set("offset", strconv.Itoa(page*c.pageSize))
	params.Set("orderBy", "downloads")
	for _, product := range c.products {
		params.Add("products", product)
	}
	return c.baseURL + "?" + params.Encode()
}

// flexID accepts the listing id as either a JSON number or a string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// rawPlugin mirrors the listing object loosely: numeric or string ids,
// tags as strings or objects, and epoch-millisecond dates all appear
// in the wild.
type rawPlugin struct {
	ID           flexID  `json:"id"`
	Name         string  `json:"name"`
	Downloads    int64   `json:"downloads"`
	Rating       float64 `json:"rating"`
	PricingModel string  `json:"pricingModel"`
	Vendor       struct {
		Name string `json:"name"`
	} `json:"vendor"`
	Tags          []json.RawMessage `json:"tags"`
	PublishedDate int64             `json:"publishedDate"`
	CDate         int64             `json:"cdate"`
}

// parsePlugin maps one listing object onto the normalized record. A
// missing field yields the zero value; a missing id rejects the record.
func parsePlugin(raw json.RawMessage) (models.Plugin, error) {
	var rp rawPlugin
	if err := json.Unmarshal(raw, &rp); err != nil {
		return models.Plugin{}, fmt.Errorf("decode listing: %w", err)
	}
	if rp.ID == "" {
		return models.Plugin{}, fmt.Errorf("listing has no id")
	}

	return models.Plugin{
		ID:            string(rp.ID),
		Name:          rp.Name,
		Downloads:     rp.Downloads,
		Rating:        rp.Rating,
		Pricing:       rp.PricingModel,
		Vendor:        rp.Vendor.Name,
		Tags:          parseTags(rp.Tags),
		PublishedDate: formatEpochMillis(rp.PublishedDate),
		UpdatedDate:   formatEpochMillis(rp.CDate),
	}, nil
}

func parseTags(raw []json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	tags := make([]string, 0, len(raw))
	for _, entry := range raw {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			tags = append(tags, s)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(entry, &obj); err == nil && obj.Name != "" {
			tags = append(tags, obj.Name)
		}
	}
	return tags
}

func formatEpochMillis(millis int64) string {
	if millis <= 0 {
		return ""
	}
	return time.UnixMilli(millis).UTC().Format("2006-01-02")
}
