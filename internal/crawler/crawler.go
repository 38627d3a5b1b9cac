// Package crawler owns the sequential pagination loop of the crawl
// stage.
package crawler

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"plugincrawler/internal/config"
	"plugincrawler/internal/marketplace"
	"plugincrawler/internal/models"
)

// PageFetcher fetches a single listing page.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) (*models.PageResult, error)
}

// PageSink persists a fetched page before the next one is requested.
type PageSink interface {
	SavePage(page int, records []models.Plugin) error
}

// Crawler drives the pagination loop: fetch, retry on transient
// failure, persist, repeat. Pages are fetched strictly in increasing
// order, one at a time.
type Crawler struct {
	fetcher PageFetcher
	sink    PageSink
	metrics *Metrics
	logger  zerolog.Logger

	maxPages    int
	maxAttempts int
	backoff     time.Duration
	backoffMax  time.Duration
}

// New builds a crawler. sink and metrics may be nil.
func New(cfg config.Config, fetcher PageFetcher, sink PageSink, metrics *Metrics, logger zerolog.Logger) *Crawler {
	return &Crawler{
		fetcher:     fetcher,
		sink:        sink,
		metrics:     metrics,
		logger:      logger,
		maxPages:    cfg.MaxPages,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.Backoff,
		backoffMax:  cfg.BackoffMax,
	}
}

// Crawl walks listing pages until the upstream is exhausted, the page
// limit is reached, or a page fails for good. It always returns the
// records accumulated so far; per-page failures never surface as an
// error.
func (c *Crawler) Crawl(ctx context.Context) *models.CrawlResult {
	result := &models.CrawlResult{Stop: models.StopPageLimit}

	for page := 0; page < c.maxPages; page++ {
		c.logger.Info().Int("page", page).Msg("fetching page")

		pageResult, err := c.fetchWithRetry(ctx, page)
		if err != nil {
			c.logger.Error().
				Int("page", page).
				Str("error_class", marketplace.ErrorClass(err)).
				Err(err).
				Msg("page failed, stopping crawl with partial result")
			c.metrics.IncFetchError(marketplace.ErrorClass(err))
			result.Stop = models.StopFetchError
			break
		}

		if c.sink != nil && len(pageResult.Records) > 0 {
			if err := c.sink.SavePage(page, pageResult.Records); err != nil {
				c.logger.Error().Int("page", page).Err(err).
					Msg("persisting page failed, stopping crawl with partial result")
				result.Stop = models.StopFetchError
				break
			}
		}

		result.Records = append(result.Records, pageResult.Records...)
		result.PagesFetched++
		c.metrics.IncPage(len(pageResult.Records))

		c.logger.Info().
			Int("page", page).
			Int("records", len(pageResult.Records)).
			Int("total", len(result.Records)).
			Msg("page fetched")

		if !pageResult.HasMore {
			result.Stop = models.StopExhausted
			break
		}
	}

	c.logger.Info().
		Int("pages", result.PagesFetched).
		Int("records", len(result.Records)).
		Str("stop", string(result.Stop)).
		Msg("crawl finished")

	return result
}

// fetchWithRetry fetches one page with bounded retries. Only transient
// errors are retried; fatal errors return immediately.
func (c *Crawler) fetchWithRetry(ctx context.Context, page int) (*models.PageResult, error) {
	var lastErr error
	backoff := c.backoff

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		start := time.Now()
		pageResult, err := c.fetcher.FetchPage(ctx, page)
		c.metrics.ObserveFetch(time.Since(start))
		if err == nil {
			return pageResult, nil
		}
		lastErr = err

		if !marketplace.IsTransient(err) {
			return nil, err
		}
		if attempt >= c.maxAttempts {
			break
		}

		c.metrics.IncRetry()
		c.logger.Warn().
			Int("page", page).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Err(err).
			Msg("transient fetch error, retrying after backoff")

		select {
		case <-ctx.Done():
			return nil, &marketplace.TransientError{Page: page, Err: ctx.Err()}
		case <-time.After(backoff):
		}

		backoff *= 2
		if c.backoffMax > 0 && backoff > c.backoffMax {
			backoff = c.backoffMax
		}
	}

	return nil, lastErr
}
