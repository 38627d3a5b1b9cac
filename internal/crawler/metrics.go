package crawler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawl stage.
type Metrics struct {
	Registry         *prometheus.Registry
	PagesFetched     prometheus.Counter
	RecordsTotal     prometheus.Counter
	RetriesTotal     prometheus.Counter
	FetchErrorsTotal *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_fetched_total",
		Help: "Total listing pages fetched successfully.",
	})
	records := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_records_total",
		Help: "Total listing records collected.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_retries_total",
		Help: "Total page fetch retry attempts.",
	})
	fetchErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crawler_fetch_errors_total",
		Help: "Total page fetch failures by error class.",
	}, []string{"error_class"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crawler_fetch_duration_seconds",
		Help:    "Page fetch latency.",
		Buckets: prometheus.DefBuckets,
	})

	registry.MustRegister(pages, records, retries, fetchErrors, duration)

	return &Metrics{
		Registry:         registry,
		PagesFetched:     pages,
		RecordsTotal:     records,
		RetriesTotal:     retries,
		FetchErrorsTotal: fetchErrors,
		FetchDuration:    duration,
	}
}

// IncPage records a successfully fetched page with its record count.
func (m *Metrics) IncPage(records int) {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
	m.RecordsTotal.Add(float64(records))
}

// IncRetry increments the retry counter.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncFetchError increments the failure counter for an error class.
func (m *Metrics) IncFetchError(class string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(class).Inc()
}

// ObserveFetch records a page fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}
