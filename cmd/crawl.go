package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"plugincrawler/internal/config"
	"plugincrawler/internal/crawler"
	"plugincrawler/internal/logging"
	"plugincrawler/internal/marketplace"
	"plugincrawler/internal/store"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawls the marketplace listing API and saves pages as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := bindFlags(cmd, map[string]string{
			"crawler.max_pages": "max-pages",
			"output.pages_dir":  "output",
			"metrics.addr":      "metrics-addr",
		}); err != nil {
			return err
		}
		return runCrawl()
	},
}

func init() {
	crawlCmd.Flags().Int("max-pages", 0, "maximum number of pages to fetch")
	crawlCmd.Flags().String("output", "", "directory for crawled page files")
	crawlCmd.Flags().String("metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl() error {
	cfg := config.GetConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := logging.Setup(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := logging.NewLogger("crawler")

	pageStore, err := store.NewPageStore(cfg.PagesDir)
	if err != nil {
		return err
	}

	metrics := crawler.NewMetrics()
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		router := mux.NewRouter()
		router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
		router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: router}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := marketplace.NewClient(cfg, logger)
	c := crawler.New(cfg, client, pageStore, metrics, logger)
	result := c.Crawl(ctx)

	if metricsServer != nil {
		metricsServer.Shutdown(context.Background())
	}

	fmt.Printf("Crawl finished: %d records across %d pages (%s)\n",
		len(result.Records), result.PagesFetched, result.Stop)

	if len(result.Records) == 0 {
		return fmt.Errorf("no records fetched")
	}
	return nil
}
