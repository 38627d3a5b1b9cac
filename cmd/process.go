package cmd

import (
	"fmt"

	"plugincrawler/internal/config"
	"plugincrawler/internal/export"
	"plugincrawler/internal/logging"
	"plugincrawler/internal/models"
	"plugincrawler/internal/store"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Converts crawled page files into CSV and SQLite outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := bindFlags(cmd, map[string]string{
			"output.pages_dir": "input",
			"output.csv":       "csv",
			"output.sqlite":    "sqlite",
		}); err != nil {
			return err
		}
		return runProcess()
	},
}

func init() {
	processCmd.Flags().String("input", "", "directory containing crawled page files")
	processCmd.Flags().String("csv", "", "path of the CSV output file")
	processCmd.Flags().String("sqlite", "", "path of the SQLite database file")

	rootCmd.AddCommand(processCmd)
}

func runProcess() error {
	cfg := config.GetConfig()

	closer, err := logging.Setup(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	logger := logging.NewLogger("processor")

	records, err := store.LoadAll(cfg.PagesDir)
	if err != nil {
		return fmt.Errorf("loading crawled pages: %w", err)
	}
	logger.Info().Int("records", len(records)).Str("dir", cfg.PagesDir).Msg("loaded crawled pages")

	// CSV and SQLite exports fail independently: a broken database
	// path must not discard a written CSV and vice versa.
	var firstErr error

	if err := export.WriteCSV(cfg.CSVPath, records); err != nil {
		logger.Error().Err(err).Str("path", cfg.CSVPath).Msg("csv export failed")
		firstErr = err
	} else {
		logger.Info().Int("records", len(records)).Str("path", cfg.CSVPath).Msg("csv export written")
	}

	if err := exportSQLite(cfg.SQLitePath, records); err != nil {
		logger.Error().Err(err).Str("path", cfg.SQLitePath).Msg("sqlite export failed")
		if firstErr == nil {
			firstErr = err
		}
	} else {
		logger.Info().Int("records", len(records)).Str("path", cfg.SQLitePath).Msg("sqlite export written")
	}

	if firstErr != nil {
		return firstErr
	}

	fmt.Printf("Processed %d records into %s and %s\n", len(records), cfg.CSVPath, cfg.SQLitePath)
	return nil
}

func exportSQLite(path string, records []models.Plugin) error {
	writer, err := export.NewSQLiteWriter(path)
	if err != nil {
		return err
	}
	defer writer.Close()
	return writer.Upsert(records)
}
