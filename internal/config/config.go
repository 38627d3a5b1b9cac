package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	BaseURL     string
	Products    []string
	PageSize    int
	MaxPages    int
	Timeout     time.Duration
	UserAgent   string
	MaxAttempts int
	Backoff     time.Duration
	BackoffMax  time.Duration

	PagesDir   string
	CSVPath    string
	SQLitePath string

	LogLevel string
	LogFile  string

	MetricsAddr string
}

// defaultProducts mirrors the product filter of the previous crawler.
var defaultProducts = []string{
	"androidstudio", "appcode", "aqua", "clion", "dataspell",
	"dbe", "fleet", "go", "idea", "idea_ce", "mps", "phpstorm",
	"pycharm", "pycharm_ce", "rider", "ruby", "rust", "webstorm",
	"writerside",
}

func SetDefaults() {
	viper.SetDefault("crawler.base_url", "https://plugins.jetbrains.com/api/searchPlugins")
	viper.SetDefault("crawler.products", defaultProducts)
	viper.SetDefault("crawler.page_size", 100)
	viper.SetDefault("crawler.max_pages", 100)
	viper.SetDefault("crawler.timeout", "30s")
	viper.SetDefault("crawler.user_agent",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	viper.SetDefault("crawler.retry.max_attempts", 3)
	viper.SetDefault("crawler.retry.backoff", "1s")
	viper.SetDefault("crawler.retry.backoff_max", "10s")

	viper.SetDefault("output.pages_dir", "plugins")
	viper.SetDefault("output.csv", "plugins.csv")
	viper.SetDefault("output.sqlite", "plugins.db")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")

	viper.SetDefault("metrics.addr", "")
}

func GetConfig() Config {
	return Config{
		BaseURL:     viper.GetString("crawler.base_url"),
		Products:    viper.GetStringSlice("crawler.products"),
		PageSize:    viper.GetInt("crawler.page_size"),
		MaxPages:    viper.GetInt("crawler.max_pages"),
		Timeout:     viper.GetDuration("crawler.timeout"),
		UserAgent:   viper.GetString("crawler.user_agent"),
		MaxAttempts: viper.GetInt("crawler.retry.max_attempts"),
		Backoff:     viper.GetDuration("crawler.retry.backoff"),
		BackoffMax:  viper.GetDuration("crawler.retry.backoff_max"),

		PagesDir:   viper.GetString("output.pages_dir"),
		CSVPath:    viper.GetString("output.csv"),
		SQLitePath: viper.GetString("output.sqlite"),

		LogLevel: viper.GetString("log.level"),
		LogFile:  viper.GetString("log.file"),

		MetricsAddr: viper.GetString("metrics.addr"),
	}
}

// Validate ensures the configuration values are coherent before a crawl
// starts.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Host == "" {
		return fmt.Errorf("base URL must include a host")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive")
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("max pages must be positive")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("retry max attempts must be positive")
	}
	if c.Backoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.BackoffMax > 0 && c.Backoff > c.BackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.Backoff, c.BackoffMax)
	}
	if c.PagesDir == "" {
		return fmt.Errorf("pages directory cannot be empty")
	}
	return nil
}
