package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		BaseURL:     "https://plugins.jetbrains.com/api/searchPlugins",
		Products:    []string{"idea"},
		PageSize:    100,
		MaxPages:    100,
		Timeout:     30 * time.Second,
		MaxAttempts: 3,
		Backoff:     time.Second,
		BackoffMax:  10 * time.Second,
		PagesDir:    "plugins",
		CSVPath:     "plugins.csv",
		SQLitePath:  "plugins.db",
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "empty base url",
			mutate: func(cfg *Config) {
				cfg.BaseURL = ""
			},
			wantErr: "base URL",
		},
		{
			name: "base url without host",
			mutate: func(cfg *Config) {
				cfg.BaseURL = "http://"
			},
			wantErr: "base URL",
		},
		{
			name: "zero page size",
			mutate: func(cfg *Config) {
				cfg.PageSize = 0
			},
			wantErr: "page size",
		},
		{
			name: "zero max pages",
			mutate: func(cfg *Config) {
				cfg.MaxPages = 0
			},
			wantErr: "max pages",
		},
		{
			name: "negative timeout",
			mutate: func(cfg *Config) {
				cfg.Timeout = -time.Second
			},
			wantErr: "timeout",
		},
		{
			name: "zero retry attempts",
			mutate: func(cfg *Config) {
				cfg.MaxAttempts = 0
			},
			wantErr: "retry max attempts",
		},
		{
			name: "backoff above max",
			mutate: func(cfg *Config) {
				cfg.Backoff = time.Minute
				cfg.BackoffMax = time.Second
			},
			wantErr: "backoff",
		},
		{
			name: "empty pages dir",
			mutate: func(cfg *Config) {
				cfg.PagesDir = ""
			},
			wantErr: "pages directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %q, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateOK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}
