// Package config loads runtime configuration for the activitydash CLI.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables (see the env tags on Config).
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the server API
//	-t int      request timeout (seconds)
//	-o string   directory for downloaded chart exports
//
// JSON example:
//
//	{
//	  "server_url": "http://127.0.0.1:8000",
//	  "request_timeout": "10s",
//	  "reports_dir": "reports"
//	}
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the CLI.
type Config struct {
	ServerURL      string        `env:"ACTIVITYDASH_URL"`
	RequestTimeout time.Duration `env:"ACTIVITYDASH_TIMEOUT"`
	ReportsDir     string        `env:"ACTIVITYDASH_REPORTS_DIR"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
	c.ReportsDir = "reports"
}

// LoadConfig constructs a Config, applies defaults, then overlays JSON,
// environment and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

var args = func() []string { return os.Args[1:] }
