// Package config holds hnpeek's runtime settings.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/peterbourgon/ff/v3"

	"github.com/fragmede/hnpeek/internal/api"
)

// EnvPrefix namespaces environment overrides: -max-inflight is read from
// HNPEEK_MAX_INFLIGHT.
const EnvPrefix = "HNPEEK"

type Config struct {
	BaseURL     string
	StoryCount  int
	MaxInFlight int
	LogPath     string
	LogLevel    slog.Level
}

func Default() Config {
	return Config{
		BaseURL:     api.DefaultBaseURL,
		StoryCount:  5,
		MaxInFlight: api.DefaultMaxInFlight,
		LogPath:     filepath.Join(userConfigDir(), "hnpeek", "debug.log"),
		LogLevel:    slog.LevelInfo,
	}
}

// Load parses args, then HNPEEK_* environment variables, over Default.
// Flags win over the environment.
func Load(name string, args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Hacker News API base URL")
	fs.IntVar(&cfg.StoryCount, "count", cfg.StoryCount, "number of top stories to list")
	fs.IntVar(&cfg.MaxInFlight, "max-inflight", cfg.MaxInFlight, "maximum simultaneous API requests")
	fs.StringVar(&cfg.LogPath, "log-path", cfg.LogPath, "debug log file")
	fs.TextVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(EnvPrefix)); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.StoryCount <= 0 {
		errs = append(errs, fmt.Errorf("count must be positive, got %d", c.StoryCount))
	}
	if c.MaxInFlight <= 0 {
		errs = append(errs, fmt.Errorf("max-inflight must be positive, got %d", c.MaxInFlight))
	}
	if u, err := url.Parse(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("base-url: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base-url must be an absolute http(s) URL, got %q", c.BaseURL))
	}
	if c.LogPath == "" {
		errs = append(errs, errors.New("log-path must not be empty"))
	}
	return errors.Join(errs...)
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
