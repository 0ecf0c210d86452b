package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	MenuRaw = "raw" // Byte-level key reader with in-place redraw
	MenuTea = "tea" // bubbletea program
)

type Config struct {
	Environment string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string     `env:"LOG_LEVEL" envDefault:"warn"`
	LogLevel    slog.Level // Parsed from LogLevelRaw

	TextSpeed float64 `env:"NOSVOBODA_TEXT_SPEED" envDefault:"1.0"` // 0 disables pacing
	Menu      string  `env:"NOSVOBODA_MENU" envDefault:"raw"`
	Width     int     `env:"NOSVOBODA_WIDTH" envDefault:"0"` // 0 detects from the terminal
	Seed      uint64  `env:"NOSVOBODA_SEED" envDefault:"0"`  // 0 seeds from the clock
	Story     string  `env:"NOSVOBODA_STORY" envDefault:"no_svoboda.json"`
}

// Load reads an optional .env file from the working directory, then the
// environment. Variables already set win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	cfg.Menu = strings.ToLower(strings.TrimSpace(cfg.Menu))

	if cfg.TextSpeed < 0 {
		return nil, fmt.Errorf("NOSVOBODA_TEXT_SPEED cannot be negative: %v", cfg.TextSpeed)
	}
	if cfg.Width < 0 {
		return nil, fmt.Errorf("NOSVOBODA_WIDTH cannot be negative: %d", cfg.Width)
	}
	if cfg.Menu != MenuRaw && cfg.Menu != MenuTea {
		return nil, fmt.Errorf("NOSVOBODA_MENU must be %q or %q, got %q", MenuRaw, MenuTea, cfg.Menu)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
