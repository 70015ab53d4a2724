package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rshade/fleetco2/internal/emissions"
)

// Config holds CLI settings. Flags override the YAML config file, which
// overrides environment variables.
type Config struct {
	// DatabaseURL selects the PostgreSQL store. Falls back to the
	// DATABASE_URL environment variable (a .env file is honored).
	DatabaseURL string `yaml:"databaseUrl"`

	// Fixture is the path to a JSON snapshot file; when set it takes
	// precedence over DatabaseURL.
	Fixture string `yaml:"fixture"`

	From        string `yaml:"from"`
	To          string `yaml:"to"`
	Granularity string `yaml:"granularity"`
	Verbose     bool   `yaml:"verbose"`
}

// loadConfig reads the optional YAML config file and applies environment
// fallbacks. Missing file paths are only an error when explicitly requested.
func loadConfig(path string, explicit bool) (*Config, error) {
	// Best effort: a missing .env is fine.
	_ = godotenv.Load()

	cfg := &Config{Granularity: string(emissions.GranularityMonthly)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			err = nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

// dateRange parses the configured From/To into calendar days, defaulting to
// the current calendar year.
func (c *Config) dateRange() (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)

	var err error
	if c.From != "" {
		if from, err = time.Parse(time.DateOnly, c.From); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing --from: %w", err)
		}
	}
	if c.To != "" {
		if to, err = time.Parse(time.DateOnly, c.To); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parsing --to: %w", err)
		}
	}
	return from, to, nil
}
