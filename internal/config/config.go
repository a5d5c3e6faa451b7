// Package config reads the runtime settings from PAGEBUILDER_* environment
// variables. Command-line flags override what is read here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultDriver       = "sqlite"
	DefaultAutosave     = "@every 30s"
	DefaultDebounce     = 300 * time.Millisecond
	DefaultHistoryLimit = 100
	DefaultLogLevel     = "info"

	// AutosaveOff disables the autosave schedule.
	AutosaveOff = "off"
)

// Drivers accepted by PAGEBUILDER_DB_DRIVER.
var Drivers = []string{"sqlite", "postgres", "mysql", "mongo"}

// Config holds the runtime settings.
type Config struct {
	Driver       string
	DSN          string
	DataDir      string
	ImportDir    string
	Autosave     string // cron spec
	Debounce     time.Duration
	HistoryLimit int
	LogLevel     string
	LogFile      string
}

// Load reads the environment, falling back to defaults.
func Load() (Config, error) {
	c := Config{
		Driver:       env("PAGEBUILDER_DB_DRIVER", DefaultDriver),
		DSN:          os.Getenv("PAGEBUILDER_DB_DSN"),
		DataDir:      env("PAGEBUILDER_DATA_DIR", defaultDataDir()),
		ImportDir:    os.Getenv("PAGEBUILDER_IMPORT_DIR"),
		Autosave:     env("PAGEBUILDER_AUTOSAVE", DefaultAutosave),
		Debounce:     DefaultDebounce,
		HistoryLimit: DefaultHistoryLimit,
		LogLevel:     env("PAGEBUILDER_LOG_LEVEL", DefaultLogLevel),
		LogFile:      os.Getenv("PAGEBUILDER_LOG_FILE"),
	}

	if v := os.Getenv("PAGEBUILDER_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return c, fmt.Errorf("parse PAGEBUILDER_DEBOUNCE: %w", err)
		}
		c.Debounce = d
	}
	if v := os.Getenv("PAGEBUILDER_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("parse PAGEBUILDER_HISTORY_LIMIT: %w", err)
		}
		c.HistoryLimit = n
	}
	return c, c.Validate()
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Driver {
	case "sqlite":
	case "postgres", "mysql", "mongo":
		if c.DSN == "" {
			return fmt.Errorf("driver %s requires PAGEBUILDER_DB_DSN", c.Driver)
		}
	default:
		return fmt.Errorf("unknown driver %q (want one of %v)", c.Driver, Drivers)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("negative debounce %s", c.Debounce)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("negative history limit %d", c.HistoryLimit)
	}
	return nil
}

// SQLitePath is the database file used when the sqlite driver has no DSN.
func (c Config) SQLitePath() string {
	if c.DSN != "" {
		return c.DSN
	}
	return filepath.Join(c.DataDir, "pagebuilder.db")
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "pagebuilder")
	}
	return ".pagebuilder"
}
