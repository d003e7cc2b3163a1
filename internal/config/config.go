// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AccidentsPath      string
	MunicipalitiesPath string
	BoundariesPath     string

	CSVDelimiter rune
	CSVEncoding  string

	// CachePath is empty when the dataset cache is disabled.
	CachePath string

	TopN         int
	DefaultState string
	Granularity  string

	WatchData      bool
	NotifyOnReload bool
	ReloadDebounce time.Duration

	LogPath  string
	LogLevel string
}

// Default values
const (
	defaultAccidentsPath      = "./csv/acidentes_2022.csv"
	defaultMunicipalitiesPath = "./csv/localidades_2022.csv"
	defaultDelimiter          = ","
	defaultEncoding           = "utf-8"
	defaultTopN               = 10
	defaultReloadDebounce     = 500 * time.Millisecond
	cacheDisabled             = "off"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	delimiter := getEnvString("CSV_DELIMITER", defaultDelimiter)
	if delimiter == `\t` || delimiter == "tab" {
		delimiter = "\t"
	}
	if utf8.RuneCountInString(delimiter) != 1 {
		return nil, fmt.Errorf("CSV_DELIMITER must be a single character, got %q", delimiter)
	}
	sep, _ := utf8.DecodeRuneInString(delimiter)

	cfg := &Config{
		AccidentsPath:      getEnvString("ACCIDENTS_PATH", defaultAccidentsPath),
		MunicipalitiesPath: getEnvString("MUNICIPALITIES_PATH", defaultMunicipalitiesPath),
		BoundariesPath:     getEnvString("BOUNDARIES_PATH", ""),
		CSVDelimiter:       sep,
		CSVEncoding:        strings.ToLower(getEnvString("CSV_ENCODING", defaultEncoding)),
		CachePath:          getEnvString("CACHE_PATH", getDefaultCachePath()),
		TopN:               getEnvInt("TOP_N", defaultTopN),
		DefaultState:       strings.ToUpper(getEnvString("DEFAULT_STATE", "")),
		Granularity:        strings.ToLower(getEnvString("GRANULARITY", "month")),
		WatchData:          getEnvBool("WATCH_DATA", true),
		NotifyOnReload:     getEnvBool("NOTIFY_ON_RELOAD", false),
		ReloadDebounce:     getEnvDuration("RELOAD_DEBOUNCE", defaultReloadDebounce),
		LogPath:            getEnvString("LOG_PATH", getDefaultLogPath()),
		LogLevel:           strings.ToLower(getEnvString("LOG_LEVEL", "info")),
	}

	if cfg.TopN <= 0 {
		return nil, fmt.Errorf("TOP_N must be positive, got %d", cfg.TopN)
	}

	if strings.EqualFold(cfg.CachePath, cacheDisabled) {
		cfg.CachePath = ""
	}

	// Ensure cache directory exists
	if cfg.CachePath != "" {
		if err := ensureDir(filepath.Dir(cfg.CachePath)); err != nil {
			return nil, err
		}
	}

	// Ensure log directory exists
	if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CacheEnabled reports whether the sqlite dataset cache is in use.
func (c *Config) CacheEnabled() bool {
	return c.CachePath != ""
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if dir := configDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
// Accepts the forms understood by strconv.ParseBool plus "yes"/"no".
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "":
		return defaultValue
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as milliseconds if no unit specified
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
