package config

import (
	"os"
	"path/filepath"
)

const appDirName = "accidents-dashboard"

// configDir returns ~/.config/accidents-dashboard, or "" when the home
// directory is unknown.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appDirName)
}

// getDefaultCachePath returns the default path for the SQLite dataset cache.
func getDefaultCachePath() string {
	dir := configDir()
	if dir == "" {
		return "cache.db"
	}
	return filepath.Join(dir, "cache.db")
}

// getDefaultLogPath returns the default log file location.
func getDefaultLogPath() string {
	dir := configDir()
	if dir == "" {
		return "acd.log"
	}
	return filepath.Join(dir, "acd.log")
}
