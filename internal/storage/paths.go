// Package storage persists generated magic constants and the statistics
// of the searches that found them.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultCacheDir resolves the per-user data directory holding the badger
// cache, creating it if needed. Linux honors XDG_DATA_HOME, Windows
// APPDATA; macOS uses Application Support.
func DefaultCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support")
	case "windows":
		if base = os.Getenv("APPDATA"); base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
	default:
		if base = os.Getenv("XDG_DATA_HOME"); base == "" {
			base = filepath.Join(home, ".local", "share")
		}
	}

	dir := filepath.Join(base, "tabia", "db")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
