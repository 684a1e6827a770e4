// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDBPath returns the default database location under the user's
// config directory.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tenderflow.db"
	}
	return filepath.Join(home, ".config", "tenderflow", "tenderflow.db")
}
