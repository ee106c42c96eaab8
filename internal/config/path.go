// Package config loads finsight settings from viper and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultDatabasePath is where the report history lives unless configured.
const DefaultDatabasePath = "$HOME/.local/share/finsight/finsight.db"

// DatabasePath returns the configured report history location, expanded.
// ":memory:" is passed through untouched.
func DatabasePath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = DefaultDatabasePath
	}
	if path == ":memory:" {
		return path
	}
	return ExpandPath(path)
}

// ExpandPath resolves a leading ~ to the home directory and expands $VAR
// references.
func ExpandPath(path string) string {
	switch {
	case path == "":
		return path
	case path == "~" || strings.HasPrefix(path, "~/"):
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}
