// Package config loads spice settings from Viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultDatabasePath is used when database.path is unset.
const DefaultDatabasePath = "~/.local/share/spice/spice.db"

// DatabasePath returns database.path with ~ and $VARS expanded.
func DatabasePath() string {
	p := viper.GetString("database.path")
	if p == "" {
		p = DefaultDatabasePath
	}
	return expandPath(p)
}

func expandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
		}
	}
	return os.ExpandEnv(p)
}
