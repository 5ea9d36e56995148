// Package config resolves the client-side configuration once at
// startup. Precedence: environment (including an optional .env file)
// over the config file over built-in defaults. The resolved value is
// treated as immutable for the session.
package config

import (
	"os"
	"path/filepath"
)

// Config is the resolved client configuration.
type Config struct {
	// ServerURL is the Waylis server origin, e.g. "http://localhost:7770".
	ServerURL string `yaml:"serverUrl"`
	// APIPrefix is the path prefix of the HTTP API.
	APIPrefix string `yaml:"apiPrefix"`
	// PageLimit is the fallback page size for chats and messages; the
	// server's defaultPageLimit takes precedence when provided.
	PageLimit int `yaml:"pageLimit"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// IdentityToken is the one-shot identity passed to the first auth
	// call. It comes from the environment or a flag only and is never
	// written back to disk.
	IdentityToken string `yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerURL: "http://localhost:7770",
		APIPrefix: "/api",
		PageLimit: 20,
		LogLevel:  "info",
	}
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// DataDir returns the waycli data directory, creating it if needed.
func DataDir() string {
	dir := filepath.Join(homeDir(), ".waycli")
	os.MkdirAll(dir, 0o755)
	return dir
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp"
	}
	return home
}
