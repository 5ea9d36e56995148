package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load resolves configuration from the default locations.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath(), ".env")
}

// LoadFrom resolves configuration from a specific config file and .env
// path. A missing file at either location is not an error.
func LoadFrom(path, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	// Environment wins over the file. The .env file only fills
	// variables that are not already set in the process environment.
	godotenv.Load(envFile)
	applyEnv(cfg)

	// Backfill defaults for zero values.
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:7770"
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 20
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WAYLIS_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("WAYLIS_API_PREFIX"); v != "" {
		cfg.APIPrefix = v
	}
	if v := os.Getenv("WAYLIS_PAGE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PageLimit = n
		}
	}
	if v := os.Getenv("WAYLIS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WAYLIS_TOKEN"); v != "" {
		cfg.IdentityToken = v
	}
}

// Save writes the configuration to its default location. The identity
// token is excluded.
func Save(cfg *Config) error {
	return SaveTo(cfg, ConfigPath())
}

// SaveTo writes the configuration to a specific path.
func SaveTo(cfg *Config, path string) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}
