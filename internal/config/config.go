package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
)

// CurrentSchemaVersion is the current config schema version.
const CurrentSchemaVersion = 1

// Environment variable names for config overrides.
// Priority: Environment > Config File > Default
const (
	EnvServerDir         = "MCSTATS_SERVER_DIR"
	EnvOutputDir         = "MCSTATS_OUTPUT_DIR"
	EnvAPIHost           = "MCSTATS_API_HOST"
	EnvSkinServer        = "MCSTATS_SKIN_SERVER"
	EnvDefaultName       = "MCSTATS_DEFAULT_NAME"
	EnvRateLimitMS       = "MCSTATS_RATE_LIMIT_MS"
	EnvRateLimitDisabled = "MCSTATS_RATE_LIMIT_DISABLED"
	EnvWorkers           = "MCSTATS_WORKERS"
	EnvCacheTTLHours     = "MCSTATS_CACHE_TTL_HOURS"
)

// Config holds application configuration.
type Config struct {
	SchemaVersion     int    `json:"schema_version"`
	ServerDir         string `json:"server_dir"`
	OutputDir         string `json:"output_dir"`
	APIHost           string `json:"api_host"`
	SkinServer        string `json:"skin_server"`
	DefaultName       string `json:"default_name"`
	RateLimitMS       int    `json:"rate_limit_ms"`
	RateLimitDisabled bool   `json:"rate_limit_disabled"`
	Workers           int    `json:"workers"`
	CacheTTLHours     int    `json:"cache_ttl_hours"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SchemaVersion:     CurrentSchemaVersion,
		ServerDir:         ".",
		OutputDir:         "data",
		APIHost:           "", // use the Mojang session server
		SkinServer:        "", // use the public renderer
		DefaultName:       "",
		RateLimitMS:       1000,
		RateLimitDisabled: false,
		Workers:           4,
		CacheTTLHours:     24,
	}
}

// LoadConfig reads config from disk. If the file doesn't exist or is corrupt,
// it returns DefaultConfig with a warning logged (non-fatal).
func LoadConfig() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	return LoadConfigFrom(path)
}

// LoadConfigFrom reads config from the specified path.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// File doesn't exist, use defaults (not an error)
			return cfg, nil
		}
		log.Printf("Warning: failed to read config file: %v, using defaults", err)
		return cfg, nil
	}

	// Try to parse JSON
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		log.Printf("Warning: config file is corrupt: %v, using defaults", err)
		return DefaultConfig(), nil
	}

	// Check schema version
	if cfg.SchemaVersion != CurrentSchemaVersion {
		log.Printf("Warning: config schema version mismatch (got %d, expected %d), using defaults",
			cfg.SchemaVersion, CurrentSchemaVersion)
		return DefaultConfig(), nil
	}

	// Normalize/validate values
	cfg = normalizeConfig(cfg)

	return cfg, nil
}

// normalizeConfig validates and normalizes config values.
func normalizeConfig(cfg Config) Config {
	defaults := DefaultConfig()

	// Ensure schema version
	cfg.SchemaVersion = CurrentSchemaVersion

	if cfg.ServerDir == "" {
		cfg.ServerDir = defaults.ServerDir
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}

	// A zero or negative interval would hammer the upstream API.
	if cfg.RateLimitMS <= 0 {
		cfg.RateLimitMS = defaults.RateLimitMS
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.CacheTTLHours <= 0 {
		cfg.CacheTTLHours = defaults.CacheTTLHours
	}

	return cfg
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables take highest priority over config file values.
func ApplyEnvOverrides(cfg Config) Config {
	if v := os.Getenv(EnvServerDir); v != "" {
		cfg.ServerDir = v
	}

	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.OutputDir = v
	}

	if v := os.Getenv(EnvAPIHost); v != "" {
		cfg.APIHost = v
	}

	if v := os.Getenv(EnvSkinServer); v != "" {
		cfg.SkinServer = v
	}

	if v := os.Getenv(EnvDefaultName); v != "" {
		cfg.DefaultName = v
	}

	if v := os.Getenv(EnvRateLimitMS); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.RateLimitMS = ms
		}
	}

	if v := os.Getenv(EnvRateLimitDisabled); v != "" {
		cfg.RateLimitDisabled = parseBool(v)
	}

	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}

	if v := os.Getenv(EnvCacheTTLHours); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			cfg.CacheTTLHours = h
		}
	}

	return cfg
}

// parseBool parses a boolean from various string representations.
// Accepts: "true", "1", "yes", "on" (case-insensitive) as true.
// All other values are treated as false.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
