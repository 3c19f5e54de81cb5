// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	registryPath := cfg.Registry.Path
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration.
type Config struct {
	Registry      RegistryConfig      `yaml:"registry"`
	Matching      MatchingConfig      `yaml:"matching"`
	Exemptions    ExemptionsConfig    `yaml:"exemptions"`
	Recovery      RecoveryConfig      `yaml:"recovery"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// RegistryConfig points at the invoice registry export.
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// MatchingConfig holds the matcher thresholds that are worth overriding
// per deployment. Zero values mean "use the built-in default".
type MatchingConfig struct {
	AmountTolerance     float64 `yaml:"amount_tolerance"`
	AcceptScore         int     `yaml:"accept_score"`
	MaxSubsetCandidates int     `yaml:"max_subset_candidates"`
}

// ExemptionsConfig points at the exemption rules file. Empty means the
// built-in rules.
type ExemptionsConfig struct {
	RulesPath string `yaml:"rules_path"`
}

// RecoveryConfig holds deep-search hook configuration.
type RecoveryConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Endpoint         string   `yaml:"endpoint"`
	APIKey           string   `yaml:"api_key"`
	MaxRetries       int      `yaml:"max_retries"`
	InternalKeywords []string `yaml:"internal_keywords"`
}

// StorageConfig holds database configuration.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ObservabilityConfig holds observability settings.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${DEEP_SEARCH_API_KEY})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
func LoadFromEnv() *Config {
	return &Config{
		Registry: RegistryConfig{
			Path: getEnv("INVOICE_REGISTRY_PATH", "registry.csv"),
		},
		Recovery: RecoveryConfig{
			Enabled:    getEnv("DEEP_SEARCH_ENDPOINT", "") != "",
			Endpoint:   os.Getenv("DEEP_SEARCH_ENDPOINT"),
			APIKey:     os.Getenv("DEEP_SEARCH_API_KEY"),
			MaxRetries: getEnvInt("DEEP_SEARCH_MAX_RETRIES", 3),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("INVOICE_FINDER_DB_PATH", "invoice_finder.db"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables.
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables.
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// getEnv retrieves an environment variable with a fallback default.
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default.
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
