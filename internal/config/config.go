package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"shears/internal/errors"
)

// Config represents the pruning configuration
type Config struct {
	Pruning PruningConfig
}

// PruningConfig holds the pessimistic pruning settings
type PruningConfig struct {
	Confidence  float64
	Verbose     bool
	MaxParallel int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Pruning: *loadPruningConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LoadFile loads environment variables from the given .env files, without
// overriding variables already set, then reads the configuration.
func LoadFile(filenames ...string) (*Config, error) {
	if err := godotenv.Load(filenames...); err != nil {
		return nil, errors.Wrap(err, "failed to load env file")
	}
	return Load()
}

func loadPruningConfig() *PruningConfig {
	return &PruningConfig{
		Confidence:  getEnvFloatOrDefault("SHEARS_CONFIDENCE", 25),
		Verbose:     getEnvBoolOrDefault("SHEARS_VERBOSE", false),
		MaxParallel: getEnvIntOrDefault("SHEARS_MAX_PARALLEL", 4),
	}
}

func validateConfig(config *Config) error {
	c := config.Pruning.Confidence
	if !(c >= 0 && c <= 50) {
		return errors.ConfigInvalid("SHEARS_CONFIDENCE must be between 0 and 50")
	}
	if config.Pruning.MaxParallel < 1 {
		return errors.ConfigInvalid("SHEARS_MAX_PARALLEL must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
