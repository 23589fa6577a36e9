// Copyright 2025 The threads-scraper Authors
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for threads-scraper with
// support for multiple configuration sources and a well-defined precedence
// order. The platform's internal endpoint, document id, and request headers
// rotate occasionally; keeping them in configuration means a rotation is an
// edit to a YAML file rather than a rebuild.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// The package supports YAML configuration files and provides automatic
// discovery of configuration in standard locations. Session credentials are
// never stored in the config file itself; the file only names the environment
// variable that holds the cookie, and a local .env file can populate it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .threads-scraper.yaml (current directory)
//   - .threads-scraper.yml (current directory)
//   - ~/.threads-scraper/config.yaml
//   - ~/.threads-scraper/config.yml
//
// Environment variables are applied after loading the config file, allowing
// runtime overrides. Path expansion (~ and environment variables) is performed
// on the output directory.
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Try to load config file if path is provided
	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		// Try default locations
		defaultPaths := []string{
			".threads-scraper.yaml",
			".threads-scraper.yml",
			filepath.Join(os.Getenv("HOME"), ".threads-scraper", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".threads-scraper", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Expand paths
	cfg.Defaults.OutputDir = expandPath(cfg.Defaults.OutputDir)

	return cfg, nil
}

// LoadDotenv loads a .env file from the current directory into the process
// environment, making the session cookie available to the env var named by
// ThreadsConfig.CookieEnv. A missing .env file is not an error; an unreadable
// or malformed one is.
func LoadDotenv() error {
	if err := godotenv.Load(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	// Platform settings
	if endpoint := os.Getenv("THREADS_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.Threads.GraphQLEndpoint = endpoint
	}
	if docID := os.Getenv("THREADS_DOC_ID"); docID != "" {
		cfg.Threads.DocID = docID
	}

	// Defaults
	if maxPages := os.Getenv("THREADS_SCRAPER_MAX_PAGES"); maxPages != "" {
		if pages, err := parseNonNegativeInt(maxPages); err == nil {
			cfg.Defaults.MaxPages = pages
		}
	}
	if outputDir := os.Getenv("THREADS_SCRAPER_OUTPUT_DIR"); outputDir != "" {
		cfg.Defaults.OutputDir = outputDir
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parseNonNegativeInt parses a string to a non-negative integer
func parseNonNegativeInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i < 0 {
		return 0, fmt.Errorf("value must not be negative, got: %d", i)
	}
	return i, nil
}

// RequestTimeout returns the configured per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return parseDuration(c.Defaults.RequestTimeout, 30*time.Second)
}

// RequestDelay returns the configured pause between page requests.
func (c *Config) RequestDelay() time.Duration {
	return parseDuration(c.Defaults.RequestDelay, 500*time.Millisecond)
}

// RetryBackoff returns the initial and maximum backoff durations for
// retrying transient request failures.
func (c *Config) RetryBackoff() (initial, max time.Duration) {
	return parseDuration(c.Retry.InitialBackoff, time.Second),
		parseDuration(c.Retry.MaxBackoff, 30*time.Second)
}

// parseDuration parses a duration string, falling back to def when the
// string is empty or malformed. Validate reports malformed strings, so the
// fallback only matters for callers that skip validation.
func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// Validate checks if the configuration contains valid values. It ensures
// the endpoint and document id are not empty, durations parse, and other
// constraints are met. This should be called after loading configuration
// to catch invalid settings early.
func (c *Config) Validate() error {
	if c.Threads.GraphQLEndpoint == "" {
		return fmt.Errorf("threads GraphQL endpoint cannot be empty")
	}
	if c.Threads.DocID == "" {
		return fmt.Errorf("threads document id cannot be empty")
	}
	if c.Threads.CookieEnv == "" {
		return fmt.Errorf("cookie environment variable name cannot be empty")
	}
	if c.Defaults.MaxPages < 0 {
		return fmt.Errorf("max pages must not be negative, got: %d", c.Defaults.MaxPages)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry max attempts must be positive, got: %d", c.Retry.MaxAttempts)
	}
	for name, value := range map[string]string{
		"request_timeout": c.Defaults.RequestTimeout,
		"request_delay":   c.Defaults.RequestDelay,
		"initial_backoff": c.Retry.InitialBackoff,
		"max_backoff":     c.Retry.MaxBackoff,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s duration %q: %w", name, value, err)
		}
	}
	return nil
}
