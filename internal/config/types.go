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

// Package config types define the configuration structures used throughout
// threads-scraper. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

// Config represents the complete configuration for threads-scraper.
// It consolidates settings from various sources and provides a unified
// interface for accessing configuration values throughout the application.
type Config struct {
	Threads  ThreadsConfig  `yaml:"threads"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Retry    RetryConfig    `yaml:"retry"`
}

// ThreadsConfig contains platform-specific settings: the internal GraphQL
// endpoint, the persisted query document id, and the request headers the
// web client sends. Overriding the endpoint is primarily useful for testing
// against a local server.
type ThreadsConfig struct {
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	DocID           string `yaml:"doc_id"`
	AppID           string `yaml:"app_id"`
	UserAgent       string `yaml:"user_agent"`
	CookieEnv       string `yaml:"cookie_env"`
}

// DefaultsConfig contains default settings that apply to all fetch operations
// unless overridden by command-line flags. RequestTimeout and RequestDelay
// are duration strings ("30s", "500ms").
type DefaultsConfig struct {
	Format         string `yaml:"format"`
	OutputDir      string `yaml:"output_dir"`
	MaxPages       int    `yaml:"max_pages"`
	RequestTimeout string `yaml:"request_timeout"`
	RequestDelay   string `yaml:"request_delay"`
}

// RetryConfig controls how transient request failures are retried.
// InitialBackoff and MaxBackoff are duration strings.
type RetryConfig struct {
	MaxAttempts    int    `yaml:"max_attempts"`
	InitialBackoff string `yaml:"initial_backoff"`
	MaxBackoff     string `yaml:"max_backoff"`
}

// DefaultConfig returns a Config with sensible defaults suitable for most
// use cases. The endpoint, document id, and headers match what the Threads
// web client sends as of early 2025; all of them can be overridden when the
// platform rotates them.
func DefaultConfig() *Config {
	return &Config{
		Threads: ThreadsConfig{
			GraphQLEndpoint: "https://www.threads.net/api/graphql",
			DocID:           "8146902565367397",
			AppID:           "238260118697367",
			UserAgent:       "threads-client",
			CookieEnv:       "COOKIE",
		},
		Defaults: DefaultsConfig{
			Format:         "json",
			OutputDir:      "data",
			MaxPages:       0,
			RequestTimeout: "30s",
			RequestDelay:   "500ms",
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: "1s",
			MaxBackoff:     "30s",
		},
	}
}
