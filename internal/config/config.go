// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads configuration from config.yaml and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIConfig holds the incident API connection settings.
type APIConfig struct {
	Endpoint string

	// Optional client-credentials grant. Empty TokenURL means the API is
	// called without authentication.
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// Config holds all configuration for the incident bridge.
type Config struct {
	// Postgres replica of the BSS tables
	DatabaseURL string

	// Incident API
	API APIConfig

	// Redis (optional — empty URL disables queue notices and trigger dedup)
	RedisURL       string
	IncidentsQueue string

	// Explicit deadlines instead of driver defaults
	QueryTimeout   time.Duration
	RequestTimeout time.Duration

	// Server
	Port int
}

// rawConfig mirrors the YAML structure for unmarshalling.
type rawConfig struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	API struct {
		Endpoint     string `yaml:"endpoint"`
		TokenURL     string `yaml:"token_url"`
		ClientID     string `yaml:"client_id"`
		ClientSecret string `yaml:"client_secret"`
	} `yaml:"api"`
	Redis struct {
		URL    string `yaml:"url"`
		Queues struct {
			Incidents string `yaml:"incidents"`
		} `yaml:"queues"`
	} `yaml:"redis"`
}

// Load reads configuration from config.yaml (with env var expansion) and
// environment variables for non-YAML settings. A missing config file is not
// an error; everything can come from the environment.
func Load() (*Config, error) {
	configPath := envOrDefault("CONFIG_PATH", "/app/config/config.yaml")

	var raw rawConfig
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		// Expand ${VAR} references in the YAML
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config YAML: %w", err)
		}
	case os.IsNotExist(err):
		// Environment-only configuration
	default:
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	cfg := &Config{
		DatabaseURL: firstNonEmpty(raw.Database.URL, os.Getenv("DATABASE_URL")),
		API: APIConfig{
			Endpoint:     firstNonEmpty(raw.API.Endpoint, os.Getenv("API_ENDPOINT")),
			TokenURL:     firstNonEmpty(raw.API.TokenURL, os.Getenv("API_TOKEN_URL")),
			ClientID:     firstNonEmpty(raw.API.ClientID, os.Getenv("API_CLIENT_ID")),
			ClientSecret: firstNonEmpty(raw.API.ClientSecret, os.Getenv("API_CLIENT_SECRET")),
		},
		RedisURL:       firstNonEmpty(raw.Redis.URL, os.Getenv("REDIS_URL")),
		IncidentsQueue: firstNonEmpty(raw.Redis.Queues.Incidents, envOrDefault("INCIDENTS_QUEUE", "incidents")),
		QueryTimeout:   envOrDefaultDuration("QUERY_TIMEOUT", 10*time.Second),
		RequestTimeout: envOrDefaultDuration("REQUEST_TIMEOUT", 30*time.Second),
		Port:           envOrDefaultInt("PORT", 8080),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required — set database.url in config.yaml or DATABASE_URL")
	}
	if cfg.API.Endpoint == "" {
		return nil, fmt.Errorf("incident API endpoint is required — set api.endpoint in config.yaml or API_ENDPOINT")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
