// ABOUTME: Application configuration stored at XDG paths
// ABOUTME: JSON file with .env and environment variable overrides
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/harperreed/prospecta/assistant"
	"github.com/harperreed/prospecta/charm"
	"github.com/harperreed/prospecta/crm"
)

const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
	BackendBadger = "badger"
)

type Config struct {
	Backend              string `json:"backend"`
	DBPath               string `json:"db_path"`
	KVPath               string `json:"kv_path,omitempty"`
	RelanceThresholdDays int    `json:"relance_threshold_days"`
	CharmHost            string `json:"charm_host,omitempty"`
	CharmAutoSync        bool   `json:"charm_auto_sync"`
	AssistantProvider    string `json:"assistant_provider"`
	AssistantModel       string `json:"assistant_model,omitempty"`

	// Keys come from the environment only and are never written back.
	AnthropicAPIKey string `json:"-"`
	GeminiAPIKey    string `json:"-"`
}

// Dir returns the XDG config directory for prospecta.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "prospecta")
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// DefaultDBPath returns the XDG data path of the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "prospecta", "prospecta.db")
}

// DefaultKVPath returns the XDG data path of the local BadgerDB store.
func DefaultKVPath() string {
	return filepath.Join(xdg.DataHome, "prospecta", "kv")
}

func Default() *Config {
	return &Config{
		Backend:              BackendSQLite,
		DBPath:               DefaultDBPath(),
		KVPath:               DefaultKVPath(),
		RelanceThresholdDays: crm.DefaultRelanceThresholdDays,
		CharmHost:            charm.DefaultCharmHost,
		CharmAutoSync:        true,
		AssistantProvider:    assistant.ProviderAnthropic,
	}
}

// LoadDotEnv reads .env from the working directory when present.
// Variables already set in the environment win.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads the config at path, falling back to defaults when the file
// is missing. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PROSPECTA_BACKEND"); v != "" {
		cfg.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("PROSPECTA_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PROSPECTA_KV_PATH"); v != "" {
		cfg.KVPath = v
	}
	if v := os.Getenv("PROSPECTA_RELANCE_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PROSPECTA_RELANCE_DAYS %q: %w", v, err)
		}
		cfg.RelanceThresholdDays = days
	}
	if v := os.Getenv("CHARM_HOST"); v != "" {
		cfg.CharmHost = v
	}
	if v := os.Getenv("PROSPECTA_ASSISTANT"); v != "" {
		cfg.AssistantProvider = strings.ToLower(v)
	}
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	return nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendCharm, BackendBadger:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.RelanceThresholdDays < 0 {
		return fmt.Errorf("relance_threshold_days must not be negative, got %d", c.RelanceThresholdDays)
	}
	switch c.AssistantProvider {
	case assistant.ProviderAnthropic, assistant.ProviderGemini:
	default:
		return fmt.Errorf("unknown assistant provider %q", c.AssistantProvider)
	}
	return nil
}

// Save writes the config to path with restricted permissions.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// CharmConfig returns the KV client settings.
func (c *Config) CharmConfig() *charm.Config {
	return &charm.Config{Host: c.CharmHost, AutoSync: c.CharmAutoSync}
}

// AssistantOptions picks the API key matching the configured provider.
func (c *Config) AssistantOptions() assistant.Options {
	opts := assistant.Options{Provider: c.AssistantProvider, Model: c.AssistantModel}
	switch c.AssistantProvider {
	case assistant.ProviderGemini:
		opts.APIKey = c.GeminiAPIKey
	default:
		opts.APIKey = c.AnthropicAPIKey
	}
	return opts
}
