package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultModel is the provider model used when a profile has no preference.
const DefaultModel = "meta-llama/llama-3.3-70b-instruct"

// Config holds application configuration.
type Config struct {
	// Bind is the interface the HTTP server listens on.
	Bind string `json:"bind" yaml:"bind"`

	// Port is the HTTP server port.
	Port int `json:"port" yaml:"port"`

	// ProviderBaseURL is the chat-completion API root (OpenRouter-compatible).
	ProviderBaseURL string `json:"provider_base_url" yaml:"provider_base_url"`

	// DefaultModel is used when the caller's profile has no preferred model.
	DefaultModel string `json:"default_model" yaml:"default_model"`

	// ProviderTimeoutSeconds bounds a single provider call at the transport level.
	ProviderTimeoutSeconds int `json:"provider_timeout_seconds" yaml:"provider_timeout_seconds"`

	// AppReferer and AppTitle are sent as HTTP-Referer and X-Title to the provider.
	AppReferer string `json:"app_referer,omitempty" yaml:"app_referer,omitempty"`
	AppTitle   string `json:"app_title,omitempty" yaml:"app_title,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// LogFormat is text or json.
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" yaml:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" yaml:"db_max_idle_conns,omitempty"`

	// MCPUserID is the user the MCP server acts as.
	MCPUserID string `json:"mcp_user_id,omitempty" yaml:"mcp_user_id,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty" yaml:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Bind:                   "127.0.0.1",
		Port:                   8787,
		ProviderBaseURL:        "https://openrouter.ai/api/v1",
		DefaultModel:           DefaultModel,
		ProviderTimeoutSeconds: 60,
		AppReferer:             "https://chronos-mythica.app",
		AppTitle:               "Chronos Mythica",
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// Load loads configuration from baseDir, then applies MYTHICA_* environment overrides.
// config.json wins over config.yaml when both exist. Missing files yield defaults.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.mythica.
func Load(baseDir string) (*Config, error) {
	fileCfg, err := loadDir(baseDir)
	if err != nil {
		return nil, err
	}
	cfg := Merge(DefaultConfig(), fileCfg)
	ApplyEnv(cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// loadDir reads the first config file present in baseDir.
// Returns zero-valued config if none exists (not defaults).
func loadDir(baseDir string) (*Config, error) {
	jsonPath := filepath.Join(baseDir, "config.json")
	cfg, err := loadFileRaw(jsonPath, json.Unmarshal)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	for _, name := range []string{"config.yaml", "config.yml"} {
		cfg, err = loadFileRaw(filepath.Join(baseDir, name), yaml.Unmarshal)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}
	return &Config{}, nil
}

// loadFileRaw decodes configPath with unmarshal. os.ErrNotExist is passed through.
func loadFileRaw(configPath string, unmarshal func([]byte, any) error) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(configPath), err)
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Bind:                   pickString(overlay.Bind, base.Bind),
		Port:                   pickInt(overlay.Port, base.Port),
		ProviderBaseURL:        pickString(overlay.ProviderBaseURL, base.ProviderBaseURL),
		DefaultModel:           pickString(overlay.DefaultModel, base.DefaultModel),
		ProviderTimeoutSeconds: pickInt(overlay.ProviderTimeoutSeconds, base.ProviderTimeoutSeconds),
		AppReferer:             pickString(overlay.AppReferer, base.AppReferer),
		AppTitle:               pickString(overlay.AppTitle, base.AppTitle),
		LogLevel:               pickString(overlay.LogLevel, base.LogLevel),
		LogFormat:              pickString(overlay.LogFormat, base.LogFormat),
		DBMaxOpenConns:         pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:         pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		MCPUserID:              pickString(overlay.MCPUserID, base.MCPUserID),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// ApplyEnv overrides cfg from MYTHICA_* variables. Unparseable numbers are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	envStr := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	envInt := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				*dst = i
			}
		}
	}

	envStr("MYTHICA_BIND", &cfg.Bind)
	envInt("MYTHICA_PORT", &cfg.Port)
	envStr("MYTHICA_PROVIDER_BASE_URL", &cfg.ProviderBaseURL)
	envStr("MYTHICA_DEFAULT_MODEL", &cfg.DefaultModel)
	envInt("MYTHICA_PROVIDER_TIMEOUT_SECONDS", &cfg.ProviderTimeoutSeconds)
	envStr("MYTHICA_LOG_LEVEL", &cfg.LogLevel)
	envStr("MYTHICA_LOG_FORMAT", &cfg.LogFormat)
	envStr("MYTHICA_MCP_USER_ID", &cfg.MCPUserID)
}

// Validate checks the values a server cannot start without.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.ProviderBaseURL == "" {
		return fmt.Errorf("provider_base_url must not be empty")
	}
	if c.DefaultModel == "" {
		return fmt.Errorf("default_model must not be empty")
	}
	if c.ProviderTimeoutSeconds < 0 {
		return fmt.Errorf("provider_timeout_seconds must not be negative, got %d", c.ProviderTimeoutSeconds)
	}
	return nil
}

func pickString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
