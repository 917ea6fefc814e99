// Copyright (c) 2025-2026 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/nexorax/internal/backend"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete nexorax configuration.
type Config struct {
	// Version of the config schema, written into saved files.
	Version string `toml:"version"`

	// DefaultModel is the model used for new single-mode chats.
	DefaultModel string `toml:"default_model"`

	// Dual-chat configuration
	Dual DualConfig `toml:"dual"`

	// Provider endpoints and credentials
	Providers ProvidersConfig `toml:"providers"`

	// Proxy server configuration
	Server ServerConfig `toml:"server"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Logging configuration
	Logging LoggingConfig `toml:"logging"`
}

// DualConfig contains the dual-chat model pair.
type DualConfig struct {
	// Enabled turns dual-chat mode on by default for new sessions.
	Enabled bool `toml:"enabled"`
	// Primary is the left-column model.
	Primary string `toml:"primary"`
	// Secondary is the right-column model.
	Secondary string `toml:"secondary"`
}

// ProvidersConfig contains upstream provider endpoints and credentials.
type ProvidersConfig struct {
	// GeminiBaseURL is the Gemini API base, up to and including the version
	// segment.
	GeminiBaseURL string `toml:"gemini_base_url"`
	// GeminiAPIKey authenticates Gemini requests. Usually supplied via the
	// GEMINI_API_KEY environment variable rather than the config file.
	GeminiAPIKey string `toml:"gemini_api_key"`
	// GeminiModel is the upstream model identifier served behind nexorax1.
	GeminiModel string `toml:"gemini_model"`

	// LLM7BaseURL is the chat-completions API base.
	LLM7BaseURL string `toml:"llm7_base_url"`
	// LLM7APIKey authenticates chat-completions requests; optional.
	LLM7APIKey string `toml:"llm7_api_key"`

	// PollinationsBaseURL is the image generation API base.
	PollinationsBaseURL string `toml:"pollinations_base_url"`

	// LiteModel is the lightweight model used for prompt enhancement and
	// small-talk fallbacks.
	LiteModel string `toml:"lite_model"`

	// TimeoutSecs bounds each upstream request.
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerSecond rate-limits outgoing upstream calls.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// Burst is the rate limiter burst size.
	Burst int `toml:"burst"`
}

// ServerConfig contains the proxy server listen and CORS settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `toml:"host"`
	// Port is the listen port.
	Port int `toml:"port"`
	// AllowedOrigins is the CORS allow-list. A "*" entry allows any origin.
	AllowedOrigins []string `toml:"allowed_origins"`
	// ShutdownGraceSecs bounds graceful shutdown on exit.
	ShutdownGraceSecs int `toml:"shutdown_grace_secs"`
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	// DataDir holds the settings database. Empty means ~/.nexorax.
	DataDir string `toml:"data_dir"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode hides the sidebar by default.
	CompactMode bool `toml:"compact_mode"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error"
	Level string `toml:"level"`
	// File is the log destination. Empty means <data_dir>/nexorax.log.
	File string `toml:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version:      "1.0.0",
		DefaultModel: "gpt-5-chat",

		Dual: DualConfig{
			Enabled:   false,
			Primary:   "gpt-5-chat",
			Secondary: "nexorax1",
		},

		Providers: ProvidersConfig{
			GeminiBaseURL:       "https://generativelanguage.googleapis.com/v1beta",
			GeminiModel:         "gemini-2.0-flash-exp",
			LLM7BaseURL:         "https://api.llm7.io/v1",
			PollinationsBaseURL: "https://image.pollinations.ai",
			LiteModel:           "gemini-2.5-flash-lite",
			TimeoutSecs:         120,
			RequestsPerSecond:   2,
			Burst:               4,
		},

		Server: ServerConfig{
			Host:              "127.0.0.1",
			Port:              5000,
			AllowedOrigins:    []string{"http://localhost:5000", "http://127.0.0.1:5000"},
			ShutdownGraceSecs: 10,
		},

		Storage: StorageConfig{
			DataDir: "",
		},

		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the nexorax configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".nexorax"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DataDir resolves the storage directory, defaulting to the config dir.
func (c *Config) DataDir() (string, error) {
	if c.Storage.DataDir != "" {
		return c.Storage.DataDir, nil
	}
	return ConfigDir()
}

// DatabasePath resolves the settings database file path.
func (c *Config) DatabasePath() (string, error) {
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nexorax.db"), nil
}

// LogPath resolves the log file path.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nexorax.log"), nil
}

// ListenAddr returns the host:port the proxy server binds to.
func (c *Config) ListenAddr() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// ShutdownGrace returns the graceful shutdown bound as a duration.
func (c *Config) ShutdownGrace() time.Duration {
	return time.Duration(c.Server.ShutdownGraceSecs) * time.Second
}

// BackendOptions converts the provider section to backend client options.
func (c *Config) BackendOptions() backend.Options {
	return backend.Options{
		GeminiBaseURL:       c.Providers.GeminiBaseURL,
		GeminiAPIKey:        c.Providers.GeminiAPIKey,
		GeminiModel:         c.Providers.GeminiModel,
		LLM7BaseURL:         c.Providers.LLM7BaseURL,
		LLM7APIKey:          c.Providers.LLM7APIKey,
		PollinationsBaseURL: c.Providers.PollinationsBaseURL,
		LiteModel:           c.Providers.LiteModel,
		Timeout:             time.Duration(c.Providers.TimeoutSecs) * time.Second,
		RequestsPerSecond:   c.Providers.RequestsPerSecond,
		Burst:               c.Providers.Burst,
	}
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// The file can carry API keys, so anything wider than 0600 gets tightened.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.nexorax/config.toml, falling back to
// defaults when the file is absent. Environment overrides are applied last,
// then the result is validated.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaults.DefaultModel
	}

	if cfg.Dual.Primary == "" {
		cfg.Dual.Primary = defaults.Dual.Primary
	}
	if cfg.Dual.Secondary == "" {
		cfg.Dual.Secondary = defaults.Dual.Secondary
	}

	if cfg.Providers.GeminiBaseURL == "" {
		cfg.Providers.GeminiBaseURL = defaults.Providers.GeminiBaseURL
	}
	if cfg.Providers.GeminiModel == "" {
		cfg.Providers.GeminiModel = defaults.Providers.GeminiModel
	}
	if cfg.Providers.LLM7BaseURL == "" {
		cfg.Providers.LLM7BaseURL = defaults.Providers.LLM7BaseURL
	}
	if cfg.Providers.PollinationsBaseURL == "" {
		cfg.Providers.PollinationsBaseURL = defaults.Providers.PollinationsBaseURL
	}
	if cfg.Providers.LiteModel == "" {
		cfg.Providers.LiteModel = defaults.Providers.LiteModel
	}
	if cfg.Providers.TimeoutSecs == 0 {
		cfg.Providers.TimeoutSecs = defaults.Providers.TimeoutSecs
	}
	if cfg.Providers.RequestsPerSecond == 0 {
		cfg.Providers.RequestsPerSecond = defaults.Providers.RequestsPerSecond
	}
	if cfg.Providers.Burst == 0 {
		cfg.Providers.Burst = defaults.Providers.Burst
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = defaults.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = defaults.Server.AllowedOrigins
	}
	if cfg.Server.ShutdownGraceSecs == 0 {
		cfg.Server.ShutdownGraceSecs = defaults.Server.ShutdownGraceSecs
	}

	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
// Credentials are expected in the environment rather than on disk.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Providers.GeminiAPIKey = v
	}
	if v := os.Getenv("LLM7_API_KEY"); v != "" {
		c.Providers.LLM7APIKey = v
	}
	if v := os.Getenv("NEXORAX_DEFAULT_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("NEXORAX_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := os.Getenv("NEXORAX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("NEXORAX_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("NEXORAX_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file with 0600
// permissions; the file can carry API keys.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo saves the configuration to a specific TOML file.
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# nexorax configuration file")
	fmt.Fprintln(file, "# Generated by nexorax - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !backend.FamilyOf(c.DefaultModel).Valid() {
		errs = append(errs, ValidationError{
			Field:   "default_model",
			Message: fmt.Sprintf("model %q does not route to a known family", c.DefaultModel),
		})
	}

	if !backend.DualEligible(c.Dual.Primary) {
		errs = append(errs, ValidationError{
			Field:   "dual.primary",
			Message: fmt.Sprintf("model %q is not eligible for dual-chat mode", c.Dual.Primary),
		})
	}
	if !backend.DualEligible(c.Dual.Secondary) {
		errs = append(errs, ValidationError{
			Field:   "dual.secondary",
			Message: fmt.Sprintf("model %q is not eligible for dual-chat mode", c.Dual.Secondary),
		})
	}

	for field, raw := range map[string]string{
		"providers.gemini_base_url":       c.Providers.GeminiBaseURL,
		"providers.llm7_base_url":         c.Providers.LLM7BaseURL,
		"providers.pollinations_base_url": c.Providers.PollinationsBaseURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid URL %q", raw),
			})
		}
	}

	if c.Providers.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "providers.timeout_secs",
			Message: "timeout cannot be negative",
		})
	}
	if c.Providers.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "providers.requests_per_second",
			Message: "rate limit cannot be negative",
		})
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d out of range 1-65535", c.Server.Port),
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q, must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Global returns the process-wide configuration, loading it on first use.
// A load failure yields validated defaults.
func Global() *Config {
	globalMu.RLock()
	cfg := globalCfg
	globalMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	loaded, err := Load()
	if err != nil {
		loaded = Default()
	}

	globalMu.Lock()
	if globalCfg == nil {
		globalCfg = loaded
	}
	cfg = globalCfg
	globalMu.Unlock()
	return cfg
}

// SetGlobal replaces the process-wide configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	globalCfg = cfg
	globalMu.Unlock()
}

// ReloadGlobal re-reads the config file and swaps the global on success.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// ResetGlobalForTesting clears the global config so tests start clean.
func ResetGlobalForTesting() {
	globalMu.Lock()
	globalCfg = nil
	globalMu.Unlock()
}
