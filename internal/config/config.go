// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// inkwell.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.inkwell/config.toml
//   - ~/.inkwell/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete inkwell configuration.
type Config struct {
	// Version of the config schema, used by Migrate.
	Version string `toml:"version" json:"version"`

	// Backend connection settings
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Chat behavior
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Appearance settings
	Appearance AppearanceConfig `toml:"appearance" json:"appearance"`

	// External editor integration
	Editor EditorConfig `toml:"editor" json:"editor"`

	// Search defaults
	Search SearchConfig `toml:"search" json:"search"`

	// Log output
	Log LogConfig `toml:"log" json:"log"`

	// App lock (TOTP)
	Lock LockConfig `toml:"lock" json:"lock"`
}

// BackendConfig contains connection settings for the journaling backend.
type BackendConfig struct {
	// BaseURL is the backend server address.
	BaseURL string `toml:"base_url" json:"base_url"`
	// APIKey is the bearer token sent with every request. May hold a
	// vault ciphertext ("ENC:" prefix) instead of the raw key; the vault
	// resolves it when the client is built. Empty disables auth for
	// self-hosted backends.
	APIKey string `toml:"api_key" json:"api_key"`
	// TimeoutSecs is the request timeout for non-streaming calls.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is the retry budget for non-streaming requests.
	// Streaming requests are never retried.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RateLimitRPS is the sustained client-side request rate. 0 disables
	// throttling.
	RateLimitRPS float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
	// RateBurst is the rate limiter burst size.
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
}

// ChatConfig contains chat behavior settings.
type ChatConfig struct {
	// Streaming selects the streaming endpoint for chat turns. When
	// false every turn uses the non-streaming endpoint directly.
	Streaming bool `toml:"streaming" json:"streaming"`
	// DefaultPersonaID is the persona applied to new sessions. Empty
	// uses the backend's default persona.
	DefaultPersonaID string `toml:"default_persona_id" json:"default_persona_id"`
	// TextSize scales chat text: "small", "medium", "large".
	TextSize string `toml:"text_size" json:"text_size"`
}

// AppearanceConfig contains theme and rendering settings.
type AppearanceConfig struct {
	// Theme is the color theme name.
	Theme string `toml:"theme" json:"theme"`
	// CustomColors overrides individual theme colors by role name
	// (e.g. "accent" = "#7aa2f7"). Values are hex colors.
	CustomColors map[string]string `toml:"custom_colors" json:"custom_colors"`
	// MarkdownWidth is the wrap width for rendered markdown. 0 follows
	// the terminal width.
	MarkdownWidth int `toml:"markdown_width" json:"markdown_width"`
}

// EditorConfig contains external editor settings.
type EditorConfig struct {
	// Command is the editor launched for long-form composition. Empty
	// falls back to $EDITOR at invocation time.
	Command string `toml:"command" json:"command"`
}

// SearchConfig contains search defaults.
type SearchConfig struct {
	// Semantic selects semantic search by default; text match otherwise.
	Semantic bool `toml:"semantic" json:"semantic"`
	// PageSize is the result page size for search and list views.
	PageSize int `toml:"page_size" json:"page_size"`
}

// LogConfig contains log output settings.
type LogConfig struct {
	// Level is the minimum level written: debug, info, warn, error, off.
	Level string `toml:"level" json:"level"`
	// File is the log file path. Empty uses ~/.inkwell/inkwell.log.
	File string `toml:"file" json:"file"`
}

// LockConfig contains app lock settings.
type LockConfig struct {
	// Enabled gates the TUI behind a TOTP prompt at startup.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Issuer is the name shown in authenticator apps during enrollment.
	Issuer string `toml:"issuer" json:"issuer"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Backend: BackendConfig{
			BaseURL:      "http://localhost:8000",
			APIKey:       "",
			TimeoutSecs:  60,
			MaxRetries:   3,
			RateLimitRPS: 10,
			RateBurst:    20,
		},

		Chat: ChatConfig{
			Streaming: true,
			TextSize:  "medium",
		},

		Appearance: AppearanceConfig{
			Theme:         "inkwell-dark",
			MarkdownWidth: 0, // follow terminal
		},

		Editor: EditorConfig{
			Command: "",
		},

		Search: SearchConfig{
			Semantic: false,
			PageSize: 20,
		},

		Log: LogConfig{
			Level: "info",
			File:  "",
		},

		Lock: LockConfig{
			Enabled: false,
			Issuer:  "inkwell",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the inkwell data directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".inkwell"), nil
}

// PathTOML returns the path to the TOML config file.
func PathTOML() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// PathJSON returns the path to the JSON config file.
func PathJSON() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureDir ensures the inkwell data directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only) because
// they can carry the backend API key.
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

// loadDotEnv pulls INKWELL_* variables from .env files into the process
// environment before overrides are read. Existing variables win; godotenv
// never overwrites. Both the working directory and the inkwell data
// directory are consulted.
func loadDotEnv() {
	_ = godotenv.Load()
	if dir, err := Dir(); err == nil {
		_ = godotenv.Load(filepath.Join(dir, ".env"))
	}
}

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := PathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := PathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	// Defaults only (with any load error for informational purposes)
	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// finishLoad applies the override/migrate/default/validate pipeline every
// load path shares.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. The extension selects the format; TOML is the default.
func LoadFromPath(path string) (*Config, error) {
	loadDotEnv()

	cfg := Default()
	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := PathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write
// only).
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Ensure permissions are correct even if the file already existed.
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# inkwell configuration file")
	fmt.Fprintln(file, "# Generated by inkwell - edit with care")
	fmt.Fprintln(file, "#")
	fmt.Fprintln(file, "# Documentation: https://github.com/jeranaias/inkwell-tui")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// SECURITY: Creates config files with 0600 permissions (owner read/write
// only).
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
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

	// Backend
	if c.Backend.BaseURL != "" {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "backend.base_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{
				Field:   "backend.base_url",
				Message: fmt.Sprintf("scheme must be http or https, got %q", u.Scheme),
			})
		}
	}
	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be 1-600 seconds, got %d", c.Backend.TimeoutSecs),
		})
	}
	if c.Backend.MaxRetries < 0 || c.Backend.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "backend.max_retries",
			Message: fmt.Sprintf("must be 0-10, got %d", c.Backend.MaxRetries),
		})
	}
	if c.Backend.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_limit_rps",
			Message: "cannot be negative",
		})
	}
	if c.Backend.RateBurst < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.rate_burst",
			Message: "cannot be negative",
		})
	}

	// Chat
	validSizes := map[string]bool{"small": true, "medium": true, "large": true}
	if !validSizes[strings.ToLower(c.Chat.TextSize)] {
		errs = append(errs, ValidationError{
			Field:   "chat.text_size",
			Message: fmt.Sprintf("invalid size '%s', must be one of: small, medium, large", c.Chat.TextSize),
		})
	}

	// Appearance
	if c.Appearance.MarkdownWidth != 0 && (c.Appearance.MarkdownWidth < 40 || c.Appearance.MarkdownWidth > 400) {
		errs = append(errs, ValidationError{
			Field:   "appearance.markdown_width",
			Message: fmt.Sprintf("must be 0 (terminal width) or 40-400, got %d", c.Appearance.MarkdownWidth),
		})
	}
	for name, color := range c.Appearance.CustomColors {
		if !isHexColor(color) {
			errs = append(errs, ValidationError{
				Field:   "appearance.custom_colors." + name,
				Message: fmt.Sprintf("invalid color '%s', must be #RGB or #RRGGBB", color),
			})
		}
	}

	// Search
	if c.Search.PageSize < 1 || c.Search.PageSize > 100 {
		errs = append(errs, ValidationError{
			Field:   "search.page_size",
			Message: fmt.Sprintf("must be 1-100, got %d", c.Search.PageSize),
		})
	}

	// Log
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "off": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error, off", c.Log.Level),
		})
	}

	// Lock
	if c.Lock.Enabled && c.Lock.Issuer == "" {
		errs = append(errs, ValidationError{
			Field:   "lock.issuer",
			Message: "required when the lock is enabled",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// isHexColor reports whether s is a #RGB or #RRGGBB hex color.
func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// SetDefaults sets default values for any missing or zero-value
// configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	// Backend
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = defaults.Backend.BaseURL
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if c.Backend.RateBurst == 0 && c.Backend.RateLimitRPS != 0 {
		c.Backend.RateBurst = defaults.Backend.RateBurst
	}

	// Chat
	if c.Chat.TextSize == "" {
		c.Chat.TextSize = defaults.Chat.TextSize
	}

	// Appearance
	if c.Appearance.Theme == "" {
		c.Appearance.Theme = defaults.Appearance.Theme
	}

	// Search
	if c.Search.PageSize == 0 {
		c.Search.PageSize = defaults.Search.PageSize
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}

	// Lock
	if c.Lock.Issuer == "" {
		c.Lock.Issuer = defaults.Lock.Issuer
	}
}

// Migrate handles migration from old configuration formats to new ones.
func (c *Config) Migrate() error {
	// Theme names gained the inkwell- prefix when light mode shipped.
	switch strings.ToLower(c.Appearance.Theme) {
	case "dark":
		c.Appearance.Theme = "inkwell-dark"
	case "light":
		c.Appearance.Theme = "inkwell-light"
	}

	// "warning" was accepted by earlier releases.
	if strings.EqualFold(c.Log.Level, "warning") {
		c.Log.Level = "warn"
	}

	// Normalize the base URL so path joins behave.
	c.Backend.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Backend.BaseURL), "/")

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - INKWELL_BACKEND_URL: overrides backend.base_url
//   - INKWELL_API_KEY: overrides backend.api_key
//   - INKWELL_STREAMING: "1"/"true" or "0"/"false" toggles chat.streaming
//   - INKWELL_PERSONA: overrides chat.default_persona_id
//   - INKWELL_THEME: overrides appearance.theme
//   - INKWELL_EDITOR: overrides editor.command
//   - INKWELL_SEMANTIC: "1"/"true" toggles search.semantic
//   - INKWELL_LOG_LEVEL: overrides log.level
//   - INKWELL_LOG_FILE: overrides log.file
//   - INKWELL_LOCK: "1"/"true" toggles lock.enabled
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("INKWELL_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}

	if v := os.Getenv("INKWELL_API_KEY"); v != "" {
		c.Backend.APIKey = v
	}

	if v := os.Getenv("INKWELL_STREAMING"); v != "" {
		c.Chat.Streaming = envBool(v)
	}

	if v := os.Getenv("INKWELL_PERSONA"); v != "" {
		c.Chat.DefaultPersonaID = v
	}

	if v := os.Getenv("INKWELL_THEME"); v != "" {
		c.Appearance.Theme = v
	}

	if v := os.Getenv("INKWELL_EDITOR"); v != "" {
		c.Editor.Command = v
	}

	if v := os.Getenv("INKWELL_SEMANTIC"); v != "" {
		c.Search.Semantic = envBool(v)
	}

	if v := os.Getenv("INKWELL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	if v := os.Getenv("INKWELL_LOG_FILE"); v != "" {
		c.Log.File = v
	}

	if v := os.Getenv("INKWELL_LOCK"); v != "" {
		c.Lock.Enabled = envBool(v)
	}
}

// envBool interprets an environment toggle.
func envBool(v string) bool {
	return v == "1" || strings.ToLower(v) == "true" || strings.ToLower(v) == "yes"
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g.,
// "appearance.theme").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g.,
// "appearance.theme").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go
// field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type
// conversion. String inputs are parsed toward the field's kind so `/config
// set backend.timeout_secs 90` works from the command line.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			field.SetBool(envBool(strVal))
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"backend.base_url",
		"backend.api_key",
		"backend.timeout_secs",
		"backend.max_retries",
		"backend.rate_limit_rps",
		"backend.rate_burst",
		"chat.streaming",
		"chat.default_persona_id",
		"chat.text_size",
		"appearance.theme",
		"appearance.custom_colors",
		"appearance.markdown_width",
		"editor.command",
		"search.semantic",
		"search.page_size",
		"log.level",
		"log.file",
		"lock.enabled",
		"lock.issuer",
	}
}

// Clone creates a deep copy of the configuration.
// The CustomColors map is copied so theme edits on a working copy never
// leak into the config other views are rendering from.
func (c *Config) Clone() *Config {
	clone := *c

	if c.Appearance.CustomColors != nil {
		clone.Appearance.CustomColors = make(map[string]string, len(c.Appearance.CustomColors))
		for k, v := range c.Appearance.CustomColors {
			clone.Appearance.CustomColors[k] = v
		}
	}

	return &clone
}

// String returns a string representation of the config for debugging.
// SECURITY: Redacts the API key so it never reaches logs or debug output.
func (c *Config) String() string {
	safe := c.Clone()

	if safe.Backend.APIKey != "" {
		safe.Backend.APIKey = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			// Fall back to defaults rather than failing startup.
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
// This should only be used in tests to reset state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
