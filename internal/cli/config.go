// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: config [subcommand]
// Short:   View and modify configuration
// Aliases: (none)
//
// Subcommands:
//   show (default)      Display current configuration
//   get <key>           Print a single value
//   set <key> <value>   Set a configuration value
//   reset               Reset to default configuration
//   path                Show configuration file path
//
// Examples:
//   inkwell config                              Show current config (default)
//   inkwell config get appearance.theme         Print one value
//   inkwell config set backend.base_url http://localhost:8000
//   inkwell config set backend.api_key ik-xxx   Stored encrypted when the vault exists
//   inkwell config set chat.streaming false
//   inkwell config set search.semantic true
//   inkwell config set appearance.theme dusk
//   inkwell config reset                        Reset to defaults
//   inkwell config path                         Show config file location
//
// Keys use dot notation matching the TOML sections; underscores are
// accepted within a section ("backend.timeout_secs").
//
// Flags:
//   --json              Output in JSON format
package cli

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/vault"
)

// =============================================================================
// CONFIG STYLES
// =============================================================================

var (
	// Masked secret values
	configMaskedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("242"))

	// Config file path
	configPathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

// ConfigPath returns the path to the config file, or "" when the home
// directory cannot be resolved.
func ConfigPath() string {
	path, err := config.PathTOML()
	if err != nil {
		return ""
	}
	return path
}

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show", "list":
		if args.JSON {
			return handleConfigShowJSON()
		}
		return handleConfigShow()

	case "get":
		return handleConfigGet(args.ConfigKey, args.JSON)

	case "set":
		return handleConfigSet(args.ConfigKey, args.ConfigVal)

	case "reset":
		return handleConfigReset(args)

	case "path":
		if args.JSON {
			return handleConfigPathJSON()
		}
		return handleConfigPath()

	default:
		return ErrInvalidArgument("subcommand", args.Subcommand,
			"expected show, get, set, reset, or path")
	}
}

// =============================================================================
// SHOW
// =============================================================================

// handleConfigShowJSON outputs the configuration as JSON with the API
// key reduced to set/encrypted booleans.
func handleConfigShowJSON() error {
	cfg := LoadConfigLenient()

	data := ConfigData{
		Backend: ConfigBackendInfo{
			BaseURL:      cfg.Backend.BaseURL,
			APIKeySet:    cfg.Backend.APIKey != "",
			APIKeyVault:  vault.IsEncrypted(cfg.Backend.APIKey),
			TimeoutSecs:  cfg.Backend.TimeoutSecs,
			MaxRetries:   cfg.Backend.MaxRetries,
			RateLimitRPS: cfg.Backend.RateLimitRPS,
		},
		Chat: ConfigChatInfo{
			Streaming:        cfg.Chat.Streaming,
			DefaultPersonaID: cfg.Chat.DefaultPersonaID,
			TextSize:         cfg.Chat.TextSize,
		},
		Appearance: ConfigAppearanceInfo{
			Theme:         cfg.Appearance.Theme,
			MarkdownWidth: cfg.Appearance.MarkdownWidth,
		},
		Editor: ConfigEditorInfo{
			Command: cfg.Editor.Command,
		},
		Search: ConfigSearchInfo{
			Semantic: cfg.Search.Semantic,
			PageSize: cfg.Search.PageSize,
		},
		Log: ConfigLogInfo{
			Level: cfg.Log.Level,
			File:  cfg.Log.File,
		},
		Lock: ConfigLockInfo{
			Enabled: cfg.Lock.Enabled,
			Issuer:  cfg.Lock.Issuer,
		},
		Path: ConfigPath(),
	}

	resp := NewJSONResponse("config show", data)
	return resp.Print()
}

// handleConfigShow displays the current configuration grouped by
// section, the way it lays out in the TOML file.
func handleConfigShow() error {
	cfg := LoadConfigLenient()

	fmt.Println()
	fmt.Println(TitleStyle.Render("inkwell Configuration"))
	fmt.Println(RenderSeparator(41))
	fmt.Println()

	fmt.Println(SectionStyle.Render("[backend]"))
	printConfigRow("base_url:", cfg.Backend.BaseURL)
	fmt.Printf("  %s%s\n",
		LabelStyle.Render("api_key:"),
		configMaskedStyle.Render(maskConfigSecret(cfg.Backend.APIKey)))
	printConfigRow("timeout_secs:", fmt.Sprintf("%d", cfg.Backend.TimeoutSecs))
	printConfigRow("max_retries:", fmt.Sprintf("%d", cfg.Backend.MaxRetries))
	printConfigRow("rate_limit_rps:", fmt.Sprintf("%g", cfg.Backend.RateLimitRPS))
	fmt.Println()

	fmt.Println(SectionStyle.Render("[chat]"))
	printConfigRow("streaming:", boolString(cfg.Chat.Streaming))
	printConfigRow("default_persona_id:", orPlaceholder(cfg.Chat.DefaultPersonaID, "(backend default)"))
	printConfigRow("text_size:", cfg.Chat.TextSize)
	fmt.Println()

	fmt.Println(SectionStyle.Render("[appearance]"))
	printConfigRow("theme:", cfg.Appearance.Theme)
	printConfigRow("markdown_width:", fmt.Sprintf("%d", cfg.Appearance.MarkdownWidth))
	fmt.Println()

	fmt.Println(SectionStyle.Render("[editor]"))
	printConfigRow("command:", orPlaceholder(cfg.Editor.Command, "($EDITOR)"))
	fmt.Println()

	fmt.Println(SectionStyle.Render("[search]"))
	printConfigRow("semantic:", boolString(cfg.Search.Semantic))
	printConfigRow("page_size:", fmt.Sprintf("%d", cfg.Search.PageSize))
	fmt.Println()

	fmt.Println(SectionStyle.Render("[log]"))
	printConfigRow("level:", cfg.Log.Level)
	printConfigRow("file:", orPlaceholder(cfg.Log.File, "(default)"))
	fmt.Println()

	fmt.Println(SectionStyle.Render("[lock]"))
	printConfigRow("enabled:", boolString(cfg.Lock.Enabled))
	printConfigRow("issuer:", orPlaceholder(cfg.Lock.Issuer, "inkwell"))
	fmt.Println()

	fmt.Println(RenderSeparator(41))
	fmt.Printf("Config file: %s\n", configPathStyle.Render(ConfigPath()))
	fmt.Println()

	return nil
}

func printConfigRow(key, value string) {
	fmt.Printf("  %s%s\n", LabelStyle.Render(key), ValueStyle.Render(value))
}

// =============================================================================
// GET / SET
// =============================================================================

// handleConfigGet prints a single value by dot-notation key.
func handleConfigGet(key string, jsonMode bool) error {
	if key == "" {
		return ErrMissingArgument("key", "inkwell config get <key>")
	}

	cfg := LoadConfigLenient()

	key = normalizeConfigKey(key)
	value, err := cfg.Get(key)
	if err != nil {
		return ErrInvalidArgument("key", key, suggestConfigKeys(key))
	}

	if jsonMode {
		return NewJSONResponse("config get", map[string]interface{}{key: value}).Print()
	}

	display := fmt.Sprintf("%v", value)
	if isSecretConfigKey(key) {
		display = maskConfigSecret(display)
	}
	fmt.Println(display)
	return nil
}

// handleConfigSet sets a configuration value and saves the file.
func handleConfigSet(key, value string) error {
	if key == "" {
		return ErrMissingArgument("key", "inkwell config set <key> <value>")
	}
	if value == "" {
		return ErrMissingArgument("value", fmt.Sprintf("inkwell config set %s <value>", key))
	}

	cfg := LoadConfigLenient()
	key = normalizeConfigKey(key)

	// SECURITY: the API key goes through the vault when one exists, so
	// the TOML file never holds it in plaintext.
	if key == "backend.api_key" {
		stored, err := encryptIfVaulted(value)
		if err != nil {
			return NewCommandError("config", "set", "could not encrypt the key", err)
		}
		value = stored
	}

	if err := cfg.Set(key, value); err != nil {
		return ErrInvalidArgument("key", key, suggestConfigKeys(key))
	}

	if err := cfg.Validate(); err != nil {
		return NewCommandError("config", "set", "value rejected", err)
	}
	if err := config.Save(cfg); err != nil {
		return NewCommandError("config", "set", "could not save config", err)
	}

	fmt.Printf("%s %s = %s\n",
		SuccessStyle.Render("[OK]"),
		key,
		maskIfSecret(key, value))
	return nil
}

// encryptIfVaulted runs a secret through the vault when one is
// initialized. Without a vault the plaintext is stored as-is, which
// keeps first-run setups working before "inkwell lock enable".
func encryptIfVaulted(value string) (string, error) {
	v, err := vault.Open()
	if err != nil || !v.Initialized() {
		return value, nil
	}
	return v.EncryptString(value)
}

// =============================================================================
// RESET / PATH
// =============================================================================

// handleConfigReset rewrites the config file with defaults.
func handleConfigReset(args Args) error {
	ok, err := RequireConfirmation(hasYesFlag(args.Raw), "reset configuration to defaults", args.JSON)
	if err != nil {
		return err
	}
	if !ok {
		ShowCancellationMessage()
		return nil
	}

	if err := config.Save(config.Default()); err != nil {
		return NewCommandError("config", "reset", "could not save config", err)
	}

	fmt.Printf("%s Configuration reset to defaults\n", SuccessStyle.Render("[OK]"))
	fmt.Printf("Config file: %s\n", configPathStyle.Render(ConfigPath()))
	return nil
}

// handleConfigPath shows the config file path.
func handleConfigPath() error {
	path := ConfigPath()
	fmt.Println(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "%s (file does not exist - will be created on first use)\n",
			configMaskedStyle.Render("Note"))
	}
	return nil
}

// handleConfigPathJSON outputs the config path in JSON format.
func handleConfigPathJSON() error {
	path := ConfigPath()
	_, err := os.Stat(path)
	exists := !os.IsNotExist(err)

	data := map[string]interface{}{
		"path":   path,
		"exists": exists,
	}
	return NewJSONResponse("config path", data).Print()
}

// =============================================================================
// HELPERS
// =============================================================================

// normalizeConfigKey lowercases a key and tolerates one underscore used
// in place of the section dot ("backend_base_url").
func normalizeConfigKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if strings.Contains(key, ".") {
		return key
	}
	if i := strings.IndexByte(key, '_'); i > 0 {
		section := key[:i]
		for _, known := range config.GetAllKeys() {
			if strings.HasPrefix(known, section+".") {
				return section + "." + key[i+1:]
			}
		}
	}
	return key
}

// suggestConfigKeys builds the reason string for an unknown key,
// listing near matches when the section exists.
func suggestConfigKeys(key string) string {
	section, _, found := strings.Cut(key, ".")
	if found {
		var near []string
		for _, known := range config.GetAllKeys() {
			if strings.HasPrefix(known, section+".") {
				near = append(near, known)
			}
		}
		if len(near) > 0 {
			sort.Strings(near)
			return "unknown key; keys in that section: " + strings.Join(near, ", ")
		}
	}
	return "unknown key; run 'inkwell config' to see all keys"
}

// maskConfigSecret masks a secret for display. Vault ciphertext shows
// as encrypted; plaintext shows only a SHA-256 fingerprint so the
// terminal scrollback never carries key prefixes.
func maskConfigSecret(value string) string {
	if value == "" {
		return "(not set)"
	}
	if vault.IsEncrypted(value) {
		return "(encrypted in vault)"
	}
	hash := sha256.Sum256([]byte(value))
	return fmt.Sprintf("sha256:%x...", hash[:4])
}

// maskIfSecret masks the value if the key names a secret field.
func maskIfSecret(key, value string) string {
	if isSecretConfigKey(key) {
		return maskConfigSecret(value)
	}
	return value
}

// isSecretConfigKey reports whether a key's value must never print.
func isSecretConfigKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, s := range []string{"key", "secret", "token", "password"} {
		if strings.Contains(keyLower, s) {
			return true
		}
	}
	return false
}

// boolString renders a bool the way the TOML file spells it.
func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// orPlaceholder substitutes a dim placeholder for empty values.
func orPlaceholder(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}

// hasYesFlag scans raw args for --yes/-y without a full parse, for
// commands whose flags are otherwise positional.
func hasYesFlag(raw []string) bool {
	for _, a := range raw {
		if a == "--yes" || a == "-y" {
			return true
		}
	}
	return false
}
