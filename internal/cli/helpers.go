// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared helpers for the inkwell CLI commands.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/vault"
)

// =============================================================================
// CLIENT CONSTRUCTION
// =============================================================================

// LoadConfigLenient loads the configuration, falling back to defaults
// when no config file exists yet. Commands that only read (status,
// sessions list) should keep working on a fresh machine.
func LoadConfigLenient() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.Default()
	}
	return cfg
}

// BuildClient constructs an API client from configuration. A stored
// "ENC:" API key is decrypted through the vault; when the vault cannot
// open, the key is sent as-is and the backend rejects it with a clear
// auth error rather than a confusing local one.
func BuildClient(cfg *config.Config) *api.Client {
	key := cfg.Backend.APIKey
	if vault.IsEncrypted(key) {
		if v, err := vault.Open(); err == nil {
			if plain, err := v.DecryptString(key); err == nil {
				key = plain
			}
		}
	}

	return api.NewClient().
		WithBaseURL(cfg.Backend.BaseURL).
		WithAPIKey(key).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs)*time.Second).
		WithMaxRetries(cfg.Backend.MaxRetries).
		WithRateLimit(cfg.Backend.RateLimitRPS, cfg.Backend.RateBurst)
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// formatCLIDuration formats a duration for terse CLI display.
// Examples: "340ms", "2.1s", "1m05s", "3h12m"
func formatCLIDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

// formatBytes formats a byte count for human display.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

// formatRelativeTime renders a timestamp relative to now for list rows.
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// truncateLine shortens s to max runes for single-line list display.
func truncateLine(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// =============================================================================
// INPUT HELPERS
// =============================================================================

// promptInput reads one line from stdin with a visible prompt.
func promptInput(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(input)
}

// =============================================================================
// OUTPUT PATH VALIDATION
// =============================================================================

// ValidateOutputPath checks that an export target stays inside the
// directory the user named and does not clobber anything unexpected.
// SECURITY: rejects path traversal in user-supplied output locations.
func ValidateOutputPath(path string) error {
	if path == "" {
		return fmt.Errorf("output path is empty")
	}

	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "..") {
		return fmt.Errorf("output path must not contain '..': %s", path)
	}

	abs, err := filepath.Abs(cleaned)
	if err != nil {
		return fmt.Errorf("cannot resolve output path: %w", err)
	}

	// The parent must exist; the leaf may not yet.
	parent := filepath.Dir(abs)
	info, err := os.Stat(parent)
	if err != nil {
		return fmt.Errorf("output directory does not exist: %s", parent)
	}
	if !info.IsDir() {
		return fmt.Errorf("output parent is not a directory: %s", parent)
	}

	return nil
}
