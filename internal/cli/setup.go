// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - First-run wizard and setup commands for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: setup
// Short:   First-run setup wizard
// Aliases: init, wizard
//
// Examples:
//   inkwell setup                 Run interactive setup wizard
//   inkwell setup --quick         Accept defaults, just check the backend
//   inkwell setup backend         Re-run only the connection step
//
// The setup wizard walks through:
//   1. Backend connection (URL and API key)
//   2. Key encryption via the local vault
//   3. Conversation defaults (streaming, persona)
//   4. Appearance (theme)
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/jeranaias/inkwell-tui/internal/api"
	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/ui/styles"
	"github.com/jeranaias/inkwell-tui/internal/vault"
)

// setupPingTimeout bounds each connectivity probe inside the wizard.
const setupPingTimeout = 5 * time.Second

// WizardConfig holds the answers collected by the setup wizard before
// they are folded into the config file.
type WizardConfig struct {
	BaseURL    string
	APIKey     string
	EncryptKey bool
	Streaming  bool
	PersonaID  string
	Theme      string
}

// =============================================================================
// SETUP COMMAND HANDLER
// =============================================================================

// HandleSetup handles the "setup" command.
// Modes:
//   - setup: Full interactive wizard
//   - setup --quick: Minimal setup with defaults
//   - setup backend: Connection step only
func HandleSetup(args Args) error {
	quick := false
	for _, arg := range args.Raw {
		if arg == "--quick" {
			quick = true
			break
		}
	}

	switch args.Subcommand {
	case "":
		if quick {
			return runQuickSetup()
		}
		return runFullWizard()
	case "quick":
		return runQuickSetup()
	case "backend":
		return runBackendSetup()
	case "wizard":
		return runFullWizard()
	default:
		return ErrInvalidArgument("subcommand", args.Subcommand,
			"expected quick, backend, or wizard")
	}
}

// =============================================================================
// FULL WIZARD
// =============================================================================

// runFullWizard runs the complete interactive setup wizard.
func runFullWizard() error {
	if err := RequiresTTY("setup"); err != nil {
		return err
	}

	wiz := &WizardConfig{Streaming: true, Theme: styles.ThemeDark}

	fmt.Println()
	fmt.Println("inkwell Setup")
	fmt.Println(strings.Repeat("=", 13))
	fmt.Println("A few questions and your journal is ready.")
	fmt.Println()

	// Step 1: Backend Connection
	fmt.Println("Step 1: Backend Connection")
	fmt.Println(strings.Repeat("-", 26))

	wiz.BaseURL = promptInputWithDefault("Backend URL", api.DefaultBaseURL)
	reachable := pingWithSpinner(api.NewClient().WithBaseURL(wiz.BaseURL))
	if !reachable {
		fmt.Println("  The backend did not answer. You can keep going and fix")
		fmt.Println("  the URL later with: inkwell config set backend.base_url <url>")
		if !promptYesNo("Continue anyway?", true) {
			fmt.Println("Cancelled.")
			return nil
		}
	}
	fmt.Println()

	// Step 2: API Key
	fmt.Println("Step 2: API Key (optional)")
	fmt.Println(strings.Repeat("-", 26))
	wiz.APIKey = promptSecure("API key (press Enter to skip)")
	if wiz.APIKey != "" {
		if reachable {
			verifyKeyWithSpinner(wiz.BaseURL, wiz.APIKey)
		}
		wiz.EncryptKey = promptYesNo("Encrypt the key on disk?", true)
	}
	fmt.Println()

	// Step 3: Conversation
	fmt.Println("Step 3: Conversation")
	fmt.Println(strings.Repeat("-", 20))
	wiz.Streaming = promptYesNo("Stream replies as they are written?", true)
	if reachable {
		wiz.PersonaID = choosePersona(wiz.BaseURL, wiz.APIKey)
	}
	fmt.Println()

	// Step 4: Appearance
	fmt.Println("Step 4: Appearance")
	fmt.Println(strings.Repeat("-", 18))
	wiz.Theme = chooseTheme()
	fmt.Println()

	configPath, err := saveWizardConfig(wiz)
	if err != nil {
		return NewCommandError("setup", "save", "could not write config", err)
	}

	fmt.Println("Setup Complete!")
	fmt.Println(strings.Repeat("=", 15))
	fmt.Printf("Config saved to %s\n", configPath)
	fmt.Println("Run 'inkwell' to open your journal.")
	fmt.Println()

	return nil
}

// =============================================================================
// QUICK SETUP
// =============================================================================

// runQuickSetup accepts every default and only probes the backend.
func runQuickSetup() error {
	fmt.Println()
	fmt.Println("inkwell Quick Setup")
	fmt.Println(strings.Repeat("=", 19))
	fmt.Println()

	cfg := LoadConfigLenient()
	reachable := pingWithSpinner(BuildClient(cfg))

	if err := config.Save(cfg); err != nil {
		return NewCommandError("setup", "save", "could not write config", err)
	}

	fmt.Println()
	fmt.Println("Quick Setup Complete!")
	fmt.Println(strings.Repeat("=", 20))
	fmt.Printf("  Backend:   %s\n", cfg.Backend.BaseURL)
	fmt.Printf("  Reachable: %s\n", boolString(reachable))
	fmt.Printf("  Streaming: %s\n", boolString(cfg.Chat.Streaming))
	fmt.Printf("  Theme:     %s\n", cfg.Appearance.Theme)
	fmt.Printf("  Config:    %s\n", ConfigPath())
	fmt.Println()
	fmt.Println("Run 'inkwell' to start!")
	fmt.Println()

	return nil
}

// =============================================================================
// BACKEND SETUP
// =============================================================================

// runBackendSetup re-runs only the connection step, leaving every other
// setting alone.
func runBackendSetup() error {
	if err := RequiresTTY("setup backend"); err != nil {
		return err
	}

	cfg := LoadConfigLenient()

	fmt.Println()
	fmt.Println("inkwell Backend Setup")
	fmt.Println(strings.Repeat("=", 21))
	fmt.Println()

	cfg.Backend.BaseURL = promptInputWithDefault("Backend URL", cfg.Backend.BaseURL)
	pingWithSpinner(api.NewClient().WithBaseURL(cfg.Backend.BaseURL))

	key := promptSecure("API key (press Enter to keep current)")
	if key != "" {
		encrypt := promptYesNo("Encrypt the key on disk?", true)
		stored := key
		if encrypt {
			var err error
			stored, err = encryptWithVaultInit(key)
			if err != nil {
				return NewCommandError("setup", "encrypt", "could not encrypt the key", err)
			}
		}
		cfg.Backend.APIKey = stored
	}

	if err := config.Save(cfg); err != nil {
		return NewCommandError("setup", "save", "could not write config", err)
	}

	fmt.Println()
	fmt.Printf("%s Backend configuration saved\n", SuccessStyle.Render("[OK]"))
	fmt.Println()
	return nil
}

// =============================================================================
// WIZARD STEPS
// =============================================================================

// pingWithSpinner probes the backend and reports the result.
func pingWithSpinner(client *api.Client) bool {
	reachable := false

	runWithSpinner("Checking the backend", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), setupPingTimeout)
		defer cancel()
		if err := client.Ping(ctx); err != nil {
			return err
		}
		reachable = true
		return nil
	})

	if reachable {
		fmt.Println("  Backend is up")
	} else {
		fmt.Println("  Backend is not answering")
	}
	return reachable
}

// verifyKeyWithSpinner checks that the key authenticates.
func verifyKeyWithSpinner(baseURL, key string) {
	authed := false

	runWithSpinner("Verifying the key", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), setupPingTimeout)
		defer cancel()
		client := api.NewClient().WithBaseURL(baseURL).WithAPIKey(key)
		if err := client.Ping(ctx); err != nil {
			return err
		}
		authed = true
		return nil
	})

	if authed {
		fmt.Println("  Key accepted")
	} else {
		fmt.Println("  Key was rejected; saved anyway so you can correct it later")
	}
}

// choosePersona offers the backend's personas. Returns "" when the
// backend default should be kept.
func choosePersona(baseURL, key string) string {
	client := api.NewClient().WithBaseURL(baseURL).WithAPIKey(key)

	ctx, cancel := context.WithTimeout(context.Background(), setupPingTimeout)
	defer cancel()

	personas, err := client.ListPersonas(ctx)
	if err != nil || len(personas) == 0 {
		return ""
	}

	shown := personas
	if len(shown) > 4 {
		shown = shown[:4]
	}

	fmt.Println("Companion personas:")
	fmt.Println("  [1] Backend default")
	for i, p := range shown {
		fmt.Printf("  [%d] %s - %s\n", i+2, p.Name, truncateLine(p.Description, 48))
	}
	fmt.Println()

	options := make([]string, len(shown)+1)
	for i := range options {
		options[i] = strconv.Itoa(i + 1)
	}
	choice := promptChoice("Select persona", options, 0)
	if choice == 0 {
		return ""
	}
	return shown[choice-1].ID
}

// chooseTheme offers the built-in themes.
func chooseTheme() string {
	themes := styles.ThemeNames()

	fmt.Println("Themes:")
	for i, name := range themes {
		fmt.Printf("  [%d] %s\n", i+1, name)
	}
	fmt.Println()

	options := make([]string, len(themes))
	for i := range options {
		options[i] = strconv.Itoa(i + 1)
	}
	choice := promptChoice("Select theme", options, 0)
	return themes[choice]
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// saveWizardConfig folds the wizard's answers into the existing config
// so settings the wizard never asks about survive a re-run.
func saveWizardConfig(wiz *WizardConfig) (string, error) {
	cfg := LoadConfigLenient()

	cfg.Backend.BaseURL = wiz.BaseURL
	if wiz.APIKey != "" {
		stored := wiz.APIKey
		if wiz.EncryptKey {
			var err error
			stored, err = encryptWithVaultInit(wiz.APIKey)
			if err != nil {
				return "", err
			}
		}
		cfg.Backend.APIKey = stored
	}
	cfg.Chat.Streaming = wiz.Streaming
	cfg.Chat.DefaultPersonaID = wiz.PersonaID
	cfg.Appearance.Theme = wiz.Theme

	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if err := config.Save(cfg); err != nil {
		return "", err
	}
	return ConfigPath(), nil
}

// encryptWithVaultInit encrypts a secret, initializing the vault on
// first use.
func encryptWithVaultInit(value string) (string, error) {
	v, err := vault.Open()
	if err != nil {
		return "", err
	}
	if !v.Initialized() {
		if err := v.Init(); err != nil {
			return "", err
		}
	}
	return v.EncryptString(value)
}

// IsFirstRun reports whether no config file exists yet. The TUI uses
// this to point newcomers at the wizard.
func IsFirstRun() bool {
	tomlPath, err := config.PathTOML()
	if err != nil {
		return true
	}
	jsonPath, err := config.PathJSON()
	if err != nil {
		return true
	}

	_, tomlErr := os.Stat(tomlPath)
	_, jsonErr := os.Stat(jsonPath)
	return os.IsNotExist(tomlErr) && os.IsNotExist(jsonErr)
}

// =============================================================================
// INPUT HELPERS
// =============================================================================

var inputReader = bufio.NewReader(os.Stdin)
var inputMutex sync.Mutex

// setupPromptInput reads a line from stdin (for setup wizard).
func setupPromptInput(prompt string) string {
	inputMutex.Lock()
	defer inputMutex.Unlock()

	fmt.Print(prompt)
	line, err := inputReader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

// promptInputWithDefault reads with a default value shown.
func promptInputWithDefault(prompt, defaultVal string) string {
	if defaultVal != "" {
		prompt = fmt.Sprintf("%s [%s]: ", prompt, defaultVal)
	} else {
		prompt = prompt + ": "
	}

	input := setupPromptInput(prompt)
	if input == "" {
		return defaultVal
	}
	return input
}

// promptSecure prompts for sensitive input (API keys) without echoing.
// Uses golang.org/x/term for cross-platform hidden input.
func promptSecure(prompt string) string {
	inputMutex.Lock()
	defer inputMutex.Unlock()

	if prompt != "" {
		fmt.Print(prompt)
		if !strings.HasSuffix(prompt, ": ") && !strings.HasSuffix(prompt, " ") {
			fmt.Print(": ")
		}
	}

	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return ""
	}
	fmt.Println()

	return strings.TrimSpace(string(keyBytes))
}

// promptYesNo prompts for a yes/no answer.
func promptYesNo(prompt string, defaultYes bool) bool {
	suffix := "[Y/n]"
	if !defaultYes {
		suffix = "[y/N]"
	}

	input := setupPromptInput(fmt.Sprintf("%s %s: ", prompt, suffix))
	input = strings.ToLower(strings.TrimSpace(input))

	if input == "" {
		return defaultYes
	}
	return input == "y" || input == "yes"
}

// promptChoice prompts for one of the numbered options and returns the
// selected index (0-based). Empty input picks the default.
func promptChoice(prompt string, options []string, defaultIdx int) int {
	suffix := fmt.Sprintf("[%s]", options[defaultIdx])
	input := setupPromptInput(fmt.Sprintf("%s %s: ", prompt, suffix))
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultIdx
	}

	for i, opt := range options {
		if input == opt || input == strconv.Itoa(i+1) {
			return i
		}
	}
	return defaultIdx
}

// =============================================================================
// SPINNER HELPERS
// =============================================================================

// spinner shows a spinner while running a function.
func spinner(msg string, fn func() error) error {
	done := make(chan struct{})
	errChan := make(chan error, 1)
	spinChars := []rune{'|', '/', '-', '\\'}

	go func() {
		errChan <- fn()
		close(done)
	}()

	i := 0
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	fmt.Printf("  %s... ", msg)

	for {
		select {
		case <-done:
			err := <-errChan
			if err != nil {
				fmt.Println("X")
			} else {
				fmt.Println("Done")
			}
			return err
		case <-ticker.C:
			fmt.Printf("\r  %s... %c", msg, spinChars[i%len(spinChars)])
			i++
		}
	}
}

// runWithSpinner runs a function with a spinner display.
func runWithSpinner(msg string, fn func() error) error {
	return spinner(msg, fn)
}
