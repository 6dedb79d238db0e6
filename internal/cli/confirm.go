// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Confirmation prompts for destructive CLI actions.
//
// USABILITY: TTY detection for proper terminal handling
//
// Every destructive command follows one pattern:
//  1. If --yes was passed, proceed without prompting
//  2. In --json mode, --yes is required (no interactive prompts)
//  3. If stdin is not a TTY, --yes is required (cannot prompt)
//  4. Otherwise, prompt interactively
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RequireConfirmation checks that the user has confirmed a destructive
// action, prompting when possible.
func RequireConfirmation(yesFlag bool, action string, jsonMode bool) (bool, error) {
	if yesFlag {
		return true, nil
	}

	if jsonMode {
		return false, fmt.Errorf("confirmation required: use --yes for destructive actions in JSON mode")
	}

	if !IsTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --yes")
	}

	fmt.Printf("Are you sure you want to %s? [y/N]: ", action)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	response := strings.ToLower(strings.TrimSpace(input))
	return response == "y" || response == "yes", nil
}

// ConfirmDangerousAction requires typing an exact phrase. Used for
// actions that destroy more than one thing at once, like deleting
// every conversation.
func ConfirmDangerousAction(yesFlag bool, action, confirmPhrase string, jsonMode bool) (bool, error) {
	if yesFlag {
		return true, nil
	}

	if jsonMode {
		return false, fmt.Errorf("confirmation required: use --yes for destructive actions in JSON mode")
	}

	if !IsTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --yes")
	}

	fmt.Println()
	fmt.Printf("You are about to %s\n", ErrorStyle.Render(action))
	fmt.Println(DimStyle.Render("This cannot be undone."))
	fmt.Println()
	fmt.Printf("To confirm, type '%s': ", confirmPhrase)

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	confirmed := strings.TrimSpace(input) == confirmPhrase
	if !confirmed {
		fmt.Println(DimStyle.Render("Confirmation phrase did not match. Cancelled."))
	}

	return confirmed, nil
}

// ShowCancellationMessage displays a standard cancellation message
// after a confirmation returns false.
func ShowCancellationMessage() {
	fmt.Println(DimStyle.Render("Cancelled."))
}
