// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// lock_cmd.go - Journal lock commands for inkwell.
//
// CLI: Comprehensive help and examples for all commands
//
// Command: lock
// Short:   Gate the journal behind a TOTP challenge
//
// Subcommands:
//   status (default)    Show lock state
//   enable              Enroll a TOTP secret and turn the lock on
//   verify [code]       Check a code against the enrolled secret
//   disable             Remove the enrollment and turn the lock off
//
// Examples:
//   inkwell lock                  Show lock state
//   inkwell lock enable           Enroll with your authenticator app
//   inkwell lock verify 123456    Check a code
//   inkwell lock disable --yes    Turn the lock off
//
// SECURITY: the TOTP secret is stored encrypted by the local vault;
// enable initializes the vault on first use. The lock keeps casual
// eyes out of a shared terminal. It is not full-disk encryption.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/vault"
)

// enrollAttempts is how many codes the user may try before a fresh
// enrollment is rolled back.
const enrollAttempts = 3

// =============================================================================
// LOCK COMMAND HANDLER
// =============================================================================

// HandleLock handles the "lock" command and its subcommands.
func HandleLock(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "status":
		return handleLockStatus(args)
	case "enable":
		return handleLockEnable(parser, args)
	case "verify":
		return handleLockVerify(parser, args)
	case "disable":
		return handleLockDisable(parser, args)
	default:
		return ErrInvalidArgument("subcommand", parser.Subcommand(),
			"expected status, enable, verify, or disable")
	}
}

// openLock opens the vault and the lock record under the data dir.
func openLock() (*vault.Vault, *vault.Lock, error) {
	v, err := vault.Open()
	if err != nil {
		return nil, nil, NewCommandError("lock", "open", "could not open the vault", err)
	}
	lock, err := vault.NewLock(v, "")
	if err != nil {
		return nil, nil, NewCommandError("lock", "open", "could not resolve the lock path", err)
	}
	return v, lock, nil
}

// =============================================================================
// STATUS
// =============================================================================

func handleLockStatus(args Args) error {
	cfg := LoadConfigLenient()
	_, lock, err := openLock()
	if err != nil {
		return err
	}

	enrolled := lock.Enrolled()

	if args.JSON {
		data := map[string]interface{}{
			"enabled":  cfg.Lock.Enabled,
			"enrolled": enrolled,
		}
		if enrolled {
			if record, err := lock.Record(); err == nil {
				data["issuer"] = record.Issuer
				data["account"] = record.Account
				data["enrolled_at"] = record.EnrolledAt
			}
		}
		return NewJSONResponse("lock status", data).Print()
	}

	fmt.Println(TitleStyle.Render("Journal Lock"))
	state := "off"
	if cfg.Lock.Enabled && enrolled {
		state = "on"
	} else if enrolled {
		state = "enrolled but off"
	}
	fmt.Printf("%s%s\n", RenderLabel("State:", 12), ValueStyle.Render(state))

	if enrolled {
		if record, err := lock.Record(); err == nil {
			fmt.Printf("%s%s\n", RenderLabel("Issuer:", 12), ValueStyle.Render(record.Issuer))
			fmt.Printf("%s%s\n", RenderLabel("Account:", 12), ValueStyle.Render(record.Account))
			fmt.Printf("%s%s\n", RenderLabel("Enrolled:", 12), ValueStyle.Render(formatRelativeTime(record.EnrolledAt)))
		}
	} else {
		fmt.Println(DimStyle.Render("No enrollment. Run 'inkwell lock enable' to set one up."))
	}
	return nil
}

// =============================================================================
// ENABLE
// =============================================================================

func handleLockEnable(parser *ArgParser, args Args) error {
	if err := RequiresTTY("lock enable"); err != nil {
		return err
	}

	cfg := LoadConfigLenient()
	v, lock, err := openLock()
	if err != nil {
		return err
	}

	if lock.Enrolled() {
		ok, err := RequireConfirmation(parser.BoolFlag("yes"),
			"replace the existing enrollment (old codes stop working)", args.JSON)
		if err != nil {
			return err
		}
		if !ok {
			ShowCancellationMessage()
			return nil
		}
	}

	if !v.Initialized() {
		if err := v.Init(); err != nil {
			return NewCommandError("lock", "enable", "could not initialize the vault", err)
		}
	}

	issuer := cfg.Lock.Issuer
	if issuer == "" {
		issuer = "inkwell"
	}
	account := os.Getenv("USER")
	if account == "" {
		account = "journal"
	}

	key, err := lock.Enroll(issuer, account)
	if err != nil {
		return NewCommandError("lock", "enable", "enrollment failed", err)
	}

	fmt.Println(TitleStyle.Render("Journal Lock Enrollment"))
	fmt.Println("Add this to your authenticator app:")
	fmt.Println()
	fmt.Printf("  %s\n", HighlightStyle.Render(key.URL()))
	fmt.Println()
	fmt.Printf("  Secret (manual entry): %s\n", ValueStyle.Render(key.Secret()))
	fmt.Println()

	// The lock only turns on after one code round-trips, so a typo'd
	// enrollment cannot lock the journal permanently.
	verified := false
	for attempt := 1; attempt <= enrollAttempts; attempt++ {
		code := promptInput("Enter the 6-digit code from your app: ")
		ok, err := lock.Verify(code)
		if err != nil {
			return NewCommandError("lock", "enable", "verification failed", err)
		}
		if ok {
			verified = true
			break
		}
		fmt.Println(WarningStyle.Render("That code did not match."))
	}

	if !verified {
		if err := lock.Disable(); err != nil {
			return NewCommandError("lock", "enable", "could not roll back enrollment", err)
		}
		return fmt.Errorf("no valid code after %d attempts; enrollment rolled back", enrollAttempts)
	}

	cfg.Lock.Enabled = true
	cfg.Lock.Issuer = issuer
	if err := config.Save(cfg); err != nil {
		return NewCommandError("lock", "enable", "could not save config", err)
	}

	fmt.Println()
	fmt.Println(SuccessStyle.Render("[OK] ") + "Journal lock is on. inkwell will ask for a code at startup.")
	return nil
}

// =============================================================================
// VERIFY
// =============================================================================

func handleLockVerify(parser *ArgParser, args Args) error {
	_, lock, err := openLock()
	if err != nil {
		return err
	}

	code := parser.Positional(1)
	if code == "" {
		if err := RequiresTTY("lock verify"); err != nil {
			return err
		}
		code = promptInput("Enter the 6-digit code: ")
	}

	ok, err := lock.Verify(code)
	if err != nil {
		if errors.Is(err, vault.ErrNotEnrolled) {
			return NewCommandError("lock", "verify", "no enrollment",
				errors.New("run 'inkwell lock enable' first"))
		}
		return NewCommandError("lock", "verify", "verification failed", err)
	}

	if args.JSON {
		return NewJSONResponse("lock verify", map[string]bool{"valid": ok}).Print()
	}

	if !ok {
		fmt.Println(ErrorStyle.Render("[FAIL] ") + "Code rejected")
		return errors.New("code rejected")
	}
	fmt.Println(SuccessStyle.Render("[OK] ") + "Code accepted")
	return nil
}

// =============================================================================
// DISABLE
// =============================================================================

func handleLockDisable(parser *ArgParser, args Args) error {
	cfg := LoadConfigLenient()
	_, lock, err := openLock()
	if err != nil {
		return err
	}

	if !lock.Enrolled() && !cfg.Lock.Enabled {
		fmt.Println(DimStyle.Render("The journal lock is already off."))
		return nil
	}

	ok, err := RequireConfirmation(parser.BoolFlag("yes"), "disable the journal lock", args.JSON)
	if err != nil {
		return err
	}
	if !ok {
		ShowCancellationMessage()
		return nil
	}

	if err := lock.Disable(); err != nil {
		return NewCommandError("lock", "disable", "could not remove enrollment", err)
	}

	cfg.Lock.Enabled = false
	if err := config.Save(cfg); err != nil {
		return NewCommandError("lock", "disable", "could not save config", err)
	}

	fmt.Println(SuccessStyle.Render("[OK] ") + "Journal lock is off.")
	return nil
}
