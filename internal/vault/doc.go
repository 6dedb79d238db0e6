// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package vault provides encryption at rest for inkwell secrets.
//
// Two secrets flow through it: the backend API key (stored as ENC:
// ciphertext inside config.toml) and the TOTP journal-lock secret
// (stored in lock.json). The cipher is AES-256-GCM with a key derived
// by PBKDF2-SHA-256 from machine-local key material under ~/.inkwell/.
//
// # Key Types
//
//   - Vault: AES-256-GCM cipher over per-vault key material
//   - Lock: TOTP enrollment and verification gating the TUI
//
// # Usage
//
// Encrypt the API key during setup:
//
//	v, err := vault.Open()
//	if !v.Initialized() {
//	    err = v.Init()
//	}
//	cfg.Backend.APIKey, err = v.EncryptString(plainKey)
//
// Reveal it at startup (plaintext values pass through, so the vault is
// opt-in):
//
//	key, err := v.DecryptString(cfg.Backend.APIKey)
//
// Gate the TUI behind the journal lock:
//
//	lock, err := vault.NewLock(v, "")
//	if lock.Enrolled() {
//	    ok, err := lock.Verify(code)
//	}
//
// # Security
//
// Key material lives in 0600 files inside a 0700 directory. The vault
// protects secrets from leaking through config backups and dotfile
// repos; it is not a defense against an attacker with full read access
// to the home directory.
package vault
