// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// JOURNAL LOCK
// =============================================================================

// LockFileName is the enrollment record under the inkwell data directory.
const LockFileName = "lock.json"

// ErrNotEnrolled indicates no TOTP lock has been set up.
var ErrNotEnrolled = errors.New("journal lock not enrolled")

// LockRecord is the persisted enrollment. The secret is vault
// ciphertext, never plaintext.
type LockRecord struct {
	Secret     string    `json:"secret"`
	Issuer     string    `json:"issuer"`
	Account    string    `json:"account"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// Lock gates the TUI behind a TOTP challenge. Enrollment generates a
// standard otpauth secret the user adds to any authenticator app; the
// secret is stored encrypted by the vault.
type Lock struct {
	vault *Vault
	path  string
}

// DefaultLockPath returns ~/.inkwell/lock.json.
func DefaultLockPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, LockFileName), nil
}

// NewLock creates a lock backed by the given vault. An empty path uses
// the default location.
func NewLock(v *Vault, path string) (*Lock, error) {
	if path == "" {
		var err error
		path, err = DefaultLockPath()
		if err != nil {
			return nil, err
		}
	}
	return &Lock{vault: v, path: path}, nil
}

// Enrolled returns true if a lock record exists.
func (l *Lock) Enrolled() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Enroll generates a new TOTP secret and persists it encrypted. The
// returned key carries the otpauth URL the user adds to their
// authenticator app. Any existing enrollment is replaced.
func (l *Lock) Enroll(issuer, account string) (*otp.Key, error) {
	if !l.vault.Initialized() {
		return nil, ErrNotInitialized
	}
	if issuer == "" {
		issuer = "inkwell"
	}
	if account == "" {
		account = "journal"
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	encrypted, err := l.vault.EncryptString(key.Secret())
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt TOTP secret: %w", err)
	}

	record := LockRecord{
		Secret:     encrypted,
		Issuer:     issuer,
		Account:    account,
		EnrolledAt: time.Now(),
	}
	data, err := json.MarshalIndent(&record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lock record: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(l.path, data, 0600, 0700); err != nil {
		return nil, fmt.Errorf("failed to write lock record: %w", err)
	}
	return key, nil
}

// Verify checks a TOTP code against the enrolled secret.
func (l *Lock) Verify(code string) (bool, error) {
	record, err := l.load()
	if err != nil {
		return false, err
	}

	secret, err := l.vault.DecryptString(record.Secret)
	if err != nil {
		return false, fmt.Errorf("failed to decrypt TOTP secret: %w", err)
	}

	return totp.Validate(code, secret), nil
}

// Disable removes the enrollment. The vault key material stays; other
// secrets remain readable.
func (l *Lock) Disable() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Record returns the enrollment metadata without the secret.
func (l *Lock) Record() (*LockRecord, error) {
	record, err := l.load()
	if err != nil {
		return nil, err
	}
	record.Secret = ""
	return record, nil
}

func (l *Lock) load() (*LockRecord, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	var record LockRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt lock record: %w", err)
	}
	return &record, nil
}
