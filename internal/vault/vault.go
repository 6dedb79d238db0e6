// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package vault provides encryption at rest for inkwell secrets.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/inkwell-tui/internal/config"
	"github.com/jeranaias/inkwell-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a value as encrypted (format: ENC:base64(nonce|ciphertext|tag)).
const EncryptedPrefix = "ENC:"

// NonceSize is the size of the nonce/IV for AES-GCM (12 bytes / 96 bits).
const NonceSize = 12

// KeySize is the size of the AES-256 key (32 bytes / 256 bits).
const KeySize = 32

// SaltSize is the size of the salt for key derivation (32 bytes).
const SaltSize = 32

// PBKDF2Iterations is the iteration count for PBKDF2-SHA-256 key
// derivation. 600,000 per current OWASP guidance.
const PBKDF2Iterations = 600000

// File names under the inkwell data directory.
const (
	keyFileName  = "vault.key"
	saltFileName = "vault.salt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotInitialized indicates the vault has not been created yet.
	ErrNotInitialized = errors.New("vault not initialized: run 'inkwell setup'")

	// ErrAlreadyInitialized indicates Init was called on an existing
	// vault. Re-initializing would orphan every stored ciphertext.
	ErrAlreadyInitialized = errors.New("vault already initialized")

	// ErrInvalidCiphertext indicates the ciphertext format is invalid.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	// ErrDecryptionFailed indicates decryption failed (wrong key or
	// tampered data).
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
)

// =============================================================================
// SECURITY HELPER FUNCTIONS
// =============================================================================

// ZeroBytes zeros sensitive byte slices.
// SECURITY: Zero key material to prevent memory disclosure via crash dumps.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// IsEncrypted reports whether a value carries the vault ciphertext format.
func IsEncrypted(s string) bool {
	return strings.HasPrefix(s, EncryptedPrefix)
}

// =============================================================================
// VAULT
// =============================================================================

// Vault encrypts small secrets (the backend API key, the TOTP lock
// secret) so they never sit in plaintext inside config or state files.
//
// The master key is derived via PBKDF2-SHA-256 from a machine-local
// random secret plus a per-vault salt, both 0600 under ~/.inkwell/.
// This guards against config files leaking through backups, dotfile
// repos, and pastes; it does not defend against an attacker who can
// already read the whole home directory.
type Vault struct {
	mu     sync.RWMutex
	cipher cipher.AEAD
	dir    string
}

// Open opens the vault in the default data directory. A vault that has
// never been initialized opens successfully but rejects encryption
// until Init is called.
func Open() (*Vault, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault directory: %w", err)
	}
	return OpenAt(dir)
}

// OpenAt opens the vault rooted at dir.
func OpenAt(dir string) (*Vault, error) {
	v := &Vault{dir: dir}

	secret, salt, err := v.readKeyMaterial()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		return nil, err
	}
	defer ZeroBytes(secret)
	defer ZeroBytes(salt)

	if err := v.initCipher(secret, salt); err != nil {
		return nil, err
	}
	return v, nil
}

// Initialized returns true once key material exists and the cipher is
// ready.
func (v *Vault) Initialized() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cipher != nil
}

// Init generates fresh key material and prepares the vault. Fails if
// the vault already exists.
func (v *Vault) Init() error {
	v.mu.Lock()
	already := v.cipher != nil
	v.mu.Unlock()
	if already {
		return ErrAlreadyInitialized
	}
	if _, err := os.Stat(v.keyPath()); err == nil {
		return ErrAlreadyInitialized
	}

	secret := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return fmt.Errorf("failed to generate vault secret: %w", err)
	}
	defer ZeroBytes(secret)

	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	defer ZeroBytes(salt)

	// SECURITY: key material is 0600 in a 0700 directory.
	encoded := []byte(base64.StdEncoding.EncodeToString(secret))
	if err := util.AtomicWriteFileWithDir(v.keyPath(), encoded, 0600, 0700); err != nil {
		return fmt.Errorf("failed to save vault key: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(v.saltPath(), salt, 0600, 0700); err != nil {
		os.Remove(v.keyPath())
		return fmt.Errorf("failed to save salt: %w", err)
	}

	if err := v.initCipher(secret, salt); err != nil {
		os.Remove(v.keyPath())
		os.Remove(v.saltPath())
		return err
	}
	return nil
}

// Reset deletes the vault key material. Every stored ciphertext becomes
// unreadable; callers re-collect the secrets afterwards.
func (v *Vault) Reset() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cipher = nil
	if err := os.Remove(v.keyPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Remove(v.saltPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (v *Vault) keyPath() string  { return filepath.Join(v.dir, keyFileName) }
func (v *Vault) saltPath() string { return filepath.Join(v.dir, saltFileName) }

// readKeyMaterial loads the machine-local secret and salt from disk.
func (v *Vault) readKeyMaterial() (secret, salt []byte, err error) {
	encoded, err := os.ReadFile(v.keyPath())
	if err != nil {
		return nil, nil, err
	}
	secret, err = base64.StdEncoding.DecodeString(strings.TrimSpace(string(encoded)))
	if err != nil {
		return nil, nil, fmt.Errorf("corrupt vault key file: %w", err)
	}

	salt, err = os.ReadFile(v.saltPath())
	if err != nil {
		ZeroBytes(secret)
		return nil, nil, err
	}
	return secret, salt, nil
}

// initCipher derives the AES key and prepares the GCM cipher.
func (v *Vault) initCipher(secret, salt []byte) error {
	key := pbkdf2.Key(secret, salt, PBKDF2Iterations, KeySize, sha256.New)
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM cipher: %w", err)
	}

	v.mu.Lock()
	v.cipher = gcm
	v.mu.Unlock()
	return nil
}

// =============================================================================
// ENCRYPTION OPERATIONS
// =============================================================================

// Encrypt encrypts plaintext using AES-256-GCM.
// Returns: nonce || ciphertext || tag.
func (v *Vault) Encrypt(plaintext []byte) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.cipher == nil {
		return nil, ErrNotInitialized
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return v.cipher.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts data produced by Encrypt.
func (v *Vault) Decrypt(ciphertext []byte) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.cipher == nil {
		return nil, ErrNotInitialized
	}
	if len(ciphertext) < NonceSize {
		return nil, ErrInvalidCiphertext
	}

	nonce := ciphertext[:NonceSize]
	plaintext, err := v.cipher.Open(nil, nonce, ciphertext[NonceSize:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncryptString encrypts a string into the ENC:base64 format stored in
// config and lock files.
func (v *Vault) EncryptString(plaintext string) (string, error) {
	ciphertext, err := v.Encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptString decrypts an ENC:-prefixed value. Values without the
// prefix pass through untouched, so configs written before the vault
// existed keep working.
func (v *Vault) DecryptString(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, EncryptedPrefix))
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := v.Decrypt(data)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
