// Copyright (c) 2026 AfyaCare. All rights reserved.
// Author: dev@afyacare.health

package tokenstore

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"
)

// # Encryption Parameters

const (
	// scrypt cost parameters. Interactive-login grade: the key is derived
	// once per process, not per request.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1

	saltLength = 16
)

// fileEnvelope is the on-disk representation of the sealed session.
//
// The salt is generated once per file so two installations sharing a secret
// never share a derived key. The nonce is regenerated on every save.
type fileEnvelope struct {
	Salt   string `json:"salt"`
	Nonce  string `json:"nonce"`
	Sealed string `json:"sealed"`
}

// FileStore persists session keys to a single encrypted file on disk.
//
// # Security
//
// Values are sealed with XChaCha20-Poly1305 under a key derived from the
// configured secret via scrypt. A workstation snoop reading the file sees
// ciphertext; tampering fails the AEAD open and surfaces as a corrupt store.
//
// # Concurrency
//
// Safe for concurrent use within one process. Cross-process writers are
// serialized only by the atomic rename; the session layer's
// "last writer wins" discipline covers the rare overlapping login.
type FileStore struct {
	path   string
	secret []byte

	mu sync.Mutex
}

// NewFileStore creates a file-backed store at path, sealed with secret.
// The parent directory is created on demand with owner-only permissions.
func NewFileStore(path, secret string) (*FileStore, error) {
	if secret == "" {
		return nil, fmt.Errorf("tokenstore: file store requires a non-empty secret")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("tokenstore: failed to create store directory: %w", err)
	}

	return &FileStore{path: path, secret: []byte(secret)}, nil
}

// DefaultPath returns the per-user session file location under the OS config
// directory (e.g. ~/.config/afyacare/session.enc on Linux).
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("tokenstore: cannot resolve user config dir: %w", err)
	}
	return filepath.Join(base, "afyacare", "session.enc"), nil
}

/*
Get returns the value stored under key.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - string: Stored value
  - error: ErrNotFound when absent, or decryption/IO failures
*/
func (store *FileStore) Get(_ context.Context, key string) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	values, err := store.load()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}

	return value, nil
}

/*
Set stores value under key, replacing any previous value.

Parameters:
  - context: context.Context
  - key: string
  - value: string

Returns:
  - error: Encryption/IO failures
*/
func (store *FileStore) Set(_ context.Context, key string, value string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	values, err := store.load()
	if err != nil {
		return err
	}

	values[key] = value
	return store.save(values)
}

/*
ClearAll removes the session file entirely.

Deleting the file (rather than writing an empty map) guarantees no ciphertext
of a dead session lingers on disk.

Returns:
  - error: IO failures other than the file already being gone
*/
func (store *FileStore) ClearAll(_ context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := os.Remove(store.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("tokenstore: failed to clear session file: %w", err)
	}
	return nil
}

// # Sealing Internals

// load reads and opens the session file. A missing file is an empty session.
func (store *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(store.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tokenstore: failed to read session file: %w", err)
	}

	var envelope fileEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("tokenstore: corrupt session file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: corrupt salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(envelope.Nonce)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: corrupt nonce: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(envelope.Sealed)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: corrupt payload: %w", err)
	}

	aead, err := store.aead(salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: failed to unseal session (wrong secret or tampered file): %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return nil, fmt.Errorf("tokenstore: corrupt session payload: %w", err)
	}

	return values, nil
}

// save seals the value map and writes it atomically (temp file + rename), so
// a crash mid-write never leaves a half-encrypted session behind.
func (store *FileStore) save(values map[string]string) error {
	plaintext, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("tokenstore: failed to marshal session: %w", err)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("tokenstore: failed to generate salt: %w", err)
	}

	aead, err := store.aead(salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("tokenstore: failed to generate nonce: %w", err)
	}

	envelope := fileEnvelope{
		Salt:   base64.StdEncoding.EncodeToString(salt),
		Nonce:  base64.StdEncoding.EncodeToString(nonce),
		Sealed: base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plaintext, nil)),
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("tokenstore: failed to marshal envelope: %w", err)
	}

	tmp := store.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("tokenstore: failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, store.path); err != nil {
		return fmt.Errorf("tokenstore: failed to commit session file: %w", err)
	}

	return nil
}

// aead derives the sealing key for the given salt.
func (store *FileStore) aead(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(store.secret, salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: key derivation failed: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("tokenstore: failed to initialize cipher: %w", err)
	}

	return aead, nil
}
