package trust

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Keyring holds the set of trusted Ed25519 public keys a scan is allowed to
// accept signatures from.
type Keyring struct {
	keys map[string]ed25519.PublicKey
}

// NewKeyring returns an empty keyring.
func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[string]ed25519.PublicKey)}
}

// Add registers a public key under keyID.
func (k *Keyring) Add(keyID string, pubKey ed25519.PublicKey) {
	k.keys[keyID] = pubKey
}

// List returns the registered key ids.
func (k *Keyring) List() []string {
	ids := make([]string, 0, len(k.keys))
	for id := range k.keys {
		ids = append(ids, id)
	}
	return ids
}

// LoadFromDir reads every *.pub file in dir, each holding a base64-encoded
// Ed25519 public key, and registers it under its filename (sans extension).
// A missing directory is not an error: trust verification is then simply
// unconfigured.
func (k *Keyring) LoadFromDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading trusted key directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pub") {
			continue
		}
		keyID := strings.TrimSuffix(entry.Name(), ".pub")
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("reading trusted key %q: %w", keyID, err)
		}
		pubBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
		if err != nil {
			return fmt.Errorf("decoding trusted key %q: %w", keyID, err)
		}
		if len(pubBytes) != ed25519.PublicKeySize {
			return fmt.Errorf("trusted key %q has invalid size: %d (expected %d)", keyID, len(pubBytes), ed25519.PublicKeySize)
		}
		k.keys[keyID] = ed25519.PublicKey(pubBytes)
	}
	return nil
}

// VerifyAny tries every key in the keyring against content and signature,
// returning the matching key id.
func (k *Keyring) VerifyAny(content, signature []byte) (keyID string, ok bool) {
	for id, pubKey := range k.keys {
		if Verify(content, signature, pubKey) {
			return id, true
		}
	}
	return "", false
}
