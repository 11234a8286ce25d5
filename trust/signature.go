// Package trust verifies the provenance of a scanned skill: a detached
// Ed25519 signature over the skill's content hash, checked against a keyring
// of trusted public keys.
package trust

import (
	"crypto/ed25519"
	"fmt"
)

// Verify checks a detached Ed25519 signature of content.
func Verify(content, signature []byte, publicKey ed25519.PublicKey) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, content, signature)
}

// Sign produces a detached signature for skill content. Used only by tests
// and by operators provisioning a trusted key.
func Sign(content []byte, privateKey ed25519.PrivateKey) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key size: %d", len(privateKey))
	}
	return ed25519.Sign(privateKey, content), nil
}
