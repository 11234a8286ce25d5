package trust

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
)

// Result is the outcome of attempting to verify a skill's provenance.
type Result struct {
	Attempted bool
	Verified  bool
	KeyID     string
	Reason    string
}

// signatureFileName is the detached-signature sidecar a skill may ship
// alongside its manifest, holding a base64-encoded Ed25519 signature of the
// source hash.
const signatureFileName = "SKILL.md.sig"

// HasSignatureFile reports whether a skill source tree ships a detached
// signature sidecar, without attempting to verify it.
func HasSignatureFile(rootDir string) bool {
	_, err := os.Stat(filepath.Join(rootDir, signatureFileName))
	return err == nil
}

// VerifySource attempts to verify a skill's source hash against a detached
// signature file found at the root of the source tree. Absence of a
// signature file is reported, not treated as failure — signing is optional
// unless a policy separately requires it.
func VerifySource(rootDir, sourceHash string, keyring *Keyring) Result {
	sigPath := filepath.Join(rootDir, signatureFileName)
	raw, err := os.ReadFile(sigPath)
	if err != nil {
		return Result{Attempted: false, Reason: "no signature file present"}
	}

	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return Result{Attempted: true, Reason: "signature file is not valid base64"}
	}

	keyID, ok := keyring.VerifyAny([]byte(sourceHash), sig)
	if !ok {
		return Result{Attempted: true, Reason: "signature does not match any trusted key"}
	}

	return Result{Attempted: true, Verified: true, KeyID: keyID, Reason: "signature verified"}
}
