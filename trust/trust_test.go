package trust

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	content := []byte("sha256:deadbeef")

	sig, err := Sign(content, priv)
	if err != nil {
		t.Fatal(err)
	}
	if !Verify(content, sig, pub) {
		t.Fatal("expected signature to verify")
	}
}

func TestVerifyRejectsTamperedContent(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(rand.Reader)
	sig, _ := Sign([]byte("original"), priv)
	if Verify([]byte("tampered"), sig, pub) {
		t.Fatal("expected verification to fail on tampered content")
	}
}

func TestKeyringLoadFromDirAndVerifyAny(t *testing.T) {
	dir := t.TempDir()
	pub, priv, _ := ed25519.GenerateKey(rand.Reader)
	encoded := base64.StdEncoding.EncodeToString(pub)
	if err := os.WriteFile(filepath.Join(dir, "publisher-1.pub"), []byte(encoded), 0o644); err != nil {
		t.Fatal(err)
	}

	k := NewKeyring()
	if err := k.LoadFromDir(dir); err != nil {
		t.Fatal(err)
	}

	content := []byte("sha256:abc123")
	sig, _ := Sign(content, priv)

	keyID, ok := k.VerifyAny(content, sig)
	if !ok || keyID != "publisher-1" {
		t.Fatalf("expected verification against publisher-1, got %q/%v", keyID, ok)
	}
}

func TestKeyringLoadFromDirMissingDirIsNotError(t *testing.T) {
	k := NewKeyring()
	if err := k.LoadFromDir("/nonexistent/keys"); err != nil {
		t.Fatalf("expected missing directory to be non-fatal, got %v", err)
	}
}

func TestHasSignatureFile(t *testing.T) {
	dir := t.TempDir()
	if HasSignatureFile(dir) {
		t.Fatal("expected no signature file in an empty directory")
	}
	if err := os.WriteFile(filepath.Join(dir, signatureFileName), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !HasSignatureFile(dir) {
		t.Fatal("expected signature file to be detected")
	}
}

func TestVerifySourceReportsMissingSignature(t *testing.T) {
	root := t.TempDir()
	result := VerifySource(root, "sha256:abc", NewKeyring())
	if result.Attempted || result.Verified {
		t.Fatalf("expected unattempted result for missing signature, got %+v", result)
	}
}

func TestVerifySourceVerifiesAgainstKeyring(t *testing.T) {
	root := t.TempDir()
	pub, priv, _ := ed25519.GenerateKey(rand.Reader)
	hash := "sha256:abc123"
	sig, _ := Sign([]byte(hash), priv)
	encodedSig := base64.StdEncoding.EncodeToString(sig)
	if err := os.WriteFile(filepath.Join(root, signatureFileName), []byte(encodedSig), 0o644); err != nil {
		t.Fatal(err)
	}

	k := NewKeyring()
	k.Add("publisher-1", pub)

	result := VerifySource(root, hash, k)
	if !result.Verified || result.KeyID != "publisher-1" {
		t.Fatalf("expected verified result, got %+v", result)
	}
}

func TestVerifySourceFailsForUntrustedKey(t *testing.T) {
	root := t.TempDir()
	_, priv, _ := ed25519.GenerateKey(rand.Reader)
	hash := "sha256:abc123"
	sig, _ := Sign([]byte(hash), priv)
	encodedSig := base64.StdEncoding.EncodeToString(sig)
	if err := os.WriteFile(filepath.Join(root, signatureFileName), []byte(encodedSig), 0o644); err != nil {
		t.Fatal(err)
	}

	result := VerifySource(root, hash, NewKeyring())
	if result.Verified {
		t.Fatal("expected verification to fail with an empty keyring")
	}
}
