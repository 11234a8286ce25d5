package analyzer

import (
	"bytes"
	"os"
	"path/filepath"
)

// RelPath returns path relative to root, slash-separated, for use as a
// Finding's Location.File. If path cannot be made relative to root, path is
// returned unchanged (defensive; the orchestrator always hands analyzers
// paths drawn from the same root).
func RelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// ReadCapped reads path, returning at most maxBytes. Unreadable files yield
// (nil, false) rather than an error — per spec, an unreadable file produces
// no findings, it is not an analyzer failure.
func ReadCapped(path string, maxBytes int64) ([]byte, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, false
	}

	limit := info.Size()
	if maxBytes > 0 && limit > maxBytes {
		limit = maxBytes
	}

	buf := make([]byte, limit)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return nil, false
	}
	return buf[:n], true
}

// LineAt returns the 1-based line number of byte offset pos within content,
// derived by counting newlines in the prefix up to pos.
func LineAt(content []byte, pos int) int {
	if pos < 0 {
		pos = 0
	}
	if pos > len(content) {
		pos = len(content)
	}
	return bytes.Count(content[:pos], []byte("\n")) + 1
}

// TruncateEvidence bounds evidence text to 100 characters per the Finding
// contract.
func TruncateEvidence(s string) string {
	const max = 100
	if len(s) <= max {
		return s
	}
	return s[:max]
}
