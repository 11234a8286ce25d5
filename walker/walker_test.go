package walker

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkBasic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"), "# hi")
	writeFile(t, filepath.Join(root, "src", "main.go"), "package main")
	writeFile(t, filepath.Join(root, "node_modules", "x.js"), "junk")
	writeFile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main")
	writeFile(t, filepath.Join(root, ".github", "workflows", "ci.yml"), "on: push")
	writeFile(t, filepath.Join(root, ".env"), "SECRET=1")

	res, err := Walk(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	paths := map[string]bool{}
	for _, f := range res.Files {
		paths[f.Path] = true
	}

	if !paths["README.md"] || !paths["src/main.go"] {
		t.Fatalf("expected README.md and src/main.go in %v", paths)
	}
	if paths["node_modules/x.js"] {
		t.Error("node_modules should be excluded")
	}
	if paths[".git/HEAD"] {
		t.Error(".git should be excluded")
	}
	if paths[".env"] {
		t.Error("dot-files should be excluded")
	}
	if !paths[".github/workflows/ci.yml"] {
		t.Error(".github should NOT be excluded")
	}
}

func TestWalkDeterministicHash(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeFile(t, filepath.Join(rootA, "a.txt"), "one")
	writeFile(t, filepath.Join(rootA, "b.txt"), "two")
	// Same content, different creation order.
	writeFile(t, filepath.Join(rootB, "b.txt"), "two")
	writeFile(t, filepath.Join(rootA, "a.txt"), "one")
	writeFile(t, filepath.Join(rootB, "a.txt"), "one")

	resA, err := Walk(rootA, nil)
	if err != nil {
		t.Fatal(err)
	}
	resB, err := Walk(rootB, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resA.SourceHash != resB.SourceHash {
		t.Errorf("expected identical source hash for identical content, got %s vs %s", resA.SourceHash, resB.SourceHash)
	}
}

func TestWalkSizeLimit(t *testing.T) {
	root := t.TempDir()
	smallPath := filepath.Join(root, "small.bin")
	bigPath := filepath.Join(root, "big.bin")

	writeFile(t, smallPath, string(make([]byte, MaxFileSize)))
	writeFile(t, bigPath, string(make([]byte, MaxFileSize+1)))

	res, err := Walk(root, nil)
	if err != nil {
		t.Fatal(err)
	}

	var sawSmall, sawBig bool
	for _, f := range res.Files {
		if f.Path == "small.bin" {
			sawSmall = true
		}
		if f.Path == "big.bin" {
			sawBig = true
		}
	}
	if !sawSmall {
		t.Error("expected exactly-50MB file to be admitted")
	}
	if sawBig {
		t.Error("expected 50MB+1 file to be skipped")
	}
}

func TestWalkFatalOnMissingRoot(t *testing.T) {
	if _, err := Walk("/nonexistent/path/xyz", nil); err == nil {
		t.Fatal("expected error for nonexistent root")
	}
}

func TestWalkFatalOnNonDirectory(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "file.txt")
	writeFile(t, filePath, "x")
	if _, err := Walk(filePath, nil); err == nil {
		t.Fatal("expected error when root is a file")
	}
}
