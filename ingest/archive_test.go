package ingest

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func writeTar(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tw := tar.NewWriter(f)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestArchiveExtractsZip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "skill.zip")
	writeZip(t, archivePath, map[string]string{
		"SKILL.md":      "# hi",
		"scripts/a.sh":  "echo hi",
	})

	res, cleanup := Archive(archivePath, ArchiveOptions{WorkDir: dir})
	defer cleanup()

	if !res.Success {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if res.Context.FileCount != 2 {
		t.Fatalf("expected 2 files, got %d", res.Context.FileCount)
	}
}

func TestArchiveExtractsTar(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "skill.tar")
	writeTar(t, archivePath, map[string]string{"SKILL.md": "# hi"})

	res, cleanup := Archive(archivePath, ArchiveOptions{WorkDir: dir})
	defer cleanup()

	if !res.Success {
		t.Fatalf("expected success, got %v", res.Err)
	}
	if res.Context.FileCount != 1 {
		t.Fatalf("expected 1 file, got %d", res.Context.FileCount)
	}
}

func TestArchiveRejectsPathTraversalZip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.zip")
	writeZip(t, archivePath, map[string]string{
		"../../etc/passwd": "root:x:0:0",
	})

	res, cleanup := Archive(archivePath, ArchiveOptions{WorkDir: dir})
	defer cleanup()

	if res.Success {
		t.Fatal("expected path traversal to be rejected")
	}
	ierr, ok := res.Err.(*Error)
	if !ok || ierr.Kind != ErrPathTraversal {
		t.Fatalf("expected ErrPathTraversal, got %v", res.Err)
	}
}

func TestArchiveRejectsUnsupportedSuffix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skill.rar")
	if err := os.WriteFile(path, []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, cleanup := Archive(path, ArchiveOptions{WorkDir: dir})
	defer cleanup()
	if res.Success {
		t.Fatal("expected unsupported suffix to fail")
	}
}

func TestArchiveRejectsCorruptZip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.zip")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xFF}, 16), 0o644); err != nil {
		t.Fatal(err)
	}

	res, cleanup := Archive(path, ArchiveOptions{WorkDir: dir})
	defer cleanup()
	if res.Success {
		t.Fatal("expected corrupt archive to fail")
	}
}
