package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLocalIngestsDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("# hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, cleanup := Local(root)
	defer cleanup()

	if !res.Success {
		t.Fatalf("expected success, got error: %v", res.Err)
	}
	if res.Context.FileCount != 1 {
		t.Fatalf("expected 1 file, got %d", res.Context.FileCount)
	}
	if res.Context.Metadata.Kind != "local" {
		t.Errorf("expected local kind, got %s", res.Context.Metadata.Kind)
	}
}

func TestLocalFailsOnMissingPath(t *testing.T) {
	res, cleanup := Local("/nonexistent/path/xyz")
	defer cleanup()
	if res.Success {
		t.Fatal("expected failure for missing path")
	}
	var ierr *Error
	if !asError(res.Err, &ierr) {
		t.Fatalf("expected *Error, got %T: %v", res.Err, res.Err)
	}
	if ierr.Kind != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %s", ierr.Kind)
	}
}

func TestLocalFailsOnFile(t *testing.T) {
	root := t.TempDir()
	filePath := filepath.Join(root, "file.txt")
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, cleanup := Local(filePath)
	defer cleanup()
	if res.Success {
		t.Fatal("expected failure when path is a file")
	}
}

func TestDispatchHeuristic(t *testing.T) {
	root := t.TempDir()
	res, cleanup := Dispatch(root, VCSOptions{}, ArchiveOptions{})
	defer cleanup()
	if !res.Success {
		t.Fatalf("expected local dispatch to succeed: %v", res.Err)
	}
	if res.Context.Metadata.Kind != "local" {
		t.Errorf("expected local dispatch for a plain directory path, got %s", res.Context.Metadata.Kind)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
