package ingest

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skillaudit/scanner/model"
)

// ArchiveOptions configure an archive ingest.
type ArchiveOptions struct {
	WorkDir string // base directory for scratch extraction; defaults to os.TempDir()
}

// Archive extracts path (a .zip, .tar, .tar.gz, or .tgz file) into a fresh
// scratch directory and ingests the result. Extraction refuses any entry
// whose normalized path would escape the scratch directory.
func Archive(path string, opts ArchiveOptions) (*Result, Cleanup) {
	start := time.Now()

	format := detectFormat(path)
	if format == "" {
		return &Result{
			Success:    false,
			Err:        &Error{Kind: ErrUnsupported, Err: fmt.Errorf("unsupported archive suffix: %s", path)},
			DurationMS: timedSince(start),
		}, NoopCleanup
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	scratch := filepath.Join(workDir, "skillaudit-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return &Result{
			Success:    false,
			Err:        fmt.Errorf("ingest: creating scratch dir: %w", err),
			DurationMS: timedSince(start),
		}, NoopCleanup
	}
	cleanup := func() { _ = os.RemoveAll(scratch) }

	var extractErr error
	switch format {
	case "zip":
		extractErr = extractZip(path, scratch)
	case "tar", "tar.gz":
		extractErr = extractTar(path, scratch, format == "tar.gz")
	}
	if extractErr != nil {
		cleanup()
		return &Result{
			Success:    false,
			Err:        extractErr,
			DurationMS: timedSince(start),
		}, NoopCleanup
	}

	ictx, err := buildContext(scratch, model.SourceMetadata{
		Kind:             model.SourceArchive,
		OriginalLocation: path,
		ArchiveFormat:    format,
	})
	if err != nil {
		cleanup()
		return &Result{
			Success:    false,
			Err:        err,
			DurationMS: timedSince(start),
		}, NoopCleanup
	}

	return &Result{
		Success:    true,
		Context:    ictx,
		DurationMS: timedSince(start),
	}, cleanup
}

func detectFormat(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return "tar.gz"
	case strings.HasSuffix(lower, ".tar"):
		return "tar"
	case strings.HasSuffix(lower, ".zip"):
		return "zip"
	default:
		return ""
	}
}

// safeJoin joins scratch and entryPath, refusing any result that escapes
// scratch (path traversal via "../" or an absolute path inside the entry).
func safeJoin(scratch, entryPath string) (string, error) {
	root := filepath.Clean(scratch)
	dest := filepath.Join(root, entryPath)
	if filepath.IsAbs(entryPath) || (dest != root && !strings.HasPrefix(dest, root+string(os.PathSeparator))) {
		return "", &Error{Kind: ErrPathTraversal, Err: fmt.Errorf("entry %q escapes extraction root", entryPath)}
	}
	return dest, nil
}

func extractZip(path, scratch string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return &Error{Kind: ErrCorruptArchive, Err: err}
	}
	defer r.Close()

	for _, f := range r.File {
		dest, err := safeJoin(scratch, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return &Error{Kind: ErrCorruptArchive, Err: err}
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return &Error{Kind: ErrCorruptArchive, Err: err}
		}
		rc, err := f.Open()
		if err != nil {
			return &Error{Kind: ErrCorruptArchive, Err: err}
		}
		if err := writeExtracted(dest, rc); err != nil {
			rc.Close()
			return err
		}
		rc.Close()
	}
	return nil
}

func extractTar(path, scratch string, gzipped bool) error {
	f, err := os.Open(path)
	if err != nil {
		return &Error{Kind: ErrCorruptArchive, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return &Error{Kind: ErrCorruptArchive, Err: err}
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &Error{Kind: ErrCorruptArchive, Err: err}
		}

		dest, err := safeJoin(scratch, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return &Error{Kind: ErrCorruptArchive, Err: err}
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return &Error{Kind: ErrCorruptArchive, Err: err}
			}
			if err := writeExtracted(dest, tr); err != nil {
				return err
			}
		default:
			// symlinks, devices, etc: skip, matching the walker's own
			// refusal to follow symlinks.
		}
	}
	return nil
}

func writeExtracted(dest string, r io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return &Error{Kind: ErrCorruptArchive, Err: err}
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return &Error{Kind: ErrCorruptArchive, Err: err}
	}
	return nil
}

// IsArchivePath reports whether s looks like a supported archive file.
func IsArchivePath(s string) bool {
	return detectFormat(s) != ""
}
