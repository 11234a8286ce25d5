// Package ingest turns a source descriptor (local path, remote VCS URL, or
// archive file) into a normalized model.IngestContext. Three variants
// (local, vcs, archive) share the walker and the same result contract.
package ingest

import (
	"fmt"
	"time"

	"github.com/skillaudit/scanner/model"
	"github.com/skillaudit/scanner/walker"
)

// ErrorKind classifies a fatal ingest failure.
type ErrorKind string

const (
	ErrNotFound       ErrorKind = "not_found"
	ErrNotDirectory   ErrorKind = "not_a_directory"
	ErrUnreachableVCS ErrorKind = "unreachable_vcs"
	ErrUnknownRef     ErrorKind = "unknown_ref"
	ErrTimeout        ErrorKind = "timeout"
	ErrCorruptArchive ErrorKind = "corrupt_archive"
	ErrUnsupported    ErrorKind = "unsupported_source"
	ErrPathTraversal  ErrorKind = "path_traversal"
)

// Error is a fatal ingest failure, carrying a stable kind for callers that
// need to branch without string matching.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingest: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("ingest: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Result wraps the outcome of an ingest attempt: success and context, or
// failure and error, plus timing. Exactly one of Context/Err is set.
type Result struct {
	Success    bool
	Context    *model.IngestContext
	Err        error
	DurationMS int64
}

// Cleanup releases any scratch directory associated with a Result. It is
// idempotent and safe to call even when no scratch directory was created
// (the local ingestor never creates one). Cleanup errors are swallowed, as
// the caller has no useful recovery action for them.
type Cleanup func()

// NoopCleanup is used by ingestors that never allocate scratch state.
func NoopCleanup() {}

// buildContext runs the shared walker against root and wraps the result
// into a model.IngestContext with the given metadata.
func buildContext(root string, metadata model.SourceMetadata) (*model.IngestContext, error) {
	res, err := walker.Walk(root, nil)
	if err != nil {
		return nil, err
	}

	files := make([]model.FileEntry, len(res.Files))
	for i, f := range res.Files {
		files[i] = model.FileEntry{
			Path:         f.Path,
			AbsolutePath: f.AbsolutePath,
			SizeBytes:    f.SizeBytes,
			ContentHash:  f.ContentHash,
		}
	}

	metadata.IngestedAt = time.Now().UTC().Format(time.RFC3339)

	return &model.IngestContext{
		RootDir:    root,
		SourceHash: res.SourceHash,
		Files:      files,
		Metadata:   metadata,
		TotalSize:  res.TotalSize,
		FileCount:  len(files),
	}, nil
}

func timedSince(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
