package ingest

import (
	"os"
	"time"

	"github.com/skillaudit/scanner/model"
)

// Local ingests a directory already present on disk. It verifies the path
// exists and is a directory, then runs the shared walker on it.
func Local(path string) (*Result, Cleanup) {
	start := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		return &Result{
			Success:    false,
			Err:        &Error{Kind: ErrNotFound, Err: err},
			DurationMS: timedSince(start),
		}, NoopCleanup
	}
	if !info.IsDir() {
		return &Result{
			Success:    false,
			Err:        &Error{Kind: ErrNotDirectory},
			DurationMS: timedSince(start),
		}, NoopCleanup
	}

	ctx, err := buildContext(path, model.SourceMetadata{
		Kind:             model.SourceLocal,
		OriginalLocation: path,
	})
	if err != nil {
		return &Result{
			Success:    false,
			Err:        err,
			DurationMS: timedSince(start),
		}, NoopCleanup
	}

	return &Result{
		Success:    true,
		Context:    ctx,
		DurationMS: timedSince(start),
	}, NoopCleanup
}
