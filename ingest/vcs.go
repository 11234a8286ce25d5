package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skillaudit/scanner/model"
)

// DefaultVCSTimeout is the fatal deadline for clone + checkout.
const DefaultVCSTimeout = 60 * time.Second

// VCSOptions configure a VCS ingest.
type VCSOptions struct {
	WorkDir string        // base directory for scratch clones; defaults to os.TempDir()
	Ref     string        // branch, tag, or commit id; empty means default branch, shallow
	Timeout time.Duration // defaults to DefaultVCSTimeout
}

// VCS clones a remote repository URL into a fresh scratch directory and
// ingests the checkout. If opts.Ref is set, a full clone is performed and
// that ref is checked out; otherwise a shallow (depth-1) clone of the
// default branch is used. The concrete commit id is resolved after
// checkout and recorded in the context's metadata.
func VCS(url string, opts VCSOptions) (*Result, Cleanup) {
	start := time.Now()

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultVCSTimeout
	}

	scratch := filepath.Join(workDir, "skillaudit-"+uuid.NewString())
	cleanup := func() { _ = os.RemoveAll(scratch) }

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := cloneInto(ctx, url, scratch, opts.Ref); err != nil {
		cleanup()
		return &Result{
			Success:    false,
			Err:        err,
			DurationMS: timedSince(start),
		}, NoopCleanup
	}

	commit, err := resolveCommit(ctx, scratch)
	if err != nil {
		cleanup()
		return &Result{
			Success:    false,
			Err:        &Error{Kind: ErrUnreachableVCS, Err: err},
			DurationMS: timedSince(start),
		}, NoopCleanup
	}

	ictx, err := buildContext(scratch, model.SourceMetadata{
		Kind:             model.SourceGit,
		OriginalLocation: url,
		VCSCommit:        commit,
		VCSRef:           opts.Ref,
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

func cloneInto(ctx context.Context, url, dest, ref string) error {
	var args []string
	if ref == "" {
		args = []string{"clone", "--depth", "1", url, dest}
	} else {
		args = []string{"clone", url, dest}
	}

	if err := runGit(ctx, "", args...); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return &Error{Kind: ErrTimeout, Err: err}
		}
		return &Error{Kind: ErrUnreachableVCS, Err: err}
	}

	if ref != "" {
		if err := runGit(ctx, dest, "checkout", ref); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return &Error{Kind: ErrTimeout, Err: err}
			}
			return &Error{Kind: ErrUnknownRef, Err: err}
		}
	}

	return nil
}

func resolveCommit(ctx context.Context, dir string) (string, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = dir
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git rev-parse: %w (stderr: %s)", err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w (stderr: %s)", strings.Join(args, " "), err, stderr.String())
	}
	return nil
}

// IsVCSURL reports whether s looks like a VCS source descriptor, per the
// dispatch heuristic in the external interface contract.
func IsVCSURL(s string) bool {
	switch {
	case strings.HasPrefix(s, "https://github.com/"),
		strings.HasPrefix(s, "https://gitlab.com/"),
		strings.HasPrefix(s, "https://bitbucket.org/"),
		strings.HasPrefix(s, "git@"),
		strings.HasSuffix(s, ".git"):
		return true
	default:
		return false
	}
}
