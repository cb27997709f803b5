package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Repository wraps a repository root directory. All operations shell out to
// the git CLI, the same tool that performs the worktree mutations, so the
// engine sees one consistent view.
type Repository struct {
	path string
}

// Open opens the repository containing path; the handle is rooted at the
// repository's top-level directory.
func Open(path string) (*Repository, error) {
	out, err := runGit(context.Background(), path, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
	}
	root := strings.TrimSpace(out)
	if root == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
	}
	return &Repository{path: root}, nil
}

// Discover searches path and its parents for a repository.
func Discover(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, path)
	}
	return Open(abs)
}

// Path returns the repository root.
func (r *Repository) Path() string {
	return r.path
}

// Name returns the repository's directory name.
func (r *Repository) Name() string {
	return filepath.Base(r.path)
}

// CurrentBranch returns the checked-out branch's short name. A detached
// HEAD reports "HEAD detached at <8-char-commit>"; an unborn branch reports
// its short name.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	// symbolic-ref succeeds for normal and unborn branches alike.
	out, err := runGit(ctx, r.path, "symbolic-ref", "--short", "-q", "HEAD")
	if err == nil {
		name := strings.TrimSpace(out)
		if name != "" {
			return name, nil
		}
	}

	// Detached HEAD: resolve the commit instead.
	out, err = runGit(ctx, r.path, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("%w: HEAD", ErrInvalidRef)
	}
	commit := strings.TrimSpace(out)
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("HEAD detached at %s", commit), nil
}

// BranchExists reports whether refs/heads/<name> exists.
func (r *Repository) BranchExists(ctx context.Context, name string) (bool, error) {
	_, err := runGit(ctx, r.path, "show-ref", "--verify", "--quiet", "refs/heads/"+name)
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*OperationError); ok {
		// show-ref exits non-zero for a missing ref.
		return false, nil
	}
	return false, err
}

// DetectDefaultBranch returns the first of main/master that exists, falling
// back to the current branch (which also covers unborn repositories).
func (r *Repository) DetectDefaultBranch(ctx context.Context) (string, error) {
	for _, candidate := range []string{"main", "master"} {
		exists, err := r.BranchExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if exists {
			return candidate, nil
		}
	}
	return r.CurrentBranch(ctx)
}

// HeadCommit returns the full HEAD commit id.
func (r *Repository) HeadCommit(ctx context.Context) (string, error) {
	out, err := runGit(ctx, r.path, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("%w: HEAD has no commits", ErrInvalidRef)
	}
	return strings.TrimSpace(out), nil
}

// runGit executes git in dir and returns stdout. Non-zero exits become
// OperationError with captured stderr.
func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &OperationError{
			Command: "git " + strings.Join(args, " "),
			Stderr:  strings.TrimSpace(stderr.String()),
		}
	}
	return stdout.String(), nil
}
