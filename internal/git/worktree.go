package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WorktreeInfo describes one entry of `git worktree list`.
type WorktreeInfo struct {
	// Path to the worktree directory.
	Path string
	// Branch checked out in the worktree; "HEAD" when detached.
	Branch string
	// Head commit of the worktree.
	Head string
	// IsMain marks the repository's primary worktree.
	IsMain bool
}

// WorktreeManager performs worktree mutations for a repository, creating
// them under a dedicated directory.
type WorktreeManager struct {
	repo         *Repository
	worktreesDir string
}

// NewWorktreeManager creates a manager rooting worktrees at worktreesDir.
func NewWorktreeManager(repo *Repository, worktreesDir string) *WorktreeManager {
	return &WorktreeManager{
		repo:         repo,
		worktreesDir: worktreesDir,
	}
}

// RepoPath returns the repository root.
func (m *WorktreeManager) RepoPath() string {
	return m.repo.Path()
}

// WorktreesDir returns the directory new worktrees are created under.
func (m *WorktreeManager) WorktreesDir() string {
	return m.worktreesDir
}

// Create adds a worktree named worktreeName. An existing branch is checked
// out; otherwise a new branch is created from HEAD.
func (m *WorktreeManager) Create(ctx context.Context, worktreeName, branchName string) (*WorktreeInfo, error) {
	worktreePath := filepath.Join(m.worktreesDir, worktreeName)

	if err := os.MkdirAll(m.worktreesDir, 0o755); err != nil {
		return nil, &WorktreeError{Msg: fmt.Sprintf("failed to create worktrees dir: %v", err)}
	}

	branchExists, err := m.repo.BranchExists(ctx, branchName)
	if err != nil {
		return nil, err
	}

	args := []string{"worktree", "add"}
	if branchExists {
		args = append(args, worktreePath, branchName)
	} else {
		args = append(args, "-b", branchName, worktreePath)
	}

	if _, err := runGit(ctx, m.repo.Path(), args...); err != nil {
		if opErr, ok := err.(*OperationError); ok {
			if strings.Contains(opErr.Stderr, "already exists") {
				return nil, &BranchExistsError{Branch: branchName}
			}
			return nil, &WorktreeError{Msg: fmt.Sprintf("git worktree add failed: %s", opErr.Stderr)}
		}
		return nil, err
	}

	head, err := worktreeHead(ctx, worktreePath)
	if err != nil {
		head = "unknown"
	}

	return &WorktreeInfo{
		Path:   worktreePath,
		Branch: branchName,
		Head:   head,
	}, nil
}

// Remove deletes a worktree.
func (m *WorktreeManager) Remove(ctx context.Context, worktreePath string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, worktreePath)

	if _, err := runGit(ctx, m.repo.Path(), args...); err != nil {
		if opErr, ok := err.(*OperationError); ok {
			return &WorktreeError{Msg: fmt.Sprintf("git worktree remove failed: %s", opErr.Stderr)}
		}
		return err
	}
	return nil
}

// List returns all worktrees; the first entry is the main worktree.
func (m *WorktreeManager) List(ctx context.Context) ([]WorktreeInfo, error) {
	out, err := runGit(ctx, m.repo.Path(), "worktree", "list", "--porcelain")
	if err != nil {
		if opErr, ok := err.(*OperationError); ok {
			return nil, &WorktreeError{Msg: fmt.Sprintf("git worktree list failed: %s", opErr.Stderr)}
		}
		return nil, err
	}
	return parseWorktreeList(out), nil
}

// Prune removes stale worktree bookkeeping.
func (m *WorktreeManager) Prune(ctx context.Context) error {
	if _, err := runGit(ctx, m.repo.Path(), "worktree", "prune"); err != nil {
		if opErr, ok := err.(*OperationError); ok {
			return &WorktreeError{Msg: fmt.Sprintf("git worktree prune failed: %s", opErr.Stderr)}
		}
		return err
	}
	return nil
}

// parseWorktreeList parses `git worktree list --porcelain` output.
func parseWorktreeList(output string) []WorktreeInfo {
	var worktrees []WorktreeInfo
	var current *WorktreeInfo
	isMain := true

	flush := func() {
		if current != nil && current.Path != "" && current.Head != "" {
			if current.Branch == "" {
				current.Branch = "HEAD"
			}
			current.IsMain = isMain
			isMain = false
			worktrees = append(worktrees, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			current = &WorktreeInfo{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "HEAD "):
			if current != nil {
				current.Head = strings.TrimPrefix(line, "HEAD ")
			}
		case strings.HasPrefix(line, "branch "):
			if current != nil {
				current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
			}
		}
	}
	flush()

	return worktrees
}

func worktreeHead(ctx context.Context, worktreePath string) (string, error) {
	out, err := runGit(ctx, worktreePath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
