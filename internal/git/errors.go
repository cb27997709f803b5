package git

import (
	"errors"
	"fmt"
)

// ErrNotARepository reports that a path is not inside a git repository.
var ErrNotARepository = errors.New("not a git repository")

// ErrInvalidRef reports a reference that cannot be resolved.
var ErrInvalidRef = errors.New("invalid reference")

// OperationError reports a failed git command.
type OperationError struct {
	Command string
	Stderr  string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("git operation failed: %s - %s", e.Command, e.Stderr)
}

// WorktreeError reports a failed worktree operation.
type WorktreeError struct {
	Msg string
}

func (e *WorktreeError) Error() string {
	return fmt.Sprintf("worktree error: %s", e.Msg)
}

// BranchExistsError reports an attempt to create a branch that already
// exists.
type BranchExistsError struct {
	Branch string
}

func (e *BranchExistsError) Error() string {
	return fmt.Sprintf("branch '%s' already exists", e.Branch)
}

// BranchNotFoundError reports a missing branch.
type BranchNotFoundError struct {
	Branch string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch '%s' not found", e.Branch)
}

// DiffError reports a failed diff computation.
type DiffError struct {
	Err error
}

func (e *DiffError) Error() string {
	return fmt.Sprintf("failed to compute diff: %v", e.Err)
}

func (e *DiffError) Unwrap() error {
	return e.Err
}
