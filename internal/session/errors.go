package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for session lifecycle operations. Callers match with
// errors.Is.
var (
	ErrNotFound        = errors.New("session not found")
	ErrAlreadyExists   = errors.New("session already exists")
	ErrInvalidName     = errors.New("invalid session name")
	ErrInvalidState    = errors.New("session is in invalid state for this operation")
	ErrProjectNotFound = errors.New("project not found")
	ErrMaxSessions     = errors.New("maximum sessions reached")
)

// MultiplexerSessionNotFoundError reports that a session's tmux session has
// vanished or its pane died; the session has been marked stopped.
type MultiplexerSessionNotFoundError struct {
	TmuxName string
	Reason   string
}

func (e *MultiplexerSessionNotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("tmux session not found: %s (%s)", e.TmuxName, e.Reason)
	}
	return fmt.Sprintf("tmux session not found: %s (session may have crashed or been killed)", e.TmuxName)
}

// PersistenceError wraps a failure to save the state file. The in-memory
// mutation that triggered the save is not rolled back.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist session state: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
