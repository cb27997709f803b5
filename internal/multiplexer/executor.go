package multiplexer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"claude-commander/internal/logger"
)

// DefaultMaxConcurrent is the default cap on concurrent tmux commands.
const DefaultMaxConcurrent = 16

// DefaultTimeout is the default per-command deadline.
const DefaultTimeout = 5 * time.Second

// Executor runs tmux commands with bounded concurrency and a per-command
// timeout. The semaphore is a single process-wide object shared by every
// copy of the executor; copies are cheap and safe for concurrent use.
type Executor struct {
	gate    *semaphore.Weighted
	timeout time.Duration
	logger  *logger.Logger
}

// NewExecutor creates an executor with the default concurrency cap.
func NewExecutor(log *logger.Logger) *Executor {
	return NewExecutorWithLimit(DefaultMaxConcurrent, log)
}

// NewExecutorWithLimit creates an executor with a custom concurrency cap.
func NewExecutorWithLimit(maxConcurrent int, log *logger.Logger) *Executor {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if log == nil {
		log = logger.Disabled()
	}
	return &Executor{
		gate:    semaphore.NewWeighted(int64(maxConcurrent)),
		timeout: DefaultTimeout,
		logger:  log,
	}
}

// WithTimeout returns a copy of the executor using the given per-command
// deadline. The concurrency gate is shared with the original.
func (e *Executor) WithTimeout(timeout time.Duration) *Executor {
	cp := *e
	cp.timeout = timeout
	return &cp
}

// CheckInstalled verifies that tmux can be invoked.
func (e *Executor) CheckInstalled(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "tmux", "-V").Output()
	if err != nil {
		return ErrNotInstalled
	}
	e.logger.Debug("tmux version", "version", strings.TrimSpace(string(out)))
	return nil
}

// Execute runs a tmux command and returns its stdout. A non-zero exit is a
// CommandError carrying stderr; a deadline expiry is a TimeoutError.
func (e *Executor) Execute(ctx context.Context, args ...string) (string, error) {
	if err := e.gate.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire tmux command slot: %w", err)
	}
	defer e.gate.Release(1)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "tmux", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.DebugCommand("tmux", args, "")

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &TimeoutError{Timeout: e.timeout}
		}
		return "", &CommandError{
			Command: "tmux " + strings.Join(args, " "),
			Stderr:  strings.TrimSpace(stderr.String()),
		}
	}
	return stdout.String(), nil
}

// SessionExists reports whether a tmux session exists. The non-zero exit of
// has-session means "no", not an error.
func (e *Executor) SessionExists(ctx context.Context, sessionName string) (bool, error) {
	_, err := e.Execute(ctx, "has-session", "-t", sessionName)
	if err == nil {
		return true, nil
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return false, nil
	}
	return false, err
}

// CreateSession creates a detached session of fixed geometry in workingDir,
// running program (or the default shell when empty). remain-on-exit is set
// immediately so a dead pane stays observable.
func (e *Executor) CreateSession(ctx context.Context, sessionName, workingDir, program string) error {
	args := []string{
		"new-session", "-d",
		"-s", sessionName,
		"-c", workingDir,
		"-x", "200",
		"-y", "50",
	}
	if program != "" {
		args = append(args, program)
	}

	if _, err := e.Execute(ctx, args...); err != nil {
		return err
	}

	if _, err := e.Execute(ctx, "set-option", "-t", sessionName, "remain-on-exit", "on"); err != nil {
		return err
	}
	return nil
}

// KillSession terminates a tmux session.
func (e *Executor) KillSession(ctx context.Context, sessionName string) error {
	_, err := e.Execute(ctx, "kill-session", "-t", sessionName)
	return err
}

// ListSessions returns the names of all tmux sessions.
func (e *Executor) ListSessions(ctx context.Context) ([]string, error) {
	out, err := e.Execute(ctx, "list-sessions", "-F", "#{session_name}")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// IsPaneDead reports whether the session's pane process has exited.
func (e *Executor) IsPaneDead(ctx context.Context, sessionName string) (bool, error) {
	out, err := e.Execute(ctx, "list-panes", "-t", sessionName, "-F", "#{pane_dead}")
	if err != nil {
		return false, err
	}
	trimmed := strings.TrimSpace(out)
	if _, err := strconv.Atoi(trimmed); err != nil {
		return false, &ParseError{Output: trimmed}
	}
	return trimmed == "1", nil
}

// SendKeys forwards keys to a session verbatim.
func (e *Executor) SendKeys(ctx context.Context, sessionName, keys string) error {
	_, err := e.Execute(ctx, "send-keys", "-t", sessionName, keys)
	return err
}

// CapturePane returns the pane's text. start/end bound the capture; a start
// of -1000 includes the last 1000 lines of scrollback. Nil means tmux's own
// default bound.
func (e *Executor) CapturePane(ctx context.Context, sessionName string, start, end *int) (string, error) {
	args := []string{"capture-pane", "-t", sessionName, "-p"}
	if start != nil {
		args = append(args, "-S", strconv.Itoa(*start))
	}
	if end != nil {
		args = append(args, "-E", strconv.Itoa(*end))
	}

	out, err := e.Execute(ctx, args...)
	if err != nil {
		return "", &CaptureError{Session: sessionName, Err: err}
	}
	return out, nil
}
