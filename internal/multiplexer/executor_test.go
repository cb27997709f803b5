package multiplexer

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestErrorMessages(t *testing.T) {
	cmdErr := &CommandError{Command: "tmux has-session -t x", Stderr: "no server running"}
	if !strings.Contains(cmdErr.Error(), "no server running") {
		t.Errorf("Expected stderr in message, got %q", cmdErr.Error())
	}

	timeoutErr := &TimeoutError{Timeout: 5 * time.Second}
	if !strings.Contains(timeoutErr.Error(), "5s") {
		t.Errorf("Expected duration in message, got %q", timeoutErr.Error())
	}

	if !errors.Is(ErrNotInstalled, ErrNotInstalled) {
		t.Error("Sentinel must match itself")
	}
}

func TestCaptureErrorUnwraps(t *testing.T) {
	inner := &CommandError{Command: "tmux capture-pane", Stderr: "boom"}
	captureErr := &CaptureError{Session: "cc-12345678", Err: inner}

	var cmdErr *CommandError
	if !errors.As(captureErr, &cmdErr) {
		t.Error("Expected CaptureError to unwrap to CommandError")
	}
}

func TestWithTimeoutSharesGate(t *testing.T) {
	base := NewExecutorWithLimit(4, nil)
	custom := base.WithTimeout(10 * time.Second)

	if custom.timeout != 10*time.Second {
		t.Errorf("Expected 10s timeout, got %s", custom.timeout)
	}
	if base.timeout != DefaultTimeout {
		t.Errorf("Expected original timeout untouched, got %s", base.timeout)
	}
	if base.gate != custom.gate {
		t.Error("Expected the concurrency gate to be shared")
	}
}

func TestNewExecutorClampsLimit(t *testing.T) {
	e := NewExecutorWithLimit(0, nil)
	if e.gate == nil {
		t.Fatal("Expected a gate")
	}
	if !e.gate.TryAcquire(DefaultMaxConcurrent) {
		t.Errorf("Expected a non-positive limit to fall back to %d", DefaultMaxConcurrent)
	}
}
