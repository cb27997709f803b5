package multiplexer

import (
	"strings"
	"testing"

	"claude-commander/internal/session"
)

func detect(t *testing.T, content string) session.AgentState {
	t.Helper()
	return NewStateDetector().Detect(NewSnapshot(content))
}

func TestDetectWaitingForInput(t *testing.T) {
	if got := detect(t, "done\n> "); got != session.AgentWaiting {
		t.Errorf("Expected waiting for claude prompt, got %s", got)
	}
	if got := detect(t, "output\nuser@host:~$ "); got != session.AgentWaiting {
		t.Errorf("Expected waiting for shell prompt, got %s", got)
	}
	if got := detect(t, "aider> "); got != session.AgentWaiting {
		t.Errorf("Expected waiting for aider prompt, got %s", got)
	}
	if got := detect(t, "─── aider ─── "); got != session.AgentWaiting {
		t.Errorf("Expected waiting for separator line, got %s", got)
	}
}

func TestDetectProcessing(t *testing.T) {
	if got := detect(t, "Processing ⠋"); got != session.AgentProcessing {
		t.Errorf("Expected processing for spinner, got %s", got)
	}
	if got := detect(t, "Thinking..."); got != session.AgentProcessing {
		t.Errorf("Expected processing for loading text, got %s", got)
	}
	if got := detect(t, "[===>  ]"); got != session.AgentProcessing {
		t.Errorf("Expected processing for progress bar, got %s", got)
	}
	if got := detect(t, "[###  ]"); got != session.AgentProcessing {
		t.Errorf("Expected processing for hash bar, got %s", got)
	}
	// A long line without trailing whitespace looks like token streaming.
	if got := detect(t, "The quick brown fox jumps over the lazy"); got != session.AgentProcessing {
		t.Errorf("Expected processing for streaming line, got %s", got)
	}
}

func TestDetectError(t *testing.T) {
	if got := detect(t, "Error: something went wrong"); got != session.AgentError {
		t.Errorf("Expected error, got %s", got)
	}
	if got := detect(t, "API rate limit exceeded"); got != session.AgentError {
		t.Errorf("Expected error for rate limit, got %s", got)
	}
	if got := detect(t, "panic: runtime error"); got != session.AgentError {
		t.Errorf("Expected error for panic, got %s", got)
	}
	if got := detect(t, "Traceback (most recent call last):"); got != session.AgentError {
		t.Errorf("Expected error for traceback, got %s", got)
	}
}

func TestErrorOutranksPrompt(t *testing.T) {
	if got := detect(t, "Error: x\n> "); got != session.AgentError {
		t.Errorf("Expected error to outrank prompt, got %s", got)
	}
}

func TestDetectUnknown(t *testing.T) {
	if got := detect(t, ""); got != session.AgentUnknown {
		t.Errorf("Expected unknown for empty content, got %s", got)
	}
}

func TestDetectOnlyInspectsTail(t *testing.T) {
	// An old error scrolled beyond the analysis window must not count.
	var b strings.Builder
	b.WriteString("Error: ancient history\n")
	for i := 0; i < 60; i++ {
		b.WriteString("plain output line number here ok \n")
	}
	b.WriteString("> ")

	if got := detect(t, b.String()); got != session.AgentWaiting {
		t.Errorf("Expected stale error to be out of window, got %s", got)
	}
}
