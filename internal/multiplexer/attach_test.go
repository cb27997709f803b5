//go:build linux || darwin

package multiplexer

import (
	"testing"
)

func TestAttachResultString(t *testing.T) {
	if AttachDetached.String() != "detached" {
		t.Errorf("Unexpected: %q", AttachDetached.String())
	}
	if AttachSessionEnded.String() != "session ended" {
		t.Errorf("Unexpected: %q", AttachSessionEnded.String())
	}
}

func TestDetachByteIsCtrlQ(t *testing.T) {
	if detachByte != 0x11 {
		t.Errorf("Expected Ctrl+Q (0x11), got 0x%02x", detachByte)
	}
}

func TestTerminalSizeFallback(t *testing.T) {
	// Under go test stdout is not a terminal, so the fallback applies.
	cols, rows := terminalSize()
	if cols == 0 || rows == 0 {
		t.Errorf("Expected non-zero geometry, got %dx%d", cols, rows)
	}
}
