package ui

import (
	"github.com/fatih/color"

	"claude-commander/internal/session"
)

// Color scheme shared by the CLI commands
var (
	Primary = color.New(color.FgHiRed).Add(color.Bold)
	Success = color.New(color.FgHiGreen).Add(color.Bold)
	Error   = color.New(color.FgHiRed).Add(color.Bold)
	Warning = color.New(color.FgHiYellow).Add(color.Bold)
	Info    = color.New(color.FgHiCyan).Add(color.Bold)

	TextMuted = color.New(color.FgHiBlack)

	StatusRunning = color.New(color.FgHiGreen)
	StatusPaused  = color.New(color.FgHiYellow)
	StatusStopped = color.New(color.FgHiBlack)
	StatusError   = color.New(color.FgHiRed)
)

func Title(text string) string {
	return Primary.Sprint(text)
}

func SuccessMsg(text string) string {
	return Success.Sprint("✓ " + text)
}

func ErrorMsg(text string) string {
	return Error.Sprint("✗ " + text)
}

func WarningMsg(text string) string {
	return Warning.Sprint("⚠ " + text)
}

func InfoMsg(text string) string {
	return Info.Sprint("ℹ " + text)
}

func Highlight(text string) string {
	return Primary.Sprint(text)
}

func Dim(text string) string {
	return TextMuted.Sprint(text)
}

func Bold(text string) string {
	return color.New(color.Bold).Sprint(text)
}

// FormatStatus renders a lifecycle state with its indicator dot.
func FormatStatus(status session.Status) string {
	switch status {
	case session.StatusRunning:
		return StatusRunning.Sprint("● running")
	case session.StatusPaused:
		return StatusPaused.Sprint("● paused")
	case session.StatusStopped:
		return StatusStopped.Sprint("● stopped")
	default:
		return TextMuted.Sprint("● " + string(status))
	}
}

// FormatAgentState renders detected agent activity.
func FormatAgentState(state session.AgentState) string {
	switch state {
	case session.AgentWaiting:
		return StatusPaused.Sprint("◆ waiting")
	case session.AgentProcessing:
		return StatusRunning.Sprint("◆ processing")
	case session.AgentError:
		return StatusError.Sprint("◆ error")
	default:
		return TextMuted.Sprint("◆ unknown")
	}
}
