package tui

import (
	"claude-commander/internal/git"
	"claude-commander/internal/multiplexer"
	"claude-commander/internal/session"
)

// tickMsg drives the periodic refresh at the configured FPS.
type tickMsg struct{}

// prTickMsg drives the slow PR polling loop.
type prTickMsg struct{}

// activityRefreshedMsg reports that agent states have been recomputed.
type activityRefreshedMsg struct{}

// contentMsg carries a pane snapshot for the selected session. Stale
// generations are dropped.
type contentMsg struct {
	generation uint64
	sessionID  session.SessionID
	snapshot   *multiplexer.Snapshot
	err        error
}

// diffMsg carries a diff for the selected session.
type diffMsg struct {
	generation uint64
	sessionID  session.SessionID
	diff       *git.DiffInfo
	err        error
}

// prResultsMsg carries the latest PR probe results.
type prResultsMsg struct {
	prs map[session.SessionID]*git.PRInfo
}

// attachFinishedMsg reports the outcome of an attach handoff.
type attachFinishedMsg struct {
	sessionID session.SessionID
	result    multiplexer.AttachResult
	err       error
}

// operationDoneMsg reports a lifecycle operation outcome.
type operationDoneMsg struct {
	action string
	err    error
}
