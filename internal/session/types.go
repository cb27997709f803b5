package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProjectID uniquely identifies a registered repository.
type ProjectID string

// NewProjectID generates a fresh random project ID.
func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

// Short returns the first 8 characters, used for display.
func (id ProjectID) Short() string {
	return shortID(string(id))
}

func (id ProjectID) String() string {
	return string(id)
}

// SessionID uniquely identifies a worktree session.
type SessionID string

// NewSessionID generates a fresh random session ID.
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// Short returns the first 8 characters, used for display and for deriving
// the tmux session name.
func (id SessionID) Short() string {
	return shortID(string(id))
}

func (id SessionID) String() string {
	return string(id)
}

func shortID(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

// Status is the lifecycle state of a worktree session.
type Status string

const (
	// StatusRunning means the session is live and its tmux session should exist.
	StatusRunning Status = "running"
	// StatusPaused means the session is set aside; the tmux session may or may
	// not still exist and is recreated on resume if needed.
	StatusPaused Status = "paused"
	// StatusStopped means the session has been killed or its pane died.
	StatusStopped Status = "stopped"
)

// IsActive reports whether the session is running or paused.
func (s Status) IsActive() bool {
	return s == StatusRunning || s == StatusPaused
}

// CanAttach reports whether the session may be attached to.
func (s Status) CanAttach() bool {
	return s == StatusRunning || s == StatusPaused
}

// CanPause reports whether the session may be paused.
func (s Status) CanPause() bool {
	return s == StatusRunning
}

// CanResume reports whether the session may be resumed.
func (s Status) CanResume() bool {
	return s == StatusPaused
}

// AgentState is the detected activity of the agent inside a session.
type AgentState string

const (
	// AgentWaiting means a prompt is visible and the agent wants input.
	AgentWaiting AgentState = "waiting_for_input"
	// AgentProcessing means the agent is actively working.
	AgentProcessing AgentState = "processing"
	// AgentError means the pane tail contains an error indicator.
	AgentError AgentState = "error"
	// AgentUnknown means no pattern matched.
	AgentUnknown AgentState = "unknown"
)

// Project is a registered git repository, the parent of worktree sessions.
type Project struct {
	ID ProjectID `json:"id"`
	// Display name, typically the repository directory name.
	Name string `json:"name"`
	// Path to the main repository.
	RepoPath string `json:"repo_path"`
	// Default branch name, e.g. "main" or "master".
	MainBranch string    `json:"main_branch"`
	CreatedAt  time.Time `json:"created_at"`
	// Ordered worktree sessions belonging to this project.
	Worktrees []SessionID `json:"worktrees"`
}

// NewProject creates a project with a fresh ID.
func NewProject(name, repoPath, mainBranch string) *Project {
	return &Project{
		ID:         NewProjectID(),
		Name:       name,
		RepoPath:   repoPath,
		MainBranch: mainBranch,
		CreatedAt:  time.Now().UTC(),
	}
}

// AddWorktree appends a session to the project's child list; duplicates are
// ignored.
func (p *Project) AddWorktree(id SessionID) {
	for _, existing := range p.Worktrees {
		if existing == id {
			return
		}
	}
	p.Worktrees = append(p.Worktrees, id)
}

// RemoveWorktree drops a session from the project's child list.
func (p *Project) RemoveWorktree(id SessionID) {
	kept := p.Worktrees[:0]
	for _, existing := range p.Worktrees {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	p.Worktrees = kept
}

// Session pairs a git worktree with a dedicated tmux session.
type Session struct {
	ID        SessionID `json:"id"`
	ProjectID ProjectID `json:"project_id"`
	// User-facing title the branch name is derived from.
	Title string `json:"title"`
	// Git branch checked out in the worktree.
	Branch string `json:"branch"`
	// Path to the worktree directory.
	WorktreePath string     `json:"worktree_path"`
	Status       Status     `json:"status"`
	AgentState   AgentState `json:"agent_state"`
	// Program running in the session, e.g. "claude" or "aider".
	Program      string    `json:"program"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	// Name the tmux session was created under.
	TmuxSessionName string `json:"tmux_session_name"`
	// Commit the worktree branched from, for diff context.
	BaseCommit string `json:"base_commit,omitempty"`
}

// NewSession creates a running session with a fresh ID and a tmux session
// name derived from it.
func NewSession(projectID ProjectID, title, branch, worktreePath, program string) *Session {
	id := NewSessionID()
	now := time.Now().UTC()
	return &Session{
		ID:              id,
		ProjectID:       projectID,
		Title:           title,
		Branch:          branch,
		WorktreePath:    worktreePath,
		Status:          StatusRunning,
		AgentState:      AgentUnknown,
		Program:         program,
		CreatedAt:       now,
		LastActiveAt:    now,
		TmuxSessionName: fmt.Sprintf("cc-%s", id.Short()),
	}
}

// SetStatus updates the lifecycle state and touches the activity timestamp
// when the session comes back to running.
func (s *Session) SetStatus(status Status) {
	s.Status = status
	if status == StatusRunning {
		s.LastActiveAt = time.Now().UTC()
	}
}

// SetAgentState records the detected agent activity.
func (s *Session) SetAgentState(state AgentState) {
	s.AgentState = state
	s.LastActiveAt = time.Now().UTC()
}

// Touch marks the session as recently active.
func (s *Session) Touch() {
	s.LastActiveAt = time.Now().UTC()
}

// MatchesQuery reports whether the session matches a case-insensitive search
// over title, branch and program.
func (s *Session) MatchesQuery(query string) bool {
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(s.Title), query) ||
		strings.Contains(strings.ToLower(s.Branch), query) ||
		strings.Contains(strings.ToLower(s.Program), query)
}

// Sanitize converts a session title into a branch/directory-safe name:
// lowercase, every character outside [a-z0-9-_] replaced with '-', and
// leading/trailing dashes stripped.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

// DeriveBranch builds the branch name for a title, prepending prefix as
// "<prefix>/" when non-empty.
func DeriveBranch(title, prefix string) string {
	sanitized := Sanitize(title)
	if prefix == "" {
		return sanitized
	}
	return fmt.Sprintf("%s/%s", prefix, sanitized)
}
