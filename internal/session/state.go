package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Version is stamped into the state file on every save.
const Version = "0.3.0"

// AppState is the authoritative in-memory model of projects and sessions,
// plus its JSON persistence. All mutations go through its methods under a
// single writer lock; reads take the shared lock.
type AppState struct {
	mu sync.RWMutex

	Projects map[ProjectID]*Project
	Sessions map[SessionID]*Session

	// UI state that survives restarts.
	SeenHelp            bool
	LastSelectedProject ProjectID
	LastSelectedSession SessionID

	statePath string
}

// stateDocument is the on-disk shape. Unknown keys are ignored on read and
// missing keys default.
type stateDocument struct {
	Projects            map[ProjectID]*Project `json:"projects"`
	Sessions            map[SessionID]*Session `json:"sessions"`
	SeenHelp            bool                   `json:"seen_help"`
	LastSelectedProject ProjectID              `json:"last_selected_project"`
	LastSelectedSession SessionID              `json:"last_selected_session"`
	Version             string                 `json:"version"`
}

// NewAppState creates an empty state that persists to path.
func NewAppState(path string) *AppState {
	return &AppState{
		Projects:  make(map[ProjectID]*Project),
		Sessions:  make(map[SessionID]*Session),
		statePath: path,
	}
}

// LoadAppState reads the state file at path, returning an empty state when
// the file does not exist yet.
func LoadAppState(path string) (*AppState, error) {
	state := NewAppState(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var doc stateDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if doc.Projects != nil {
		state.Projects = doc.Projects
	}
	if doc.Sessions != nil {
		state.Sessions = doc.Sessions
	}
	state.SeenHelp = doc.SeenHelp
	state.LastSelectedProject = doc.LastSelectedProject
	state.LastSelectedSession = doc.LastSelectedSession

	return state, nil
}

// Save writes the state atomically: marshal, write to a temporary sibling,
// rename over the target.
func (s *AppState) Save() error {
	s.mu.RLock()
	doc := stateDocument{
		Projects:            s.Projects,
		Sessions:            s.Sessions,
		SeenHelp:            s.SeenHelp,
		LastSelectedProject: s.LastSelectedProject,
		LastSelectedSession: s.LastSelectedSession,
		Version:             Version,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return &PersistenceError{Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(s.statePath), 0o755); err != nil {
		return &PersistenceError{Err: err}
	}

	tmp := s.statePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &PersistenceError{Err: err}
	}
	if err := os.Rename(tmp, s.statePath); err != nil {
		return &PersistenceError{Err: err}
	}
	return nil
}

// AddProject registers a project.
func (s *AppState) AddProject(p *Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Projects[p.ID] = p
}

// RemoveProject drops a project and all of its sessions. It returns the
// removed project, or nil when unknown.
func (s *AppState) RemoveProject(id ProjectID) *Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.Projects[id]
	if !ok {
		return nil
	}
	for _, sessionID := range project.Worktrees {
		delete(s.Sessions, sessionID)
	}
	delete(s.Projects, id)
	return project
}

// GetProject returns a copy of the project, or nil.
func (s *AppState) GetProject(id ProjectID) *Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProject(s.Projects[id])
}

// ListProjects returns copies of all projects.
func (s *AppState) ListProjects() []*Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projects := make([]*Project, 0, len(s.Projects))
	for _, p := range s.Projects {
		projects = append(projects, cloneProject(p))
	}
	return projects
}

// AddSession records a session and links it to its parent project's child
// list.
func (s *AppState) AddSession(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Sessions[sess.ID] = sess
	if project, ok := s.Projects[sess.ProjectID]; ok {
		project.AddWorktree(sess.ID)
	}
}

// RemoveSession drops a session and unlinks it from its parent. It returns
// the removed session, or nil when unknown.
func (s *AppState) RemoveSession(id SessionID) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.Sessions[id]
	if !ok {
		return nil
	}
	delete(s.Sessions, id)
	if project, ok := s.Projects[sess.ProjectID]; ok {
		project.RemoveWorktree(id)
	}
	return sess
}

// GetSession returns a copy of the session, or nil.
func (s *AppState) GetSession(id SessionID) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSession(s.Sessions[id])
}

// UpdateSession applies fn to the stored session under the writer lock.
// It reports whether the session existed.
func (s *AppState) UpdateSession(id SessionID, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.Sessions[id]
	if !ok {
		return false
	}
	fn(sess)
	return true
}

// ProjectSessions returns copies of all sessions belonging to a project, in
// the project's child order.
func (s *AppState) ProjectSessions(projectID ProjectID) []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.Projects[projectID]
	if !ok {
		return nil
	}
	sessions := make([]*Session, 0, len(project.Worktrees))
	for _, id := range project.Worktrees {
		if sess, ok := s.Sessions[id]; ok {
			sessions = append(sessions, cloneSession(sess))
		}
	}
	return sessions
}

// ActiveSessions returns copies of all running or paused sessions.
func (s *AppState) ActiveSessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*Session
	for _, sess := range s.Sessions {
		if sess.Status.IsActive() {
			active = append(active, cloneSession(sess))
		}
	}
	return active
}

// SessionCount returns the number of sessions.
func (s *AppState) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Sessions)
}

// ProjectCount returns the number of projects.
func (s *AppState) ProjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Projects)
}

// SetSelection remembers the last selected project and session for the
// dashboard.
func (s *AppState) SetSelection(projectID ProjectID, sessionID SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastSelectedProject = projectID
	s.LastSelectedSession = sessionID
}

// MarkHelpSeen latches the seen_help flag.
func (s *AppState) MarkHelpSeen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SeenHelp = true
}

func cloneProject(p *Project) *Project {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Worktrees = append([]SessionID(nil), p.Worktrees...)
	return &cp
}

func cloneSession(sess *Session) *Session {
	if sess == nil {
		return nil
	}
	cp := *sess
	return &cp
}
