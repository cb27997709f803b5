package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"claude-commander/internal/config"
	"claude-commander/internal/git"
	"claude-commander/internal/logger"
	"claude-commander/internal/multiplexer"
	"claude-commander/internal/session"
)

// SessionManager is the session-lifecycle state machine. It owns the store,
// both caches and both drivers, and is the only component that coordinates
// them. Lifecycle operations surface every error; best-effort cleanup paths
// log and continue.
type SessionManager struct {
	config   *config.Config
	state    *session.AppState
	tmux     *multiplexer.Executor
	capture  *multiplexer.PaneCache
	detector *multiplexer.StateDetector
	diffs    *git.DiffCache
	logger   *logger.Logger

	// gh availability, probed once so PR polling never forks when the CLI
	// is missing.
	ghOnce      sync.Once
	ghAvailable bool

	// One input forwarder per session, created on first use.
	forwardersMu sync.Mutex
	forwarders   map[session.SessionID]*multiplexer.InputForwarder
}

// NewSessionManager wires the manager from configuration and a loaded
// store. The tmux concurrency gate is created once here and shared by every
// executor copy.
func NewSessionManager(cfg *config.Config, state *session.AppState, log *logger.Logger) *SessionManager {
	if log == nil {
		log = logger.Disabled()
	}

	tmux := multiplexer.NewExecutorWithLimit(cfg.MaxConcurrentTmux, log)
	capture := multiplexer.NewPaneCache(tmux, time.Duration(cfg.CaptureCacheTTLMs)*time.Millisecond)
	diffs := git.NewDiffCache(time.Duration(cfg.DiffCacheTTLMs) * time.Millisecond)

	return &SessionManager{
		config:     cfg,
		state:      state,
		tmux:       tmux,
		capture:    capture,
		detector:   multiplexer.NewStateDetector(),
		diffs:      diffs,
		logger:     log,
		forwarders: make(map[session.SessionID]*multiplexer.InputForwarder),
	}
}

// Config returns the manager's configuration.
func (m *SessionManager) Config() *config.Config {
	return m.config
}

// State returns the underlying store for read access.
func (m *SessionManager) State() *session.AppState {
	return m.state
}

// Tmux returns the shared executor.
func (m *SessionManager) Tmux() *multiplexer.Executor {
	return m.tmux
}

// CheckTmux verifies tmux is installed.
func (m *SessionManager) CheckTmux(ctx context.Context) error {
	return m.tmux.CheckInstalled(ctx)
}

// AddProject registers the repository at repoPath and persists the store.
func (m *SessionManager) AddProject(ctx context.Context, repoPath string) (session.ProjectID, error) {
	repo, err := git.Discover(repoPath)
	if err != nil {
		return "", err
	}

	mainBranch, err := repo.DetectDefaultBranch(ctx)
	if err != nil {
		return "", err
	}

	project := session.NewProject(repo.Name(), repo.Path(), mainBranch)

	m.logger.Info("Adding project",
		"name", project.Name,
		"repo_path", project.RepoPath,
		"main_branch", mainBranch)

	m.state.AddProject(project)
	if err := m.state.Save(); err != nil {
		return project.ID, err
	}
	return project.ID, nil
}

// RemoveProject kills every child session's tmux session best-effort, then
// removes the project and all its sessions from the store.
func (m *SessionManager) RemoveProject(ctx context.Context, projectID session.ProjectID) error {
	project := m.state.GetProject(projectID)
	if project == nil {
		return fmt.Errorf("%w: %s", session.ErrProjectNotFound, projectID.Short())
	}

	for _, sessionID := range project.Worktrees {
		sess := m.state.GetSession(sessionID)
		if sess == nil {
			continue
		}
		m.closeForwarder(sessionID)
		if !sess.Status.IsActive() {
			continue
		}
		if err := m.tmux.KillSession(ctx, sess.TmuxSessionName); err != nil {
			m.logger.Warn("Failed to kill tmux session",
				"tmux_name", sess.TmuxSessionName,
				"error", err)
		}
	}

	m.state.RemoveProject(projectID)
	if err := m.state.Save(); err != nil {
		return err
	}

	m.logger.Info("Removed project", "project_id", projectID.Short())
	return nil
}

// CreateSession creates a worktree on a branch derived from title, starts
// the program in a fresh tmux session there, and records the session.
func (m *SessionManager) CreateSession(ctx context.Context, projectID session.ProjectID, title, program string) (session.SessionID, error) {
	start := time.Now()

	if program == "" {
		program = m.config.DefaultProgram
	}

	project := m.state.GetProject(projectID)
	if project == nil {
		return "", fmt.Errorf("%w: %s", session.ErrProjectNotFound, projectID.Short())
	}

	branchName := session.DeriveBranch(title, m.config.BranchPrefix)
	if session.Sanitize(title) == "" {
		return "", fmt.Errorf("%w: %q", session.ErrInvalidName, title)
	}

	m.logger.Info("Creating session",
		"title", title,
		"branch", branchName,
		"project_id", projectID.Short())

	repo, err := git.Open(project.RepoPath)
	if err != nil {
		return "", err
	}
	worktreesDir, err := m.config.ResolvedWorktreesDir()
	if err != nil {
		return "", err
	}
	worktrees := git.NewWorktreeManager(repo, worktreesDir)

	worktreeName := fmt.Sprintf("%s-%s", session.Sanitize(title), uuid.New().String()[:8])

	info, err := worktrees.Create(ctx, worktreeName, branchName)
	if err != nil {
		return "", err
	}

	sess := session.NewSession(projectID, title, branchName, info.Path, program)
	sess.BaseCommit = info.Head

	if err := m.tmux.CreateSession(ctx, sess.TmuxSessionName, info.Path, program); err != nil {
		return "", err
	}

	m.state.AddSession(sess)
	if err := m.state.Save(); err != nil {
		return sess.ID, err
	}

	m.logger.Performance("CreateSession", start,
		slog.String("session_id", sess.ID.Short()),
		slog.String("tmux_name", sess.TmuxSessionName))

	return sess.ID, nil
}

// PauseSession moves a running session to paused. The tmux session is left
// alone.
func (m *SessionManager) PauseSession(sessionID session.SessionID) error {
	sess := m.state.GetSession(sessionID)
	if sess == nil {
		return fmt.Errorf("%w: %s", session.ErrNotFound, sessionID.Short())
	}
	if !sess.Status.CanPause() {
		return fmt.Errorf("%w: %s is %s", session.ErrInvalidState, sessionID.Short(), sess.Status)
	}

	m.state.UpdateSession(sessionID, func(s *session.Session) {
		s.SetStatus(session.StatusPaused)
	})
	if err := m.state.Save(); err != nil {
		return err
	}

	m.logger.Info("Paused session", "session_id", sessionID.Short())
	return nil
}

// ResumeSession moves a paused session back to running, recreating its tmux
// session if it has gone away. Two racing resumes may both observe a missing
// tmux session; the loser surfaces the create failure and the caller should
// re-check existence.
func (m *SessionManager) ResumeSession(ctx context.Context, sessionID session.SessionID) error {
	sess := m.state.GetSession(sessionID)
	if sess == nil {
		return fmt.Errorf("%w: %s", session.ErrNotFound, sessionID.Short())
	}
	if !sess.Status.CanResume() {
		return fmt.Errorf("%w: %s is %s", session.ErrInvalidState, sessionID.Short(), sess.Status)
	}

	exists, err := m.tmux.SessionExists(ctx, sess.TmuxSessionName)
	if err != nil {
		return err
	}
	if !exists {
		if err := m.tmux.CreateSession(ctx, sess.TmuxSessionName, sess.WorktreePath, sess.Program); err != nil {
			return err
		}
	}

	m.state.UpdateSession(sessionID, func(s *session.Session) {
		s.SetStatus(session.StatusRunning)
	})
	if err := m.state.Save(); err != nil {
		return err
	}

	m.logger.Info("Resumed session", "session_id", sessionID.Short())
	return nil
}

// KillSession stops a session: best-effort tmux kill, optional worktree
// removal, lifecycle to stopped.
func (m *SessionManager) KillSession(ctx context.Context, sessionID session.SessionID, removeWorktree bool) error {
	sess := m.state.GetSession(sessionID)
	if sess == nil {
		return fmt.Errorf("%w: %s", session.ErrNotFound, sessionID.Short())
	}

	if err := m.tmux.KillSession(ctx, sess.TmuxSessionName); err != nil {
		m.logger.Warn("Failed to kill tmux session",
			"tmux_name", sess.TmuxSessionName,
			"error", err)
	}

	if removeWorktree {
		if project := m.state.GetProject(sess.ProjectID); project != nil {
			if repo, err := git.Open(project.RepoPath); err == nil {
				if worktreesDir, derr := m.config.ResolvedWorktreesDir(); derr == nil {
					worktrees := git.NewWorktreeManager(repo, worktreesDir)
					if err := worktrees.Remove(ctx, sess.WorktreePath, true); err != nil {
						m.logger.Warn("Failed to remove worktree",
							"worktree_path", sess.WorktreePath,
							"error", err)
					}
				}
			}
		}
	}

	m.state.UpdateSession(sessionID, func(s *session.Session) {
		s.SetStatus(session.StatusStopped)
	})
	if err := m.state.Save(); err != nil {
		return err
	}

	m.capture.Invalidate(sessionID)
	m.diffs.Invalidate(sessionID)
	m.closeForwarder(sessionID)

	m.logger.Info("Killed session", "session_id", sessionID.Short())
	return nil
}

// DeleteSession removes a session from the store, killing it first (and
// removing its worktree) when still active.
func (m *SessionManager) DeleteSession(ctx context.Context, sessionID session.SessionID) error {
	sess := m.state.GetSession(sessionID)
	if sess == nil {
		return fmt.Errorf("%w: %s", session.ErrNotFound, sessionID.Short())
	}

	if sess.Status.IsActive() {
		if err := m.KillSession(ctx, sessionID, true); err != nil {
			return err
		}
	}

	m.state.RemoveSession(sessionID)
	if err := m.state.Save(); err != nil {
		return err
	}

	m.capture.Invalidate(sessionID)
	m.diffs.Invalidate(sessionID)
	m.closeForwarder(sessionID)

	m.logger.Info("Deleted session", "session_id", sessionID.Short())
	return nil
}

// AttachTarget verifies the session can be attached to and returns the tmux
// session name to attach. A vanished tmux session or a dead pane marks the
// session stopped and fails with MultiplexerSessionNotFoundError.
func (m *SessionManager) AttachTarget(ctx context.Context, sessionID session.SessionID) (string, error) {
	sess := m.state.GetSession(sessionID)
	if sess == nil {
		return "", fmt.Errorf("%w: %s", session.ErrNotFound, sessionID.Short())
	}
	if !sess.Status.CanAttach() {
		return "", fmt.Errorf("%w: %s is %s", session.ErrInvalidState, sessionID.Short(), sess.Status)
	}

	exists, err := m.tmux.SessionExists(ctx, sess.TmuxSessionName)
	if err != nil {
		return "", err
	}
	if !exists {
		m.markStopped(sessionID)
		return "", &session.MultiplexerSessionNotFoundError{TmuxName: sess.TmuxSessionName}
	}

	paneDead, err := m.tmux.IsPaneDead(ctx, sess.TmuxSessionName)
	if err == nil && paneDead {
		// The program inside exited; the session is no longer attachable.
		if kerr := m.tmux.KillSession(ctx, sess.TmuxSessionName); kerr != nil {
			m.logger.Warn("Failed to kill dead-pane tmux session",
				"tmux_name", sess.TmuxSessionName,
				"error", kerr)
		}
		m.markStopped(sessionID)
		return "", &session.MultiplexerSessionNotFoundError{
			TmuxName: sess.TmuxSessionName,
			Reason:   "program exited",
		}
	}

	return sess.TmuxSessionName, nil
}

func (m *SessionManager) markStopped(sessionID session.SessionID) {
	m.state.UpdateSession(sessionID, func(s *session.Session) {
		s.SetStatus(session.StatusStopped)
	})
	if err := m.state.Save(); err != nil {
		m.logger.Warn("Failed to persist stopped session",
			"session_id", sessionID.Short(),
			"error", err)
	}
}

// Content returns the session's pane snapshot through the capture cache.
func (m *SessionManager) Content(ctx context.Context, sessionID session.SessionID) (*multiplexer.Snapshot, error) {
	sess := m.state.GetSession(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", session.ErrNotFound, sessionID.Short())
	}
	return m.capture.Get(ctx, sessionID, sess.TmuxSessionName)
}

// Diff returns the session's working-tree diff through the diff cache.
func (m *SessionManager) Diff(ctx context.Context, sessionID session.SessionID) (*git.DiffInfo, error) {
	sess := m.state.GetSession(sessionID)
	if sess == nil {
		return nil, fmt.Errorf("%w: %s", session.ErrNotFound, sessionID.Short())
	}
	return m.diffs.Get(ctx, sessionID, sess.WorktreePath)
}

// DetectAgentState classifies the session's current pane content.
func (m *SessionManager) DetectAgentState(ctx context.Context, sessionID session.SessionID) (session.AgentState, error) {
	snapshot, err := m.Content(ctx, sessionID)
	if err != nil {
		return session.AgentUnknown, err
	}
	return m.detector.Detect(snapshot), nil
}

// RefreshActivityAll recomputes the agent state of every active session.
// Idempotent; callers may run it at any cadence.
func (m *SessionManager) RefreshActivityAll(ctx context.Context) {
	for _, sess := range m.state.ActiveSessions() {
		state, err := m.DetectAgentState(ctx, sess.ID)
		if err != nil {
			continue
		}
		m.state.UpdateSession(sess.ID, func(s *session.Session) {
			s.SetAgentState(state)
		})
	}
}

// SendInput queues text for the session's tmux pane followed by Enter,
// without attaching. Delivery is asynchronous and best-effort.
func (m *SessionManager) SendInput(sessionID session.SessionID, text string) error {
	sess := m.state.GetSession(sessionID)
	if sess == nil {
		return fmt.Errorf("%w: %s", session.ErrNotFound, sessionID.Short())
	}
	if !sess.Status.IsActive() {
		return fmt.Errorf("%w: %s is %s", session.ErrInvalidState, sessionID.Short(), sess.Status)
	}

	m.forwarder(sessionID, sess.TmuxSessionName).SendLine(text)
	return nil
}

func (m *SessionManager) forwarder(sessionID session.SessionID, tmuxName string) *multiplexer.InputForwarder {
	m.forwardersMu.Lock()
	defer m.forwardersMu.Unlock()

	if f, ok := m.forwarders[sessionID]; ok {
		return f
	}
	f := multiplexer.NewInputForwarder(m.tmux, tmuxName, m.logger)
	m.forwarders[sessionID] = f
	return f
}

func (m *SessionManager) closeForwarder(sessionID session.SessionID) {
	m.forwardersMu.Lock()
	defer m.forwardersMu.Unlock()

	if f, ok := m.forwarders[sessionID]; ok {
		f.Close()
		delete(m.forwarders, sessionID)
	}
}

// CheckPRs probes open pull requests for all active sessions. The gh CLI is
// probed once; when it is missing every poll is a no-op. Failures are absent
// results, never errors.
func (m *SessionManager) CheckPRs(ctx context.Context) map[session.SessionID]*git.PRInfo {
	m.ghOnce.Do(func() {
		m.ghAvailable = git.IsGHAvailable(ctx)
		m.logger.Debug("Probed gh CLI", "available", m.ghAvailable)
	})

	results := make(map[session.SessionID]*git.PRInfo)
	if !m.ghAvailable {
		return results
	}
	for _, sess := range m.state.ActiveSessions() {
		project := m.state.GetProject(sess.ProjectID)
		if project == nil {
			continue
		}
		if pr := git.CheckPRForBranch(ctx, project.RepoPath, sess.Branch); pr != nil {
			results[sess.ID] = pr
		}
	}
	return results
}
