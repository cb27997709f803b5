package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"claude-commander/internal/config"
	"claude-commander/internal/logger"
	"claude-commander/internal/manager"
	"claude-commander/internal/session"
)

// newManager loads configuration and state and wires the session manager.
// A missing tmux installation is a fatal initialisation error.
func newManager(ctx context.Context) (*manager.SessionManager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	log, err := logger.New(logger.Config{
		Enabled:  cfg.LogFile != "",
		Level:    level,
		FilePath: cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}

	statePath, err := config.StateFilePath()
	if err != nil {
		return nil, err
	}
	state, err := session.LoadAppState(statePath)
	if err != nil {
		return nil, err
	}

	m := manager.NewSessionManager(cfg, state, log)
	if err := m.CheckTmux(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// resolveSession finds a session by full ID, short ID prefix, or title.
func resolveSession(m *manager.SessionManager, identifier string) (*session.Session, error) {
	var byTitle *session.Session
	for _, project := range m.State().ListProjects() {
		for _, sess := range m.State().ProjectSessions(project.ID) {
			if string(sess.ID) == identifier || strings.HasPrefix(string(sess.ID), identifier) {
				return sess, nil
			}
			if sess.Title == identifier && byTitle == nil {
				byTitle = sess
			}
		}
	}
	if byTitle != nil {
		return byTitle, nil
	}
	return nil, fmt.Errorf("%w: %s", session.ErrNotFound, identifier)
}

// resolveProject finds a project by full ID, short ID prefix, or name.
func resolveProject(m *manager.SessionManager, identifier string) (*session.Project, error) {
	var byName *session.Project
	for _, project := range m.State().ListProjects() {
		if string(project.ID) == identifier || strings.HasPrefix(string(project.ID), identifier) {
			return project, nil
		}
		if project.Name == identifier && byName == nil {
			byName = project
		}
	}
	if byName != nil {
		return byName, nil
	}
	return nil, fmt.Errorf("%w: %s", session.ErrProjectNotFound, identifier)
}
