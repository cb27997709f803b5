package tui

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"claude-commander/internal/multiplexer"
	"claude-commander/internal/session"
)

var errNoEditor = errors.New("no editor configured; set 'editor' in config or $EDITOR")

func (m *Model) tick() tea.Cmd {
	interval := time.Second / time.Duration(m.manager.Config().UIRefreshFPS)
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *Model) prTick() tea.Cmd {
	interval := time.Duration(m.manager.Config().PRCheckIntervalSecs) * time.Second
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return prTickMsg{}
	})
}

func (m *Model) refreshActivity() tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		mgr.RefreshActivityAll(context.Background())
		return activityRefreshedMsg{}
	}
}

func (m *Model) fetchContent(id session.SessionID) tea.Cmd {
	mgr := m.manager
	generation := m.generation
	return func() tea.Msg {
		snapshot, err := mgr.Content(context.Background(), id)
		return contentMsg{generation: generation, sessionID: id, snapshot: snapshot, err: err}
	}
}

func (m *Model) fetchDiff(id session.SessionID) tea.Cmd {
	mgr := m.manager
	generation := m.generation
	return func() tea.Msg {
		diff, err := mgr.Diff(context.Background(), id)
		return diffMsg{generation: generation, sessionID: id, diff: diff, err: err}
	}
}

func (m *Model) checkPRs() tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return prResultsMsg{prs: mgr.CheckPRs(context.Background())}
	}
}

func (m *Model) addProject(path string) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		_, err := mgr.AddProject(context.Background(), path)
		return operationDoneMsg{action: "add project", err: err}
	}
}

func (m *Model) createSession(projectID session.ProjectID, title string) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		_, err := mgr.CreateSession(context.Background(), projectID, title, "")
		return operationDoneMsg{action: "create session", err: err}
	}
}

func (m *Model) pause(id session.SessionID) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return operationDoneMsg{action: "pause", err: mgr.PauseSession(id)}
	}
}

func (m *Model) resume(id session.SessionID) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return operationDoneMsg{action: "resume", err: mgr.ResumeSession(context.Background(), id)}
	}
}

func (m *Model) kill(id session.SessionID) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return operationDoneMsg{action: "kill", err: mgr.KillSession(context.Background(), id, true)}
	}
}

func (m *Model) sendInput(id session.SessionID, text string) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return operationDoneMsg{action: "send input", err: mgr.SendInput(id, text)}
	}
}

func (m *Model) del(id session.SessionID) tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		return operationDoneMsg{action: "delete", err: mgr.DeleteSession(context.Background(), id)}
	}
}

// attachCommand runs the PTY handoff between bubbletea's terminal release
// and restore. Bubbletea stops its own input reader for the duration, so
// stdin has exactly one owner; the handoff drains stray input before the
// dashboard's reader comes back.
type attachCommand struct {
	tmuxName string
	result   multiplexer.AttachResult
}

func (c *attachCommand) Run() error {
	result, err := multiplexer.Attach(c.tmuxName, nil)
	c.result = result
	return err
}

func (c *attachCommand) SetStdin(_ io.Reader)  {}
func (c *attachCommand) SetStdout(_ io.Writer) {}
func (c *attachCommand) SetStderr(_ io.Writer) {}

func (m *Model) attach(id session.SessionID) tea.Cmd {
	mgr := m.manager
	tmuxName, err := mgr.AttachTarget(context.Background(), id)
	if err != nil {
		return func() tea.Msg {
			return operationDoneMsg{action: "attach", err: err}
		}
	}

	m.attaching = true
	m.generation++

	cmd := &attachCommand{tmuxName: tmuxName}
	return tea.Exec(cmd, func(err error) tea.Msg {
		return attachFinishedMsg{sessionID: id, result: cmd.result, err: err}
	})
}

func (m *Model) openEditor(sess *session.Session) tea.Cmd {
	cfg := m.manager.Config()
	editor := cfg.ResolveEditor()
	if editor == "" {
		return func() tea.Msg {
			return operationDoneMsg{action: "open editor", err: errNoEditor}
		}
	}

	if cfg.IsGUIEditor(editor) {
		// GUI editors detach from the terminal; fire and forget.
		c := exec.Command(editor, sess.WorktreePath)
		return func() tea.Msg {
			return operationDoneMsg{action: "open editor", err: c.Start()}
		}
	}

	// Terminal editors take the screen over, exactly like an attach.
	c := exec.Command(editor, sess.WorktreePath)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return operationDoneMsg{action: "open editor", err: err}
	})
}

func (m *Model) persistState() tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		if err := mgr.State().Save(); err != nil {
			return operationDoneMsg{action: "save", err: err}
		}
		return nil
	}
}
