package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"claude-commander/internal/session"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("237"))

	projectStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("117"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236"))

	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// View renders the dashboard.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	switch m.mode {
	case modeHelp:
		return m.helpView()
	}

	listWidth := m.width * 2 / 5
	if listWidth < 30 {
		listWidth = 30
	}
	previewWidth := m.width - listWidth - 4
	bodyHeight := m.height - 4

	list := borderStyle.Width(listWidth).Height(bodyHeight).
		Render(m.listView(listWidth, bodyHeight))
	preview := borderStyle.Width(previewWidth).Height(bodyHeight).
		Render(m.previewView(previewWidth, bodyHeight))

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, preview)

	var sections []string
	sections = append(sections, titleStyle.Render(" claude-commander"))
	sections = append(sections, body)

	if m.mode == modeCreateSession || m.mode == modeAddProject || m.mode == modeFilter || m.mode == modeSendInput {
		sections = append(sections, m.inputView())
	} else if m.mode == modeConfirm {
		sections = append(sections, m.confirmView())
	} else {
		sections = append(sections, m.statusView())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) listView(width, height int) string {
	if len(m.rows) == 0 {
		return dimStyle.Render("No projects yet. Press 'a' to add one.")
	}

	var b strings.Builder
	start := 0
	if m.selected >= height-1 {
		start = m.selected - height + 2
	}

	for i := start; i < len(m.rows) && i-start < height; i++ {
		row := m.rows[i]
		var line string

		if row.isProject {
			project := m.manager.State().GetProject(row.projectID)
			if project == nil {
				continue
			}
			line = projectStyle.Render(fmt.Sprintf("▸ %s", project.Name)) +
				dimStyle.Render(fmt.Sprintf(" (%s)", project.MainBranch))
		} else {
			sess := m.manager.State().GetSession(row.sessionID)
			if sess == nil {
				continue
			}
			marker := statusGlyph(sess.Status)
			agent := agentGlyph(sess.AgentState)
			line = fmt.Sprintf("  %s %s %s", marker, agent, sess.Title)
			if pr, ok := m.prs[sess.ID]; ok {
				line += dimStyle.Render(fmt.Sprintf(" #%d", pr.Number))
			}
		}

		if i == m.selected {
			line = selectedStyle.Width(width).Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) previewView(width, height int) string {
	sess := m.selectedSession()
	if sess == nil {
		if project := m.selectedProject(); project != nil {
			return m.projectSummary(project)
		}
		return dimStyle.Render("Nothing selected.")
	}

	header := fmt.Sprintf("%s  %s  %s",
		titleStyle.Render(sess.Title),
		dimStyle.Render(sess.Branch),
		dimStyle.Render(string(sess.Status)))

	var body string
	if m.tab == tabDiff {
		body = m.diffBody(width, height-2)
	} else {
		body = m.snapshotBody(height - 2)
	}

	return header + "\n" + body
}

func (m *Model) projectSummary(project *session.Project) string {
	sessions := m.manager.State().ProjectSessions(project.ID)
	var b strings.Builder
	b.WriteString(titleStyle.Render(project.Name) + "\n")
	b.WriteString(dimStyle.Render(project.RepoPath) + "\n")
	b.WriteString(fmt.Sprintf("branch %s, %d session(s)\n", project.MainBranch, len(sessions)))
	return b.String()
}

func (m *Model) snapshotBody(height int) string {
	if m.snapshot == nil {
		return dimStyle.Render("capturing…")
	}
	lines := strings.Split(strings.TrimRight(m.snapshot.Content, "\n"), "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return strings.Join(lines, "\n")
}

func (m *Model) diffBody(width, height int) string {
	if m.diff == nil {
		return dimStyle.Render("computing diff…")
	}
	if !m.diff.HasChanges() {
		return dimStyle.Render("No changes")
	}

	summary := fmt.Sprintf("%d file(s)  %s  %s",
		m.diff.FilesChanged,
		addedStyle.Render(fmt.Sprintf("+%d", m.diff.LinesAdded)),
		removedStyle.Render(fmt.Sprintf("-%d", m.diff.LinesRemoved)))

	lines := strings.Split(m.diff.Diff, "\n")
	if len(lines) > height-1 {
		lines = lines[:height-1]
	}
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = addedStyle.Render(truncate(line, width))
		case strings.HasPrefix(line, "-"):
			lines[i] = removedStyle.Render(truncate(line, width))
		default:
			lines[i] = truncate(line, width)
		}
	}

	return summary + "\n" + strings.Join(lines, "\n")
}

func (m *Model) inputView() string {
	var label string
	switch m.mode {
	case modeCreateSession:
		label = "New session: "
	case modeAddProject:
		label = "Add project: "
	case modeFilter:
		label = "Filter: "
	case modeSendInput:
		label = "Send: "
	}
	return statusBarStyle.Width(m.width).Render(label + m.input.View())
}

func (m *Model) confirmView() string {
	sess := m.manager.State().GetSession(m.confirmTarget)
	name := m.confirmTarget.Short()
	if sess != nil {
		name = sess.Title
	}
	return statusBarStyle.Width(m.width).Render(
		fmt.Sprintf("%s %s? (y/n)", m.confirmAction, name))
}

func (m *Model) statusView() string {
	left := m.status
	if m.statusErr {
		left = errorStyle.Render(m.status)
	}
	help := dimStyle.Render("enter attach · n new · a add project · i send · p/r pause/resume · x kill · d delete · tab diff · ? help · q quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(help)
	if gap < 1 {
		return statusBarStyle.Width(m.width).Render(left)
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + help)
}

func (m *Model) helpView() string {
	rows := [][2]string{
		{"↑/k ↓/j", "move selection"},
		{"enter", "attach to session (Ctrl+Q detaches)"},
		{"a", "register a repository as project"},
		{"n", "create a session in the selected project"},
		{"p / r", "pause / resume the selected session"},
		{"x", "kill the selected session"},
		{"d", "delete the selected session"},
		{"i", "type a line into the session without attaching"},
		{"tab", "toggle pane preview / diff"},
		{"/", "filter sessions"},
		{"o", "open worktree in editor"},
		{"q", "quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("claude-commander") + "\n\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			lipgloss.NewStyle().Bold(true).Width(10).Render(row[0]),
			row[1]))
	}
	b.WriteString("\n" + dimStyle.Render("press any key to continue"))

	return borderStyle.Padding(1, 2).Render(b.String())
}

func statusGlyph(status session.Status) string {
	switch status {
	case session.StatusRunning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Render("●")
	case session.StatusPaused:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("221")).Render("●")
	default:
		return dimStyle.Render("●")
	}
}

func agentGlyph(state session.AgentState) string {
	switch state {
	case session.AgentWaiting:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("221")).Render("◆")
	case session.AgentProcessing:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Render("◆")
	case session.AgentError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render("◆")
	default:
		return dimStyle.Render("◆")
	}
}

func truncate(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
