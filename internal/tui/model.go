package tui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"claude-commander/internal/git"
	"claude-commander/internal/manager"
	"claude-commander/internal/multiplexer"
	"claude-commander/internal/session"
)

// viewMode selects what the dashboard's main screen shows.
type viewMode int

const (
	modeList viewMode = iota
	modeCreateSession
	modeAddProject
	modeFilter
	modeSendInput
	modeConfirm
	modeHelp
)

// previewTab selects the right-hand panel content.
type previewTab int

const (
	tabPreview previewTab = iota
	tabDiff
)

// listRow is one line of the hierarchical project/session list.
type listRow struct {
	isProject bool
	projectID session.ProjectID
	sessionID session.SessionID
}

// Model is the dashboard's bubbletea model. It reads from the session store
// and the caches; all mutations go through the manager.
type Model struct {
	manager *manager.SessionManager
	keys    keyMap

	width  int
	height int

	mode viewMode
	tab  previewTab

	rows     []listRow
	selected int
	filter   string

	// Right-hand panel data for the selected session.
	snapshot *multiplexer.Snapshot
	diff     *git.DiffInfo

	// Open PRs by session, refreshed on the slow poll loop.
	prs map[session.SessionID]*git.PRInfo

	input textinput.Model
	// Pending confirm action; empty when no confirmation is open.
	confirmAction string
	confirmTarget session.SessionID

	// generation invalidates in-flight content/diff fetches when the
	// selection changes or an attach hands the terminal away.
	generation uint64

	status    string
	statusErr bool
	attaching bool
}

func newModel(m *manager.SessionManager) *Model {
	input := textinput.New()
	input.CharLimit = 120
	input.Width = 48

	model := &Model{
		manager: m,
		keys:    defaultKeyMap(),
		prs:     make(map[session.SessionID]*git.PRInfo),
		input:   input,
	}
	if !m.State().SeenHelp {
		model.mode = modeHelp
	}
	model.rebuildRows()
	model.restoreSelection()
	return model
}

// Init starts the refresh loops.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.tick(),
		m.refreshActivity(),
	}
	if m.manager.Config().PRCheckIntervalSecs > 0 {
		cmds = append(cmds, m.prTick())
	}
	return tea.Batch(cmds...)
}

// rebuildRows flattens projects and their sessions into list rows, applying
// the filter to sessions.
func (m *Model) rebuildRows() {
	state := m.manager.State()

	projects := state.ListProjects()
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})

	rows := make([]listRow, 0, len(projects))
	for _, project := range projects {
		rows = append(rows, listRow{isProject: true, projectID: project.ID})
		for _, sess := range state.ProjectSessions(project.ID) {
			if m.filter != "" && !sess.MatchesQuery(m.filter) {
				continue
			}
			rows = append(rows, listRow{
				projectID: project.ID,
				sessionID: sess.ID,
			})
		}
	}
	m.rows = rows

	if m.selected >= len(m.rows) {
		m.selected = len(m.rows) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// restoreSelection moves the cursor to the last selected session persisted
// in the store.
func (m *Model) restoreSelection() {
	last := m.manager.State().LastSelectedSession
	if last == "" {
		return
	}
	for i, row := range m.rows {
		if !row.isProject && row.sessionID == last {
			m.selected = i
			return
		}
	}
}

// selectedSession returns the session under the cursor, or nil when a
// project row (or nothing) is selected.
func (m *Model) selectedSession() *session.Session {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return nil
	}
	row := m.rows[m.selected]
	if row.isProject {
		return nil
	}
	return m.manager.State().GetSession(row.sessionID)
}

// selectedProject returns the project under the cursor, directly or through
// the selected session.
func (m *Model) selectedProject() *session.Project {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return nil
	}
	return m.manager.State().GetProject(m.rows[m.selected].projectID)
}

// rememberSelection persists the cursor for the next start.
func (m *Model) rememberSelection() {
	var projectID session.ProjectID
	var sessionID session.SessionID
	if m.selected >= 0 && m.selected < len(m.rows) {
		row := m.rows[m.selected]
		projectID = row.projectID
		sessionID = row.sessionID
	}
	m.manager.State().SetSelection(projectID, sessionID)
}

// Update handles events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.attaching {
			return m, m.tick()
		}
		cmds := []tea.Cmd{m.tick(), m.refreshActivity()}
		if sess := m.selectedSession(); sess != nil && sess.Status.IsActive() {
			cmds = append(cmds, m.fetchContent(sess.ID), m.fetchDiff(sess.ID))
		}
		return m, tea.Batch(cmds...)

	case prTickMsg:
		if m.attaching {
			return m, m.prTick()
		}
		return m, tea.Batch(m.prTick(), m.checkPRs())

	case activityRefreshedMsg:
		m.rebuildRows()
		return m, nil

	case contentMsg:
		if msg.generation == m.generation && msg.err == nil {
			m.snapshot = msg.snapshot
		}
		return m, nil

	case diffMsg:
		if msg.generation == m.generation && msg.err == nil {
			m.diff = msg.diff
		}
		return m, nil

	case prResultsMsg:
		m.prs = msg.prs
		return m, nil

	case attachFinishedMsg:
		m.attaching = false
		m.generation++
		m.rebuildRows()
		switch {
		case msg.err != nil:
			m.setError("attach failed: " + msg.err.Error())
		case msg.result == multiplexer.AttachSessionEnded:
			m.setStatus("session ended")
		default:
			m.setStatus("detached")
		}
		return m, nil

	case operationDoneMsg:
		if msg.err != nil {
			m.setError(msg.action + " failed: " + msg.err.Error())
		} else {
			m.setStatus(msg.action + " done")
		}
		m.rebuildRows()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeCreateSession, modeAddProject, modeFilter, modeSendInput:
		return m.handleInputKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modeHelp:
		m.mode = modeList
		m.manager.State().MarkHelpSeen()
		return m, m.persistState()
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.rememberSelection()
		_ = m.manager.State().Save()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
			return m, m.selectionChanged()
		}

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.rows)-1 {
			m.selected++
			return m, m.selectionChanged()
		}

	case key.Matches(msg, m.keys.ToggleView):
		if m.tab == tabPreview {
			m.tab = tabDiff
		} else {
			m.tab = tabPreview
		}

	case key.Matches(msg, m.keys.Attach):
		if sess := m.selectedSession(); sess != nil {
			return m, m.attach(sess.ID)
		}

	case key.Matches(msg, m.keys.NewSession):
		if project := m.selectedProject(); project != nil {
			m.mode = modeCreateSession
			m.input.Placeholder = "session title"
			m.input.SetValue("")
			m.input.Focus()
		} else {
			m.setError("select a project first")
		}

	case key.Matches(msg, m.keys.AddProject):
		m.mode = modeAddProject
		m.input.Placeholder = "repository path"
		m.input.SetValue("")
		m.input.Focus()

	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		m.input.Placeholder = "filter sessions"
		m.input.SetValue(m.filter)
		m.input.Focus()

	case key.Matches(msg, m.keys.SendInput):
		if sess := m.selectedSession(); sess != nil && sess.Status.IsActive() {
			m.mode = modeSendInput
			m.input.Placeholder = "text to send"
			m.input.SetValue("")
			m.input.Focus()
		} else {
			m.setError("select an active session first")
		}

	case key.Matches(msg, m.keys.Pause):
		if sess := m.selectedSession(); sess != nil {
			return m, m.pause(sess.ID)
		}

	case key.Matches(msg, m.keys.Resume):
		if sess := m.selectedSession(); sess != nil {
			return m, m.resume(sess.ID)
		}

	case key.Matches(msg, m.keys.Kill):
		if sess := m.selectedSession(); sess != nil {
			m.mode = modeConfirm
			m.confirmAction = "kill"
			m.confirmTarget = sess.ID
		}

	case key.Matches(msg, m.keys.Delete):
		if sess := m.selectedSession(); sess != nil {
			m.mode = modeConfirm
			m.confirmAction = "delete"
			m.confirmTarget = sess.ID
		}

	case key.Matches(msg, m.keys.OpenEditor):
		if sess := m.selectedSession(); sess != nil {
			return m, m.openEditor(sess)
		}

	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
	}

	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeList
		m.input.Blur()
		return m, nil

	case msg.Type == tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = modeList
		m.input.Blur()

		switch mode {
		case modeCreateSession:
			if value == "" {
				return m, nil
			}
			if project := m.selectedProject(); project != nil {
				return m, m.createSession(project.ID, value)
			}
		case modeAddProject:
			if value == "" {
				return m, nil
			}
			return m, m.addProject(value)
		case modeFilter:
			m.filter = value
			m.rebuildRows()
		case modeSendInput:
			if value == "" {
				return m, nil
			}
			if sess := m.selectedSession(); sess != nil {
				return m, m.sendInput(sess.ID, value)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.confirmAction
	target := m.confirmTarget
	m.mode = modeList
	m.confirmAction = ""

	if !key.Matches(msg, m.keys.Confirm) {
		return m, nil
	}

	switch action {
	case "kill":
		return m, m.kill(target)
	case "delete":
		return m, m.del(target)
	}
	return m, nil
}

// selectionChanged bumps the generation so in-flight fetches for the old
// selection are dropped, and kicks off fetches for the new one.
func (m *Model) selectionChanged() tea.Cmd {
	m.generation++
	m.snapshot = nil
	m.diff = nil
	m.rememberSelection()

	sess := m.selectedSession()
	if sess == nil || !sess.Status.IsActive() {
		return nil
	}
	return tea.Batch(m.fetchContent(sess.ID), m.fetchDiff(sess.ID))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}
