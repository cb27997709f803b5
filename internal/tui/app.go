package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"claude-commander/internal/manager"
)

// Run starts the dashboard and blocks until the user quits.
func Run(m *manager.SessionManager) error {
	program := tea.NewProgram(newModel(m), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}
