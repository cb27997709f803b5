package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"claude-commander/internal/session"
)

// ProjectTable renders all projects with their session counts.
func ProjectTable(projects []*session.Project) string {
	if len(projects) == 0 {
		return Dim("No projects registered.")
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleColoredBright)
	t.Style().Color.Header = text.Colors{text.FgHiWhite, text.Bold}
	t.Style().Color.Row = text.Colors{text.FgWhite}
	t.Style().Color.RowAlternate = text.Colors{text.FgHiBlack}

	t.AppendHeader(table.Row{
		Bold("ID"),
		Bold("Name"),
		Bold("Branch"),
		Bold("Sessions"),
		Bold("Path"),
	})

	for _, p := range projects {
		t.AppendRow(table.Row{
			Highlight(p.ID.Short()),
			Title(p.Name),
			p.MainBranch,
			fmt.Sprintf("%d", len(p.Worktrees)),
			shortenPath(p.RepoPath),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 10},
		{Number: 2, WidthMax: 24},
		{Number: 3, WidthMax: 16},
		{Number: 4, WidthMax: 8},
		{Number: 5, WidthMax: 40},
	})

	return t.Render()
}

// SessionTable renders one row per session, in the order given, with the
// owning project's name (or its short ID when unnamed) in a Project column.
func SessionTable(sessions []*session.Session, projectNames map[session.ProjectID]string) string {
	if len(sessions) == 0 {
		return Dim("No sessions found.")
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleColoredBright)
	t.Style().Color.Header = text.Colors{text.FgHiWhite, text.Bold}
	t.Style().Color.Row = text.Colors{text.FgWhite}
	t.Style().Color.RowAlternate = text.Colors{text.FgHiBlack}

	t.AppendHeader(table.Row{
		Bold("ID"),
		Bold("Title"),
		Bold("Project"),
		Bold("Branch"),
		Bold("Status"),
		Bold("Agent"),
		Bold("Program"),
		Bold("Last Active"),
	})

	for _, sess := range sessions {
		projectName := projectNames[sess.ProjectID]
		if projectName == "" {
			projectName = sess.ProjectID.Short()
		}
		t.AppendRow(table.Row{
			Highlight(sess.ID.Short()),
			Title(sess.Title),
			projectName,
			sess.Branch,
			FormatStatus(sess.Status),
			FormatAgentState(sess.AgentState),
			sess.Program,
			formatTimeAgo(sess.LastActiveAt),
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMax: 10},
		{Number: 2, WidthMax: 24},
		{Number: 3, WidthMax: 18},
		{Number: 4, WidthMax: 20},
		{Number: 5, WidthMax: 12},
		{Number: 6, WidthMax: 14},
		{Number: 7, WidthMax: 12},
		{Number: 8, WidthMax: 14},
	})

	return t.Render()
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.Join("~", rel)
	}
	return path
}

func formatTimeAgo(ts time.Time) string {
	if ts.IsZero() {
		return Dim("never")
	}
	elapsed := time.Since(ts)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
}
