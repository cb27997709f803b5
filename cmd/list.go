package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"claude-commander/internal/session"
	"claude-commander/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		activeOnly, _ := cmd.Flags().GetBool("active")
		refresh, _ := cmd.Flags().GetBool("refresh")

		ctx := context.Background()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}

		if refresh {
			m.RefreshActivityAll(ctx)
		}

		projects := m.State().ListProjects()
		names := make(map[session.ProjectID]string, len(projects))
		var sessions []*session.Session
		for _, project := range projects {
			names[project.ID] = project.Name
			for _, sess := range m.State().ProjectSessions(project.ID) {
				if activeOnly && !sess.Status.IsActive() {
					continue
				}
				sessions = append(sessions, sess)
			}
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		})

		fmt.Fprintln(os.Stdout, ui.SessionTable(sessions, names))
		return nil
	},
}

func init() {
	listCmd.Flags().BoolP("active", "a", false, "only running and paused sessions")
	listCmd.Flags().BoolP("refresh", "r", false, "refresh agent activity before listing")
}
