package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"claude-commander/internal/ui"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage registered repositories",
}

var projectAddCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Register a git repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}

		ctx := context.Background()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}

		projectID, err := m.AddProject(ctx, abs)
		if err != nil {
			return err
		}

		project := m.State().GetProject(projectID)
		fmt.Println(ui.SuccessMsg(fmt.Sprintf("Registered project %s (%s) on branch %s",
			project.Name, projectID.Short(), project.MainBranch)))
		return nil
	},
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove <project>",
	Short: "Remove a project and all of its sessions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}

		project, err := resolveProject(m, args[0])
		if err != nil {
			return err
		}

		if err := m.RemoveProject(ctx, project.ID); err != nil {
			return err
		}
		fmt.Println(ui.SuccessMsg(fmt.Sprintf("Removed project %s", project.Name)))
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, ui.ProjectTable(m.State().ListProjects()))
		return nil
	},
}

func init() {
	projectCmd.AddCommand(projectAddCmd, projectRemoveCmd, projectListCmd)
}
