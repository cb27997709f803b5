package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"claude-commander/internal/ui"
)

var createCmd = &cobra.Command{
	Use:   "create <project> <title>",
	Short: "Create a worktree session in a project",
	Long: `Create a new session: a fresh git worktree on a branch derived from the
title, with the agent program started in a dedicated tmux session.

Examples:
  claude-commander create myrepo "Feature Auth"
  claude-commander create myrepo "Fix CI" --program aider
  claude-commander create myrepo "Scratch" --shell`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		program, _ := cmd.Flags().GetString("program")
		shell, _ := cmd.Flags().GetBool("shell")

		ctx := context.Background()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}

		project, err := resolveProject(m, args[0])
		if err != nil {
			return err
		}

		if shell && program == "" {
			program = m.Config().ShellProgram
		}

		sessionID, err := m.CreateSession(ctx, project.ID, args[1], program)
		if err != nil {
			return err
		}

		sess := m.State().GetSession(sessionID)
		fmt.Println(ui.SuccessMsg(fmt.Sprintf("Created session %s on branch %s",
			sessionID.Short(), sess.Branch)))
		fmt.Println(ui.Dim(fmt.Sprintf("  worktree: %s", sess.WorktreePath)))
		fmt.Println(ui.Dim(fmt.Sprintf("  tmux:     %s", sess.TmuxSessionName)))
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("program", "p", "", "program to run in the session (default from config)")
	createCmd.Flags().Bool("shell", false, "run the shell program instead of the agent")
}
