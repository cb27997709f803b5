package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"claude-commander/internal/ui"
)

var pauseCmd = &cobra.Command{
	Use:   "pause <session>",
	Short: "Pause a running session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}
		sess, err := resolveSession(m, args[0])
		if err != nil {
			return err
		}
		if err := m.PauseSession(sess.ID); err != nil {
			return err
		}
		fmt.Println(ui.SuccessMsg(fmt.Sprintf("Paused %s", sess.Title)))
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <session>",
	Short: "Resume a paused session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}
		sess, err := resolveSession(m, args[0])
		if err != nil {
			return err
		}
		if err := m.ResumeSession(ctx, sess.ID); err != nil {
			return err
		}
		fmt.Println(ui.SuccessMsg(fmt.Sprintf("Resumed %s", sess.Title)))
		return nil
	},
}

var killCmd = &cobra.Command{
	Use:   "kill <session>",
	Short: "Stop a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keepWorktree, _ := cmd.Flags().GetBool("keep-worktree")

		ctx := context.Background()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}
		sess, err := resolveSession(m, args[0])
		if err != nil {
			return err
		}
		if err := m.KillSession(ctx, sess.ID, !keepWorktree); err != nil {
			return err
		}
		fmt.Println(ui.SuccessMsg(fmt.Sprintf("Killed %s", sess.Title)))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <session>",
	Short: "Delete a session from the dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}
		sess, err := resolveSession(m, args[0])
		if err != nil {
			return err
		}
		if err := m.DeleteSession(ctx, sess.ID); err != nil {
			return err
		}
		fmt.Println(ui.SuccessMsg(fmt.Sprintf("Deleted %s", sess.Title)))
		return nil
	},
}

func init() {
	killCmd.Flags().Bool("keep-worktree", false, "leave the worktree on disk")
}
