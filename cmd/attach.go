package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"claude-commander/internal/multiplexer"
	"claude-commander/internal/ui"
)

var attachCmd = &cobra.Command{
	Use:   "attach <session>",
	Short: "Attach the terminal to a session",
	Long: `Hand this terminal to a session's tmux session. Detach with Ctrl+Q
(or tmux's own detach binding) to return.`,
	Args: cobra.ExactArgs(1),
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

		tmuxName, err := m.AttachTarget(ctx, sess.ID)
		if err != nil {
			return err
		}

		result, err := multiplexer.Attach(tmuxName, nil)
		if err != nil {
			return err
		}

		switch result {
		case multiplexer.AttachDetached:
			fmt.Println(ui.InfoMsg(fmt.Sprintf("Detached from %s", sess.Title)))
		case multiplexer.AttachSessionEnded:
			fmt.Println(ui.WarningMsg(fmt.Sprintf("Session %s ended", sess.Title)))
		}
		return nil
	},
}
