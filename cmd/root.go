package cmd

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command; without a subcommand it launches the
// dashboard.
var rootCmd = &cobra.Command{
	Use:   "claude-commander",
	Short: "Orchestrate AI coding-agent sessions in isolated git worktrees",
	Long: `claude-commander runs multiple AI coding-agent sessions side by side,
each in its own git worktree and tmux session, and gives you a live
dashboard over all of them: pane content, working-tree diff, and agent
activity at a glance.

Running without a subcommand opens the dashboard.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(
		projectCmd,
		createCmd,
		listCmd,
		attachCmd,
		pauseCmd,
		resumeCmd,
		killCmd,
		deleteCmd,
		tuiCmd,
	)
}
