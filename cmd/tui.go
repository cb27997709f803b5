package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"claude-commander/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func runDashboard() error {
	ctx := context.Background()
	m, err := newManager(ctx)
	if err != nil {
		return err
	}
	return tui.Run(m)
}
