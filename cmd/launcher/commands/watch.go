package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"launcher/cmd/launcher/app"
	"launcher/cmd/launcher/tui"
)

// NewWatchCmd creates the watch command: an optional live view over
// the notification stream, additive to the plain CLI commands (SPEC_FULL
// TUI section).
func NewWatchCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show a live view of install/launch activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(tui.New(a.Notifier))
			_, err := p.Run()
			return err
		},
	}
}
