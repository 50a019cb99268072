package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"launcher/cmd/launcher/app"
	"launcher/internal/notify"
)

// NewStatusCmd creates the status command: a point-in-time dump of
// whatever notifications are currently queued, grounded on
// cmd/gearbox/tui/tasks/manager.go's update-channel draining.
func NewStatusCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show currently queued notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(a)
		},
	}
}

func runStatus(a *app.App) error {
	events := a.Notifier.Events()
	count := 0
	for {
		select {
		case e := <-events:
			printEvent(e)
			count++
		default:
			if count == 0 {
				fmt.Println("No notifications queued.")
			}
			return nil
		}
	}
}

func printEvent(e notify.Event) {
	fmt.Printf("[%s] %s: %s\n", e.Notification.Kind, e.Notification.Title, e.Notification.Content)
}
