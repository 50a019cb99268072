package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"launcher/cmd/launcher/app"
)

// NewProjectsCmd creates the projects command (spec.md §4.7 Project
// Tracker).
func NewProjectsCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List tracked projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProjects(a)
		},
	}
}

func runProjects(a *app.App) error {
	if !a.Projects.HasSomeProjects() {
		fmt.Println("No tracked projects yet.")
		return nil
	}

	for _, p := range a.Projects.Projects() {
		versionLabel := "unknown"
		if v, ok := p.VersionName(); ok {
			versionLabel = v.String()
		}
		changed := p.TimeOfLastChange()
		changedLabel := "never"
		if !changed.IsZero() {
			changedLabel = changed.Format("2006-01-02 15:04")
		}
		fmt.Printf("%-30s version=%-12s last-changed=%s\n", p.Name(), versionLabel, changedLabel)
	}
	return nil
}
