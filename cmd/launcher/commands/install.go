package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"launcher/cmd/launcher/app"
	"launcher/internal/task"
	"launcher/internal/versionname"
)

// NewInstallCmd creates the install command (spec.md §4.4 Install Task).
func NewInstallCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "install <version|latest>",
		Short: "Install a specific version, or the latest available one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(a, args[0])
		},
	}
}

func runInstall(a *app.App, target string) error {
	var h *task.Handle
	if target == "latest" {
		h = a.Pipeline.EnsureLatestInstalled(false)
		if h == nil {
			fmt.Println("Latest version is already installed.")
			return nil
		}
	} else {
		name := versionname.Parse(target)
		if !name.IsValid() {
			return fmt.Errorf("%q is not a valid version (expected MAJOR.MINOR.PATCH)", target)
		}
		h = a.Pipeline.InstallOnly(name)
	}

	waitAndReport(h, "Install")
	return nil
}

// waitAndReport polls a handle to completion and prints its outcome.
// A poll loop (rather than IdleNotify, which tracks the whole engine)
// keeps this CLI-only helper scoped to the one handle it cares about.
func waitAndReport(h *task.Handle, label string) {
	if h == nil {
		return
	}
	for !h.Status().IsTerminal() {
		time.Sleep(100 * time.Millisecond)
	}
	switch h.Status() {
	case task.StatusDone:
		fmt.Printf("%s: done (%s)\n", label, h.Name())
	case task.StatusFailed:
		fmt.Printf("%s: failed (%s): %v\n", label, h.Name(), h.Err())
	case task.StatusCancelled:
		fmt.Printf("%s: cancelled (%s)\n", label, h.Name())
	}
}
