package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"launcher/cmd/launcher/app"
	"launcher/internal/registry"
	"launcher/internal/versionname"
)

// NewUninstallCmd creates the uninstall command.
func NewUninstallCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <version>",
		Short: "Remove an installed version from disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(a, args[0])
		},
	}
}

func runUninstall(a *app.App, target string) error {
	name := versionname.Parse(target)
	if !name.IsValid() {
		return fmt.Errorf("%q is not a valid version (expected MAJOR.MINOR.PATCH)", target)
	}

	v, ok := a.Registry.Find(name)
	if !ok || v.InstallationStatus != registry.Installed {
		return fmt.Errorf("%s is not installed", name)
	}

	a.Registry.Uninstall(name)
	fmt.Printf("Uninstalled %s\n", name)
	return nil
}
