package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"launcher/cmd/launcher/app"
	"launcher/internal/registry"
)

// NewListCmd creates the list command, showing every known version and
// its installation status (spec.md §4.1 Version Registry).
func NewListCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List known versions and their installation status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, a)
		},
	}
	cmd.Flags().BoolP("installed", "i", false, "Show only installed versions")
	return cmd
}

func runList(cmd *cobra.Command, a *app.App) error {
	installedOnly, _ := cmd.Flags().GetBool("installed")

	versions := a.Registry.All()
	if len(versions) == 0 {
		fmt.Println("No versions known yet. Try again once the release list has been fetched.")
		return nil
	}

	shown := 0
	for _, v := range versions {
		if installedOnly && v.InstallationStatus != registry.Installed {
			continue
		}
		fmt.Printf("%-20s %s\n", v.Name.String(), v.InstallationStatus)
		shown++
	}
	if shown == 0 {
		fmt.Println("No versions match the given filter.")
	}
	return nil
}
