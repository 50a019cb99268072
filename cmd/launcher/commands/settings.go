package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"launcher/cmd/launcher/app"
)

// NewSettingsCmd creates the settings command, for reading and
// toggling the three booleans from spec.md §6.
func NewSettingsCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change persisted settings",
	}
	cmd.AddCommand(newSettingsShowCmd(a), newSettingsSetCmd(a))
	return cmd
}

func newSettingsShowCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.Settings.Current()
			fmt.Printf("automatically_install_latest_version: %t\n", s.AutomaticallyInstallLatestVersion)
			fmt.Printf("automatically_upgrade_projects_to_latest_compatible_version: %t\n", s.AutomaticallyUpgradeProjectsToLatestCompatible)
			fmt.Printf("show_experimental_versions: %t\n", s.ShowExperimentalVersions)
			return nil
		},
	}
}

func newSettingsSetCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <true|false>",
		Short: "Change one settings toggle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("%q is not a boolean", args[1])
			}
			switch args[0] {
			case "automatically_install_latest_version":
				return a.Settings.SetAutomaticallyInstallLatestVersion(value)
			case "automatically_upgrade_projects_to_latest_compatible_version":
				return a.Settings.SetAutomaticallyUpgradeProjectsToLatestCompatible(value)
			case "show_experimental_versions":
				return a.Settings.SetShowExperimentalVersions(value)
			default:
				return fmt.Errorf("unknown setting %q", args[0])
			}
		},
	}
}
