package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"launcher/cmd/launcher/app"
	"launcher/cmd/launcher/commands"
	"launcher/internal/launchererrors"
	"launcher/internal/logging"
)

var version = "dev"

func main() {
	logging.SetGlobal(logging.NewDefault())

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start launcher: %v\n", err)
		os.Exit(1)
	}
	defer a.Shutdown(nil)

	rootCmd := &cobra.Command{
		Use:   "launcher [project-file]",
		Short: "Launches CoolLab projects, installing the right version first",
		Long: `launcher opens a CoolLab project with whichever application version
it needs, installing that version first if it isn't already present.

Invoked with a single project file path (as the OS file-association
handler does), it opens that file directly. Otherwise use one of the
subcommands below.`,
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return commands.LaunchProjectFile(a, args[0])
		},
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
	}

	rootCmd.AddCommand(
		commands.NewListCmd(a),
		commands.NewInstallCmd(a),
		commands.NewUninstallCmd(a),
		commands.NewLaunchCmd(a),
		commands.NewStatusCmd(a),
		commands.NewProjectsCmd(a),
		commands.NewSettingsCmd(a),
		commands.NewWatchCmd(a),
	)

	if err := rootCmd.Execute(); err != nil {
		handleError(err)
		os.Exit(1)
	}
}

func configureLogging(cmd *cobra.Command) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")

	var log *logging.Logger
	switch {
	case verbose:
		log = logging.NewVerbose()
	case quiet:
		log = logging.NewQuiet()
	default:
		log = logging.NewDefault()
	}
	logging.SetGlobal(log)
}

func handleError(err error) {
	var le *launchererrors.LauncherError
	if errors.As(err, &le) {
		fmt.Fprintf(os.Stderr, "error: %s\n", le.Error())
		if suggestion := le.Suggestion(); suggestion != "" {
			fmt.Fprintf(os.Stderr, "%s\n", suggestion)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
