package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"launcher/cmd/launcher/app"
	"launcher/internal/compatibility"
	"launcher/internal/intent"
	"launcher/internal/project"
	"launcher/internal/task"
	"launcher/internal/versionname"
	"launcher/internal/versionref"
)

// NewLaunchCmd creates the launch command (spec.md §4.5/§4.6).
func NewLaunchCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch [project-file]",
		Short: "Install the needed version if missing, then launch it",
		Long: `Resolves the version a project was created with (falling back to the
latest available version when that can't be determined), installs it
if it isn't already, and spawns it with the project open. With no
project file, a new project is created in --folder instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, _ := cmd.Flags().GetString("folder")
			exact, _ := cmd.Flags().GetString("version")
			return runLaunch(a, args, folder, exact)
		},
	}
	cmd.Flags().String("folder", "", "Create a new project in this folder instead of opening one")
	cmd.Flags().String("version", "", "Launch this exact version instead of resolving one")
	return cmd
}

// LaunchProjectFile implements the bare "launcher <project-file>"
// file-association invocation (spec.md §6: "the launcher receives the
// project file path as its first CLI argument and immediately
// delegates to the launch pipeline").
func LaunchProjectFile(a *app.App, path string) error {
	return runLaunch(a, []string{path}, "", "")
}

func runLaunch(a *app.App, args []string, folder, exact string) error {
	it, err := buildIntent(args, folder)
	if err != nil {
		return err
	}

	ref := resolveRef(a, exact, it)

	h := a.Pipeline.InstallIfNeededAndLaunch(ref, it)
	waitForLaunch(h)
	return nil
}

func buildIntent(args []string, folder string) (intent.Intent, error) {
	switch {
	case len(args) == 1:
		return intent.NewOpenFile(args[0]), nil
	case folder != "":
		return intent.NewCreateNewProjectInFolder(folder), nil
	default:
		return intent.NewCreateNewProjectInFolder(""), nil
	}
}

// resolveRef picks the version to launch: an explicit --version flag
// wins, then the version recorded in the project file itself (for an
// OpenFile intent, upgraded to the latest installed version when the
// user has opted into that and it declares itself compatible), then
// Latest (spec.md §8 scenario 6: "Exact(<version read from file first
// line>) or Latest if unreadable"). The recorded-version read is
// independent of the Project Tracker, since the file-association
// handler's common case is a project the Tracker has never seen before.
func resolveRef(a *app.App, exact string, it intent.Intent) versionref.Ref {
	if exact != "" {
		return versionref.NewExact(versionname.Parse(exact))
	}

	if it.Kind() == intent.OpenFile {
		if name, ok := project.ReadVersionName(it.Path()); ok {
			return versionref.NewExact(upgradeIfCompatible(a, name))
		}
	}

	return versionref.NewLatest()
}

// upgradeIfCompatible implements
// automatically_upgrade_projects_to_latest_compatible_version: when
// enabled, a project recorded on version `recorded` is opened with the
// latest installed version instead, provided that version's
// compatibility file doesn't declare itself incompatible with
// `recorded`. Otherwise (toggle off, nothing else installed, or an
// explicit incompatibility/semi-incompatibility) the recorded version
// is used unchanged.
func upgradeIfCompatible(a *app.App, recorded versionname.Name) versionname.Name {
	if !a.Settings.Current().AutomaticallyUpgradeProjectsToLatestCompatible {
		return recorded
	}

	latest, ok := a.Registry.LatestInstalled()
	if !ok || latest.Name.Equal(recorded) {
		return recorded
	}

	entries, err := compatibility.ReadEntriesForVersion(latest.Name.String())
	if err != nil {
		return recorded
	}

	if compatible, _ := compatibility.IsCompatibleWith(entries, recorded); compatible {
		return latest.Name
	}
	return recorded
}

func waitForLaunch(h *task.Handle) {
	if h == nil {
		fmt.Println("Nothing to launch.")
		return
	}
	for !h.Status().IsTerminal() {
		time.Sleep(100 * time.Millisecond)
	}
	switch h.Status() {
	case task.StatusDone:
		fmt.Printf("Launched %s\n", h.Name())
	case task.StatusFailed:
		fmt.Printf("Launch failed (%s): %v\n", h.Name(), h.Err())
	case task.StatusCancelled:
		fmt.Printf("Launch cancelled (%s)\n", h.Name())
	}
}
