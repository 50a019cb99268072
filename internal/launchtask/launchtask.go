// Package launchtask spawns an installed version's executable,
// grounded on Task_LaunchVersion.cpp/hpp.
package launchtask

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"launcher/internal/intent"
	"launcher/internal/launcherpaths"
	"launcher/internal/launchererrors"
	"launcher/internal/logging"
	"launcher/internal/notify"
	"launcher/internal/registry"
	"launcher/internal/task"
	"launcher/internal/versionref"
)

// Task builds the argument vector for a version ref + intent pair and
// spawns the version's executable detached from the launcher process.
type Task struct {
	task.Base

	log      *logging.Logger
	notifier *notify.Center
	registry *registry.Registry
	ref      versionref.Ref
	intent   intent.Intent
	engine   *task.Engine

	notificationID string
	errMessage     string
}

// New builds a launch task for ref/it, owned by its own fresh id so the
// "Cancel" affordance on its waiting notification can cancel just this
// chain (spec.md §4.5, original_source's on_submit notification).
func New(engine *task.Engine, reg *registry.Registry, notifier *notify.Center, ref versionref.Ref, it intent.Intent) *Task {
	return &Task{
		Base:     task.NewBase(false, false),
		log:      logging.Global().Operation("launch_version"),
		notifier: notifier,
		registry: reg,
		ref:      ref,
		intent:   it,
		engine:   engine,
	}
}

// Name implements task.Task.
func (t *Task) Name() string {
	switch t.intent.Kind() {
	case intent.OpenFile:
		return fmt.Sprintf("Launching %q", filepath.Base(t.intent.Path()))
	default:
		return "Launching a new project"
	}
}

// OnSubmit implements task.Task: shows the "waiting for X to install"
// banner with a cancel affordance (modeled textually; the actual
// cancel button is the out-of-scope UI's job).
func (t *Task) OnSubmit() {
	t.notificationID = t.notifier.Send(notify.Notification{
		Kind:     notify.Info,
		Title:    t.Name(),
		Content:  fmt.Sprintf("Waiting for %s to install", t.ref.String()),
		Closable: false,
	})
}

// Execute implements task.Task. It re-checks the registry at run time
// rather than trusting its upstream gate's outcome, per the gate
// semantics in internal/task: a dependency's cleanup having run says
// nothing about whether it actually succeeded.
func (t *Task) Execute() error {
	v, ok := t.registry.FindByRef(t.ref)
	if !ok || v.InstallationStatus != registry.Installed {
		t.errMessage = fmt.Sprintf("Can't launch because we failed to install %s", t.ref.String())
		return launchererrors.New(launchererrors.MissingPrecondition, "launch_version", t.errMessage)
	}

	args, err := t.buildArgs()
	if err != nil {
		t.errMessage = err.Error()
		return launchererrors.Wrap(err, launchererrors.LaunchFailure, "launch_version")
	}

	executable := executablePath(v.Name.String())
	cmd := exec.Command(executable, args...)
	detach(cmd)

	if err := cmd.Start(); err != nil {
		t.errMessage = fmt.Sprintf("%s is corrupted. You should uninstall and reinstall it.", t.ref.String())
		t.log.WithError(err).Warnf("spawn failed for %s", executable)
		return launchererrors.Wrap(err, launchererrors.LaunchFailure, "launch_version")
	}

	// Detached: we don't wait on cmd.Wait(), the child outlives us.
	return nil
}

func (t *Task) buildArgs() ([]string, error) {
	projectsInfo, err := filepath.Abs(launcherpaths.ProjectsInfoFolder())
	if err != nil {
		return nil, err
	}

	args := []string{"--projects_info_folder_for_the_launcher", projectsInfo}

	switch t.intent.Kind() {
	case intent.OpenFile:
		abs, err := filepath.Abs(t.intent.Path())
		if err != nil {
			return nil, err
		}
		args = append(args, "--open_project", abs)
	case intent.CreateNewProjectInFolder:
		resolved := launcherpaths.ResolveProjectFolder(t.intent.Path())
		abs, err := filepath.Abs(resolved)
		if err != nil {
			return nil, err
		}
		args = append(args, "--create_new_project_in_folder", abs)
	}

	return args, nil
}

// Cleanup implements task.Task: turns the waiting banner into an error
// banner on failure, or dismisses it on success. It does not close the
// launcher; IdleNotify below exposes the engine's idle signal to a
// caller that wants to wait for every task in flight to finish.
func (t *Task) Cleanup(wasCancelled bool) {
	if t.errMessage != "" {
		t.notifier.Change(t.notificationID, notify.Notification{
			Kind:    notify.Error,
			Title:   t.Name(),
			Content: t.errMessage,
		})
		return
	}
	t.notifier.CloseImmediately(t.notificationID)
}

// IdleNotify exposes the engine's idle signal so a CLI entry point can
// implement "close if all tasks are done" after a successful launch.
func (t *Task) IdleNotify() <-chan struct{} { return t.engine.IdleNotify() }

// executablePath mirrors original_source's installation_path.hpp:
// every installed version lives under its own named subfolder, with a
// fixed executable name inside it.
func executablePath(versionName string) string {
	name := "CoolLab"
	if filepath.Separator == '\\' {
		name += ".exe"
	}
	return filepath.Join(launcherpaths.InstallationPath(versionName), name)
}
