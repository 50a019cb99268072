// Package app wires together the launcher's long-lived collaborators
// (task engine, version registry, launch pipeline, notification
// center, settings, project tracker), grounded on how
// cmd/gearbox/tui/services.go constructs and threads its own
// long-lived services through the command layer.
package app

import (
	"fmt"

	"launcher/internal/logging"
	"launcher/internal/notify"
	"launcher/internal/pipeline"
	"launcher/internal/project"
	"launcher/internal/registry"
	"launcher/internal/settings"
	"launcher/internal/task"
)

// Workers is the Task Engine's fixed worker-pool size. The original
// has no configurable worker count; a small fixed pool covers the
// handful of concurrent fetch/install/launch tasks this app ever runs.
const Workers = 4

// App holds every long-lived collaborator a CLI command might need.
type App struct {
	Engine   *task.Engine
	Registry *registry.Registry
	Notifier *notify.Center
	Pipeline *pipeline.Pipeline
	Settings *settings.Manager
	Projects *project.Tracker
}

// New constructs an App: loads the registry from what's already
// installed on disk, starts the task engine, submits the initial fetch
// task via Pipeline.New, loads settings (wiring the auto-install-latest
// side effect), and scans the project-info directory.
func New() (*App, error) {
	reg, err := registry.NewFromInstalledVersionsFolder()
	if err != nil {
		return nil, fmt.Errorf("load installed versions: %w", err)
	}

	engine := task.NewEngine(Workers)
	notifier := notify.NewCenter()
	p := pipeline.New(engine, reg, notifier)

	a := &App{
		Engine:   engine,
		Registry: reg,
		Notifier: notifier,
		Pipeline: p,
	}

	sm, err := settings.NewManager(a.onAutomaticInstallLatestEnabled)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	a.Settings = sm

	tracker, err := project.NewTracker()
	if err != nil {
		return nil, fmt.Errorf("scan projects: %w", err)
	}
	a.Projects = tracker

	if sm.Current().AutomaticallyInstallLatestVersion {
		a.onAutomaticInstallLatestEnabled(true)
	}

	return a, nil
}

// onAutomaticInstallLatestEnabled is the settings.InstallLatestHook:
// it asks the pipeline to install the latest non-experimental version
// if nothing suitable is already installed, matching
// LauncherSettings.cpp's "install_latest_version(true)" call.
func (a *App) onAutomaticInstallLatestEnabled(excludeExperimental bool) {
	logging.Global().Operation("app").Infof("automatic install-latest enabled, checking for updates")
	a.Pipeline.EnsureLatestInstalled(excludeExperimental)
}

// Shutdown cancels in-flight work and waits for it to settle,
// confirming before interrupting tasks that need it, via
// Engine.Shutdown. A nil confirm cancels those tasks without asking
// (whereas a nil confirm passed straight to Engine.Shutdown would let
// them run to completion).
func (a *App) Shutdown(confirm func(name string) bool) {
	a.Engine.Shutdown(func(t task.Task) bool {
		if confirm == nil {
			return true
		}
		return confirm(t.Name())
	})
}
