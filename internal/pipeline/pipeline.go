// Package pipeline composes fetch-list -> install-if-needed -> launch
// into a dependency chain selected by a VersionRef, grounded on
// VersionManager::after_version_installed and install_ifn_and_launch.
package pipeline

import (
	"launcher/internal/fetchtask"
	"launcher/internal/installtask"
	"launcher/internal/intent"
	"launcher/internal/launchtask"
	"launcher/internal/logging"
	"launcher/internal/notify"
	"launcher/internal/registry"
	"launcher/internal/task"
	"launcher/internal/versionname"
	"launcher/internal/versionref"
)

// Pipeline is the long-lived collaborator that owns the one fetch
// operation in flight (and its retry chain's tracker) and knows how to
// wire a (VersionRef, Intent) pair into a gated Launch Task.
type Pipeline struct {
	log      *logging.Logger
	engine   *task.Engine
	registry *registry.Registry
	notifier *notify.Center

	fetchTracker *fetchtask.Tracker
}

// New constructs a Pipeline and immediately submits the initial Fetch
// Task, matching VersionManager's constructor
// ("Cool::task_manager().submit(std::make_shared<Task_FetchListOfVersions>())").
func New(engine *task.Engine, reg *registry.Registry, notifier *notify.Center) *Pipeline {
	p := &Pipeline{
		log:      logging.Global().Operation("launch_pipeline"),
		engine:   engine,
		registry: reg,
		notifier: notifier,
	}

	ft, tracker := fetchtask.NewInitial(engine, reg, notifier)
	p.fetchTracker = tracker
	engine.Submit(ft)

	return p
}

// fetchGate gates on the shared fetch tracker reaching Completed, and
// cancels if it reaches Cancelled, matching
// WaitToExecuteTask_HasFetchedListOfVersions in original_source.
func (p *Pipeline) fetchGate() task.Gate {
	return task.AfterPredicateWithCancel(
		func() bool { return p.fetchTracker.Status() == fetchtask.Completed },
		func() bool { return p.fetchTracker.Status() == fetchtask.Cancelled },
	)
}

// getOrSubmitInstall returns the handle for an in-flight install of
// name if one exists, else constructs and submits a new one gated on
// fetch completion. The lookup-and-submit is done atomically via
// Registry.GetOrCreateInFlightInstall so two concurrent callers for the
// same name can never both submit an install task (spec.md §4.4
// Concurrency, VersionManager::get_install_task_or_create_and_submit_it).
func (p *Pipeline) getOrSubmitInstall(name versionname.Name) *task.Handle {
	h, _ := p.registry.GetOrCreateInFlightInstall(name, func() any {
		it := installtask.New(p.registry, p.notifier, name)
		return p.engine.SubmitGated(p.fetchGate(), it)
	})
	return h.(*task.Handle)
}

// afterVersionInstalled builds the precondition gate for ref, following
// spec.md §4.6's three-case strategy.
func (p *Pipeline) afterVersionInstalled(ref versionref.Ref) task.Gate {
	switch ref.Kind() {
	case versionref.Latest:
		return p.afterLatestInstalled()

	case versionref.LatestInstalled:
		if p.registry.AnyInstalled() {
			return task.AfterNothing()
		}
		if h := p.mostRecentInstallInProgress(); h != nil {
			return task.After(h)
		}
		return p.afterLatestInstalled()

	default: // Exact
		name := ref.Name()
		if v, ok := p.registry.Find(name); ok && v.InstallationStatus == registry.Installed {
			return task.AfterNothing()
		}
		return task.After(p.getOrSubmitInstall(name))
	}
}

// afterLatestInstalled implements the Latest case: if fetch is done,
// resolve and install-if-needed the latest with a download URL; if
// fetch isn't done but something is already installed, use what's
// there; otherwise install the eventual latest once fetch completes.
func (p *Pipeline) afterLatestInstalled() task.Gate {
	if p.fetchTracker.Status() == fetchtask.Completed {
		v, ok := p.registry.LatestWithDownloadURL()
		if !ok || v.InstallationStatus == registry.Installed {
			return task.AfterNothing()
		}
		return task.After(p.getOrSubmitInstall(v.Name))
	}

	if p.registry.AnyInstalled() {
		return task.AfterNothing()
	}

	// Fetch isn't done yet and nothing is installed: submit an install
	// for "whatever turns out to be latest", gated on fetch completion.
	// The concrete version isn't known yet, so resolution is deferred to
	// the install task's own Execute (installtask.NewLatest).
	it := installtask.NewLatest(p.registry, p.notifier, false)
	h := p.engine.SubmitGated(p.fetchGate(), it)
	return task.After(h)
}

// mostRecentInstallInProgress finds the in-flight install of the
// greatest version currently Installing, for the LatestInstalled fallback
// (VersionManager::get_latest_installing_version_if_any).
func (p *Pipeline) mostRecentInstallInProgress() *task.Handle {
	var best *task.Handle
	var bestName versionname.Name
	for _, v := range p.registry.All() {
		if v.InstallationStatus != registry.Installing {
			continue
		}
		h, ok := p.registry.GetInFlightInstall(v.Name)
		if !ok {
			continue
		}
		if best == nil || v.Name.Less(bestName) {
			best = h.(*task.Handle)
			bestName = v.Name
		}
	}
	return best
}

// InstallOnly submits (or reuses) an install for name without chaining
// a launch afterward, for the CLI's standalone "install" command.
func (p *Pipeline) InstallOnly(name versionname.Name) *task.Handle {
	if v, ok := p.registry.Find(name); ok && v.InstallationStatus == registry.Installed {
		return nil
	}
	return p.getOrSubmitInstall(name)
}

// EnsureLatestInstalled installs the latest version unless it is
// already installed, matching LauncherSettings.cpp's
// "install_latest_version(true)" side effect of toggling
// automatically_install_latest_version on. Once the fetch has
// completed it returns nil when the latest is already installed, and
// otherwise the handle of that version's install (reusing one already
// in flight). Before the fetch has completed it always submits a
// deferred install-latest task, which does nothing if the version it
// resolves is already installed; that task does not join an install of
// the same version already in flight.
func (p *Pipeline) EnsureLatestInstalled(excludeExperimental bool) *task.Handle {
	if p.fetchTracker.Status() == fetchtask.Completed {
		name, ok := p.latestInstallableName(excludeExperimental)
		if !ok {
			return nil
		}
		if existing, ok := p.registry.Find(name); ok && existing.InstallationStatus == registry.Installed {
			return nil
		}
		return p.getOrSubmitInstall(name)
	}

	it := installtask.NewLatest(p.registry, p.notifier, excludeExperimental)
	return p.engine.SubmitGated(p.fetchGate(), it)
}

// latestInstallableName picks the greatest version with a download URL,
// optionally skipping experimental flavors, matching
// installtask.Task.resolveLatestName.
func (p *Pipeline) latestInstallableName(excludeExperimental bool) (versionname.Name, bool) {
	for _, v := range p.registry.All() {
		if !v.HasDownloadURL() {
			continue
		}
		if excludeExperimental && v.Name.IsExperimental() {
			continue
		}
		return v.Name, true
	}
	return versionname.Name{}, false
}

// InstallIfNeededAndLaunch is the pipeline's entry point (spec.md §4.6
// install_ifn_and_launch): builds the precondition gate for ref and
// submits a Launch Task behind it.
func (p *Pipeline) InstallIfNeededAndLaunch(ref versionref.Ref, it intent.Intent) *task.Handle {
	gate := p.afterVersionInstalled(ref)
	lt := launchtask.New(p.engine, p.registry, p.notifier, ref, it)
	return p.engine.SubmitGated(gate, lt)
}
