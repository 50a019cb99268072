// Package registry implements the version catalogue that merges
// locally-discovered installs with remotely-advertised downloads,
// grounded on the teacher's orchestrator.ConfigManager RWMutex pattern
// and generalized to the original launcher's VersionManager.
package registry

import (
	"os"
	"sort"
	"sync"

	"launcher/internal/launcherpaths"
	"launcher/internal/logging"
	"launcher/internal/versionname"
	"launcher/internal/versionref"
)

// InstallationStatus is a Version's install lifecycle state.
type InstallationStatus int

const (
	NotInstalled InstallationStatus = iota
	Installing
	Installed
	FailedToInstall
)

// String renders an InstallationStatus for logs.
func (s InstallationStatus) String() string {
	switch s {
	case NotInstalled:
		return "NotInstalled"
	case Installing:
		return "Installing"
	case Installed:
		return "Installed"
	case FailedToInstall:
		return "FailedToInstall"
	default:
		return "Unknown"
	}
}

// Version is one entry in the registry: a name, an optional download
// URL (present iff the remote index advertises an asset for this
// platform), and an installation status.
type Version struct {
	Name               versionname.Name
	DownloadURL        string // empty if not advertised
	InstallationStatus InstallationStatus
}

// HasDownloadURL reports whether the remote index advertised a
// platform-matching asset for this version.
func (v Version) HasDownloadURL() bool { return v.DownloadURL != "" }

// Registry is the concurrent catalogue described in spec.md §4.1: a
// sorted-by-name sequence of Version plus an index, with an in-flight
// install-task table for get_or_submit_install-style dedup. Reads may
// run concurrently; writes are serialized via a single RWMutex, the
// same choice the teacher makes for ConfigManager.
type Registry struct {
	log *logging.Logger

	mu       sync.RWMutex
	versions []*Version // sorted descending by versionname.Name
	byName   map[string]*Version

	// inFlightInstalls tracks, per version name, an opaque handle for
	// the install task currently in flight so concurrent callers can
	// share it instead of racing to start a second install (spec.md
	// §4.4 Concurrency). The registry doesn't know what a task.Handle
	// is; callers store whatever they like here via SetInFlightInstall
	// or, atomically, via GetOrCreateInFlightInstall.
	inFlightInstalls map[string]*inFlightEntry
}

// inFlightEntry reserves a name's slot in inFlightInstalls before its
// handle is known, so a second caller arriving while the first is still
// constructing its install task waits for and shares that same handle
// instead of creating its own (spec.md §4.4 invariant 3: "at most one
// install task per VersionName is present in the in-flight table").
// ready is closed once handle is populated.
type inFlightEntry struct {
	ready  chan struct{}
	handle any
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		log:              logging.Global().Operation("registry"),
		byName:           make(map[string]*Version),
		inFlightInstalls: make(map[string]*inFlightEntry),
	}
}

// NewFromInstalledVersionsFolder constructs a Registry by scanning the
// installed-versions directory for subfolders whose name parses as a
// valid VersionName, marking each Installed (spec.md §3 Version
// Registry: "constructed at startup by scanning the installed-versions
// directory").
func NewFromInstalledVersionsFolder() (*Registry, error) {
	r := New()

	folder := launcherpaths.InstalledVersionsFolder()
	entries, err := os.ReadDir(folder)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := versionname.Parse(entry.Name())
		if !name.IsValid() {
			continue
		}
		r.mu.Lock()
		r.insertLocked(&Version{Name: name, InstallationStatus: Installed})
		r.mu.Unlock()
	}

	return r, nil
}

// Find returns the Version for an exact name match.
func (r *Registry) Find(name versionname.Name) (Version, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byName[name.String()]
	if !ok {
		return Version{}, false
	}
	return *v, true
}

// FindByRef resolves a VersionRef against current registry state.
// Latest and LatestInstalled delegate to their namesake accessors;
// Exact delegates to Find.
func (r *Registry) FindByRef(ref versionref.Ref) (Version, bool) {
	switch ref.Kind() {
	case versionref.Latest:
		return r.LatestWithDownloadURL()
	case versionref.LatestInstalled:
		return r.LatestInstalled()
	default:
		return r.Find(ref.Name())
	}
}

// Latest returns the numerically greatest known version, installed or
// not.
func (r *Registry) Latest() (Version, bool) {
	return r.head(func(Version) bool { return true })
}

// LatestInstalled returns the greatest version whose status is
// Installed.
func (r *Registry) LatestInstalled() (Version, bool) {
	return r.head(func(v Version) bool { return v.InstallationStatus == Installed })
}

// LatestWithDownloadURL returns the greatest version advertising a
// download URL, i.e. what Latest resolves to in the launch pipeline.
func (r *Registry) LatestWithDownloadURL() (Version, bool) {
	return r.head(func(v Version) bool { return v.HasDownloadURL() })
}

func (r *Registry) head(pred func(Version) bool) (Version, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.versions {
		if pred(*v) {
			return *v, true
		}
	}
	return Version{}, false
}

// AnyInstalled reports whether any version in the registry is
// Installed.
func (r *Registry) AnyInstalled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, v := range r.versions {
		if v.InstallationStatus == Installed {
			return true
		}
	}
	return false
}

// All returns a snapshot of the registry, sorted latest-first.
func (r *Registry) All() []Version {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Version, len(r.versions))
	for i, v := range r.versions {
		out[i] = *v
	}
	return out
}

// SetDownloadURL inserts a new NotInstalled Version for name if absent,
// else attaches url to the existing entry. A URL already set to a
// different value is logged as a warning rather than rejected, per
// spec.md §4.1 ("treat as warning at runtime").
func (r *Registry) SetDownloadURL(name versionname.Name, url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.byName[name.String()]; ok {
		if v.DownloadURL != "" && v.DownloadURL != url {
			r.log.Warnf("version %s: download URL changed from %s to %s", name, v.DownloadURL, url)
		}
		v.DownloadURL = url
		return
	}

	r.insertLocked(&Version{Name: name, DownloadURL: url, InstallationStatus: NotInstalled})
}

// SetInstallationStatus creates-or-updates the Version for name. On a
// transition to Installed or NotInstalled the in-flight install-task
// entry for name is dropped (spec.md §4.4: "cleared when a version
// reaches terminal status").
func (r *Registry) SetInstallationStatus(name versionname.Name, status InstallationStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.byName[name.String()]; ok {
		v.InstallationStatus = status
	} else {
		r.insertLocked(&Version{Name: name, InstallationStatus: status})
	}

	if status == Installed || status == NotInstalled {
		delete(r.inFlightInstalls, name.String())
	}
}

// Uninstall recursively deletes the install directory for name and
// transitions it to NotInstalled. I/O errors are logged and otherwise
// swallowed: registry state is left unchanged on failure, per spec.md
// §4.1 ("fails softly").
func (r *Registry) Uninstall(name versionname.Name) {
	path := launcherpaths.InstallationPath(name.String())
	if err := os.RemoveAll(path); err != nil {
		r.log.WithError(err).Errorf("uninstall %s: failed to remove %s", name, path)
		return
	}
	r.SetInstallationStatus(name, NotInstalled)
}

// GetInFlightInstall returns the handle previously stored via
// SetInFlightInstall or GetOrCreateInFlightInstall for name, if any
// install is currently in flight for it. If the entry exists but its
// handle hasn't been populated yet (another goroutine is still inside
// GetOrCreateInFlightInstall's factory), this blocks until it is.
func (r *Registry) GetInFlightInstall(name versionname.Name) (any, bool) {
	r.mu.RLock()
	e, ok := r.inFlightInstalls[name.String()]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	<-e.ready
	return e.handle, true
}

// SetInFlightInstall records the handle for an install task just
// submitted for name, so concurrent callers can discover and share it
// instead of racing to submit a second install (spec.md §4.4
// Concurrency, Registry.get_or_submit_install). Prefer
// GetOrCreateInFlightInstall for the check-then-act sequence; this
// exists for callers (and tests) that already hold a handle.
func (r *Registry) SetInFlightInstall(name versionname.Name, handle any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ready := make(chan struct{})
	close(ready)
	r.inFlightInstalls[name.String()] = &inFlightEntry{ready: ready, handle: handle}
}

// GetOrCreateInFlightInstall returns the handle already in flight for
// name, or atomically reserves name's slot and calls factory to create
// one if none exists yet. The reservation happens under r.mu, but
// factory itself runs with r.mu released, so factory is free to call
// back into the registry (e.g. SetInstallationStatus, as
// installtask.Task.OnSubmit does) without deadlocking.
//
// This closes the check-then-act race in the former
// GetInFlightInstall-then-SubmitGated-then-SetInFlightInstall sequence:
// two goroutines calling this concurrently for the same name are
// guaranteed that only one of them runs factory (spec.md §4.4 invariant
// 3 and §8 scenario 3, "Concurrent install requests" -> "exactly one
// Install Task created").
func (r *Registry) GetOrCreateInFlightInstall(name versionname.Name, factory func() any) (handle any, created bool) {
	key := name.String()

	r.mu.Lock()
	if e, ok := r.inFlightInstalls[key]; ok {
		r.mu.Unlock()
		<-e.ready
		return e.handle, false
	}
	e := &inFlightEntry{ready: make(chan struct{})}
	r.inFlightInstalls[key] = e
	r.mu.Unlock()

	h := factory()
	e.handle = h
	close(e.ready)
	return h, true
}

// insertLocked inserts v in sorted (descending) order, or overwrites an
// existing entry with the same name. Callers must hold r.mu for
// writing.
func (r *Registry) insertLocked(v *Version) {
	if existing, ok := r.byName[v.Name.String()]; ok {
		*existing = *v
		return
	}

	idx := sort.Search(len(r.versions), func(i int) bool {
		return !r.versions[i].Name.Less(v.Name)
	})
	r.versions = append(r.versions, nil)
	copy(r.versions[idx+1:], r.versions[idx:])
	r.versions[idx] = v
	r.byName[v.Name.String()] = v
}
