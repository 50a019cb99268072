// Package installtask implements downloading and extracting a release
// zip to its install directory, grounded on spec.md §4.4 (no original
// C++ source survives for Task_InstallVersion beyond its name in
// VersionManager.cpp) and on the teacher's progress-bar conventions in
// pkg/orchestrator/installation.go.
package installtask

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"launcher/internal/launcherpaths"
	"launcher/internal/launchererrors"
	"launcher/internal/logging"
	"launcher/internal/notify"
	"launcher/internal/registry"
	"launcher/internal/task"
	"launcher/internal/versionname"
)

// Task downloads the zip advertised for a version and extracts it to
// <installed_versions_folder>/<name>/. At most one Task per version
// name should be in flight; callers enforce that via
// registry.Registry's in-flight install table (spec.md §4.4
// Concurrency), not this package.
type Task struct {
	task.Base

	log      *logging.Logger
	notifier *notify.Center
	registry *registry.Registry
	name     versionname.Name

	// resolveLatest, when set, defers picking a concrete version until
	// Execute runs (i.e. once any gate has opened), for the "install
	// whatever turns out to be latest" case where the name isn't known
	// at submission time (spec.md §4.6 Latest strategy).
	resolveLatest       bool
	excludeExperimental bool

	notificationID string
	errMessage     string
}

// New builds an install task for a known name, owned by its own fresh
// id so it can be cancelled independently of whatever submitted it.
func New(reg *registry.Registry, notifier *notify.Center, name versionname.Name) *Task {
	return &Task{
		Base:     task.NewBase(false, true),
		log:      logging.Global().Version(name.String()).Operation("install_version"),
		notifier: notifier,
		registry: reg,
		name:     name,
	}
}

// NewLatest builds an install task that resolves "the latest version
// with a download URL" at execute time rather than at construction,
// because it's normally gated on the fetch task completing and the
// name isn't known yet. If the resolved version is already installed,
// Execute does nothing. excludeExperimental matches the
// LauncherSettings.cpp call site's filter for auto-install.
func NewLatest(reg *registry.Registry, notifier *notify.Center, excludeExperimental bool) *Task {
	return &Task{
		Base:                task.NewBase(false, true),
		log:                 logging.Global().Operation("install_version"),
		notifier:            notifier,
		registry:            reg,
		resolveLatest:       true,
		excludeExperimental: excludeExperimental,
	}
}

// Name implements task.Task.
func (t *Task) Name() string {
	if t.resolveLatest && t.name.String() == "" {
		return "Installing the latest version"
	}
	return fmt.Sprintf("Installing %s", t.name)
}

// OnSubmit implements task.Task: shows the persistent progress
// notification. The version isn't marked Installing here when
// resolveLatest is set, since the concrete name isn't known until
// Execute runs.
func (t *Task) OnSubmit() {
	if !t.resolveLatest {
		t.registry.SetInstallationStatus(t.name, registry.Installing)
	}
	t.notificationID = t.notifier.Send(notify.Notification{
		Kind:     notify.Info,
		Title:    t.Name(),
		Content:  "Starting download...",
		Closable: false,
	})
}

// Execute implements task.Task.
func (t *Task) Execute() error {
	if t.resolveLatest {
		name, ok := t.resolveLatestName()
		if !ok {
			t.errMessage = "no version with a download URL is available"
			return launchererrors.New(launchererrors.MissingPrecondition, "install_version", t.errMessage)
		}
		t.name = name
		if v, ok := t.registry.Find(name); ok && v.InstallationStatus == registry.Installed {
			return nil
		}
		t.registry.SetInstallationStatus(t.name, registry.Installing)
	}

	v, ok := t.registry.Find(t.name)
	if !ok || v.DownloadURL == "" {
		t.errMessage = fmt.Sprintf("no download URL known for %s", t.name)
		t.registry.SetInstallationStatus(t.name, registry.FailedToInstall)
		return launchererrors.New(launchererrors.MissingPrecondition, "install_version", t.errMessage)
	}

	dest := launcherpaths.InstallationPath(t.name.String())

	zipPath, err := t.download(v.DownloadURL)
	if err != nil {
		return t.fail(err)
	}
	defer os.Remove(zipPath)

	if t.Cancelled() {
		return t.cancel()
	}

	if err := extractZip(zipPath, dest); err != nil {
		_ = os.RemoveAll(dest)
		return t.fail(launchererrors.Wrap(err, launchererrors.InstallFailure, "install_version"))
	}

	t.registry.SetInstallationStatus(t.name, registry.Installed)
	return nil
}

// download streams the zip to a temp file, polling the cancel flag
// every chunk the way the original polls it from the download progress
// callback (spec.md §4.4 Cancellation).
func (t *Task) download(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", launchererrors.Wrap(err, launchererrors.InstallFailure, "install_version")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", launchererrors.New(launchererrors.InstallFailure, "install_version", fmt.Sprintf("download failed with status %d", resp.StatusCode))
	}

	tmp, err := os.CreateTemp("", "launcher-install-*.zip")
	if err != nil {
		return "", launchererrors.Wrap(err, launchererrors.InstallFailure, "install_version")
	}
	defer tmp.Close()

	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetDescription(t.Name()),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
	)

	reader := &cancellableReader{r: resp.Body, task: t, bar: bar}
	if _, err := io.Copy(tmp, reader); err != nil {
		os.Remove(tmp.Name())
		if reader.cancelled {
			return "", nil
		}
		return "", launchererrors.Wrap(err, launchererrors.InstallFailure, "install_version")
	}

	if reader.cancelled {
		os.Remove(tmp.Name())
		return "", nil
	}

	return tmp.Name(), nil
}

// cancellableReader wraps the HTTP response body so io.Copy's loop
// naturally polls the cancel flag between chunks.
type cancellableReader struct {
	r         io.Reader
	task      *Task
	bar       *progressbar.ProgressBar
	cancelled bool
}

func (c *cancellableReader) Read(p []byte) (int, error) {
	if c.task.Cancelled() {
		c.cancelled = true
		return 0, io.EOF
	}
	n, err := c.r.Read(p)
	if n > 0 {
		_ = c.bar.Add(n)
	}
	return n, err
}

func extractZip(zipPath, dest string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	for _, f := range r.File {
		targetPath := filepath.Join(dest, f.Name)
		if !isWithinDir(dest, targetPath) {
			return fmt.Errorf("zip entry %q escapes destination directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return err
		}

		if err := extractFile(f, targetPath); err != nil {
			return err
		}
	}

	return nil
}

func isWithinDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !filepathHasPrefix(rel, ".."+string(filepath.Separator))
}

func filepathHasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func extractFile(f *zip.File, targetPath string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

// resolveLatestName picks the greatest version with a download URL,
// optionally skipping experimental flavors (spec.md §4.6 / Open
// Questions: "exclude experimental, not beta", matching
// LauncherSettings.cpp's install_latest_version call).
func (t *Task) resolveLatestName() (versionname.Name, bool) {
	for _, v := range t.registry.All() {
		if !v.HasDownloadURL() {
			continue
		}
		if t.excludeExperimental && v.Name.IsExperimental() {
			continue
		}
		return v.Name, true
	}
	return versionname.Name{}, false
}

func (t *Task) cancel() error {
	t.registry.SetInstallationStatus(t.name, registry.NotInstalled)
	return task.ErrCancelled
}

func (t *Task) fail(err error) error {
	t.errMessage = err.Error()
	t.log.WithError(err).Errorf("install failed")
	t.registry.SetInstallationStatus(t.name, registry.FailedToInstall)
	return err
}

// Cleanup implements task.Task: dismisses the progress notification on
// success, or turns it into an error banner on failure.
func (t *Task) Cleanup(wasCancelled bool) {
	if wasCancelled {
		t.registry.SetInstallationStatus(t.name, registry.NotInstalled)
		t.notifier.CloseImmediately(t.notificationID)
		return
	}
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
