package commands

import (
	"os"
	"path/filepath"
	"testing"

	"launcher/cmd/launcher/app"
	"launcher/internal/intent"
	"launcher/internal/launcherpaths"
	"launcher/internal/registry"
	"launcher/internal/settings"
	"launcher/internal/versionname"
	"launcher/internal/versionref"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	sm, err := settings.NewManager(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &app.App{Registry: registry.New(), Settings: sm}
}

// TestResolveRef_OpenFileReadsVersionFromUntrackedFile covers spec.md
// §8 scenario 6: a project file handed to the launcher via the OS
// file-association path that the Project Tracker has never seen before
// must still resolve Exact(<version on its first line>), not fall
// through to the fallback.
func TestResolveRef_OpenFileReadsVersionFromUntrackedFile(t *testing.T) {
	a := newTestApp(t)
	if err := a.Settings.SetAutomaticallyUpgradeProjectsToLatestCompatible(false); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "untracked.coollab")
	if err := os.WriteFile(path, []byte("2.3.1\nrest of the file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ref := resolveRef(a, "", intent.NewOpenFile(path))
	if ref.Kind() != versionref.Exact {
		t.Fatalf("expected Exact, got kind %v", ref.Kind())
	}
	if ref.Name().String() != "2.3.1" {
		t.Fatalf("expected 2.3.1, got %s", ref.Name().String())
	}
}

func TestResolveRef_OpenFileFallsBackToLatestWhenUnreadable(t *testing.T) {
	a := newTestApp(t)
	ref := resolveRef(a, "", intent.NewOpenFile(filepath.Join(t.TempDir(), "missing.coollab")))
	if ref.Kind() != versionref.Latest {
		t.Fatalf("expected Latest fallback, got kind %v", ref.Kind())
	}
}

func TestResolveRef_ExplicitVersionFlagWins(t *testing.T) {
	a := newTestApp(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "p.coollab")
	if err := os.WriteFile(path, []byte("2.3.1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ref := resolveRef(a, "9.9.9", intent.NewOpenFile(path))
	if ref.Kind() != versionref.Exact || ref.Name().String() != "9.9.9" {
		t.Fatalf("expected Exact(9.9.9), got %v %s", ref.Kind(), ref.Name())
	}
}

// TestResolveRef_UpgradesToLatestInstalledWhenCompatible exercises the
// automatically_upgrade_projects_to_latest_compatible_version setting:
// a project recorded on an older version opens with the latest
// installed one instead, when that version's compatibility file
// doesn't rule it out.
func TestResolveRef_UpgradesToLatestInstalledWhenCompatible(t *testing.T) {
	a := newTestApp(t)
	a.Registry.SetInstallationStatus(versionname.MustParseForTest("1.0.0"), registry.Installed)
	a.Registry.SetInstallationStatus(versionname.MustParseForTest("2.0.0"), registry.Installed)
	// No compatibility file for 2.0.0: absence means compatible by default.

	dir := t.TempDir()
	path := filepath.Join(dir, "old.coollab")
	if err := os.WriteFile(path, []byte("1.0.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ref := resolveRef(a, "", intent.NewOpenFile(path))
	if ref.Kind() != versionref.Exact || ref.Name().String() != "2.0.0" {
		t.Fatalf("expected upgrade to 2.0.0, got %v %s", ref.Kind(), ref.Name())
	}
}

// TestResolveRef_StaysOnRecordedVersionWhenIncompatible covers the same
// setting's negative case: an explicit "incompatible" declaration in
// the latest installed version's compatibility file keeps the project
// on its originally recorded version instead.
func TestResolveRef_StaysOnRecordedVersionWhenIncompatible(t *testing.T) {
	a := newTestApp(t)
	a.Registry.SetInstallationStatus(versionname.MustParseForTest("1.0.0"), registry.Installed)
	a.Registry.SetInstallationStatus(versionname.MustParseForTest("2.0.0"), registry.Installed)

	compatPath := launcherpaths.CompatibilityFilePath("2.0.0")
	if err := os.MkdirAll(filepath.Dir(compatPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(compatPath, []byte("incompatible\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "old.coollab")
	if err := os.WriteFile(path, []byte("1.0.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ref := resolveRef(a, "", intent.NewOpenFile(path))
	if ref.Kind() != versionref.Exact || ref.Name().String() != "1.0.0" {
		t.Fatalf("expected to stay on recorded 1.0.0, got %v %s", ref.Kind(), ref.Name())
	}
}

// TestResolveRef_UpgradeDisabledKeepsRecordedVersion covers the toggle
// being off: even with a newer compatible version installed, the
// project opens with its own recorded version.
func TestResolveRef_UpgradeDisabledKeepsRecordedVersion(t *testing.T) {
	a := newTestApp(t)
	if err := a.Settings.SetAutomaticallyUpgradeProjectsToLatestCompatible(false); err != nil {
		t.Fatal(err)
	}
	a.Registry.SetInstallationStatus(versionname.MustParseForTest("1.0.0"), registry.Installed)
	a.Registry.SetInstallationStatus(versionname.MustParseForTest("2.0.0"), registry.Installed)

	dir := t.TempDir()
	path := filepath.Join(dir, "old.coollab")
	if err := os.WriteFile(path, []byte("1.0.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ref := resolveRef(a, "", intent.NewOpenFile(path))
	if ref.Kind() != versionref.Exact || ref.Name().String() != "1.0.0" {
		t.Fatalf("expected to keep recorded 1.0.0, got %v %s", ref.Kind(), ref.Name())
	}
}
