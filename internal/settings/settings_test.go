package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewManager_WritesDefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	m, err := NewManager(nil)
	if err != nil {
		t.Fatal(err)
	}

	if !m.Current().AutomaticallyInstallLatestVersion {
		t.Fatal("expected default install-latest to be true")
	}
	if _, err := os.Stat(m.path); err != nil {
		t.Fatalf("expected settings file to be written, stat failed: %v", err)
	}
}

func TestNewManager_LoadsPersistedValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	m, err := NewManager(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetShowExperimentalVersions(true); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewManager(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.Current().ShowExperimentalVersions {
		t.Fatal("expected reloaded settings to keep the persisted toggle")
	}
}

func TestSetAutomaticallyInstallLatestVersion_FiresHookOnlyOnEnableTransition(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	calls := 0
	m, err := NewManager(func(excludeExperimental bool) { calls++ })
	if err != nil {
		t.Fatal(err)
	}

	// Default is already true, so disabling first shouldn't fire the hook.
	if err := m.SetAutomaticallyInstallLatestVersion(false); err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Fatalf("expected no hook calls when disabling, got %d", calls)
	}

	if err := m.SetAutomaticallyInstallLatestVersion(true); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one hook call on false->true transition, got %d", calls)
	}

	// Re-enabling while already true must not fire again.
	if err := m.SetAutomaticallyInstallLatestVersion(true); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected hook not to refire when already enabled, got %d", calls)
	}
}

func TestSave_UsesTempFileThenRename(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	m, err := NewManager(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetShowExperimentalVersions(true); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(m.path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, got err=%v", err)
	}
	if _, err := os.Stat(filepath.Dir(m.path)); err != nil {
		t.Fatalf("expected settings directory to exist: %v", err)
	}
}
