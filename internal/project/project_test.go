package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"launcher/internal/launcherpaths"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestProject_VersionNameCachesFirstSuccessfulRead(t *testing.T) {
	dir := t.TempDir()
	projectFile := filepath.Join(dir, "demo.cool")
	writeFile(t, projectFile, "1.2.0\nrest of the file\n")

	p := newProject(projectFile, dir)

	name, ok := p.VersionName()
	if !ok || name.String() != "1.2.0" {
		t.Fatalf("expected 1.2.0, got %v ok=%v", name, ok)
	}

	// Mutate the file after the first read; the cached value must stick.
	writeFile(t, projectFile, "9.9.9\n")
	name, ok = p.VersionName()
	if !ok || name.String() != "1.2.0" {
		t.Fatalf("expected cached 1.2.0 after file change, got %v ok=%v", name, ok)
	}
}

func TestProject_VersionNameMissingFileReturnsNotOK(t *testing.T) {
	dir := t.TempDir()
	p := newProject(filepath.Join(dir, "missing.cool"), dir)

	if _, ok := p.VersionName(); ok {
		t.Fatal("expected ok=false for missing project file")
	}
}

func TestProject_TimeOfLastChangeCachesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	projectFile := filepath.Join(dir, "demo.cool")
	writeFile(t, projectFile, "1.0.0\n")
	thumb := filepath.Join(dir, thumbnailFileName)
	writeFile(t, thumb, "png-bytes")

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(thumb, past, past); err != nil {
		t.Fatal(err)
	}

	p := newProject(projectFile, dir)
	got := p.TimeOfLastChange()
	if got.IsZero() {
		t.Fatal("expected a non-zero mtime")
	}

	// Removing the thumbnail after the first read must not affect the
	// cached value.
	os.Remove(thumb)
	again := p.TimeOfLastChange()
	if !again.Equal(got) {
		t.Fatalf("expected cached time %v, got %v", got, again)
	}
}

func TestProject_TimeOfLastChangeMissingThumbnailReturnsZero(t *testing.T) {
	dir := t.TempDir()
	p := newProject(filepath.Join(dir, "demo.cool"), dir)

	if !p.TimeOfLastChange().IsZero() {
		t.Fatal("expected zero time when thumbnail is missing")
	}
}

func TestProject_NameStripsExtension(t *testing.T) {
	p := newProject("/some/path/My Project.cool", "/some/path")
	if got := p.Name(); got != "My Project" {
		t.Fatalf("got %q", got)
	}
}

func TestTracker_ScanDiscoversProjects(t *testing.T) {
	// Tracker reads from launcherpaths.ProjectsInfoFolder(), which is
	// derived from XDG_CONFIG_HOME.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	projectFile := filepath.Join(t.TempDir(), "a.cool")
	writeFile(t, projectFile, "1.0.0\n")

	sub := filepath.Join(launcherpaths.ProjectsInfoFolder(), "proj-a")
	writeFile(t, filepath.Join(sub, infoFileName), projectFile+"\n")

	tr, err := NewTracker()
	if err != nil {
		t.Fatal(err)
	}

	if !tr.HasSomeProjects() {
		t.Fatal("expected at least one project")
	}
	if got := tr.Projects()[0].Name(); got != "a" {
		t.Fatalf("got %q", got)
	}
}
