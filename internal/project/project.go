// Package project implements the Project Tracker: a persistent list of
// known project paths with metadata lazily derived from disk, grounded
// on Project.cpp and ProjectManager.hpp.
package project

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"launcher/internal/launcherpaths"
	"launcher/internal/logging"
	"launcher/internal/versionname"
)

// infoFileName holds the absolute path to the tracked project file,
// one per subfolder of the project-info directory (spec.md §4.7).
const infoFileName = "path.txt"

// thumbnailFileName is the companion image whose mtime stands in for
// "time of last change", per spec.md §3.
const thumbnailFileName = "thumbnail.png"

// Project is a tracked project: a file path plus two fields that are
// read from disk only on first access and cached from then on, but only
// once that first read actually succeeds (spec.md §3: "Lazy fields
// cache the first successful read").
type Project struct {
	filePath string
	infoDir  string

	mu               sync.Mutex
	versionNameKnown bool
	versionName      versionname.Name
	timeKnown        bool
	timeOfLastChange time.Time
}

// newProject builds a Project for filePath, tracked under infoDir (its
// subfolder of the project-info directory).
func newProject(filePath, infoDir string) *Project {
	return &Project{filePath: filePath, infoDir: infoDir}
}

// FilePath returns the path to the tracked project file.
func (p *Project) FilePath() string { return p.filePath }

// Name is the file name without its extension, matching Project.cpp's
// name(); unlike the two fields below this needs no I/O, so it isn't
// lazily cached.
func (p *Project) Name() string {
	base := filepath.Base(p.filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// VersionName reads the first line of the project file and parses it as
// a VersionName, caching the result once the read succeeds. Missing or
// unreadable files return ok=false without error, matching
// Project::version_name's nullopt-on-failure contract.
func (p *Project) VersionName() (versionname.Name, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.versionNameKnown {
		return p.versionName, true
	}

	f, err := os.Open(p.filePath)
	if err != nil {
		return versionname.Name{}, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return versionname.Name{}, false
	}

	p.versionName = versionname.Parse(strings.TrimSpace(scanner.Text()))
	p.versionNameKnown = true
	return p.versionName, true
}

// TimeOfLastChange reads the mtime of the thumbnail companion file,
// caching the result once the stat succeeds. An unreadable thumbnail
// returns the zero time, matching Project::time_of_last_change's
// catch-and-log-and-return-default behavior.
func (p *Project) TimeOfLastChange() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timeKnown {
		return p.timeOfLastChange
	}

	info, err := os.Stat(filepath.Join(p.infoDir, thumbnailFileName))
	if err != nil {
		return time.Time{}
	}

	p.timeOfLastChange = info.ModTime()
	p.timeKnown = true
	return p.timeOfLastChange
}

// ReadVersionName reads the VersionName recorded in the project file at
// path, independent of whether path is a project the Tracker already
// knows about. Grounded on Project.cpp's version_name(), which reads
// straight off file_path() with no dependency on the project-info
// index (original_source/src/Project/Project.cpp:17-27) — the common
// case of a brand-new file handed to the launcher by the OS
// file-association handler is never in the Tracker yet.
func ReadVersionName(path string) (versionname.Name, bool) {
	return newProject(path, "").VersionName()
}

// Tracker holds every known project, discovered by scanning the
// project-info directory (spec.md §4.7).
type Tracker struct {
	log      *logging.Logger
	projects []*Project
}

// NewTracker scans the project-info directory and returns a Tracker
// over whatever it found. A missing directory is not an error: it just
// means no projects are tracked yet.
func NewTracker() (*Tracker, error) {
	t := &Tracker{log: logging.Global().Operation("project_tracker")}

	dir := launcherpaths.ProjectsInfoFolder()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		infoDir := filepath.Join(dir, entry.Name())
		filePath, ok := readProjectFilePath(infoDir)
		if !ok {
			t.log.Warnf("skipping project info folder %s: no %s found", entry.Name(), infoFileName)
			continue
		}
		t.projects = append(t.projects, newProject(filePath, infoDir))
	}

	return t, nil
}

func readProjectFilePath(infoDir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(infoDir, infoFileName))
	if err != nil {
		return "", false
	}
	line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	if line == "" {
		return "", false
	}
	return line, true
}

// Projects returns every tracked project.
func (t *Tracker) Projects() []*Project { return t.projects }

// HasSomeProjects mirrors ProjectManager::has_some_projects.
func (t *Tracker) HasSomeProjects() bool { return len(t.projects) > 0 }
