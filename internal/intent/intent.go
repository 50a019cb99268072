// Package intent describes what a launched version should do once it
// starts: open an existing project file, or create a new one in a
// folder.
package intent

// Kind discriminates the two Intent cases.
type Kind int

const (
	// OpenFile opens an existing project file.
	OpenFile Kind = iota
	// CreateNewProjectInFolder creates a new project in a folder.
	CreateNewProjectInFolder
)

// Intent is the tagged variant passed from the launch pipeline down to
// the Launch Task, telling the spawned executable what to do.
type Intent struct {
	kind Kind
	path string
}

// NewOpenFile builds an Intent that opens the project file at path.
func NewOpenFile(path string) Intent { return Intent{kind: OpenFile, path: path} }

// NewCreateNewProjectInFolder builds an Intent that creates a new
// project in folder. An empty folder resolves to the default projects
// folder; a relative one resolves relative to it (see launcherpaths).
func NewCreateNewProjectInFolder(folder string) Intent {
	return Intent{kind: CreateNewProjectInFolder, path: folder}
}

// Kind reports which of the two cases this Intent holds.
func (i Intent) Kind() Kind { return i.kind }

// Path returns the file path or folder path carried by the intent,
// depending on Kind().
func (i Intent) Path() string { return i.path }
