// Package launcherpaths resolves the well-known directories the
// launcher reads and writes, mirroring the original launcher's Path
// namespace (Path.cpp/Path.hpp): everything hangs off a single
// per-user data root.
package launcherpaths

import (
	"os"
	"path/filepath"
)

const appDirName = "CoolLabLauncher"

// UserData returns the root directory the launcher stores all of its
// state under. Out of scope per spec.md §1, this would normally defer
// to a dedicated path-resolution collaborator; here it's a thin wrapper
// over os.UserConfigDir so the rest of the system has something concrete
// to call.
func UserData() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, appDirName)
}

// InstalledVersionsFolder is where every installed release lives, one
// subfolder per version name.
func InstalledVersionsFolder() string {
	return filepath.Join(UserData(), "Installed Versions")
}

// InstallationPath is the install directory for a single version.
func InstallationPath(versionName string) string {
	return filepath.Join(InstalledVersionsFolder(), versionName)
}

// ProjectsInfoFolder holds the metadata the launcher tracks for every
// known project (one subfolder per project).
func ProjectsInfoFolder() string {
	return filepath.Join(UserData(), "Projects")
}

// DefaultProjectsFolder is where new projects are created when the user
// doesn't pick an explicit folder.
func DefaultProjectsFolder() string {
	base, err := os.UserHomeDir()
	if err != nil {
		base = UserData()
	}
	return filepath.Join(base, "CoolLab Projects")
}

// SettingsFilePath is where the persisted launcher settings live.
func SettingsFilePath() string {
	return filepath.Join(UserData(), "launcher_settings.yaml")
}

// CompatibilityFilePath is the per-version file declaring which project
// versions an installed version can or can't open, read by
// internal/compatibility when automatically_upgrade_projects_to_latest_compatible_version
// is enabled.
func CompatibilityFilePath(versionName string) string {
	return filepath.Join(InstallationPath(versionName), "compatibility.txt")
}

// ResolveProjectFolder implements the Intent.CreateNewProjectInFolder
// resolution rule from spec.md §3: empty resolves to the default
// projects folder, relative resolves relative to it, absolute is used
// as-is.
func ResolveProjectFolder(folder string) string {
	if folder == "" {
		return DefaultProjectsFolder()
	}
	if filepath.IsAbs(folder) {
		return folder
	}
	return filepath.Join(DefaultProjectsFolder(), folder)
}
