// Package settings persists the launcher's user-facing toggles,
// grounded on pkg/manifest/manager.go's load/save/atomic-rename pattern
// and on LauncherSettings.cpp's three toggles and their side effects.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"launcher/internal/launcherpaths"
	"launcher/internal/logging"
)

// Settings holds the three persisted toggles from LauncherSettings.cpp.
type Settings struct {
	AutomaticallyInstallLatestVersion              bool `yaml:"automatically_install_latest_version"`
	AutomaticallyUpgradeProjectsToLatestCompatible bool `yaml:"automatically_upgrade_projects_to_latest_compatible_version"`
	ShowExperimentalVersions                       bool `yaml:"show_experimental_versions"`
}

// Default matches the original's defaults: install the latest
// automatically, upgrade projects automatically, and hide experimental
// versions.
func Default() Settings {
	return Settings{
		AutomaticallyInstallLatestVersion:              true,
		AutomaticallyUpgradeProjectsToLatestCompatible: true,
		ShowExperimentalVersions:                       false,
	}
}

// InstallLatestHook is invoked when AutomaticallyInstallLatestVersion
// transitions from false to true, matching LauncherSettings.cpp's
// "version_manager().install_latest_version(true)" call site. The bool
// passed through mirrors the original's "filter_experimental_versions"
// argument: the auto-install path always excludes experimental builds.
type InstallLatestHook func(excludeExperimental bool)

// Manager loads, persists, and mutates Settings, firing hooks the way
// the original's setter methods trigger an immediate save plus any side
// effect (spec.md §4.8).
type Manager struct {
	log      *logging.Logger
	path     string
	current  Settings
	onInstallLatestEnabled InstallLatestHook
}

// NewManager loads settings from disk (or writes the defaults if no
// settings file exists yet), matching Manager.Load's
// create-if-missing behavior in pkg/manifest.
func NewManager(onInstallLatestEnabled InstallLatestHook) (*Manager, error) {
	m := &Manager{
		log:                    logging.Global().Operation("settings"),
		path:                   launcherpaths.SettingsFilePath(),
		onInstallLatestEnabled: onInstallLatestEnabled,
	}

	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		m.current = Default()
		if err := m.save(); err != nil {
			return nil, fmt.Errorf("create default settings: %w", err)
		}
		return m, nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		m.log.WithError(err).Warnf("settings file is corrupt, falling back to defaults")
		s = Default()
	}
	m.current = s

	return m, nil
}

// Current returns a copy of the settings as currently known.
func (m *Manager) Current() Settings { return m.current }

// SetAutomaticallyInstallLatestVersion flips the toggle, saves, and —
// on a false-to-true transition — fires onInstallLatestEnabled, matching
// LauncherSettings::set_automatically_install_latest_version.
func (m *Manager) SetAutomaticallyInstallLatestVersion(enabled bool) error {
	wasEnabled := m.current.AutomaticallyInstallLatestVersion
	m.current.AutomaticallyInstallLatestVersion = enabled
	if err := m.save(); err != nil {
		return err
	}
	if enabled && !wasEnabled && m.onInstallLatestEnabled != nil {
		m.onInstallLatestEnabled(true)
	}
	return nil
}

// SetAutomaticallyUpgradeProjectsToLatestCompatible flips the toggle
// and saves.
func (m *Manager) SetAutomaticallyUpgradeProjectsToLatestCompatible(enabled bool) error {
	m.current.AutomaticallyUpgradeProjectsToLatestCompatible = enabled
	return m.save()
}

// SetShowExperimentalVersions flips the toggle and saves.
func (m *Manager) SetShowExperimentalVersions(enabled bool) error {
	m.current.ShowExperimentalVersions = enabled
	return m.save()
}

// save writes the settings file via a temp-file-plus-rename, matching
// pkg/manifest/manager.go's Save.
func (m *Manager) save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	data, err := yaml.Marshal(m.current)
	if err != nil {
		return fmt.Errorf("serialize settings: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temporary settings file: %w", err)
	}

	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("move settings to final location: %w", err)
	}

	return nil
}
