package ports

import "kilometers.ai/loader/internal/core/domain/extension"

// PreferencesPath is the navigation location that shows settings sections
const PreferencesPath = "/preferences"

// Navigator exposes the host's navigation history
type Navigator interface {
	// Location returns the current path
	Location() string

	// Navigate moves to path and notifies listeners
	Navigate(path string)

	// Listen registers fn for every navigation. The returned func removes it.
	Listen(fn func(path string)) (stop func())
}

// SettingsSection is a mounted settings container owned by one section id
type SettingsSection interface {
	ID() string

	// Render replaces the section's content with model
	Render(model *extension.SettingsModel) error

	// Hide tears the section's content down until the next Render
	Hide()
}

// SettingsSurface is the part of the host UI settings sections mount into
type SettingsSurface interface {
	// AnchorReady reports whether the preferences view has been laid out
	AnchorReady() bool

	// Section returns an already mounted section
	Section(id string) (SettingsSection, bool)

	// CreateSection mounts a new, empty section
	CreateSection(id string) (SettingsSection, error)
}

// Host is the application the loader runs inside
type Host interface {
	// Navigator returns the navigation API once the host is ready
	Navigator() (Navigator, bool)

	// Surface returns the settings mount point
	Surface() SettingsSurface

	// Reload restarts the whole hosting process
	Reload() error
}
