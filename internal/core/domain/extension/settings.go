package extension

// CommitActionID is the row id of the persist-and-reload action
const CommitActionID = "save-and-reload"

// ToggleRow is one enable/disable control of a settings section
type ToggleRow struct {
	ID       string
	Label    string
	Value    bool
	OnChange func(enabled bool)

	// Current reads the live value; Refresh copies it into Value
	Current func() bool
}

// ActionRow is a button of a settings section
type ActionRow struct {
	ID          string
	Description string
	Caption     string
	OnClick     func() error
}

// SettingsModel is the renderable description of the loader's settings
// section. It is derived from a single discovery pass.
type SettingsModel struct {
	SectionID string
	Title     string
	Toggles   []ToggleRow
	Commit    ActionRow
}

// BuildSettingsModel synthesises one toggle per descriptor, backed by the
// working copy, followed by a commit action that hands the working overrides
// to onCommit.
func BuildSettingsModel(sectionID, title string, descriptors []Descriptor, working *WorkingCopy, onCommit func(EnablementMap) error) *SettingsModel {
	model := &SettingsModel{
		SectionID: sectionID,
		Title:     title,
		Toggles:   make([]ToggleRow, 0, len(descriptors)),
	}

	for _, d := range descriptors {
		id := d.Identifier()
		model.Toggles = append(model.Toggles, ToggleRow{
			ID:    id,
			Label: " • " + d.DisplayName(),
			Value: working.IsEnabled(id),
			OnChange: func(enabled bool) {
				working.Set(id, enabled)
			},
			Current: func() bool {
				return working.IsEnabled(id)
			},
		})
	}

	model.Commit = ActionRow{
		ID:          CommitActionID,
		Description: "Persist changes and reload",
		Caption:     "Save & Reload",
		OnClick: func() error {
			return onCommit(working.Snapshot())
		},
	}

	return model
}

// Refresh re-reads every toggle value from its backing state
func (m *SettingsModel) Refresh() {
	for i := range m.Toggles {
		if m.Toggles[i].Current != nil {
			m.Toggles[i].Value = m.Toggles[i].Current()
		}
	}
}

// Toggle finds the toggle row with the given id
func (m *SettingsModel) Toggle(id string) (ToggleRow, bool) {
	for _, row := range m.Toggles {
		if row.ID == id {
			return row, true
		}
	}
	return ToggleRow{}, false
}
