package extension

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDescriptors(t *testing.T, names ...string) []Descriptor {
	t.Helper()
	out := make([]Descriptor, 0, len(names))
	for _, n := range names {
		d, err := NewDescriptor(n, mustURL(t, "https://raw.example.com/"+n+".js"))
		require.NoError(t, err)
		out = append(out, d)
	}
	return out
}

func TestBuildSettingsModel_RowsFollowDescriptors(t *testing.T) {
	working := NewWorkingCopy(EnablementMap{"home": false})
	model := BuildSettingsModel("loader-settings", "Alehaaaa Loader", buildDescriptors(t, "home", "tags"), working, func(EnablementMap) error { return nil })

	require.Len(t, model.Toggles, 2)
	assert.Equal(t, "loader-settings", model.SectionID)
	assert.Equal(t, "Alehaaaa Loader", model.Title)

	assert.Equal(t, "home", model.Toggles[0].ID)
	assert.Equal(t, " • home", model.Toggles[0].Label)
	assert.False(t, model.Toggles[0].Value, "explicitly disabled extension renders unchecked")

	assert.Equal(t, "tags", model.Toggles[1].ID)
	assert.True(t, model.Toggles[1].Value, "unset extension renders checked")

	assert.Equal(t, CommitActionID, model.Commit.ID)
	assert.Equal(t, "Save & Reload", model.Commit.Caption)
}

func TestBuildSettingsModel_ToggleUpdatesWorkingCopyOnly(t *testing.T) {
	persisted := EnablementMap{"home": false}
	working := NewWorkingCopy(persisted)
	model := BuildSettingsModel("s", "t", buildDescriptors(t, "home", "tags"), working, func(EnablementMap) error { return nil })

	row, ok := model.Toggle("tags")
	require.True(t, ok)
	row.OnChange(false)

	assert.False(t, working.IsEnabled("tags"), "working copy reflects toggle immediately")
	assert.Equal(t, StateUnset, persisted.Lookup("tags"), "persisted copy is untouched before commit")
}

func TestBuildSettingsModel_CommitHandsOverExactWorkingCopy(t *testing.T) {
	working := NewWorkingCopy(EnablementMap{"home": false})

	var committed EnablementMap
	model := BuildSettingsModel("s", "t", buildDescriptors(t, "home", "tags"), working, func(m EnablementMap) error {
		committed = m
		return nil
	})

	home, _ := model.Toggle("home")
	home.OnChange(true)
	tags, _ := model.Toggle("tags")
	tags.OnChange(false)

	require.NoError(t, model.Commit.OnClick())
	assert.True(t, committed.Equal(EnablementMap{"home": true, "tags": false}))

	// later toggles do not leak into the committed snapshot
	tags.OnChange(true)
	assert.False(t, committed["tags"])
}

func TestBuildSettingsModel_CommitErrorPropagates(t *testing.T) {
	boom := errors.New("disk full")
	model := BuildSettingsModel("s", "t", nil, NewWorkingCopy(nil), func(EnablementMap) error { return boom })

	assert.ErrorIs(t, model.Commit.OnClick(), boom)
	assert.Empty(t, model.Toggles)
}

func TestSettingsModel_RefreshReadsWorkingCopy(t *testing.T) {
	working := NewWorkingCopy(nil)
	model := BuildSettingsModel("s", "t", buildDescriptors(t, "home", "tags"), working, func(EnablementMap) error { return nil })

	home, ok := model.Toggle("home")
	require.True(t, ok)
	home.OnChange(false)

	stale, _ := model.Toggle("home")
	assert.True(t, stale.Value, "values are only re-read on Refresh")

	model.Refresh()
	home, _ = model.Toggle("home")
	assert.False(t, home.Value)
	tags, _ := model.Toggle("tags")
	assert.True(t, tags.Value)
}

func TestSettingsModel_ToggleMissing(t *testing.T) {
	model := BuildSettingsModel("s", "t", buildDescriptors(t, "home"), NewWorkingCopy(nil), func(EnablementMap) error { return nil })
	_, ok := model.Toggle("nope")
	assert.False(t, ok)
}

func TestErrors_Unwrap(t *testing.T) {
	cause := errors.New("cause")

	var discovery error = &DiscoveryError{Endpoint: "https://api.example.com", Err: cause}
	var fetch error = &FetchError{Identifier: "tags", Source: "https://raw.example.com/tags.js", Err: cause}
	var exec error = &ExecutionError{Identifier: "tags", Err: cause}
	var read error = &PersistenceReadError{Key: "LoaderStates", Err: cause}

	for _, err := range []error{discovery, fetch, exec, read} {
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "cause")
	}

	var fe *FetchError
	require.ErrorAs(t, fetch, &fe)
	assert.Equal(t, "tags", fe.Identifier)
}
