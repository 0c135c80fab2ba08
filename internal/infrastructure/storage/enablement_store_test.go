package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/testfixtures"
)

func newTestStore(t *testing.T) (*EnablementStore, *KVStore, *testfixtures.RecordingLogger) {
	t.Helper()
	kv := NewKVStore(t.TempDir())
	logger := testfixtures.NewRecordingLogger()
	return NewEnablementStore(kv, "", logger), kv, logger
}

func TestEnablementStore_DefaultKey(t *testing.T) {
	store, _, _ := newTestStore(t)
	assert.Equal(t, "LoaderStates", store.Key())
}

func TestEnablementStore_LoadAbsent(t *testing.T) {
	store, _, logger := newTestStore(t)

	m := store.Load(context.Background())
	assert.NotNil(t, m)
	assert.Empty(t, m)
	assert.Empty(t, logger.Messages("warn"), "first run is not an error")
}

func TestEnablementStore_LoadMalformed(t *testing.T) {
	cases := map[string]string{
		"invalid json": `{"home": fal`,
		"array":        `["home"]`,
		"string":       `"home"`,
		"null":         `null`,
		"number":       `42`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store, kv, logger := newTestStore(t)
			require.NoError(t, kv.Set(store.Key(), raw))

			m := store.Load(context.Background())
			assert.Empty(t, m)

			warnings := logger.Find("warn", "ignoring stored enablement state")
			require.Len(t, warnings, 1)
			require.Len(t, warnings[0].Args, 2)
			var readErr *extension.PersistenceReadError
			err, _ := warnings[0].Args[1].(error)
			require.ErrorAs(t, err, &readErr)
			assert.Equal(t, "LoaderStates", readErr.Key)
		})
	}
}

func TestEnablementStore_LoadIgnoresNonBoolValues(t *testing.T) {
	store, kv, _ := newTestStore(t)
	require.NoError(t, kv.Set(store.Key(), `{"home":false,"tags":true,"queue":"false","lyrics":0,"keys":null}`))

	m := store.Load(context.Background())
	assert.Equal(t, extension.EnablementMap{"home": false, "tags": true}, m)
	assert.True(t, m.IsEnabled("queue"), "only a JSON false disables")
	assert.True(t, m.IsEnabled("lyrics"))
}

func TestEnablementStore_SaveLoadRoundTrip(t *testing.T) {
	store, kv, _ := newTestStore(t)
	ctx := context.Background()

	want := extension.EnablementMap{"home": false, "tags": true}
	require.NoError(t, store.Save(ctx, want))

	assert.True(t, want.Equal(store.Load(ctx)))

	raw, ok, err := kv.Get(store.Key())
	require.NoError(t, err)
	require.True(t, ok)
	var onDisk map[string]bool
	require.NoError(t, json.Unmarshal([]byte(raw), &onDisk))
	assert.Equal(t, map[string]bool{"home": false, "tags": true}, onDisk)
}

func TestEnablementStore_SaveReplacesWholesale(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, extension.EnablementMap{"home": false, "tags": false}))
	require.NoError(t, store.Save(ctx, extension.EnablementMap{"tags": true}))

	assert.Equal(t, extension.EnablementMap{"tags": true}, store.Load(ctx))
}

func TestEnablementStore_SaveNil(t *testing.T) {
	store, kv, _ := newTestStore(t)

	require.NoError(t, store.Save(context.Background(), nil))
	raw, ok, err := kv.Get(store.Key())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "{}", raw)
}

func TestEnablementStore_Clear(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, extension.EnablementMap{"home": false}))
	require.NoError(t, store.Clear(ctx))
	assert.Empty(t, store.Load(ctx))
}

func TestEnablementStore_CustomKey(t *testing.T) {
	kv := NewKVStore(t.TempDir())
	store := NewEnablementStore(kv, "OtherStates", testfixtures.NewRecordingLogger())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, extension.EnablementMap{"home": false}))
	_, ok, err := kv.Get("OtherStates")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = kv.Get(DefaultKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
