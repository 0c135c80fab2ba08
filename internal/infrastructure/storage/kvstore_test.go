package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_GetMissingSlot(t *testing.T) {
	kv := NewKVStore(t.TempDir())

	value, ok, err := kv.Get("LoaderStates")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestKVStore_SetGetDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	kv := NewKVStore(dir)

	require.NoError(t, kv.Set("LoaderStates", `{"home":false}`))

	value, ok, err := kv.Get("LoaderStates")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"home":false}`, value)

	require.NoError(t, kv.Set("LoaderStates", `{}`))
	value, _, err = kv.Get("LoaderStates")
	require.NoError(t, err)
	assert.Equal(t, `{}`, value)

	require.NoError(t, kv.Delete("LoaderStates"))
	_, ok, err = kv.Get("LoaderStates")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, kv.Delete("LoaderStates"), "deleting a missing slot is not an error")
}

func TestKVStore_SetLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	kv := NewKVStore(dir)

	require.NoError(t, kv.Set("a", "1"))
	require.NoError(t, kv.Set("a", "2"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}

func TestKVStore_InvalidKeys(t *testing.T) {
	kv := NewKVStore(t.TempDir())

	for _, key := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := kv.Path(key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)

		_, _, err = kv.Get(key)
		assert.ErrorIs(t, err, ErrInvalidKey)
		assert.ErrorIs(t, kv.Set(key, "x"), ErrInvalidKey)
		assert.ErrorIs(t, kv.Delete(key), ErrInvalidKey)
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Run("override", func(t *testing.T) {
		t.Setenv("KM_LOADER_DATA_DIR", "/tmp/custom")
		assert.Equal(t, "/tmp/custom", DefaultDataDir())
	})

	t.Run("xdg", func(t *testing.T) {
		if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
			t.Skip("XDG lookup only applies to unix-like systems")
		}
		t.Setenv("KM_LOADER_DATA_DIR", "")
		t.Setenv("XDG_DATA_HOME", "/xdg")
		assert.Equal(t, filepath.Join("/xdg", "km-loader"), DefaultDataDir())
	})

	t.Run("empty dir selects default", func(t *testing.T) {
		t.Setenv("KM_LOADER_DATA_DIR", "/tmp/custom")
		assert.Equal(t, "/tmp/custom", NewKVStore("").Dir())
	})
}
