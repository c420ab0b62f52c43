package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorages(t *testing.T) {
	stores := map[string]Storage{
		"memory": NewMemoryStorage(),
		"file":   NewFileStorage(filepath.Join(t.TempDir(), "nested", "storage.json")),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(TokenKey)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(TokenKey, "one"))
			require.NoError(t, store.Set("other", "two"))
			require.NoError(t, store.Set(TokenKey, "three"))

			v, ok, err := store.Get(TokenKey)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "three", v)

			require.NoError(t, store.Remove(TokenKey))
			require.NoError(t, store.Remove(TokenKey))
			_, ok, err = store.Get(TokenKey)
			require.NoError(t, err)
			assert.False(t, ok)

			v, _, err = store.Get("other")
			require.NoError(t, err)
			assert.Equal(t, "two", v)
		})
	}
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFileStorage(path).Get(TokenKey)
	assert.Error(t, err)
}

func TestFileStorage_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, ok, err := NewFileStorage(path).Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
