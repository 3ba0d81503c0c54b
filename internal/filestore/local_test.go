package filestore

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docgate-io/docgate/internal/config"
)

type memFile struct {
	*bytes.Reader
}

func (m *memFile) Close() error { return nil }

func TestLocalStoreSaveOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)

	content := []byte("stored payload")
	err = store.Save(context.Background(), "key1", &memFile{bytes.NewReader(content)}, int64(len(content)))
	require.NoError(t, err)

	file, err := store.Open(context.Background(), "key1")
	require.NoError(t, err)
	defer file.Close()
	got, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestLocalStoreRejectsPathTraversalKeys(t *testing.T) {
	dir := t.TempDir()
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)

	err = store.Save(context.Background(), "../escape", &memFile{bytes.NewReader([]byte("x"))}, 1)
	require.Error(t, err)

	_, err = store.Open(context.Background(), "a/b")
	require.Error(t, err)

	_, err = store.Open(context.Background(), "")
	require.Error(t, err)
}

func TestLocalStoreSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)

	content := []byte("payload")
	err = store.Save(context.Background(), "key1", &memFile{bytes.NewReader(content)}, int64(len(content)))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "key1", entries[0].Name())
}

func TestLocalStoreURL(t *testing.T) {
	dir := t.TempDir()
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{
		"dir":        dir,
		"public_url": "https://cdn.example.com/files/",
	}})
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/files/key1", store.URL("key1", "http://ignored"))

	plain, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/api/v1/files/key1", plain.URL("key1", "http://localhost:8080"))
}
