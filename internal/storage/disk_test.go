package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marketplace/internal/storage"

	"github.com/stretchr/testify/assert"
)

func TestDiskStore_SaveAndPath(t *testing.T) {
	store := storage.NewDiskStore(t.TempDir())

	url, err := store.Save("boots.png", []byte("png-bytes"))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	// The stored name is a generated UUID, not the original
	assert.NotContains(t, url, "boots")

	filename := strings.TrimPrefix(url, "/uploads/")
	path, err := store.Path(filename)
	assert.NoError(t, err)

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestDiskStore_PathRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewDiskStore(dir)

	// Plant a file outside the store to make sure it stays unreachable
	outside := filepath.Join(dir, "..", "secret.txt")
	assert.NoError(t, os.WriteFile(outside, []byte("secret"), 0o644))
	defer os.Remove(outside)

	_, err := store.Path("../secret.txt")
	assert.Error(t, err)

	_, err = store.Path("missing.png")
	assert.Error(t, err)
}

func TestDiskStore_Remove(t *testing.T) {
	store := storage.NewDiskStore(t.TempDir())

	url, err := store.Save("boots.png", []byte("png-bytes"))
	assert.NoError(t, err)

	assert.NoError(t, store.Remove(url))

	filename := strings.TrimPrefix(url, "/uploads/")
	_, err = store.Path(filename)
	assert.Error(t, err)

	// Removing an already-absent file is not an error
	assert.NoError(t, store.Remove(url))

	// A URL escaping the upload directory is rejected
	assert.Error(t, store.Remove("/uploads/../secret.txt"))
}
