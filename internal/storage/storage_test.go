package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPhotoKey(t *testing.T) {
	key := BuildPhotoKey("MSKU-123456-7", 42, "front door.JPG")

	re := regexp.MustCompile(`^photos/MSKU1234567/movement_42/[0-9a-f]{12}\.jpg$`)
	assert.Regexp(t, re, key)

	// Extension defaults to jpg when the filename has none.
	key = BuildPhotoKey("MSKU-123456-7", 1, "blob")
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)

	// Keys are randomized, two uploads of the same file never collide.
	assert.NotEqual(t,
		BuildPhotoKey("MSKU-123456-7", 1, "a.png"),
		BuildPhotoKey("MSKU-123456-7", 1, "a.png"))
}

func TestLocalStorage_Store(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads")
	require.NoError(t, err)

	url, err := ls.Store(context.Background(), strings.NewReader("photo-bytes"), 11,
		"photos/MSKU1234567/movement_1/abc123def456.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/photos/MSKU1234567/movement_1/abc123def456.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "photos", "MSKU1234567", "movement_1", "abc123def456.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "photo-bytes", string(data))
}

func TestLocalStorage_StoreWithoutBaseURL(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "")
	require.NoError(t, err)

	url, err := ls.Store(context.Background(), strings.NewReader("x"), 1, "photos/a/b.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "photos", "a", "b.jpg"), url)
}
