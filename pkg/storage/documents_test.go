package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngPayload = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func newDocumentStore(t *testing.T) (*DocumentStore, string) {
	t.Helper()
	base := t.TempDir()
	store, err := NewDocumentStore(filepath.Join(base, "uploads"), 0, nil)
	require.NoError(t, err)
	return store, base
}

func TestDocumentStoreSaveAndOpen(t *testing.T) {
	store, _ := newDocumentStore(t)

	ext, err := store.Save(FieldDocumentOne, 7, pngPayload)
	require.NoError(t, err)
	require.Equal(t, "png", ext)

	file, contentType, err := store.Open(FieldDocumentOne, 7, ext)
	require.NoError(t, err)
	defer file.Close()
	require.Equal(t, "image/png", contentType)
}

func TestDocumentStoreOpenNormalisesJpegAlias(t *testing.T) {
	store, _ := newDocumentStore(t)

	dir := filepath.Join(store.baseDir, FieldDocumentTwo)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "3.jpg"), []byte("x"), 0o644))

	file, contentType, err := store.Open(FieldDocumentTwo, 3, ".JPEG")
	require.NoError(t, err)
	defer file.Close()
	require.Equal(t, "image/jpeg", contentType)
}

func TestDocumentStoreOpenRejectsUnknownExtension(t *testing.T) {
	store, _ := newDocumentStore(t)

	_, _, err := store.Open(FieldDocumentOne, 7, "txt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown document extension")
}

func TestDocumentStoreOpenRejectsUnknownField(t *testing.T) {
	store, _ := newDocumentStore(t)

	_, _, err := store.Open("passport", 7, "png")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown document field")
}

func TestDocumentStoreOpenRejectsPathTraversal(t *testing.T) {
	store, base := newDocumentStore(t)

	secret := filepath.Join(base, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("jwt-signing-key"), 0o600))

	_, _, err := store.Open(FieldDocumentOne, 5, "./../../../secret.txt")
	require.Error(t, err)
}

func TestDocumentStoreSaveRejectsUnsupportedContent(t *testing.T) {
	store, _ := newDocumentStore(t)

	_, err := store.Save(FieldDocumentOne, 7, []byte("plain text, not a document"))
	require.Error(t, err)
}
