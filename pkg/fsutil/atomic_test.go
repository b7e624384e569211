package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/eggtimer-project/eggtimer/pkg/fsutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite_CreatesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/data/cute-egg-note.txt"

	require.NoError(t, fsutil.AtomicWrite(fs, path, []byte("soft boiled"), 0o644))

	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, "soft boiled", string(content))
}

func TestAtomicWrite_OverwritesExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/data/config.yaml"
	require.NoError(t, afero.WriteFile(fs, path, []byte("old"), 0o644))

	require.NoError(t, fsutil.AtomicWrite(fs, path, []byte("new"), 0o644))

	content, _ := afero.ReadFile(fs, path)
	assert.Equal(t, "new", string(content))
}

func TestAtomicWrite_NoTmpLeftOnSuccess(t *testing.T) {
	dir := t.TempDir()
	fs := afero.NewOsFs()
	path := filepath.Join(dir, "note.txt")

	require.NoError(t, fsutil.AtomicWrite(fs, path, []byte("data"), 0o600))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the target file should exist")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAtomicWrite_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := fsutil.AtomicWrite(fs, "/data/x", []byte("x"), 0o644)
	assert.Error(t, err)
}

func TestReadFileIfExists(t *testing.T) {
	fs := afero.NewMemMapFs()

	data, err := fsutil.ReadFileIfExists(fs, "/missing")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, afero.WriteFile(fs, "/present", []byte("yes"), 0o644))
	data, err = fsutil.ReadFileIfExists(fs, "/present")
	require.NoError(t, err)
	assert.Equal(t, "yes", string(data))
}
