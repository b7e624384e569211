// Package note persists the single free-text note shown under the timer.
package note

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/eggtimer-project/eggtimer/pkg/errclass"
	"github.com/eggtimer-project/eggtimer/pkg/fsutil"
)

// Key names the stored note.
const Key = "cute-egg-note"

// Store loads and saves the note.
type Store interface {
	Load() (string, error)
	Save(text string) error
	Clear() error
}

// FileStore keeps the note in <dir>/cute-egg-note.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, path: filepath.Join(dir, Key)}
}

// Path returns the file backing the note.
func (s *FileStore) Path() string { return s.path }

// Load returns the stored note, or "" when none was saved.
func (s *FileStore) Load() (string, error) {
	data, err := fsutil.ReadFileIfExists(s.fs, s.path)
	if err != nil {
		return "", errclass.ErrStorage.WithMessagef("read note: %v", err)
	}
	return string(data), nil
}

// Save trims surrounding whitespace and stores the result.
func (s *FileStore) Save(text string) error {
	if err := fsutil.AtomicWrite(s.fs, s.path, []byte(strings.TrimSpace(text)), 0o600); err != nil {
		return errclass.ErrStorage.WithMessagef("write note: %v", err)
	}
	return nil
}

// Clear removes the note.
func (s *FileStore) Clear() error {
	if err := s.fs.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errclass.ErrStorage.WithMessagef("clear note: %v", err)
	}
	return nil
}
