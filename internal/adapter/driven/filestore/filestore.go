// Package filestore persists session records as one plain file per key inside
// the profile directory.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ericfisherdev/pluxee-mcp/internal/domain/model"
	"github.com/ericfisherdev/pluxee-mcp/internal/domain/port/driven"
)

var _ driven.RecordStore = (*Store)(nil)

const (
	dirPerm  fs.FileMode = 0o700
	filePerm fs.FileMode = 0o600
)

// Store keeps each record in <dir>/<key>. Writes go through a temporary file
// and a rename, so a reader never observes a partially written value.
type Store struct {
	fs  afero.Fs
	dir string
}

// New creates a Store rooted at dir on fsys. A nil fsys selects the OS
// filesystem.
func New(fsys afero.Fs, dir string) *Store {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Store{fs: fsys, dir: dir}
}

// Dir returns the profile directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load returns the trimmed file contents for key, or "" when the file does
// not exist.
func (s *Store) Load(_ context.Context, key model.CredentialKey) (string, error) {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes value to the file for key, creating the profile directory when
// needed.
func (s *Store) Save(_ context.Context, key model.CredentialKey, value string) error {
	if err := s.fs.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, "."+string(key)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := s.fs.Chmod(tmpName, filePerm); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", key, err)
	}
	if err := s.fs.Rename(tmpName, s.path(key)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Delete removes the file for key. A missing file is not an error.
func (s *Store) Delete(_ context.Context, key model.CredentialKey) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) path(key model.CredentialKey) string {
	return filepath.Join(s.dir, string(key))
}
