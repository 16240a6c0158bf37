package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// FileFragment is the CLI's address bar: a single file holding the
// current token, replaced wholesale on every write. Replacing the file
// keeps no history, matching the replace-not-push URL contract.
type FileFragment struct{ path string }

// NewFileFragment creates a fragment store at the given file path.
func NewFileFragment(path string) *FileFragment { return &FileFragment{path: path} }

// Fragment returns the current token, empty when none exists yet.
func (f *FileFragment) Fragment() (string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Replace overwrites the stored token.
func (f *FileFragment) Replace(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte(token+"\n"), 0o644)
}
