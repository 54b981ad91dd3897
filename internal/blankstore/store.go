// Package blankstore persists untitled ("blank") buffers between sessions as
// files inside one directory. Entry identifiers are the file names; they are
// opaque to callers.
package blankstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// DirName is the directory, relative to the data directory, holding blank files.
const DirName = "blank-files"

// ErrInvalidID is returned for identifiers that would escape the store.
var ErrInvalidID = errors.New("invalid blank file id")

// Store is a directory-backed list of blank buffers.
type Store struct {
	dir string
}

// Open returns the store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating blank file dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// OpenInDataDir opens the store at <dataDir>/blank-files.
func OpenInDataDir(dataDir string) (*Store, error) {
	return Open(filepath.Join(dataDir, DirName))
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Entries lists the identifiers of stored blank files in name order.
// Directories and hidden files are skipped.
func (s *Store) Entries() ([]string, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing blank files: %w", err)
	}

	ids := make([]string, 0, len(dirents))
	for _, d := range dirents {
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			continue
		}
		ids = append(ids, d.Name())
	}
	sort.Strings(ids)
	return ids, nil
}

// Path returns the file path backing id.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id)
}

// Lookup returns the identifier of the entry backing path, if path lies
// directly inside the store directory.
func (s *Store) Lookup(path string) (string, bool) {
	if path == "" || filepath.Dir(filepath.Clean(path)) != filepath.Clean(s.dir) {
		return "", false
	}
	id := filepath.Base(path)
	return id, validID(id) == nil
}

// Create adds an empty blank file and returns its identifier.
func (s *Store) Create() (string, error) {
	id := "blank-" + uuid.NewString()
	f, err := os.OpenFile(s.Path(id), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating blank file: %w", err)
	}
	return id, f.Close()
}

// Save replaces the content of id.
func (s *Store) Save(id string, content []byte) error {
	if err := validID(id); err != nil {
		return err
	}
	return os.WriteFile(s.Path(id), content, 0o644)
}

// Remove deletes id. Removing a missing entry is not an error.
func (s *Store) Remove(id string) error {
	if err := validID(id); err != nil {
		return err
	}
	if err := os.Remove(s.Path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func validID(id string) error {
	if id == "" || id != filepath.Base(id) || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
