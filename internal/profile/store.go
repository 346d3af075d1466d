package profile

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const Extension = ".json"

// Store maps profile names to files in a single directory.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) PathFor(name string) string {
	return filepath.Join(s.Dir, name+Extension)
}

func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.PathFor(name))
	return err == nil && !info.IsDir()
}

func (s *Store) Read(name string) ([]byte, error) {
	path := s.PathFor(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IoError{Profile: name, Path: path, Op: "read", Err: err}
	}
	return data, nil
}

// Write replaces the profile file, creating the directory if needed.
func (s *Store) Write(name string, data []byte) (string, error) {
	path := s.PathFor(name)
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return "", &IoError{Profile: name, Path: s.Dir, Op: "mkdir", Err: err}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", &IoError{Profile: name, Path: path, Op: "write", Err: err}
	}
	return path, nil
}

func (s *Store) Delete(name string) error {
	path := s.PathFor(name)
	if err := os.Remove(path); err != nil {
		return &IoError{Profile: name, Path: path, Op: "remove", Err: err}
	}
	return nil
}

// List returns the names of all profiles in the directory, sorted. A
// missing directory holds no profiles.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &IoError{Path: s.Dir, Op: "list", Err: err}
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Extension))
	}
	sort.Strings(names)
	return names, nil
}
