package documents

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LocationStore owns the configured document location and mirrors it to a
// Record. An empty location means "use the default directory".
//
// One mutex serializes every read and every persist-plus-commit write.
// Directory creation happens before the lock is taken.
type LocationStore struct {
	mu         sync.Mutex
	configured string
	record     *Record
}

// NewLocationStore creates an unset store backed by record
func NewLocationStore(record *Record) *LocationStore {
	return &LocationStore{record: record}
}

// Set makes path the configured location. The directory is created if
// missing. The record is written before the in-memory value changes, so a
// persistence failure leaves the previous location in effect.
func (s *LocationStore) Set(path string) error {
	location, err := normalizeLocation(path)
	if err != nil {
		return newError("set_location", path, ErrDirectoryCreate, err)
	}

	if err := ensureDir("set_location", location); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record.Write(location); err != nil {
		return err
	}
	s.configured = location
	return nil
}

// Get returns the configured location without touching the filesystem
func (s *LocationStore) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configured, s.configured != ""
}

// Load adopts the recorded location if it still names an existing
// directory. Otherwise the store stays unset; a stale record is never
// resurrected. Meant to run once at startup.
func (s *LocationStore) Load() (string, bool, error) {
	recorded, ok, err := s.record.Read()
	if err != nil || !ok {
		return "", false, err
	}

	location, err := normalizeLocation(recorded)
	if err != nil {
		return "", false, nil
	}
	info, err := os.Stat(location)
	if err != nil || !info.IsDir() {
		return "", false, nil
	}

	s.mu.Lock()
	s.configured = location
	s.mu.Unlock()

	return location, true, nil
}

// Clear returns the store to the default location and removes the record.
// Clearing an unset store is a no-op. The directory itself is left alone.
func (s *LocationStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record.Remove(); err != nil {
		return err
	}
	s.configured = ""
	return nil
}

func normalizeLocation(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || !filepath.IsAbs(path) {
		return "", ErrRelativePath
	}
	return filepath.Clean(path), nil
}

// ensureDir creates dir and its parents. Existing directories are fine.
func ensureDir(op, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
			return newError(op, dir, ErrDirectoryCreate, ErrNotDirectory)
		}
		return newError(op, dir, ErrDirectoryCreate, err)
	}
	return nil
}
