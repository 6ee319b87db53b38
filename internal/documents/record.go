package documents

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Record is the durable copy of the configured document location: a single
// plain-text file holding the trimmed path. A missing file means unset.
type Record struct {
	path string
}

// NewRecord creates a record stored at path
func NewRecord(path string) *Record {
	return &Record{path: path}
}

// Path returns where the record lives on disk
func (r *Record) Path() string {
	return r.path
}

// Read returns the stored location. ok is false when the record is absent or
// blank.
func (r *Record) Read() (location string, ok bool, err error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, newError("read_record", r.path, ErrIORead, err)
	}

	location = strings.TrimSpace(string(data))
	if location == "" {
		return "", false, nil
	}
	return location, true, nil
}

// Write replaces the stored location atomically: the value goes to a temp
// file in the same directory which is then renamed over the record.
func (r *Record) Write(location string) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newError("write_record", r.path, ErrPersistence, err)
	}

	tempFile, err := os.CreateTemp(dir, ".document_path-*.tmp")
	if err != nil {
		return newError("write_record", r.path, ErrPersistence, fmt.Errorf("create temp file: %w", err))
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempPath != "" {
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.WriteString(strings.TrimSpace(location)); err != nil {
		tempFile.Close()
		return newError("write_record", r.path, ErrPersistence, fmt.Errorf("write temp file: %w", err))
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return newError("write_record", r.path, ErrPersistence, fmt.Errorf("sync temp file: %w", err))
	}
	if err := tempFile.Close(); err != nil {
		return newError("write_record", r.path, ErrPersistence, fmt.Errorf("close temp file: %w", err))
	}

	if err := os.Rename(tempPath, r.path); err != nil {
		return newError("write_record", r.path, ErrPersistence, fmt.Errorf("rename temp file: %w", err))
	}

	tempPath = ""
	return nil
}

// Remove deletes the record. Removing an absent record succeeds.
func (r *Record) Remove() error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return newError("remove_record", r.path, ErrPersistence, err)
	}
	return nil
}
