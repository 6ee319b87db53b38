// Package paths provides the standard filesystem locations used by the backend.
//
// All directories are derived from the platform base directories (XDG on
// Linux, Application Support on macOS, AppData on Windows) plus the
// application identifier, so every component agrees on where things live.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Fixed names within the application directories
const (
	// DocumentsDir is the subdirectory of the app data dir used when no
	// custom document location is configured
	DocumentsDir = "documents"

	// RecordFile holds the configured document location as plain text
	RecordFile = "document_path.txt"
)

// Layout describes the directories owned by one application instance
type Layout struct {
	AppID     string
	DataDir   string
	ConfigDir string
}

// Resolve computes the layout for appID. Non-empty overrides replace the
// platform data and config directories respectively.
func Resolve(appID, dataOverride, configOverride string) (Layout, error) {
	if err := ValidateAppID(appID); err != nil {
		return Layout{}, err
	}

	layout := Layout{
		AppID:     appID,
		DataDir:   filepath.Join(xdg.DataHome, appID),
		ConfigDir: filepath.Join(xdg.ConfigHome, appID),
	}

	if dataOverride != "" {
		abs, err := filepath.Abs(dataOverride)
		if err != nil {
			return Layout{}, fmt.Errorf("invalid data directory override: %w", err)
		}
		layout.DataDir = abs
	}
	if configOverride != "" {
		abs, err := filepath.Abs(configOverride)
		if err != nil {
			return Layout{}, fmt.Errorf("invalid config directory override: %w", err)
		}
		layout.ConfigDir = abs
	}

	return layout, nil
}

// DefaultDocumentsDir returns the documents directory used when no custom
// location is set
func (l Layout) DefaultDocumentsDir() string {
	return filepath.Join(l.DataDir, DocumentsDir)
}

// RecordPath returns the path of the document location record
func (l Layout) RecordPath() string {
	return filepath.Join(l.ConfigDir, RecordFile)
}

// ValidateAppID checks if an app ID is valid for path construction
func ValidateAppID(appID string) error {
	if appID == "" {
		return fmt.Errorf("app ID cannot be empty")
	}
	if filepath.IsAbs(appID) {
		return fmt.Errorf("app ID cannot be an absolute path")
	}
	if filepath.Clean(appID) != appID || strings.ContainsAny(appID, `/\`) || appID == ".." {
		return fmt.Errorf("app ID contains invalid path components")
	}
	return nil
}

// IsWithin reports whether path is base itself or lexically below it.
// Both arguments are cleaned; no symlinks are resolved.
func IsWithin(path, base string) bool {
	path = filepath.Clean(path)
	base = filepath.Clean(base)
	if path == base {
		return true
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// ContainsTraversal reports whether name has ".." as a path component.
// "..." and "a..b" are ordinary names.
func ContainsTraversal(name string) bool {
	for _, part := range strings.FieldsFunc(name, isSeparator) {
		if part == ".." {
			return true
		}
	}
	return false
}

// Both separators count on every platform; a name crafted on one OS must not
// slip through on another.
func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
