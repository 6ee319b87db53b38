package documents

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	ErrDirectoryCreate = errors.New("cannot create directory")
	ErrPersistence     = errors.New("cannot persist document location")
	ErrIOWrite         = errors.New("write failed")
	ErrIORead          = errors.New("read failed")
	ErrNotFound        = errors.New("file does not exist")
	ErrPathValidation  = errors.New("invalid file path")
)

// Causes attached to ErrDirectoryCreate and ErrPathValidation
var (
	ErrRelativePath  = errors.New("path must be absolute")
	ErrNotDirectory  = errors.New("path exists and is not a directory")
	ErrEmptyName     = errors.New("file name is empty")
	ErrTraversal     = errors.New("file name contains parent directory references")
	ErrAbsoluteName  = errors.New("file name must be relative")
	ErrEscapesParent = errors.New("path escapes the documents directory")
)

// Error wraps a failure with the operation and path involved
type Error struct {
	Op   string // operation that failed
	Path string // the path involved, if any
	Kind error  // one of the Err* kinds above
	Err  error  // underlying cause
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, path string, kind, cause error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: cause}
}

// KindOf returns a stable identifier for the kind of err, or "internal" if
// err did not originate here.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPathValidation):
		return "path_validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDirectoryCreate):
		return "directory_create"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrIOWrite):
		return "io_write"
	case errors.Is(err, ErrIORead):
		return "io_read"
	default:
		return "internal"
	}
}
