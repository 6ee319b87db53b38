// Package documents manages where the application keeps user documents.
//
// Components:
//   - Record: plain-text file persisting the configured location
//   - LocationStore: mutex-guarded configured location, mirrored to the Record
//   - PathResolver: effective directory resolution and file path validation
//   - Manager: the above wired together plus Save, Locate and Diagnose
//
// Location rules:
//   - Unset means <app data dir>/documents
//   - Setting a location creates the directory, persists it, then commits it
//   - At startup a recorded location is adopted only if it is still a directory
//   - Directories are created on demand and never deleted
//
// Path rules:
//   - Under the default directory every file path must stay inside it;
//     names with ".." components or absolute names are rejected
//   - Under a custom directory names are joined as given unless the
//     ContainAlways policy is active
//
// Errors match one of ErrDirectoryCreate, ErrPersistence, ErrIOWrite,
// ErrIORead, ErrNotFound or ErrPathValidation with errors.Is. KindOf maps
// them to stable strings for transports.
//
// Example Usage:
//
//	mgr := documents.NewManager(layout, documents.Options{Logger: logger.Logger})
//	if _, err := mgr.Start(); err != nil {
//	    logger.Fatal("documents directory unavailable", zap.Error(err))
//	}
//	path, err := mgr.Save("notes.txt", []byte("hello"))
package documents
