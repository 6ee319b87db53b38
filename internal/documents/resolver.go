package documents

import (
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/docshelf/backend/internal/shared/paths"
)

// Policy selects where containment of built paths is enforced
type Policy int

const (
	// ContainDefaultOnly checks containment only under the default
	// directory. A custom root is trusted, so names are joined onto it as
	// given and an absolute name replaces the root.
	ContainDefaultOnly Policy = iota

	// ContainAlways checks containment under every root
	ContainAlways
)

// String returns the configuration spelling of the policy
func (p Policy) String() string {
	if p == ContainAlways {
		return "always"
	}
	return "default_only"
}

// target is one resolved file location
type target struct {
	dir    string // effective directory
	path   string // absolute file path
	custom bool   // dir came from the configured location
}

// PathResolver turns the current location into directories and file paths
type PathResolver struct {
	store      *LocationStore
	defaultDir string
	policy     Policy
}

// NewPathResolver creates a resolver reading from store. defaultDir is used
// whenever no location is configured.
func NewPathResolver(store *LocationStore, defaultDir string, policy Policy) *PathResolver {
	return &PathResolver{
		store:      store,
		defaultDir: filepath.Clean(defaultDir),
		policy:     policy,
	}
}

// DefaultDir returns the directory used when no location is configured
func (r *PathResolver) DefaultDir() string {
	return r.defaultDir
}

// ResolveEffectiveDirectory returns the directory to use right now,
// creating it and its parents if missing
func (r *PathResolver) ResolveEffectiveDirectory() (string, error) {
	dir, _, err := r.resolve()
	return dir, err
}

// BuildPath joins fileName onto the effective directory and validates the
// result against the active policy
func (r *PathResolver) BuildPath(fileName string) (string, error) {
	t, err := r.build(fileName)
	if err != nil {
		return "", err
	}
	return t.path, nil
}

func (r *PathResolver) resolve() (string, bool, error) {
	dir, custom := r.store.Get()
	if !custom {
		dir = r.defaultDir
	}
	if err := ensureDir("resolve_directory", dir); err != nil {
		return "", custom, err
	}
	return dir, custom, nil
}

func (r *PathResolver) build(fileName string) (target, error) {
	dir, custom, err := r.resolve()
	if err != nil {
		return target{}, err
	}

	t := target{dir: dir, custom: custom}
	if strings.TrimSpace(fileName) == "" {
		return t, newError("build_path", fileName, ErrPathValidation, ErrEmptyName)
	}

	if custom && r.policy == ContainDefaultOnly {
		t.path = joinName(dir, fileName)
		return t, nil
	}

	path, err := containedJoin(dir, fileName)
	if err != nil {
		return t, err
	}
	t.path = path
	return t, nil
}

// joinName joins like a plain path join where an absolute name wins
func joinName(dir, name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(dir, name)
}

// containedJoin joins name onto dir and rejects any result that is not
// strictly inside dir
func containedJoin(dir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", newError("build_path", name, ErrPathValidation, ErrAbsoluteName)
	}
	if paths.ContainsTraversal(name) {
		return "", newError("build_path", name, ErrPathValidation, ErrTraversal)
	}

	joined := filepath.Join(dir, name)
	if joined == dir || !paths.IsWithin(joined, dir) {
		return "", newError("build_path", name, ErrPathValidation, ErrEscapesParent)
	}
	return joined, nil
}
