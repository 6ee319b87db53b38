package documents

import (
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/docshelf/backend/internal/shared/paths"
)

// Recorder receives operation metrics
type Recorder interface {
	ObserveOperation(op, status string, duration time.Duration)
	AddBytesWritten(n int)
	SetCustomLocation(custom bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOperation(string, string, time.Duration) {}
func (nopRecorder) AddBytesWritten(int)                            {}
func (nopRecorder) SetCustomLocation(bool)                         {}

// EventType identifies a location change
type EventType string

const (
	EventLocationSet     EventType = "location_set"
	EventLocationCleared EventType = "location_cleared"
)

// Event describes a committed location change
type Event struct {
	Type           EventType `json:"type"`
	ConfiguredPath string    `json:"configured_path,omitempty"`
	EffectiveDir   string    `json:"effective_dir"`
	At             time.Time `json:"at"`
}

// Options configures a Manager
type Options struct {
	Logger   *zap.Logger
	Metrics  Recorder
	Policy   Policy
	OnChange func(Event) // called after each committed set or clear, outside the lock
}

// Manager is the document location manager. It is created once per process
// and passed to every component that reads or writes documents.
type Manager struct {
	store    *LocationStore
	resolver *PathResolver
	record   *Record
	logger   *zap.Logger
	metrics  Recorder
	onChange func(Event)
}

// NewManager creates a manager for layout. Nothing touches the disk until
// Start or the first operation.
func NewManager(layout paths.Layout, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = nopRecorder{}
	}

	record := NewRecord(layout.RecordPath())
	store := NewLocationStore(record)

	return &Manager{
		store:    store,
		resolver: NewPathResolver(store, layout.DefaultDocumentsDir(), opts.Policy),
		record:   record,
		logger:   opts.Logger.Named("documents"),
		metrics:  opts.Metrics,
		onChange: opts.OnChange,
	}
}

// Start loads the recorded location and makes sure the effective directory
// exists. An error here should abort process startup.
func (m *Manager) Start() (string, error) {
	location, adopted, err := m.store.Load()
	switch {
	case err != nil:
		m.logger.Warn("Failed to read document location record, using default",
			zap.String("record", m.record.Path()),
			zap.Error(err),
		)
	case adopted:
		m.logger.Info("Restored document location", zap.String("path", location))
	default:
		m.logger.Info("No custom document location, using default",
			zap.String("default_dir", m.resolver.DefaultDir()),
		)
	}
	m.metrics.SetCustomLocation(adopted)

	dir, err := m.resolver.ResolveEffectiveDirectory()
	if err != nil {
		return "", err
	}
	m.logger.Info("Documents directory ready", zap.String("dir", dir))
	return dir, nil
}

// SetLocation configures a custom documents directory
func (m *Manager) SetLocation(path string) (err error) {
	defer m.track("set_location", time.Now(), &err)

	if err = m.store.Set(path); err != nil {
		m.logger.Error("Failed to set document location", zap.String("path", path), zap.Error(err))
		return err
	}

	location, _ := m.store.Get()
	m.logger.Info("Document location set", zap.String("path", location))
	m.metrics.SetCustomLocation(true)
	m.notify(Event{Type: EventLocationSet, ConfiguredPath: location, EffectiveDir: location})
	return nil
}

// Location returns the configured location, if any
func (m *Manager) Location() (string, bool) {
	return m.store.Get()
}

// ClearLocation reverts to the default directory
func (m *Manager) ClearLocation() (err error) {
	defer m.track("clear_location", time.Now(), &err)

	if err = m.store.Clear(); err != nil {
		m.logger.Error("Failed to clear document location", zap.Error(err))
		return err
	}

	m.logger.Info("Document location cleared", zap.String("default_dir", m.resolver.DefaultDir()))
	m.metrics.SetCustomLocation(false)
	m.notify(Event{Type: EventLocationCleared, EffectiveDir: m.resolver.DefaultDir()})
	return nil
}

// EffectiveDirectory resolves, and creates if needed, the directory in use
func (m *Manager) EffectiveDirectory() (dir string, err error) {
	defer m.track("resolve_directory", time.Now(), &err)
	return m.resolver.ResolveEffectiveDirectory()
}

// BuildPath returns the validated absolute path for fileName
func (m *Manager) BuildPath(fileName string) (string, error) {
	return m.resolver.BuildPath(fileName)
}

// Policy returns the active containment policy
func (m *Manager) Policy() Policy {
	return m.resolver.policy
}

// RecordPath returns where the configured location is persisted
func (m *Manager) RecordPath() string {
	return m.record.Path()
}

func (m *Manager) notify(ev Event) {
	if m.onChange == nil {
		return
	}
	ev.At = time.Now().UTC()
	m.onChange(ev)
}

func (m *Manager) track(op string, start time.Time, errp *error) {
	status := "ok"
	if *errp != nil {
		status = KindOf(*errp)
	}
	m.metrics.ObserveOperation(op, status, time.Since(start))
}
