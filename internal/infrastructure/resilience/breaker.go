package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// Probes is the number of trial calls allowed while half-open. That
	// many consecutive successes close the breaker again.
	Probes uint32
	// Window is how long failure counts accumulate while closed
	Window time.Duration
	// Cooldown is how long the breaker stays open
	Cooldown time.Duration
	// Trip decides whether the counts seen so far should open the breaker
	Trip func(Counts) bool
	// OnStateChange is called when a call's outcome changes the state,
	// outside the lock. The timed open to half-open move is not reported.
	OnStateChange func(name string, from, to State)
}

// Counts holds the statistics of the current generation
type Counts struct {
	Calls                uint32
	Failures             uint32
	ConsecutiveFailures  uint32
	ConsecutiveSuccesses uint32
}

// Breaker stops calling a dependency that keeps failing
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu         sync.Mutex
	state      State
	counts     Counts
	generation uint64
	until      time.Time // end of the window (closed) or cooldown (open)
}

// New creates a closed breaker. Zero settings get defaults: one probe, a
// one minute window and cooldown, and tripping after five consecutive
// failures.
func New(name string, settings Settings) *Breaker {
	if settings.Probes == 0 {
		settings.Probes = 1
	}
	if settings.Window == 0 {
		settings.Window = time.Minute
	}
	if settings.Cooldown == 0 {
		settings.Cooldown = time.Minute
	}
	if settings.Trip == nil {
		settings.Trip = func(c Counts) bool { return c.ConsecutiveFailures >= 5 }
	}

	b := &Breaker{name: name, settings: settings, now: time.Now}
	b.until = b.now().Add(settings.Window)
	return b
}

// Name returns the breaker name
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance(b.now())
	return b.state
}

// Counts returns a copy of the current generation's counts
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Do runs call unless the breaker rejects it. An error from call counts as
// a failure unless ignore reports it as the caller's fault.
func (b *Breaker) Do(call func() error, ignore func(error) bool) error {
	gen, err := b.admit()
	if err != nil {
		return err
	}

	success := false
	defer func() {
		b.record(gen, success)
	}()

	err = call()
	success = err == nil || (ignore != nil && ignore(err))
	return err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(b.now())
	switch {
	case b.state == StateOpen:
		return 0, ErrCircuitOpen
	case b.state == StateHalfOpen && b.counts.Calls >= b.settings.Probes:
		return 0, ErrTooManyRequests
	}
	b.counts.Calls++
	return b.generation, nil
}

func (b *Breaker) record(gen uint64, success bool) {
	b.mu.Lock()
	now := b.now()
	b.advance(now)
	if gen != b.generation {
		// Outcome of a call admitted before the last transition
		b.mu.Unlock()
		return
	}

	from := b.state
	if success {
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if b.state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.Probes {
			b.transition(StateClosed, now)
		}
	} else {
		b.counts.Failures++
		b.counts.ConsecutiveFailures++
		b.counts.ConsecutiveSuccesses = 0
		if b.state == StateHalfOpen || b.settings.Trip(b.counts) {
			b.transition(StateOpen, now)
		}
	}
	to := b.state
	b.mu.Unlock()

	if from != to && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

// advance applies time based transitions
func (b *Breaker) advance(now time.Time) {
	switch b.state {
	case StateClosed:
		if now.After(b.until) {
			b.counts = Counts{}
			b.generation++
			b.until = now.Add(b.settings.Window)
		}
	case StateOpen:
		if now.After(b.until) {
			b.transition(StateHalfOpen, now)
		}
	}
}

func (b *Breaker) transition(to State, now time.Time) {
	b.state = to
	b.counts = Counts{}
	b.generation++
	switch to {
	case StateClosed:
		b.until = now.Add(b.settings.Window)
	case StateOpen:
		b.until = now.Add(b.settings.Cooldown)
	default:
		b.until = time.Time{}
	}
}
