package errtrack

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *captured) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil // drop, nothing leaves the process
}

func newCapturingReporter(t *testing.T) (*Reporter, *captured) {
	t.Helper()
	c := &captured{}
	r, err := newReporter(sentry.ClientOptions{
		Dsn:         "https://public@sentry.example.com/1",
		Environment: "test",
		BeforeSend:  c.beforeSend,
	})
	require.NoError(t, err)
	return r, c
}

func TestDisabledReporter(t *testing.T) {
	r, err := New("", "test", "docshelf")
	require.NoError(t, err)
	assert.False(t, r.Enabled())

	// All no-ops
	r.CaptureError(errors.New("boom"), nil)
	r.CaptureMessage(sentry.LevelInfo, "hello %s", "world")
	r.Flush(time.Millisecond)

	var nilReporter *Reporter
	assert.False(t, nilReporter.Enabled())
	nilReporter.CaptureError(errors.New("boom"), nil)
}

func TestNewRejectsInvalidDSN(t *testing.T) {
	_, err := New("not a dsn", "test", "docshelf")
	assert.Error(t, err)
}

func TestCaptureError(t *testing.T) {
	r, c := newCapturingReporter(t)
	require.True(t, r.Enabled())

	r.CaptureError(errors.New("cannot persist document location"), map[string]string{
		"kind": "persistence",
		"op":   "set_document_path",
	})
	r.CaptureError(nil, nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.events, 1)
	assert.Equal(t, "persistence", c.events[0].Tags["kind"])
	assert.Equal(t, "set_document_path", c.events[0].Tags["op"])
	require.NotEmpty(t, c.events[0].Exception)
	assert.Equal(t, "cannot persist document location", c.events[0].Exception[0].Value)
}

func TestCaptureMessage(t *testing.T) {
	r, c := newCapturingReporter(t)

	r.CaptureMessage(sentry.LevelWarning, "recorded location %s is gone", "/docs")

	c.mu.Lock()
	defer c.mu.Unlock()
	require.Len(t, c.events, 1)
	assert.Equal(t, "recorded location /docs is gone", c.events[0].Message)
	assert.Equal(t, sentry.LevelWarning, c.events[0].Level)
}
