// Package errtrack reports unexpected failures to Sentry.
//
// A Reporter built with an empty DSN is disabled and every method is a
// no-op, as is a nil *Reporter.
package errtrack

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Reporter sends errors to a Sentry project
type Reporter struct {
	hub *sentry.Hub
}

// New creates a reporter for dsn. An empty dsn returns a disabled reporter.
func New(dsn, environment, service string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}

	return newReporter(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		ServerName:       service,
		AttachStacktrace: true,
	})
}

func newReporter(opts sentry.ClientOptions) (*Reporter, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to init sentry: %w", err)
	}

	return &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// Enabled reports whether events are sent anywhere
func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil
}

// CaptureError reports err with optional tags
func (r *Reporter) CaptureError(err error, tags map[string]string) {
	if !r.Enabled() || err == nil {
		return
	}

	r.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		r.hub.CaptureException(err)
	})
}

// CaptureMessage reports a message at level
func (r *Reporter) CaptureMessage(level sentry.Level, message string, args ...any) {
	if !r.Enabled() {
		return
	}
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		r.hub.CaptureMessage(message)
	})
}

// RecoverAndCapture reports a panic then re-panics. Use with defer.
func (r *Reporter) RecoverAndCapture() {
	if !r.Enabled() {
		return
	}
	if rec := recover(); rec != nil {
		r.hub.Recover(rec)
		r.hub.Flush(2 * time.Second)
		panic(rec)
	}
}

// Flush waits up to timeout for queued events to be sent
func (r *Reporter) Flush(timeout time.Duration) {
	if !r.Enabled() {
		return
	}
	r.hub.Flush(timeout)
}
