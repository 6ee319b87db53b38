/*
Package resilience provides a circuit breaker for calls to the backend.

The breaker is closed while calls succeed. When Trip reports that the
failures counted in the current window are too many it opens and rejects
calls with ErrCircuitOpen for the cooldown. Afterwards it lets a few probe
calls through (half-open): enough consecutive successes close it again, any
failure reopens it.

	breaker := resilience.New("docshelf-api", resilience.Settings{
		Cooldown: 10 * time.Second,
		Trip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})

	err := breaker.Do(func() error {
		return callServer()
	}, isClientError)
*/
package resilience
