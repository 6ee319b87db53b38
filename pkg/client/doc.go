// Package client is a Go client for the docshelf document commands.
//
//	c := client.New("http://127.0.0.1:8000")
//	path, err := c.SaveFile(ctx, "notes.txt", []byte("hello"))
//	if client.KindOf(err) == "path_validation" {
//	    // bad file name
//	}
//
// Failures reported by the server are returned as *CommandError. Rate
// limited calls are retried, and repeated server side failures open a
// circuit breaker so later calls fail fast with resilience.ErrCircuitOpen.
package client
