// Package ws pushes document location changes to websocket clients.
//
// Clients connect to GET /events and receive JSON messages:
//   - connected: sent once with the client's connection ID
//   - location_set, location_cleared: a documents.Event under data
//   - pong: reply to a {"type":"ping"} message
//   - error: reply to any other message
//
// The server pings every 30 seconds and drops clients that stay silent for
// twice that long, or that fall behind on queued messages.
//
// Example Usage:
//
//	hub := ws.NewHub(logger, metrics)
//	mgr := documents.NewManager(layout, documents.Options{OnChange: hub.PublishEvent})
//	router.GET("/events", hub.Handle)
package ws
