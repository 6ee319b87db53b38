// Package server assembles the backend: document manager, service
// registry, middleware stack, routes and the websocket hub.
//
// Routes:
//
//	GET  /                    liveness
//	GET  /health              manager, registry and metrics state
//	POST /commands/:command   documents.<command>
//	GET  /services            registered services
//	POST /services/execute    any service tool
//	GET  /events              websocket stream of location changes
//	GET  /metrics             Prometheus exposition
//
// Example Usage:
//
//	srv, err := server.NewServer(cfg, logger, reporter)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go srv.Run()
//	defer srv.Shutdown(ctx)
package server
