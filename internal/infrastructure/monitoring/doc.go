/*
Package monitoring provides Prometheus metrics for the backend.

# Overview

Metrics live on a private registry owned by each Metrics value, so tests and
embedded servers can create as many collectors as they like. The registry
also carries the Go runtime and process collectors.

# Features

- HTTP request metrics (latency, throughput, size)
- Document operation metrics (count and latency by op and outcome)
- Bytes written and whether a custom location is active
- Service tool call counts
- WebSocket connection metrics
- Uptime

Metrics implements documents.Recorder, so it can be handed straight to the
document manager.

# Usage

	metrics := monitoring.NewMetrics()

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	mgr := documents.NewManager(layout, documents.Options{Metrics: metrics})
*/
package monitoring
