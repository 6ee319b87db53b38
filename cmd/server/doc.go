// Package main is the entry point for the docshelf backend server.
//
// On startup the server resolves the platform directories, restores the
// configured document location (falling back to the default directory) and
// makes sure the effective documents directory exists. If that directory
// cannot be created the process exits.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000
//	./server -dev -data-dir /tmp/docshelf
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
