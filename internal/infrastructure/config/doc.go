// Package config provides 12-factor configuration management for the docshelf backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Documents: App identifier, directory overrides, containment policy
//   - Sentry: Error reporting DSN and environment
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED, RATE_LIMIT_GLOBAL
//   - APP_ID, DOCS_DATA_DIR, DOCS_CONFIG_DIR, DOCS_STRICT_CONTAINMENT
//   - SENTRY_DSN, SENTRY_ENV
package config
