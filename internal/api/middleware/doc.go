// Package middleware provides HTTP middleware for the docshelf backend.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing with configurable origins
//   - RateLimit: Per-IP token bucket rate limiting
//   - RequestLogger: One zap line per request, tagged with the trace ID
//   - Recovery: Panic recovery with Sentry reporting
//
// Rate Limiting:
//   - Per-IP tracking, idle clients dropped after ten minutes
//   - Token bucket algorithm
//   - Configurable RPS and burst capacity
//   - Global rate limiting option
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger, reporter))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
