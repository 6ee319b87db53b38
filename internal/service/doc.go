// Package service provides the service registry for command providers.
//
// The registry maintains a catalog of service providers and dispatches tool
// calls of the form "<service>.<tool>" to them.
//
// Components:
//   - Registry: Central service catalog
//   - Provider: Interface for service implementations
//
// Features:
//   - Thread-safe service registration, duplicate IDs rejected
//   - Category-based filtering
//   - Tool execution with context passing
//   - Service statistics
//
// Example Usage:
//
//	registry := service.NewRegistry()
//	registry.Register(documentsProvider)
//	result, err := registry.Execute(ctx, "documents.save_file", params, appCtx)
package service
