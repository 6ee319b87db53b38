// Package types provides shared data structures for the docshelf backend.
//
// Core Types:
//   - Service, Tool, Parameter: Service provider definitions
//   - Context: Execution context for tool calls
//   - Result: Standard operation result
//
// Request Types:
//   - ExecuteRequest: Service tool execution
//   - WSMessage: WebSocket push messages
package types
