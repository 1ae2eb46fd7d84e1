// Package server provides the MCP server implementation for the
// reverse-vector service.
package server

// InversionToolServer defines the interface for the MCP server that handles
// embedding-inversion tool calls from MCP clients.
type InversionToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on the specified transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}
