// Package sketchupmcp provides a Go bridge between MCP clients and the
// SketchUp extension's TCP socket.
package sketchupmcp

import (
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/server"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/sketchup"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/tools"
)

// Version is the bridge version, tracking the extension series it pairs with.
const Version = "0.1.17"

// These exports provide direct access to the core bridge components
var (
	// NewSession creates a TCP session to the SketchUp extension
	NewSession = sketchup.NewSession

	// NewEngine creates the request/response engine over a session
	NewEngine = sketchup.NewEngine

	// NewToolsProvider creates the tool catalog backed by a caller
	NewToolsProvider = tools.NewProvider

	// NewStdioTransport creates the newline-delimited stdio transport
	NewStdioTransport = server.NewStdioTransport

	// NewServer creates the MCP server over a stdio transport
	NewServer = server.New
)

// Server options
var (
	WithServerName    = server.WithName
	WithServerVersion = server.WithVersion
	WithInstructions  = server.WithInstructions
	WithLogger        = server.WithLogger
	WithToolsProvider = server.WithToolsProvider
	WithSession       = server.WithSession
)

// Configuration defaults
var (
	DefaultSessionConfig = sketchup.DefaultSessionConfig
	DefaultEngineConfig  = sketchup.DefaultEngineConfig
	DefaultStdioConfig   = server.DefaultStdioConfig
)
