// Package sketchupmcp bridges MCP clients to a running SketchUp instance.
//
// An MCP host (Claude Desktop, or any client speaking the Model Context
// Protocol) launches the bridge and exchanges newline-delimited JSON-RPC
// over stdin/stdout. Tool calls are relayed over TCP to the SketchUp
// extension listening on localhost:9876, which executes them on SketchUp's
// Ruby thread and answers with a framed JSON response.
//
// # Overview
//
// The bridge consists of several sub-packages:
//
//   - pkg/protocol: MCP and relay wire types
//   - pkg/sketchup: the TCP session and the retrying request engine
//   - pkg/tools: the tool catalog, argument validation, and payload shaping
//   - pkg/server: the stdio JSON-RPC server
//   - pkg/errors: structured errors with codes, categories, and context
//   - pkg/logging: structured logging (stderr, so stdout stays protocol-clean)
//   - pkg/observability: Prometheus metrics and OpenTelemetry tracing
//
// The cmd/sketchup-mcp binary wires these together; this root package
// re-exports the constructors for embedding the bridge in another process.
//
// # Embedding the Bridge
//
// To run the bridge in-process with default settings:
//
//	import (
//	    "context"
//	    "os"
//	    "os/signal"
//	    "syscall"
//
//	    sketchupmcp "github.com/sketchup-mcp/sketchup-mcp-go"
//	)
//
//	func main() {
//	    session := sketchupmcp.NewSession(sketchupmcp.DefaultSessionConfig(), nil, nil)
//	    engine := sketchupmcp.NewEngine(session, sketchupmcp.DefaultEngineConfig(), nil, nil)
//	    provider := sketchupmcp.NewToolsProvider(engine, nil)
//
//	    srv := sketchupmcp.NewServer(
//	        sketchupmcp.NewStdioTransport(sketchupmcp.DefaultStdioConfig()),
//	        sketchupmcp.WithToolsProvider(provider),
//	        sketchupmcp.WithSession(session),
//	    )
//
//	    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	    defer stop()
//	    if err := srv.Serve(ctx); err != nil {
//	        // Handle error
//	    }
//	}
//
// The SketchUp connection is established lazily on the first tool call and
// reused afterwards; there is no need for SketchUp to be running when the
// bridge starts.
package sketchupmcp
