// Package server implements the MCP-facing side of the bridge: a JSON-RPC
// 2.0 server speaking newline-delimited messages over stdio.
//
// The server answers the protocol lifecycle itself (initialize, the
// initialized notification, ping) and forwards the tool surface (tools/list,
// tools/call) to a ToolProvider. Messages are handled one at a time in
// arrival order, so responses always come back in request order.
//
// # Error handling
//
// Requests for unknown methods, requests sent before initialize, and
// malformed tool arguments produce JSON-RPC error responses. Everything that
// goes wrong inside a tool, including SketchUp being unreachable, is
// reported in-band inside the CallToolResult so clients always receive a
// well-formed result for a well-formed call.
//
// # Usage
//
//	session := sketchup.NewSession(sketchup.DefaultSessionConfig(), logger, nil)
//	engine := sketchup.NewEngine(session, sketchup.DefaultEngineConfig(), logger, nil)
//	provider := tools.NewProvider(engine, logger)
//
//	transport := server.NewStdioTransport(server.DefaultStdioConfig())
//	srv := server.New(transport,
//	    server.WithLogger(logger),
//	    server.WithToolsProvider(provider),
//	    server.WithSession(session),
//	)
//
//	// Blocks until the client closes stdin or the context is canceled.
//	if err := srv.Serve(ctx); err != nil {
//	    // Handle error
//	}
//
// Serve tears the SketchUp session down on every exit path, mirroring the
// session lifecycle: one stdio client, one extension connection.
package server
