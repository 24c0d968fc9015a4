// Package pkg contains the bridge's building blocks.
//
// The sub-packages layer from the wire up:
//
//   - protocol: JSON-RPC envelopes, the MCP surface types, and the framed
//     relay format the SketchUp extension speaks
//   - errors: structured errors with codes, categories, severity, and
//     retry metadata
//   - logging: structured logging to stderr with request-id propagation
//   - sketchup: the TCP session to the extension and the retrying
//     request/response engine
//   - tools: the tool catalog, argument validation, and the uniform
//     payload every tool returns
//   - pagination: opaque cursors for the MCP list surface
//   - server: the stdio JSON-RPC server tying the inbound side together
//   - observability: Prometheus metrics and OpenTelemetry tracing
//   - utils: test-support helpers
//
// cmd/sketchup-mcp wires these into the runnable bridge; the root package
// re-exports the constructors for embedding.
package pkg
