// Package protocol defines the wire types spoken on both sides of the
// bridge: JSON-RPC 2.0 envelopes shared by the inbound MCP surface and the
// outbound SketchUp connection, the tools/call parameter shapes, and the
// classification of messages the SketchUp extension emits (final results,
// peer errors, and interim operation/status notifications).
//
// The SketchUp side has no framing beyond "one JSON document"; see
// pkg/sketchup for how documents are delimited on the stream. This package
// only decides what a decoded document *is*. Classification is modelled as
// a closed union (MessageKind) so the engine's dispatch can be checked for
// exhaustiveness instead of growing an open-ended conditional chain.
//
// # Message Flow
//
// Inbound, the bridge behaves as a standard MCP server:
//
//  1. Client sends initialize, bridge answers with its tool capability
//  2. Client sends the initialized notification
//  3. Client lists and calls tools; each call is relayed to SketchUp
//  4. Client disconnects when done
//
// Outbound, every relayed call is a single JSON-RPC request:
//
//	{
//	    "jsonrpc": "2.0",
//	    "id": "4fd1…",
//	    "method": "tools/call",
//	    "params": {
//	        "name": "create_component",
//	        "arguments": {"type": "cube", "dimensions": [30, 30, 30]}
//	    }
//	}
//
// and the extension replies with a result carrying the same id, possibly
// preceded by operation/status notifications while long work is running.
package protocol
