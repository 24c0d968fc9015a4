// Package tools implements the SketchUp tool catalog exposed over MCP.
//
// Every tool resolves to a single JSON-RPC exchange with the SketchUp
// extension, driven by a sketchup.Caller. Tool handlers normalize and
// validate their arguments, forward them to the peer, and shape the
// outcome into one serialized JSON payload: a plain English message plus
// the peer's structured response under "details", or a message with an
// "error" flag when the bridge itself failed. Handlers never surface
// transport or peer failures as Go errors; only unknown tools and
// malformed parameters are rejected before any traffic is sent.
package tools
