// Package sketchup implements the outbound half of the bridge: a TCP session
// to the SketchUp extension and the request/response engine that relays tool
// calls over it.
//
// The extension listens on localhost:9876 and speaks JSON-RPC 2.0 over a raw
// stream with no length prefix or delimiter on its responses. The Session
// therefore frames messages by reparse: it accumulates chunks until the buffer
// parses as one complete JSON document. The Engine drives the exchange:
// envelope construction, per-operation deadlines, classification of each
// framed message (result, peer error, operation/status), and reconnect-and-
// resend retries on transport faults.
//
// A Session carries exactly one connection and one in-flight exchange.
// Callers that need parallel calls need separate sessions; see the Engine's
// locking notes.
package sketchup
