// Package pagination provides the opaque cursors used to page list results
// on the MCP surface.
//
// Cursors are base64url-encoded offsets into a stable listing order. They
// are opaque to clients: a client either omits the cursor for the first
// page or echoes back the nextCursor from the previous result.
//
// The server pages tools/list with these cursors:
//
//	tools := provider.ListTools()
//	start, end, next, err := pagination.Page(params.Cursor, len(tools), pagination.DefaultPageSize)
//	if err != nil {
//	    // invalid cursor: reject the request
//	}
//	result := protocol.ListToolsResult{Tools: tools[start:end], NextCursor: next}
package pagination
