package protocol

import (
	"encoding/json"
)

// Tool describes one operation the bridge advertises to MCP clients.
// Every tool maps onto exactly one SketchUp operation.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ListToolsParams defines the parameters for tools/list. The cursor is
// opaque to clients; an empty cursor requests the first page.
type ListToolsParams struct {
	Cursor string `json:"cursor,omitempty"`
}

// ListToolsResult defines the response for tools/list. NextCursor is set
// only when further pages exist.
type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// CallToolParams defines parameters for tools/call. The same shape is used
// on both sides of the bridge: MCP clients send it inbound, and the engine
// wraps every relayed operation in it outbound. Arguments is never omitted
// on encode; the extension expects the key even when empty.
type CallToolParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// TextContent is a single text block inside a tool result.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewTextContent creates a text content block.
func NewTextContent(text string) TextContent {
	return TextContent{Type: "text", Text: text}
}

// CallToolResult defines the response for tools/call on the inbound
// surface. Tool failures are reported in-band with IsError rather than as
// protocol-level errors, so clients always receive a well-formed result.
type CallToolResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// NewToolResult wraps a serialized tool payload in a result envelope.
func NewToolResult(text string) *CallToolResult {
	return &CallToolResult{Content: []TextContent{NewTextContent(text)}}
}

// NewToolError wraps a tool failure message in a result envelope.
func NewToolError(text string) *CallToolResult {
	return &CallToolResult{Content: []TextContent{NewTextContent(text)}, IsError: true}
}
