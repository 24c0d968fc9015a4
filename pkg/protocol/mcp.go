package protocol

const (
	// ProtocolRevision is the MCP revision the bridge negotiates
	ProtocolRevision = "2024-11-05"

	// Methods for lifecycle management
	MethodInitialize              = "initialize"
	MethodNotificationInitialized = "notifications/initialized"

	// Methods for the tool surface. MethodCallTool doubles as the envelope
	// method for every operation relayed to SketchUp.
	MethodListTools = "tools/list"
	MethodCallTool  = "tools/call"

	// Methods for utilities
	MethodPing                  = "ping"
	MethodNotificationCancelled = "notifications/cancelled"
)

// InitializeParams defines the parameters for the initialize request
type InitializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      *ClientInfo        `json:"clientInfo,omitempty"`
}

// ClientCapabilities lists the features the connecting client supports.
// The bridge accepts anything here; it only ever serves tools.
type ClientCapabilities struct {
	Roots    map[string]interface{} `json:"roots,omitempty"`
	Sampling map[string]interface{} `json:"sampling,omitempty"`
}

// ClientInfo provides additional information about the client
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeResult defines the response for the initialize request
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

// ServerCapabilities advertises what the bridge serves
type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability describes the tool surface
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ServerInfo provides additional information about the server
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
