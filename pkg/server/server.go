package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/logging"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/pagination"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/protocol"
)

const (
	defaultName    = "SketchupMCP"
	defaultVersion = "0.1.17"
)

// ToolProvider serves the tool surface. tools.Provider implements it; tests
// substitute fakes.
type ToolProvider interface {
	ListTools() []protocol.Tool
	CallTool(ctx context.Context, name string, args map[string]interface{}, requestID interface{}) (*protocol.CallToolResult, error)
}

// Disconnector is the piece of session lifecycle the server drives: when the
// stdio session ends, the SketchUp connection is torn down with it.
type Disconnector interface {
	Disconnect()
}

// Server is the MCP front end of the bridge. It owns the stdio transport,
// answers the lifecycle methods itself, and forwards the tool surface to its
// provider.
type Server struct {
	transport    *StdioTransport
	logger       logging.Logger
	name         string
	version      string
	instructions string
	provider     ToolProvider
	session      Disconnector

	initMu      sync.RWMutex
	initialized bool
	clientInfo  *protocol.ClientInfo
}

// ServerOption configures a Server at construction.
type ServerOption func(*Server)

// WithName sets the server name advertised during initialize.
func WithName(name string) ServerOption {
	return func(s *Server) {
		if name != "" {
			s.name = name
		}
	}
}

// WithVersion sets the server version advertised during initialize.
func WithVersion(version string) ServerOption {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// WithInstructions sets the usage text returned from initialize.
func WithInstructions(instructions string) ServerOption {
	return func(s *Server) {
		s.instructions = instructions
	}
}

// WithLogger sets the server logger.
func WithLogger(logger logging.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithToolsProvider sets the tool provider. Without one the server still
// answers the lifecycle methods but advertises no tool capability.
func WithToolsProvider(provider ToolProvider) ServerOption {
	return func(s *Server) {
		s.provider = provider
	}
}

// WithSession sets the SketchUp session to disconnect when the server stops.
func WithSession(session Disconnector) ServerOption {
	return func(s *Server) {
		s.session = session
	}
}

// New creates a server bound to the given transport and registers its
// method handlers on it.
func New(transport *StdioTransport, opts ...ServerOption) *Server {
	s := &Server{
		transport: transport,
		logger:    logging.NewNop(),
		name:      defaultName,
		version:   defaultVersion,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	s.transport.RegisterRequestHandler(protocol.MethodInitialize, s.handleInitialize)
	s.transport.RegisterRequestHandler(protocol.MethodPing, s.handlePing)
	s.transport.RegisterNotificationHandler(protocol.MethodNotificationInitialized, s.handleInitialized)
	s.transport.RegisterNotificationHandler(protocol.MethodNotificationCancelled, s.handleCancelled)

	if s.provider != nil {
		s.transport.RegisterRequestHandler(protocol.MethodListTools, s.handleListTools)
		s.transport.RegisterRequestHandler(protocol.MethodCallTool, s.handleCallTool)
	}
}

// Serve runs the stdio session until the client disconnects, the context is
// canceled, or Stop is called. The SketchUp session is torn down before it
// returns, whatever the exit path.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("Server starting",
		logging.String("name", s.name),
		logging.String("version", s.version))
	s.logger.Info("Startup complete, SketchUp connection is established on demand")

	err := s.transport.Start(ctx)
	s.shutdown()
	return err
}

// Stop ends the stdio session, which unblocks Serve.
func (s *Server) Stop() {
	s.transport.Stop()
}

func (s *Server) shutdown() {
	s.logger.Info("Server shutdown initiated")
	if s.session != nil {
		s.logger.Info("Disconnecting from SketchUp")
		s.session.Disconnect()
	}
	s.logger.Info("Server stopped")
}

func (s *Server) isInitialized() bool {
	s.initMu.RLock()
	defer s.initMu.RUnlock()
	return s.initialized
}

// ClientInfo returns the identity the client sent during initialize, or nil
// before the handshake.
func (s *Server) ClientInfo() *protocol.ClientInfo {
	s.initMu.RLock()
	defer s.initMu.RUnlock()
	return s.clientInfo
}

func (s *Server) requireInitialized(operation string) error {
	if s.isInitialized() {
		return nil
	}
	return bridgeerrors.NewError(
		int(protocol.ServerNotInitialized),
		"Server must be initialized before this operation",
		bridgeerrors.CategoryProtocol,
		bridgeerrors.SeverityError,
	).WithContext(&bridgeerrors.Context{
		Component: "Server",
		Operation: operation,
		Timestamp: time.Now(),
	})
}

func (s *Server) capabilities() protocol.ServerCapabilities {
	caps := protocol.ServerCapabilities{}
	if s.provider != nil {
		caps.Tools = &protocol.ToolsCapability{}
	}
	return caps
}

func (s *Server) handleInitialize(ctx context.Context, params json.RawMessage, requestID interface{}) (interface{}, error) {
	var p protocol.InitializeParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, bridgeerrors.CreateInvalidParamsError(protocol.MethodInitialize, requestID, err.Error())
		}
	}

	s.initMu.Lock()
	already := s.initialized
	s.initialized = true
	s.clientInfo = p.ClientInfo
	s.initMu.Unlock()

	fields := []logging.Field{logging.String("protocol_version", p.ProtocolVersion)}
	if p.ClientInfo != nil {
		fields = append(fields,
			logging.String("client_name", p.ClientInfo.Name),
			logging.String("client_version", p.ClientInfo.Version))
	}
	if already {
		s.logger.Warn("Client re-initialized the session", fields...)
	} else {
		s.logger.Info("Client connected", fields...)
	}
	if p.ProtocolVersion != "" && p.ProtocolVersion != protocol.ProtocolRevision {
		s.logger.Warn("Client requested a different protocol revision",
			logging.String("requested", p.ProtocolVersion),
			logging.String("serving", protocol.ProtocolRevision))
	}

	return protocol.InitializeResult{
		ProtocolVersion: protocol.ProtocolRevision,
		Capabilities:    s.capabilities(),
		ServerInfo:      protocol.ServerInfo{Name: s.name, Version: s.version},
		Instructions:    s.instructions,
	}, nil
}

func (s *Server) handleInitialized(ctx context.Context, params json.RawMessage) error {
	s.initMu.Lock()
	s.initialized = true
	s.initMu.Unlock()
	s.logger.Info("Connection initialized")
	return nil
}

func (s *Server) handlePing(ctx context.Context, params json.RawMessage, requestID interface{}) (interface{}, error) {
	return struct{}{}, nil
}

func (s *Server) handleListTools(ctx context.Context, params json.RawMessage, requestID interface{}) (interface{}, error) {
	if err := s.requireInitialized(protocol.MethodListTools); err != nil {
		return nil, err
	}

	var p protocol.ListToolsParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, bridgeerrors.CreateInvalidParamsError(protocol.MethodListTools, requestID, err.Error())
		}
	}

	tools := s.provider.ListTools()
	if tools == nil {
		tools = []protocol.Tool{}
	}

	start, end, next, err := pagination.Page(p.Cursor, len(tools), pagination.DefaultPageSize)
	if err != nil {
		return nil, bridgeerrors.CreateInvalidParamsError(protocol.MethodListTools, requestID, err.Error())
	}
	return protocol.ListToolsResult{Tools: tools[start:end], NextCursor: next}, nil
}

func (s *Server) handleCallTool(ctx context.Context, params json.RawMessage, requestID interface{}) (interface{}, error) {
	if err := s.requireInitialized(protocol.MethodCallTool); err != nil {
		return nil, err
	}

	var p protocol.CallToolParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, bridgeerrors.CreateInvalidParamsError(protocol.MethodCallTool, requestID, err.Error())
		}
	}
	if p.Name == "" {
		return nil, bridgeerrors.CreateInvalidParamsError(protocol.MethodCallTool, requestID, "missing tool name")
	}

	// Tool failures come back in-band inside the result. Errors escape only
	// for unknown tools and malformed arguments.
	return s.provider.CallTool(ctx, p.Name, p.Arguments, requestID)
}

// handleCancelled acknowledges cancellation notifications. Operations already
// relayed to SketchUp run to completion; there is nothing to abort
// mid-exchange.
func (s *Server) handleCancelled(ctx context.Context, params json.RawMessage) error {
	var p struct {
		RequestID interface{} `json:"requestId"`
		Reason    string      `json:"reason,omitempty"`
	}
	if len(params) > 0 {
		_ = json.Unmarshal(params, &p)
	}
	s.logger.Debug("Cancellation requested",
		logging.Any("request_id", p.RequestID),
		logging.String("reason", p.Reason))
	return nil
}
