package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/protocol"
)

// toolCall records one CallTool invocation on the fake provider.
type toolCall struct {
	name      string
	args      map[string]interface{}
	requestID interface{}
}

// fakeToolProvider is a scripted stand-in for tools.Provider.
type fakeToolProvider struct {
	tools  []protocol.Tool
	result *protocol.CallToolResult
	err    error

	mu    sync.Mutex
	calls []toolCall
}

func (f *fakeToolProvider) ListTools() []protocol.Tool {
	return f.tools
}

func (f *fakeToolProvider) CallTool(ctx context.Context, name string, args map[string]interface{}, requestID interface{}) (*protocol.CallToolResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, toolCall{name: name, args: args, requestID: requestID})
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return protocol.NewToolResult("ok"), nil
}

func (f *fakeToolProvider) lastCall(t *testing.T) toolCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

// fakeSession records Disconnect calls.
type fakeSession struct {
	mu           sync.Mutex
	disconnected int
}

func (f *fakeSession) Disconnect() {
	f.mu.Lock()
	f.disconnected++
	f.mu.Unlock()
}

func (f *fakeSession) disconnects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disconnected
}

const (
	initializeLine  = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test-client","version":"1.2.3"}}}` + "\n"
	initializedLine = `{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n"
)

// runSession drives a full stdio session from scripted input and returns the
// responses in output order.
func runSession(t *testing.T, input string, opts ...ServerOption) []*protocol.Response {
	t.Helper()

	var out bytes.Buffer
	tr := NewStdioTransport(StdioConfig{Reader: strings.NewReader(input), Writer: &out})
	srv := New(tr, opts...)

	require.NoError(t, srv.Serve(context.Background()))

	var responses []*protocol.Response
	for _, line := range outputLines(out.String()) {
		responses = append(responses, parseResponse(t, line))
	}
	return responses
}

func decodeResultInto(t *testing.T, resp *protocol.Response, target interface{}) {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected error response: %+v", resp.Error)
	require.NoError(t, json.Unmarshal(resp.Result, target))
}

func TestServeInitializeHandshake(t *testing.T) {
	provider := &fakeToolProvider{}
	input := initializeLine + initializedLine +
		`{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 2)

	var init protocol.InitializeResult
	decodeResultInto(t, responses[0], &init)
	assert.Equal(t, protocol.ProtocolRevision, init.ProtocolVersion)
	assert.Equal(t, "SketchupMCP", init.ServerInfo.Name)
	assert.Equal(t, "0.1.17", init.ServerInfo.Version)
	require.NotNil(t, init.Capabilities.Tools)

	var pong map[string]interface{}
	decodeResultInto(t, responses[1], &pong)
	assert.Empty(t, pong)
}

func TestServeIdentityOptions(t *testing.T) {
	responses := runSession(t, initializeLine,
		WithName("custom-bridge"),
		WithVersion("9.9.9"),
		WithInstructions("Talk to SketchUp through the tools."))
	require.Len(t, responses, 1)

	var init protocol.InitializeResult
	decodeResultInto(t, responses[0], &init)
	assert.Equal(t, "custom-bridge", init.ServerInfo.Name)
	assert.Equal(t, "9.9.9", init.ServerInfo.Version)
	assert.Equal(t, "Talk to SketchUp through the tools.", init.Instructions)
}

func TestServeWithoutProviderOmitsToolCapability(t *testing.T) {
	input := initializeLine +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"

	responses := runSession(t, input)
	require.Len(t, responses, 2)

	var init protocol.InitializeResult
	decodeResultInto(t, responses[0], &init)
	assert.Nil(t, init.Capabilities.Tools)

	require.NotNil(t, responses[1].Error)
	assert.Equal(t, protocol.MethodNotFound, responses[1].Error.Code)
}

func TestServeRejectsToolsBeforeInitialize(t *testing.T) {
	provider := &fakeToolProvider{}
	input := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n" +
		initializeLine +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 3)

	require.NotNil(t, responses[0].Error)
	assert.EqualValues(t, protocol.ServerNotInitialized, responses[0].Error.Code)

	assert.Nil(t, responses[1].Error)
	assert.Nil(t, responses[2].Error)
}

func TestServePingWithoutInitialize(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"

	responses := runSession(t, input)
	require.Len(t, responses, 1)

	var pong map[string]interface{}
	decodeResultInto(t, responses[0], &pong)
	assert.Empty(t, pong)
}

func TestServeListTools(t *testing.T) {
	provider := &fakeToolProvider{tools: []protocol.Tool{
		{Name: "create_component", Description: "Create a component"},
		{Name: "delete_component", Description: "Delete a component"},
	}}
	input := initializeLine +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 2)

	var list protocol.ListToolsResult
	decodeResultInto(t, responses[1], &list)
	require.Len(t, list.Tools, 2)
	assert.Equal(t, "create_component", list.Tools[0].Name)
	assert.Equal(t, "delete_component", list.Tools[1].Name)
	assert.Empty(t, list.NextCursor, "a one-page catalog carries no cursor")
}

func TestServeListToolsPaginates(t *testing.T) {
	tools := make([]protocol.Tool, 0, 120)
	for i := 0; i < 120; i++ {
		tools = append(tools, protocol.Tool{Name: fmt.Sprintf("tool_%03d", i)})
	}
	provider := &fakeToolProvider{tools: tools}

	listPage := func(cursor string) protocol.ListToolsResult {
		t.Helper()
		params := ""
		if cursor != "" {
			params = fmt.Sprintf(`,"params":{"cursor":%q}`, cursor)
		}
		input := initializeLine +
			`{"jsonrpc":"2.0","id":2,"method":"tools/list"` + params + `}` + "\n"

		responses := runSession(t, input, WithToolsProvider(provider))
		require.Len(t, responses, 2)

		var list protocol.ListToolsResult
		decodeResultInto(t, responses[1], &list)
		return list
	}

	// Cursors are stateless offsets, so each page can come from a fresh
	// session the way a reconnecting client would fetch them.
	first := listPage("")
	require.Len(t, first.Tools, 50)
	assert.Equal(t, "tool_000", first.Tools[0].Name)
	require.NotEmpty(t, first.NextCursor)

	second := listPage(first.NextCursor)
	require.Len(t, second.Tools, 50)
	assert.Equal(t, "tool_050", second.Tools[0].Name)
	require.NotEmpty(t, second.NextCursor)

	third := listPage(second.NextCursor)
	require.Len(t, third.Tools, 20)
	assert.Equal(t, "tool_100", third.Tools[0].Name)
	assert.Empty(t, third.NextCursor)
}

func TestServeListToolsBadCursor(t *testing.T) {
	provider := &fakeToolProvider{tools: []protocol.Tool{{Name: "export"}}}
	input := initializeLine +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list","params":{"cursor":"%%%"}}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 2)
	require.NotNil(t, responses[1].Error)
	assert.EqualValues(t, protocol.InvalidParams, responses[1].Error.Code)
}

func TestServeCallToolRoutesToProvider(t *testing.T) {
	provider := &fakeToolProvider{result: protocol.NewToolResult(`{"message":"done","details":null}`)}
	input := initializeLine +
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"create_component","arguments":{"type":"cube"}}}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 2)

	call := provider.lastCall(t)
	assert.Equal(t, "create_component", call.name)
	assert.Equal(t, map[string]interface{}{"type": "cube"}, call.args)
	assert.EqualValues(t, 5, call.requestID)

	var result protocol.CallToolResult
	decodeResultInto(t, responses[1], &result)
	require.Len(t, result.Content, 1)
	assert.False(t, result.IsError)
	assert.Equal(t, `{"message":"done","details":null}`, result.Content[0].Text)
}

func TestServeCallToolErrorResultStaysInBand(t *testing.T) {
	provider := &fakeToolProvider{result: protocol.NewToolError("boom")}
	input := initializeLine +
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"eval_ruby","arguments":{}}}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 2)

	var result protocol.CallToolResult
	decodeResultInto(t, responses[1], &result)
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "boom", result.Content[0].Text)
}

func TestServeCallToolUnknownTool(t *testing.T) {
	provider := &fakeToolProvider{err: bridgeerrors.CreateMethodNotFoundError("no_such_tool", 2)}
	input := initializeLine +
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"no_such_tool","arguments":{}}}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 2)

	require.NotNil(t, responses[1].Error)
	assert.Equal(t, protocol.MethodNotFound, responses[1].Error.Code)
	assert.Equal(t, "Method not found: no_such_tool", responses[1].Error.Message)
}

func TestServeCallToolValidationErrorBecomesProtocolError(t *testing.T) {
	provider := &fakeToolProvider{err: bridgeerrors.MissingParameter("id")}
	input := initializeLine +
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"delete_component","arguments":{}}}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 2)

	require.NotNil(t, responses[1].Error)
	assert.EqualValues(t, bridgeerrors.CodeMissingParameter, responses[1].Error.Code)
	assert.Equal(t, "Missing required parameter: id", responses[1].Error.Message)
}

func TestServeCallToolMissingName(t *testing.T) {
	provider := &fakeToolProvider{}
	input := initializeLine +
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{}}` + "\n" +
		`{"jsonrpc":"2.0","id":3,"method":"tools/call"}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 3)

	for _, resp := range responses[1:] {
		require.NotNil(t, resp.Error)
		assert.Equal(t, protocol.InvalidParams, resp.Error.Code)
	}

	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.Empty(t, provider.calls, "malformed calls never reach the provider")
}

func TestServeCallToolMalformedParams(t *testing.T) {
	provider := &fakeToolProvider{}
	input := initializeLine +
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":5}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 2)

	require.NotNil(t, responses[1].Error)
	assert.Equal(t, protocol.InvalidParams, responses[1].Error.Code)
}

func TestServeShutdownDisconnectsSession(t *testing.T) {
	session := &fakeSession{}

	responses := runSession(t, initializeLine, WithSession(session))
	require.Len(t, responses, 1)

	assert.Equal(t, 1, session.disconnects(), "EOF must tear down the SketchUp session")
}

func TestServeCancelledNotificationProducesNoResponse(t *testing.T) {
	input := initializeLine +
		`{"jsonrpc":"2.0","method":"notifications/cancelled","params":{"requestId":2,"reason":"user"}}` + "\n" +
		`{"jsonrpc":"2.0","id":3,"method":"ping"}` + "\n"

	responses := runSession(t, input)
	require.Len(t, responses, 2)
	assert.EqualValues(t, 1, responses[0].ID)
	assert.EqualValues(t, 3, responses[1].ID)
}

func TestServeInitializedNotificationMarksReady(t *testing.T) {
	provider := &fakeToolProvider{}
	// No initialize request: only the notification, then a tool call.
	input := initializedLine +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"

	responses := runSession(t, input, WithToolsProvider(provider))
	require.Len(t, responses, 1)
	assert.Nil(t, responses[0].Error)
}

func TestServeStopUnblocksServe(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	session := &fakeSession{}
	tr := NewStdioTransport(StdioConfig{Reader: pr, Writer: &bytes.Buffer{}})
	srv := New(tr, WithSession(session))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(context.Background()) }()

	srv.Stop()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
	assert.Equal(t, 1, session.disconnects())
}
