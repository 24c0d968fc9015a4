package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/logging"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/protocol"
)

const (
	// defaultMaxLineBytes caps a single inbound JSON-RPC line. Tool results
	// travel the other way, so inbound lines stay small unless a client
	// sends a large eval_ruby body.
	defaultMaxLineBytes = 4 * 1024 * 1024

	// scannerInitialBytes is the starting scanner buffer size.
	scannerInitialBytes = 64 * 1024
)

// RequestHandler handles one inbound request and returns the result to
// encode, or an error to convert into a JSON-RPC error response.
type RequestHandler func(ctx context.Context, params json.RawMessage, requestID interface{}) (interface{}, error)

// NotificationHandler handles one inbound notification. Returned errors are
// logged; notifications never produce a response.
type NotificationHandler func(ctx context.Context, params json.RawMessage) error

// StdioConfig configures the stdio transport.
type StdioConfig struct {
	// Reader is the inbound stream. Defaults to os.Stdin.
	Reader io.Reader
	// Writer is the outbound stream. Defaults to os.Stdout.
	Writer io.Writer
	// Logger receives transport diagnostics. stdout carries the protocol,
	// so logs must go elsewhere.
	Logger logging.Logger
	// MaxLineBytes caps a single inbound line.
	MaxLineBytes int
}

// DefaultStdioConfig returns the stdio transport defaults.
func DefaultStdioConfig() StdioConfig {
	return StdioConfig{MaxLineBytes: defaultMaxLineBytes}
}

func (c StdioConfig) withDefaults() StdioConfig {
	if c.Reader == nil {
		c.Reader = os.Stdin
	}
	if c.Writer == nil {
		c.Writer = os.Stdout
	}
	if c.Logger == nil {
		c.Logger = logging.NewNop()
	}
	if c.MaxLineBytes <= 0 {
		c.MaxLineBytes = defaultMaxLineBytes
	}
	return c
}

// StdioTransport reads newline-delimited JSON-RPC messages from its reader,
// dispatches them to registered handlers, and writes responses back one per
// line. Messages are processed in arrival order on a single goroutine, so
// responses come back in request order.
type StdioTransport struct {
	reader       io.Reader
	writer       *bufio.Writer
	logger       logging.Logger
	maxLineBytes int

	handlersMu           sync.RWMutex
	requestHandlers      map[string]RequestHandler
	notificationHandlers map[string]NotificationHandler

	writeMu  sync.Mutex
	done     chan struct{}
	stopOnce sync.Once
}

// NewStdioTransport creates a stdio transport over the configured streams.
func NewStdioTransport(cfg StdioConfig) *StdioTransport {
	cfg = cfg.withDefaults()
	return &StdioTransport{
		reader:               cfg.Reader,
		writer:               bufio.NewWriter(cfg.Writer),
		logger:               cfg.Logger,
		maxLineBytes:         cfg.MaxLineBytes,
		requestHandlers:      make(map[string]RequestHandler),
		notificationHandlers: make(map[string]NotificationHandler),
		done:                 make(chan struct{}),
	}
}

// RegisterRequestHandler registers a handler for the given request method.
func (t *StdioTransport) RegisterRequestHandler(method string, handler RequestHandler) {
	t.handlersMu.Lock()
	defer t.handlersMu.Unlock()
	t.requestHandlers[method] = handler
}

// RegisterNotificationHandler registers a handler for the given notification
// method. Notifications without a handler are ignored.
func (t *StdioTransport) RegisterNotificationHandler(method string, handler NotificationHandler) {
	t.handlersMu.Lock()
	defer t.handlersMu.Unlock()
	t.notificationHandlers[method] = handler
}

// Start reads and dispatches messages until the reader is exhausted, the
// context is canceled, or Stop is called. It blocks for the duration of the
// session and returns nil on a clean EOF.
func (t *StdioTransport) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	scanner := bufio.NewScanner(t.reader)
	// The scanner's limit is the larger of the max and the initial buffer,
	// so the initial buffer must not exceed the configured cap.
	initial := scannerInitialBytes
	if t.maxLineBytes < initial {
		initial = t.maxLineBytes
	}
	scanner.Buffer(make([]byte, initial), t.maxLineBytes)

	scannerDone := make(chan struct{})

	g.Go(func() error {
		defer close(scannerDone)

		for scanner.Scan() {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-t.done:
				return nil
			default:
			}

			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			// Copy the line so the next Scan cannot overwrite it.
			data := make([]byte, len(line))
			copy(data, line)

			func() {
				defer func() {
					if r := recover(); r != nil {
						t.logger.Error("Panic while processing message",
							logging.Any("panic", r),
							logging.String("stack", string(debug.Stack())))
					}
				}()
				t.dispatch(gctx, data)
			}()
		}

		if err := scanner.Err(); err != nil && err != io.EOF {
			// A forced reader close during shutdown surfaces here.
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-t.done:
				return nil
			default:
			}
			return bridgeerrors.TransportError("stdin_read", err).
				WithContext(&bridgeerrors.Context{Component: "StdioTransport"})
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			t.closeReader()
			return gctx.Err()
		case <-t.done:
			t.closeReader()
			return nil
		case <-scannerDone:
			return nil
		}
	})

	return g.Wait()
}

// Stop halts the transport and flushes any buffered output. Safe to call
// more than once and concurrently with Start.
func (t *StdioTransport) Stop() {
	t.stopOnce.Do(func() {
		close(t.done)
		t.writeMu.Lock()
		if err := t.writer.Flush(); err != nil {
			t.logger.Warn("Failed to flush output on stop", logging.ErrorField(err))
		}
		t.writeMu.Unlock()
	})
}

// closeReader unblocks a pending Scan by closing the underlying reader when
// it supports closing.
func (t *StdioTransport) closeReader() {
	if closer, ok := t.reader.(io.Closer); ok {
		_ = closer.Close()
	}
}

// Send writes one message line. The trailing newline terminates the message;
// the flush makes it visible to the client immediately.
func (t *StdioTransport) Send(data []byte) error {
	select {
	case <-t.done:
		return bridgeerrors.TransportError("stdout_write", fmt.Errorf("transport stopped"))
	default:
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.writer.Write(data); err != nil {
		return bridgeerrors.TransportError("stdout_write", err)
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return bridgeerrors.TransportError("stdout_write", err)
	}
	if err := t.writer.Flush(); err != nil {
		return bridgeerrors.TransportError("stdout_flush", err)
	}
	return nil
}

// dispatch classifies one inbound line and routes it. Unparseable lines get
// a parse error response with a null id per JSON-RPC 2.0.
func (t *StdioTransport) dispatch(ctx context.Context, data []byte) {
	if !json.Valid(data) {
		t.logger.Warn("Discarding unparseable input line", logging.Int("bytes", len(data)))
		t.replyError(nil, protocol.ParseError, "Parse error")
		return
	}

	switch {
	case protocol.IsRequest(data):
		var req protocol.Request
		if err := json.Unmarshal(data, &req); err != nil {
			t.replyError(nil, protocol.InvalidRequest, "Invalid request")
			return
		}
		t.handleRequest(ctx, &req)

	case protocol.IsNotification(data):
		var note protocol.Notification
		if err := json.Unmarshal(data, &note); err != nil {
			t.logger.Warn("Discarding malformed notification", logging.ErrorField(err))
			return
		}
		t.handleNotification(ctx, &note)

	case protocol.IsResponse(data):
		// The inbound surface never sends requests, so a response here has
		// no one waiting for it.
		t.logger.Debug("Ignoring unexpected response on stdio")

	default:
		var probe struct {
			ID interface{} `json:"id"`
		}
		_ = json.Unmarshal(data, &probe)
		t.replyError(probe.ID, protocol.InvalidRequest, "Invalid request")
	}
}

func (t *StdioTransport) handleRequest(ctx context.Context, req *protocol.Request) {
	t.handlersMu.RLock()
	handler, ok := t.requestHandlers[req.Method]
	t.handlersMu.RUnlock()

	if !ok {
		t.logger.Debug("Request for unknown method", logging.String("method", req.Method))
		t.replyErr(bridgeerrors.CreateMethodNotFoundError(req.Method, req.ID), req.ID)
		return
	}

	result, err := t.invoke(ctx, handler, req)
	if err != nil {
		t.replyErr(err, req.ID)
		return
	}

	resp, err := protocol.NewResponse(req.ID, result)
	if err != nil {
		t.logger.Error("Failed to encode response",
			logging.String("method", req.Method), logging.ErrorField(err))
		t.replyErr(bridgeerrors.CreateInternalError(req.Method, err), req.ID)
		return
	}
	t.reply(resp)
}

// invoke runs a request handler with panic recovery so one faulty handler
// cannot take down the read loop.
func (t *StdioTransport) invoke(ctx context.Context, handler RequestHandler, req *protocol.Request) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Handler panicked",
				logging.String("method", req.Method),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())))
			result = nil
			err = bridgeerrors.CreateInternalError(req.Method, fmt.Errorf("panic: %v", r))
		}
	}()
	return handler(ctx, req.Params, req.ID)
}

func (t *StdioTransport) handleNotification(ctx context.Context, note *protocol.Notification) {
	t.handlersMu.RLock()
	handler, ok := t.notificationHandlers[note.Method]
	t.handlersMu.RUnlock()

	if !ok {
		t.logger.Debug("Ignoring notification for unregistered method",
			logging.String("method", note.Method))
		return
	}

	if err := handler(ctx, note.Params); err != nil {
		t.logger.Warn("Notification handler failed",
			logging.String("method", note.Method), logging.ErrorField(err))
	}
}

// reply encodes and sends a response, logging failures. There is no one to
// report a broken stdout to, so errors end at the log.
func (t *StdioTransport) reply(resp *protocol.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		t.logger.Error("Failed to marshal response", logging.ErrorField(err))
		return
	}
	if err := t.Send(data); err != nil {
		t.logger.Error("Failed to send response", logging.ErrorField(err))
	}
}

// replyErr converts any error into a JSON-RPC error response for the given
// request id.
func (t *StdioTransport) replyErr(err error, requestID interface{}) {
	resp, convErr := bridgeerrors.ToJSONRPCResponse(err, requestID)
	if convErr != nil {
		t.logger.Error("Failed to build error response", logging.ErrorField(convErr))
		return
	}
	t.reply(resp)
}

func (t *StdioTransport) replyError(requestID interface{}, code protocol.ErrorCode, message string) {
	resp, err := protocol.NewErrorResponse(requestID, code, message, nil)
	if err != nil {
		t.logger.Error("Failed to build error response", logging.ErrorField(err))
		return
	}
	t.reply(resp)
}
