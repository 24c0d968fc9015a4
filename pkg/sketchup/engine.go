package sketchup

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/time/rate"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/logging"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/protocol"
)

// Caller is the view of the engine the tool layer depends on: relay one tool
// invocation to SketchUp and return its raw result.
type Caller interface {
	Call(ctx context.Context, method string, params map[string]interface{}, correlationID interface{}) (json.RawMessage, error)
}

// Engine drives exchanges over a Session: envelope construction, deadline
// selection, classification of every framed response, and
// reconnect-and-resend retries on transport faults.
//
// Calls are serialized: the session carries one exchange at a time, and a
// second caller blocks until the first finishes. Callers that need parallel
// calls need separate sessions and engines.
type Engine struct {
	cfg     EngineConfig
	session *Session
	logger  logging.Logger
	stats   Stats
	ids     logging.RequestIDGenerator
	limiter *rate.Limiter

	mu sync.Mutex
}

// NewEngine creates an engine over the given session. A nil logger logs to
// stderr; a nil stats discards signals.
func NewEngine(session *Session, cfg EngineConfig, logger logging.Logger, stats Stats) *Engine {
	if logger == nil {
		logger = logging.New(nil, nil)
	}
	if stats == nil {
		stats = NopStats{}
	}
	cfg = cfg.withDefaults()

	e := &Engine{
		cfg:     cfg,
		session: session,
		logger:  logger.WithFields(logging.String("component", "Engine")),
		stats:   stats,
		ids:     &logging.UUIDGenerator{},
	}
	if cfg.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return e
}

// WithIDGenerator replaces the correlation-id source used when the caller
// supplies none.
func (e *Engine) WithIDGenerator(gen logging.RequestIDGenerator) *Engine {
	if gen != nil {
		e.ids = gen
	}
	return e
}

// Session returns the session this engine drives.
func (e *Engine) Session() *Session {
	return e.session
}

// Call relays one tool invocation. method is normally a bare tool name and
// gets wrapped in a tools/call envelope; a caller that already passes
// "tools/call" with name+arguments params has them forwarded unchanged.
// correlationID nil means the engine generates one.
//
// Transport faults trigger up to MaxRetries reconnect-and-resend cycles with
// the same envelope; everything else fails the call. Retried envelopes reuse
// the request id, so an operation the peer already executed may run twice.
func (e *Engine) Call(ctx context.Context, method string, params map[string]interface{}, correlationID interface{}) (json.RawMessage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tool := resolveToolName(method, params)

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, bridgeerrors.OperationCancelled(tool)
		}
	}

	id := correlationID
	if id == nil {
		id = e.ids.Generate()
	}

	req, err := buildEnvelope(method, params, id)
	if err != nil {
		return nil, bridgeerrors.WrapError(err, bridgeerrors.CodeInternalError,
			"failed to build request envelope",
			bridgeerrors.CategoryInternal, bridgeerrors.SeverityError)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, bridgeerrors.WrapError(err, bridgeerrors.CodeInternalError,
			"failed to encode request envelope",
			bridgeerrors.CategoryInternal, bridgeerrors.SeverityError)
	}

	timeout := e.cfg.CallTimeout(tool)
	logger := e.logger.WithFields(
		logging.String("operation", tool),
		logging.Any("request_id", id),
	)

	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			e.stats.RetryScheduled(tool)
			backoff := time.Duration(attempt) * e.cfg.RetryBackoffStep
			if backoff > e.cfg.MaxRetryBackoff {
				backoff = e.cfg.MaxRetryBackoff
			}
			logger.WithError(lastErr).Warn("Transport fault, retrying",
				logging.Int("attempt", attempt+1),
				logging.Int("max_attempts", e.cfg.MaxRetries+1),
				logging.Duration("backoff", backoff))

			select {
			case <-ctx.Done():
				return nil, bridgeerrors.OperationCancelled(tool)
			case <-time.After(backoff):
			}

			if err := e.session.Connect(ctx); err != nil {
				// A failed reconnect consumes the attempt.
				logger.WithError(err).Error("Reconnect failed")
				lastErr = err
				continue
			}
		} else if err := e.session.Connect(ctx); err != nil {
			return nil, bridgeerrors.NotConnected(e.session.Endpoint(), err)
		}

		logger.Info("Sending request",
			logging.Int("attempt", attempt+1),
			logging.Int("max_attempts", e.cfg.MaxRetries+1),
			logging.Duration("timeout", timeout))

		result, err := e.exchange(ctx, logger, tool, payload, id, timeout)
		if err == nil {
			return result, nil
		}
		if !bridgeerrors.IsRetryableError(err) {
			return nil, err
		}

		lastErr = err
		e.session.Disconnect()
	}

	logger.WithError(lastErr).Error("Out of attempts, giving up")
	return nil, bridgeerrors.TransportExhausted(e.session.Endpoint(), e.cfg.MaxRetries+1, lastErr)
}

// exchange performs one send and classifies framed messages until a terminal
// outcome or the operation deadline.
func (e *Engine) exchange(ctx context.Context, logger logging.Logger, tool string, payload []byte, id interface{}, timeout time.Duration) (json.RawMessage, error) {
	if err := e.session.Send(ctx, payload); err != nil {
		return nil, err
	}

	start := time.Now()
	deadline := start.Add(timeout)
	operationID := ""

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return nil, bridgeerrors.OperationCancelled(tool)
		}

		wait := time.Until(deadline)
		if tool == toolCreateComponent {
			// Creation is expected to be fast; a peer that produced no
			// terminal response within the patience window is stalled.
			patience := start.Add(e.cfg.ComponentPatience)
			if !time.Now().Before(patience) {
				logger.Warn("Component creation produced no terminal response, timing out early")
				break
			}
			if w := time.Until(patience); w < wait {
				wait = w
			}
		}

		msg, err := e.session.ReceiveMessage(ctx, wait)
		if err != nil {
			return nil, err
		}

		switch msg.Kind {
		case protocol.KindPeerError:
			logger.WithFields(logging.Int("code", int(msg.Err.Code))).
				Error("SketchUp reported an error", logging.String("message", msg.Err.Message))
			return nil, bridgeerrors.PeerError(tool, msg.Err.Message, int(msg.Err.Code))

		case protocol.KindStatus:
			st := msg.Status
			if st.OperationID != "" {
				operationID = st.OperationID
			}
			logger.Info("Operation status",
				logging.String("operation_id", st.OperationID),
				logging.String("status", string(st.Status)),
				logging.String("message", st.Message))

			switch st.Status {
			case protocol.StatusFailed:
				return nil, bridgeerrors.OperationFailed(tool, st.Message)
			case protocol.StatusCompleted:
				// Terminal result delivered as a status update; accept it.
				if len(st.Result) > 0 {
					return st.Result, nil
				}
				return json.RawMessage(`{}`), nil
			default:
				// running, or an unknown state: keep waiting.
			}

		case protocol.KindResult:
			if protocol.EqualIDs(msg.ID, id) {
				logger.Info("Received final result",
					logging.Duration("elapsed", time.Since(start)))
				return msg.Result, nil
			}
			logger.Warn("Ignoring result with mismatched id",
				logging.Any("got", msg.ID))

		default:
			logger.Warn("Unexpected response shape",
				logging.String("kind", msg.Kind.String()))
		}
	}

	return nil, bridgeerrors.OperationTimeout(tool, operationID, timeout)
}

// resolveToolName returns the tool a call ultimately targets, for the
// timeout table and logs.
func resolveToolName(method string, params map[string]interface{}) string {
	if method != protocol.MethodCallTool {
		return method
	}
	if params != nil {
		if name, ok := params["name"].(string); ok && name != "" {
			return name
		}
	}
	return method
}

// buildEnvelope shapes the outbound request. A method of "tools/call" whose
// params already carry name and arguments is forwarded as-is; anything else
// is treated as a bare tool name and wrapped.
func buildEnvelope(method string, params map[string]interface{}, id interface{}) (*protocol.Request, error) {
	if method == protocol.MethodCallTool && params != nil {
		_, hasName := params["name"]
		_, hasArgs := params["arguments"]
		if hasName && hasArgs {
			return protocol.NewRequest(id, protocol.MethodCallTool, params)
		}
	}

	args := params
	if args == nil {
		args = map[string]interface{}{}
	}
	return protocol.NewRequest(id, protocol.MethodCallTool, &protocol.CallToolParams{
		Name:      method,
		Arguments: args,
	})
}
