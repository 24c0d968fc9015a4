package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/sketchup"
)

// The metrics provider doubles as the session and engine stats sink.
var _ sketchup.Stats = (*PrometheusMetricsProvider)(nil)

// CallerObservability wraps a sketchup.Caller with metrics and tracing. Nil
// providers disable the corresponding signal.
type CallerObservability struct {
	Metrics *PrometheusMetricsProvider
	Tracing *TracingProvider

	// CapturePayloads records request arguments and raw responses as span
	// attributes. Off by default: eval_ruby bodies and component query
	// dumps can be large.
	CapturePayloads bool
}

// Wrap returns a Caller that records every Call through the configured
// providers before delegating. With neither provider set it returns next
// unchanged.
func (o CallerObservability) Wrap(next sketchup.Caller) sketchup.Caller {
	if o.Metrics == nil && o.Tracing == nil {
		return next
	}
	return &instrumentedCaller{next: next, obs: o}
}

type instrumentedCaller struct {
	next sketchup.Caller
	obs  CallerObservability
}

func (c *instrumentedCaller) Call(ctx context.Context, method string, params map[string]interface{}, correlationID interface{}) (json.RawMessage, error) {
	var span trace.Span
	if c.obs.Tracing != nil {
		ctx, span = c.obs.Tracing.StartCallSpan(ctx, method)
		defer span.End()

		if correlationID != nil {
			span.SetAttributes(attribute.String("sketchup.request_id", fmt.Sprintf("%v", correlationID)))
		}
		if c.obs.CapturePayloads && params != nil {
			if payload, err := json.Marshal(params); err == nil {
				span.SetAttributes(attribute.String("rpc.request.payload", string(payload)))
			}
		}
	}

	start := time.Now()
	result, err := c.next.Call(ctx, method, params, correlationID)
	duration := time.Since(start)

	status := statusLabel(err)
	if c.obs.Metrics != nil {
		c.obs.Metrics.RecordCall(method, status, duration)
		if err != nil {
			c.obs.Metrics.RecordCallError(method, status)
		}
	}

	if span != nil {
		span.SetAttributes(attribute.Int64("rpc.duration_ms", duration.Milliseconds()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
			if c.obs.CapturePayloads && len(result) > 0 {
				span.SetAttributes(attribute.String("rpc.response.payload", string(result)))
			}
		}
	}

	return result, err
}

// statusLabel classifies a call outcome for the status metric label:
// "success", or the bridge error code name.
func statusLabel(err error) string {
	if err == nil {
		return "success"
	}
	if bridgeErr, ok := bridgeerrors.AsBridgeError(err); ok {
		return bridgeerrors.GetErrorCodeName(bridgeErr.Code())
	}
	return "InternalError"
}
