package observability

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
)

// fakeCaller records its last invocation and returns a scripted outcome.
type fakeCaller struct {
	method        string
	params        map[string]interface{}
	correlationID interface{}

	response json.RawMessage
	err      error
}

func (f *fakeCaller) Call(ctx context.Context, method string, params map[string]interface{}, correlationID interface{}) (json.RawMessage, error) {
	f.method = method
	f.params = params
	f.correlationID = correlationID
	return f.response, f.err
}

func newTestMetrics(t *testing.T) *PrometheusMetricsProvider {
	t.Helper()
	m, err := NewMetricsProvider(MetricsConfig{})
	require.NoError(t, err)
	return m
}

func TestMetricsConnectionLifecycle(t *testing.T) {
	m := newTestMetrics(t)

	m.ConnectionOpened()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connected))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectsTotal))

	m.ConnectionClosed()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.connected))

	m.ConnectionOpened()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connected))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.connectsTotal))
}

func TestMetricsRetryCounter(t *testing.T) {
	m := newTestMetrics(t)

	m.RetryScheduled("create_component_with_verification")
	m.RetryScheduled("create_component_with_verification")
	m.RetryScheduled("export")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.retryTotal.WithLabelValues("create_component_with_verification")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retryTotal.WithLabelValues("export")))
}

func TestMetricsRecordCall(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordCall("delete_component", "success", 40*time.Millisecond)
	m.RecordCall("delete_component", "success", 60*time.Millisecond)
	m.RecordCall("delete_component", "OperationTimeout", 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.callTotal.WithLabelValues("delete_component", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callTotal.WithLabelValues("delete_component", "OperationTimeout")))
}

func TestMetricsHandlerServesRegistry(t *testing.T) {
	m := newTestMetrics(t)
	m.RecordCall("get_selection", "success", 5*time.Millisecond)
	m.ReceiveChunks(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "sketchup_mcp_call_total")
	assert.Contains(t, text, "sketchup_mcp_receive_chunks_per_message_count 1")
}

func TestMetricsStartRequiresAddr(t *testing.T) {
	m := newTestMetrics(t)
	assert.Error(t, m.Start(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestWrapCallerRecordsSuccess(t *testing.T) {
	m := newTestMetrics(t)
	next := &fakeCaller{response: json.RawMessage(`{"success":true}`)}

	caller := CallerObservability{Metrics: m}.Wrap(next)
	result, err := caller.Call(context.Background(), "get_selection", map[string]interface{}{}, "req-1")

	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(result))
	assert.Equal(t, "get_selection", next.method)
	assert.Equal(t, "req-1", next.correlationID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callTotal.WithLabelValues("get_selection", "success")))
}

func TestWrapCallerRecordsErrorCode(t *testing.T) {
	m := newTestMetrics(t)
	next := &fakeCaller{err: bridgeerrors.OperationTimeout("export", "op-1", 2*time.Second)}

	caller := CallerObservability{Metrics: m}.Wrap(next)
	_, err := caller.Call(context.Background(), "export", nil, nil)

	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.callTotal.WithLabelValues("export", "OperationTimeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorTotal.WithLabelValues("export", "OperationTimeout")))
}

func TestWrapCallerWithoutProvidersReturnsNext(t *testing.T) {
	next := &fakeCaller{}
	caller := CallerObservability{}.Wrap(next)
	assert.Same(t, next, caller)
}

func TestWrapCallerWithTracing(t *testing.T) {
	tp, err := NewTracingProvider(TracingConfig{ExporterType: ExporterTypeNoop})
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	next := &fakeCaller{response: json.RawMessage(`{"success":true}`)}
	caller := CallerObservability{Tracing: tp, CapturePayloads: true}.Wrap(next)

	result, err := caller.Call(context.Background(), "eval_ruby",
		map[string]interface{}{"code": "1+1"}, "req-9")
	require.NoError(t, err)
	assert.NotEmpty(t, result)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "success", statusLabel(nil))
	assert.Equal(t, "OperationTimeout", statusLabel(bridgeerrors.OperationTimeout("x", "", time.Second)))
	assert.Equal(t, "NotConnected", statusLabel(bridgeerrors.NotConnected("localhost:9876", nil)))
	assert.Equal(t, "InternalError", statusLabel(io.ErrUnexpectedEOF))
}

func TestParseExporterType(t *testing.T) {
	tests := []struct {
		in      string
		want    ExporterType
		wantErr bool
	}{
		{"otlp-grpc", ExporterTypeOTLPGRPC, false},
		{"otlp-http", ExporterTypeOTLPHTTP, false},
		{"noop", ExporterTypeNoop, false},
		{"", ExporterTypeNoop, false},
		{"jaeger", "", true},
	}

	for _, tt := range tests {
		got, err := ParseExporterType(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestTracingProviderShutdownIdempotent(t *testing.T) {
	tp, err := NewTracingProvider(TracingConfig{ExporterType: ExporterTypeNoop})
	require.NoError(t, err)

	ctx, span := tp.StartCallSpan(context.Background(), "create_component_with_verification")
	assert.NotNil(t, ctx)
	span.End()

	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestMetricsSharedRegistryTolerated(t *testing.T) {
	m1, err := NewMetricsProvider(MetricsConfig{})
	require.NoError(t, err)

	// A second provider over the same registry must not fail registration.
	_, err = NewMetricsProvider(MetricsConfig{Registry: m1.registry})
	require.NoError(t, err)
}

func TestMetricsConstLabels(t *testing.T) {
	m, err := NewMetricsProvider(MetricsConfig{
		ServiceName:    "sketchup-mcp",
		ServiceVersion: "0.1.17",
	})
	require.NoError(t, err)
	m.RecordCall("ping", "success", time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `service="sketchup-mcp"`), "const labels missing:\n%s", text)
	assert.True(t, strings.Contains(text, `version="0.1.17"`))
}
