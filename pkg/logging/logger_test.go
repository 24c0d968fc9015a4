package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
)

// TestLogger tests the basic logger functionality
func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewTextFormatter())
	logger.SetLevel(DebugLevel) // Enable debug logging

	// Test different log levels
	logger.Debug("Debug message", String("key", "value"))
	logger.Info("Info message", Int("count", 42))
	logger.Warn("Warning message", Bool("flag", true))
	logger.Error("Error message", ErrorField(errors.New("test error")))

	output := buf.String()

	// Check that all messages were logged
	if !strings.Contains(output, "Debug message") {
		t.Error("Expected debug message in output")
	}
	if !strings.Contains(output, "Info message") {
		t.Error("Expected info message in output")
	}
	if !strings.Contains(output, "Warning message") {
		t.Error("Expected warning message in output")
	}
	if !strings.Contains(output, "Error message") {
		t.Error("Expected error message in output")
	}

	// Check fields
	if !strings.Contains(output, "key=value") {
		t.Error("Expected key=value in output")
	}
	if !strings.Contains(output, "count=42") {
		t.Error("Expected count=42 in output")
	}
	if !strings.Contains(output, "flag=true") {
		t.Error("Expected flag=true in output")
	}
	if !strings.Contains(output, "error=test error") {
		t.Error("Expected error=test error in output")
	}
}

// TestLogLevels tests log level filtering
func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewTextFormatter())

	// Set level to warn
	logger.SetLevel(WarnLevel)

	// Log at different levels
	logger.Debug("Debug message")
	logger.Info("Info message")
	logger.Warn("Warning message")
	logger.Error("Error message")

	output := buf.String()

	// Debug and info should be filtered out
	if strings.Contains(output, "Debug message") {
		t.Error("Debug message should be filtered out")
	}
	if strings.Contains(output, "Info message") {
		t.Error("Info message should be filtered out")
	}

	// Warn and error should be present
	if !strings.Contains(output, "Warning message") {
		t.Error("Warning message should be present")
	}
	if !strings.Contains(output, "Error message") {
		t.Error("Error message should be present")
	}
}

// TestParseLevel tests level name parsing
func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
		{"nonsense", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.name); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

// TestWithFields tests field inheritance
func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewTextFormatter())

	// Create logger with base fields
	logger = logger.WithFields(
		String("service", "sketchup-mcp"),
		String("version", "1.0.0"),
	)

	// Log a message
	logger.Info("Test message", String("operation", "test"))

	output := buf.String()

	// Check all fields are present
	if !strings.Contains(output, "service=sketchup-mcp") {
		t.Error("Expected service field")
	}
	if !strings.Contains(output, "version=1.0.0") {
		t.Error("Expected version field")
	}
	if !strings.Contains(output, "operation=test") {
		t.Error("Expected operation field")
	}
}

// TestWithContext tests context integration
func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewTextFormatter())

	// Create context with request ID
	ctx := ContextWithRequestID(context.Background(), "test-request-123")

	// Create logger with context
	logger = logger.WithContext(ctx)

	// Log a message
	logger.Info("Test message")

	output := buf.String()

	// Check request ID is present
	if !strings.Contains(output, "[test-request-123]") {
		t.Error("Expected request ID in output")
	}
}

// TestWithError tests error context integration
func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewTextFormatter())

	// Create bridge error with context
	bridgeErr := bridgeerrors.InvalidParameter("direction", "sideways", "string").
		WithContext(&bridgeerrors.Context{
			RequestID: "req-123",
			Component: "ToolProvider",
			Operation: "create_component",
		})

	// Create logger with error
	logger = logger.WithError(bridgeErr)

	// Log a message
	logger.Error("Operation failed")

	output := buf.String()

	// Check error details are present
	if !strings.Contains(output, "error=") {
		t.Error("Expected error field")
	}
	if !strings.Contains(output, "error_code=-32752") {
		t.Error("Expected error_code field")
	}
	if !strings.Contains(output, "error_category=validation") {
		t.Error("Expected error_category field")
	}
	if !strings.Contains(output, "[req-123]") {
		t.Error("Expected request ID from error context")
	}
	// Component and operation are shown in the special formatting section, not as fields
	if !strings.Contains(output, "ToolProvider/create_component:") {
		t.Error("Expected component and operation in message formatting")
	}
}

// TestWithErrorWrapped tests that error context survives %w wrapping
func TestWithErrorWrapped(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewTextFormatter())

	bridgeErr := bridgeerrors.ConnectionLost("localhost:9876", errors.New("read: connection reset"))
	wrapped := fmt.Errorf("exchange failed: %w", bridgeErr)

	logger.WithError(wrapped).Error("Retrying")

	output := buf.String()
	if !strings.Contains(output, "error_code=-32503") {
		t.Error("Expected error_code from wrapped bridge error")
	}
	if !strings.Contains(output, "error_category=transport") {
		t.Error("Expected error_category from wrapped bridge error")
	}
}

// TestJSONFormatter tests JSON output formatting
func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewJSONFormatter())

	// Log a message with fields
	logger.Info("Test message",
		String("key", "value"),
		Int("count", 42),
		Bool("flag", true),
	)

	// Parse JSON output
	var entry map[string]interface{}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	// Check fields
	if entry["level"] != "INFO" {
		t.Errorf("Expected level INFO, got %v", entry["level"])
	}
	if entry["message"] != "Test message" {
		t.Errorf("Expected message 'Test message', got %v", entry["message"])
	}
	if entry["key"] != "value" {
		t.Errorf("Expected key='value', got %v", entry["key"])
	}
	if entry["count"] != float64(42) { // JSON numbers are float64
		t.Errorf("Expected count=42, got %v", entry["count"])
	}
	if entry["flag"] != true {
		t.Errorf("Expected flag=true, got %v", entry["flag"])
	}

	// Check timestamp exists
	if _, ok := entry["timestamp"]; !ok {
		t.Error("Expected timestamp field")
	}
}

// TestFieldTypes tests different field types
func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewJSONFormatter())

	now := time.Now()
	duration := 5 * time.Second

	logger.Info("Test fields",
		String("string", "value"),
		Int("int", 42),
		Bool("bool", true),
		Duration("duration", duration),
		Time("time", now),
		Any("any", map[string]int{"a": 1, "b": 2}),
		ErrorField(errors.New("test error")),
	)

	// Parse JSON output
	var entry map[string]interface{}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Failed to parse JSON output: %v", err)
	}

	// Check fields
	if entry["string"] != "value" {
		t.Error("Expected string field")
	}
	if entry["int"] != float64(42) {
		t.Error("Expected int field")
	}
	if entry["bool"] != true {
		t.Error("Expected bool field")
	}
	if entry["error"] != "test error" {
		t.Error("Expected error field")
	}

	// Duration should be in nanoseconds
	if _, ok := entry["duration"].(float64); !ok {
		t.Error("Expected duration as number")
	}

	// Time should be formatted
	if _, ok := entry["time"].(string); !ok {
		t.Error("Expected time as string")
	}

	// Any should preserve structure
	if anyVal, ok := entry["any"].(map[string]interface{}); ok {
		if anyVal["a"] != float64(1) || anyVal["b"] != float64(2) {
			t.Error("Expected any field to preserve map structure")
		}
	} else {
		t.Error("Expected any field as map")
	}
}

// TestContextMiddleware tests dispatch wrapping
func TestContextMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewTextFormatter())
	logger.SetLevel(DebugLevel)

	mw := NewContextMiddleware(logger)

	handler := mw.WrapHandler("tools/call", func(ctx context.Context, params interface{}) (interface{}, error) {
		if RequestIDFromContext(ctx) == "" {
			t.Error("Expected request ID injected into context")
		}
		return "ok", nil
	})

	result, err := handler(context.Background(), nil)
	if err != nil {
		t.Fatalf("Handler failed: %v", err)
	}
	if result != "ok" {
		t.Errorf("Expected handler result to pass through, got %v", result)
	}

	output := buf.String()
	if !strings.Contains(output, "Operation started") {
		t.Error("Expected start log")
	}
	if !strings.Contains(output, "Operation completed") {
		t.Error("Expected completion log")
	}
	if !strings.Contains(output, "operation=tools/call") {
		t.Error("Expected operation field")
	}
}

// TestContextMiddlewareError tests failure logging
func TestContextMiddlewareError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewTextFormatter())

	mw := NewContextMiddleware(logger)
	handlerErr := bridgeerrors.OperationFailed("create_component", "entity not found")

	handler := mw.WrapHandler("tools/call", func(ctx context.Context, params interface{}) (interface{}, error) {
		return nil, handlerErr
	})

	_, err := handler(context.Background(), nil)
	if !errors.Is(err, handlerErr) {
		t.Fatalf("Expected handler error to pass through, got %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Operation failed") {
		t.Error("Expected failure log")
	}
	if !strings.Contains(output, "error_category=peer") {
		t.Error("Expected error category from bridge error")
	}
}

// TestContextMiddlewarePreservesRequestID tests that an existing request ID
// is not replaced
func TestContextMiddlewarePreservesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewTextFormatter())
	logger.SetLevel(DebugLevel)

	mw := NewContextMiddleware(logger)
	handler := mw.WrapHandler("ping", func(ctx context.Context, params interface{}) (interface{}, error) {
		if got := RequestIDFromContext(ctx); got != "existing-id" {
			t.Errorf("Expected existing-id, got %q", got)
		}
		return nil, nil
	})

	ctx := ContextWithRequestID(context.Background(), "existing-id")
	if _, err := handler(ctx, nil); err != nil {
		t.Fatalf("Handler failed: %v", err)
	}

	if !strings.Contains(buf.String(), "[existing-id]") {
		t.Error("Expected existing request ID in output")
	}
}

// TestRequestIDGenerators tests the ID generators
func TestRequestIDGenerators(t *testing.T) {
	uuidGen := &UUIDGenerator{}
	first := uuidGen.Generate()
	second := uuidGen.Generate()
	if first == "" || first == second {
		t.Error("Expected distinct non-empty UUIDs")
	}

	prefixed := &PrefixedGenerator{Prefix: "req", Generator: uuidGen}
	id := prefixed.Generate()
	if !strings.HasPrefix(id, "req-") {
		t.Errorf("Expected req- prefix, got %q", id)
	}
	if len(id) <= len("req-") {
		t.Error("Expected generated suffix after prefix")
	}
}

// TestHTTPMiddleware tests request logging on the debug listener
func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, NewTextFormatter())
	logger.SetLevel(DebugLevel)

	handler := HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RequestIDFromContext(r.Context()) == "" {
			t.Error("Expected request ID in request context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	output := buf.String()
	if !strings.Contains(output, "HTTP request completed") {
		t.Error("Expected completion log")
	}
	if !strings.Contains(output, "status=204") {
		t.Error("Expected captured status code")
	}
	if !strings.Contains(output, "path=/metrics") {
		t.Error("Expected request path field")
	}
}

// TestNopLogger tests that the nop logger stays silent
func TestNopLogger(t *testing.T) {
	logger := NewNop()
	logger.Info("should vanish")
	logger.WithError(errors.New("boom")).Error("also vanishes")
	// Nothing to assert beyond not panicking; output goes to io.Discard.
}
