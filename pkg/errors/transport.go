package errors

import (
	"fmt"
	"time"
)

// TransportErrorData contains structured data for transport-related errors
type TransportErrorData struct {
	Endpoint  string        `json:"endpoint,omitempty"`
	Operation string        `json:"operation,omitempty"`
	Attempt   int           `json:"attempt,omitempty"`
	Connected bool          `json:"connected"`
	Retryable bool          `json:"retryable"`
	Timeout   time.Duration `json:"timeout,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

// FramingErrorData contains structured data for message framing failures
type FramingErrorData struct {
	Endpoint      string        `json:"endpoint,omitempty"`
	BytesBuffered int           `json:"bytes_buffered"`
	Elapsed       time.Duration `json:"elapsed,omitempty"`
	Retryable     bool          `json:"retryable"`
	Reason        string        `json:"reason,omitempty"`
}

// ConnectionFailed creates an error for connection establishment failures
func ConnectionFailed(endpoint string, cause error) BridgeError {
	message := "Failed to connect to SketchUp"
	if endpoint != "" {
		message = fmt.Sprintf("Failed to connect to SketchUp at %s", endpoint)
	}
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, cause.Error())
	}

	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	return WrapError(
		cause,
		CodeConnectionFailed,
		message,
		CategoryTransport,
		SeverityCritical,
	).WithData(&TransportErrorData{
		Endpoint:  endpoint,
		Operation: "connect",
		Connected: false,
		Retryable: false,
		Reason:    reason,
	})
}

// NotConnected creates an error for operations attempted without a usable
// connection. The message matches what users of the original extension see,
// since it is the first thing they hit when the Ruby side is not running.
func NotConnected(endpoint string, cause error) BridgeError {
	return WrapError(
		cause,
		CodeNotConnected,
		"Could not connect to SketchUp. Make sure the SketchUp extension is running.",
		CategoryTransport,
		SeverityCritical,
	).WithData(&TransportErrorData{
		Endpoint:  endpoint,
		Operation: "connect",
		Connected: false,
		Retryable: false,
		Reason:    "no usable connection",
	})
}

// ConnectionLost creates an error for connections dropped mid-exchange
func ConnectionLost(endpoint string, cause error) BridgeError {
	message := "Lost connection to SketchUp"
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, cause.Error())
	}

	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	return WrapError(
		cause,
		CodeConnectionLost,
		message,
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Endpoint:  endpoint,
		Connected: false,
		Retryable: true,
		Reason:    reason,
	})
}

// TransportError creates an error for socket faults mid-exchange
func TransportError(operation string, cause error) BridgeError {
	message := "Transport error"
	if operation != "" {
		message = fmt.Sprintf("Transport error during %s", operation)
	}
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, cause.Error())
	}

	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	return WrapError(
		cause,
		CodeTransportError,
		message,
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Operation: operation,
		Connected: true,
		Retryable: true,
		Reason:    reason,
	})
}

// SendFailed creates an error for request write failures
func SendFailed(endpoint string, cause error) BridgeError {
	message := "Failed to send request to SketchUp"
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, cause.Error())
	}

	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	return WrapError(
		cause,
		CodeTransportError,
		message,
		CategoryTransport,
		SeverityError,
	).WithData(&TransportErrorData{
		Endpoint:  endpoint,
		Operation: "send",
		Connected: true,
		Retryable: true,
		Reason:    reason,
	})
}

// TransportExhausted creates the terminal error for a relay that kept
// failing at the socket level until no attempts remained.
func TransportExhausted(endpoint string, attempts int, cause error) BridgeError {
	message := fmt.Sprintf("Connection to SketchUp lost after %d attempts", attempts)
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, cause.Error())
	}

	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	return WrapError(
		cause,
		CodeTransportExhausted,
		message,
		CategoryTransport,
		SeverityCritical,
	).WithData(&TransportErrorData{
		Endpoint:  endpoint,
		Attempt:   attempts,
		Connected: false,
		Retryable: false,
		Reason:    reason,
	})
}

// NoData creates an error for a peer that closed before any byte arrived
func NoData(endpoint, reason string) BridgeError {
	if reason == "" {
		reason = "no data received"
	}

	return NewError(
		CodeNoData,
		"No data received",
		CategoryFraming,
		SeverityError,
	).WithData(&FramingErrorData{
		Endpoint:  endpoint,
		Retryable: true,
		Reason:    reason,
	})
}

// IncompleteMessage creates an error for a receive that buffered bytes but
// never saw them become a parseable JSON document.
func IncompleteMessage(endpoint string, buffered int, elapsed time.Duration) BridgeError {
	return NewError(
		CodeIncompleteMessage,
		"Incomplete JSON response received",
		CategoryFraming,
		SeverityError,
	).WithData(&FramingErrorData{
		Endpoint:      endpoint,
		BytesBuffered: buffered,
		Elapsed:       elapsed,
		Retryable:     true,
		Reason:        "buffered bytes never parsed as a complete document",
	})
}

// InvalidEncoding creates an error for buffered bytes that never form
// valid UTF-8.
func InvalidEncoding(endpoint string, buffered int) BridgeError {
	return NewError(
		CodeInvalidEncoding,
		"Invalid response encoding",
		CategoryFraming,
		SeverityError,
	).WithData(&FramingErrorData{
		Endpoint:      endpoint,
		BytesBuffered: buffered,
		Retryable:     true,
		Reason:        "response is not valid UTF-8",
	})
}
