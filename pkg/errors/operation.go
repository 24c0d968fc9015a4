package errors

import (
	"fmt"
	"time"
)

// OperationErrorData contains structured data for operation-level errors
type OperationErrorData struct {
	Operation   string        `json:"operation,omitempty"`
	OperationID string        `json:"operation_id,omitempty"`
	RequestID   string        `json:"request_id,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
	PeerCode    int           `json:"peer_code,omitempty"`
	Retryable   bool          `json:"retryable"`
	Reason      string        `json:"reason,omitempty"`
}

// PeerError creates an error for an operation SketchUp explicitly rejected
// or reported as failed. The peer understood the request; retrying the same
// envelope would only fail the same way.
func PeerError(operation, peerMessage string, peerCode int) BridgeError {
	if peerMessage == "" {
		peerMessage = "Unknown error from SketchUp"
	}

	return NewError(
		CodePeerError,
		peerMessage,
		CategoryPeer,
		SeverityError,
	).WithData(&OperationErrorData{
		Operation: operation,
		PeerCode:  peerCode,
		Retryable: false,
		Reason:    peerMessage,
	})
}

// OperationFailed creates an error for an operation/status notification
// reporting failure.
func OperationFailed(operation, statusMessage string) BridgeError {
	return NewError(
		CodePeerError,
		fmt.Sprintf("Operation failed: %s", statusMessage),
		CategoryPeer,
		SeverityError,
	).WithData(&OperationErrorData{
		Operation: operation,
		Retryable: false,
		Reason:    statusMessage,
	})
}

// OperationTimeout creates an error for an exchange that produced no
// terminal response within its deadline. Includes the peer-assigned operation
// id when a status notification supplied one.
func OperationTimeout(operation, operationID string, timeout time.Duration) BridgeError {
	var message string
	if operationID != "" {
		message = fmt.Sprintf("Operation %s timed out after %v", operationID, timeout)
	} else {
		message = fmt.Sprintf("No response received within %v", timeout)
	}

	return NewError(
		CodeOperationTimeout,
		message,
		CategoryTimeout,
		SeverityError,
	).WithData(&OperationErrorData{
		Operation:   operation,
		OperationID: operationID,
		Timeout:     timeout,
		Retryable:   false,
		Reason:      "no terminal response before deadline",
	})
}

// OperationCancelled creates an error for a caller-cancelled operation
func OperationCancelled(operation string) BridgeError {
	return NewError(
		CodeOperationCancelled,
		fmt.Sprintf("Operation cancelled: %s", operation),
		CategoryCancelled,
		SeverityInfo,
	).WithData(&OperationErrorData{
		Operation: operation,
		Retryable: false,
		Reason:    "cancelled by caller",
	})
}

// ServerInitError creates an error for server initialization failures
func ServerInitError(reason string, cause error) BridgeError {
	message := fmt.Sprintf("Server initialization failed: %s", reason)

	return WrapError(
		cause,
		CodeServerInitError,
		message,
		CategoryInternal,
		SeverityCritical,
	)
}

// ServerNotReady creates an error for requests that arrive before
// initialization completed
func ServerNotReady(reason string) BridgeError {
	return NewError(
		CodeServerNotReady,
		fmt.Sprintf("Server not ready: %s", reason),
		CategoryInternal,
		SeverityError,
	)
}

// ProtocolError creates an error for malformed or out-of-contract messages
func ProtocolError(reason string) BridgeError {
	return NewError(
		CodeProtocolError,
		fmt.Sprintf("Protocol error: %s", reason),
		CategoryProtocol,
		SeverityError,
	)
}
