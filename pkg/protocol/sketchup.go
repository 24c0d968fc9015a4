package protocol

import (
	"encoding/json"
	"fmt"
)

const (
	// MethodOperationStatus is the notification method the SketchUp
	// extension emits while a long-running operation is in flight.
	MethodOperationStatus = "operation/status"
)

// OperationStatus is the lifecycle state carried by an operation/status
// notification.
type OperationStatus string

const (
	StatusRunning   OperationStatus = "running"
	StatusCompleted OperationStatus = "completed"
	StatusFailed    OperationStatus = "failed"
)

// IsTerminal reports whether the status ends the wait for a response.
// Unknown status strings are treated like running: keep waiting.
func (s OperationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// OperationStatusParams defines the params of an operation/status
// notification.
type OperationStatusParams struct {
	OperationID string          `json:"operation_id,omitempty"`
	Status      OperationStatus `json:"status"`
	Message     string          `json:"message,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// MessageKind identifies which arm of the peer message union a decoded
// document belongs to. The set is closed: everything the extension can
// send classifies as exactly one of these.
type MessageKind int

const (
	// KindUnrecognized is anything that matches no other arm. Callers log
	// it and keep reading; it never terminates a pending operation.
	KindUnrecognized MessageKind = iota

	// KindResult is a response carrying a result payload and an id.
	KindResult

	// KindPeerError is a response whose error field is populated. The
	// operation failed inside SketchUp.
	KindPeerError

	// KindStatus is an operation/status notification.
	KindStatus
)

// String returns the kind name for logs.
func (k MessageKind) String() string {
	switch k {
	case KindResult:
		return "result"
	case KindPeerError:
		return "error"
	case KindStatus:
		return "status"
	default:
		return "unrecognized"
	}
}

// Message is one classified document read from the SketchUp stream.
// Exactly one of Result, Err, Status is populated, according to Kind.
type Message struct {
	Kind   MessageKind
	ID     interface{}
	Result json.RawMessage
	Err    *Error
	Status *OperationStatusParams
	Raw    []byte
}

// DecodeMessage classifies a single well-formed JSON document from the
// SketchUp connection. Classification precedence is error, then status
// notification, then result; anything else is KindUnrecognized.
//
// The extension is not strict about the jsonrpc field, so its presence is
// not required here. An explicit "result": null still counts as a result;
// an explicit "error": null does not count as an error.
func DecodeMessage(data []byte) (*Message, error) {
	var probe struct {
		ID     interface{}     `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		Result json.RawMessage `json:"result"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed peer message: %w", err)
	}

	msg := &Message{Kind: KindUnrecognized, ID: probe.ID, Raw: data}

	switch {
	case len(probe.Error) > 0 && string(probe.Error) != "null":
		rpcErr := &Error{}
		// Tolerate loosely shaped error objects; a missing or unusable
		// message is left empty for the caller to default.
		_ = json.Unmarshal(probe.Error, rpcErr)
		msg.Kind = KindPeerError
		msg.Err = rpcErr
	case probe.Method == MethodOperationStatus:
		status := &OperationStatusParams{}
		if len(probe.Params) > 0 {
			_ = json.Unmarshal(probe.Params, status)
		}
		msg.Kind = KindStatus
		msg.Status = status
	case len(probe.Result) > 0:
		msg.Kind = KindResult
		msg.Result = probe.Result
	}

	return msg, nil
}
