package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"strings"

	"github.com/sketchup-mcp/sketchup-mcp-go/pkg/protocol"
)

// ToJSONRPCResponse converts any error to a JSON-RPC error response
func ToJSONRPCResponse(err error, requestID interface{}) (*protocol.Response, error) {
	if err == nil {
		return nil, fmt.Errorf("cannot create error response from nil error")
	}

	if bridgeErr, ok := AsBridgeError(err); ok {
		return protocol.NewErrorResponse(requestID, protocol.ErrorCode(bridgeErr.Code()), bridgeErr.Message(), bridgeErr.Data())
	}

	return protocol.NewErrorResponse(requestID, protocol.ErrorCode(CodeInternalError), err.Error(), nil)
}

// ToJSONRPCError converts any error to a JSON-RPC error object
func ToJSONRPCError(err error) *protocol.Error {
	if err == nil {
		return nil
	}

	if bridgeErr, ok := AsBridgeError(err); ok {
		return &protocol.Error{
			Code:    protocol.ErrorCode(bridgeErr.Code()),
			Message: bridgeErr.Message(),
			Data:    bridgeErr.Data(),
		}
	}

	return &protocol.Error{
		Code:    protocol.ErrorCode(CodeInternalError),
		Message: err.Error(),
	}
}

// FromJSONRPCError converts a JSON-RPC error object to a BridgeError
func FromJSONRPCError(jsonrpcErr *protocol.Error) BridgeError {
	if jsonrpcErr == nil {
		return nil
	}

	code := int(jsonrpcErr.Code)
	category := GetErrorCodeCategory(code)
	severity := GetErrorCodeSeverity(code)

	err := NewError(code, jsonrpcErr.Message, category, severity)
	if jsonrpcErr.Data != nil {
		err = err.WithData(jsonrpcErr.Data)
	}

	return err
}

// WrapOperationError wraps a handler error with request context
func WrapOperationError(err error, operation string, requestID interface{}) BridgeError {
	if err == nil {
		return nil
	}

	context := &Context{
		Operation: operation,
		RequestID: fmt.Sprintf("%v", requestID),
	}

	if bridgeErr, ok := AsBridgeError(err); ok {
		return bridgeErr.WithContext(context)
	}

	return WrapError(
		err,
		CodeInternalError,
		fmt.Sprintf("Error processing %s", operation),
		CategoryInternal,
		SeverityError,
	).WithContext(context)
}

// ConvertStandardError converts common Go errors to appropriate bridge errors
func ConvertStandardError(err error) BridgeError {
	if err == nil {
		return nil
	}

	if bridgeErr, ok := AsBridgeError(err); ok {
		return bridgeErr
	}

	if stderrors.Is(err, context.Canceled) {
		return OperationCancelled("request")
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return OperationTimeout("request", "", 0)
	}

	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return NewError(CodeParseError, "Invalid JSON", CategoryProtocol, SeverityError)
	}

	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return NewError(CodeInvalidParams, "Invalid parameter type", CategoryValidation, SeverityError)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return TransportError("exchange", err)
		}
		return ConnectionLost("", err)
	}

	return WrapError(err, CodeInternalError, "Internal error", CategoryInternal, SeverityError)
}

// CombineErrors combines multiple errors into a single BridgeError
func CombineErrors(errors []error) BridgeError {
	if len(errors) == 0 {
		return nil
	}

	validErrors := make([]error, 0, len(errors))
	for _, err := range errors {
		if err != nil {
			validErrors = append(validErrors, err)
		}
	}

	if len(validErrors) == 0 {
		return nil
	}

	if len(validErrors) == 1 {
		return ConvertStandardError(validErrors[0])
	}

	messages := make([]string, len(validErrors))
	errorData := make([]interface{}, len(validErrors))

	for i, err := range validErrors {
		messages[i] = err.Error()
		if bridgeErr, ok := AsBridgeError(err); ok {
			errorData[i] = bridgeErr.ToJSON()
		} else {
			errorData[i] = map[string]interface{}{
				"message": err.Error(),
				"type":    fmt.Sprintf("%T", err),
			}
		}
	}

	return NewError(
		CodeInternalError,
		fmt.Sprintf("Multiple errors occurred: %v", messages),
		CategoryInternal,
		SeverityError,
	).WithData(map[string]interface{}{
		"errors": errorData,
		"count":  len(validErrors),
	})
}

// CreateMethodNotFoundError creates a standardized method not found error
func CreateMethodNotFoundError(method string, requestID interface{}) BridgeError {
	context := &Context{
		Operation: method,
		RequestID: fmt.Sprintf("%v", requestID),
	}

	return NewError(
		CodeMethodNotFound,
		fmt.Sprintf("Method not found: %s", method),
		CategoryProtocol,
		SeverityError,
	).WithContext(context)
}

// CreateInvalidParamsError creates a standardized invalid params error
func CreateInvalidParamsError(method string, requestID interface{}, details string) BridgeError {
	context := &Context{
		Operation: method,
		RequestID: fmt.Sprintf("%v", requestID),
	}

	err := NewError(
		CodeInvalidParams,
		fmt.Sprintf("Invalid parameters for %s", method),
		CategoryValidation,
		SeverityError,
	).WithContext(context)

	if details != "" {
		err = err.WithDetail(details)
	}

	return err
}

// CreateParseError creates a standardized parse error
func CreateParseError(details string) BridgeError {
	err := NewError(
		CodeParseError,
		"Parse error",
		CategoryProtocol,
		SeverityError,
	)

	if details != "" {
		err = err.WithDetail(details)
	}

	return err
}

// CreateInvalidRequestError creates a standardized invalid request error
func CreateInvalidRequestError(details string) BridgeError {
	err := NewError(
		CodeInvalidRequest,
		"Invalid request",
		CategoryProtocol,
		SeverityError,
	)

	if details != "" {
		err = err.WithDetail(details)
	}

	return err
}

// CreateInternalError creates a standardized internal error
func CreateInternalError(operation string, cause error) BridgeError {
	message := "Internal error"
	if operation != "" {
		message = fmt.Sprintf("Internal error during %s", operation)
	}

	return WrapError(
		cause,
		CodeInternalError,
		message,
		CategoryInternal,
		SeverityError,
	)
}

// IsRetryableError reports whether the relay may disconnect, reconnect, and
// resend the same envelope after this error. Peer rejections and operation
// timeouts are terminal; socket faults and framing failures are not.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if bridgeErr, ok := AsBridgeError(err); ok {
		// The constructors record retryability in their structured data.
		switch data := bridgeErr.Data().(type) {
		case *TransportErrorData:
			return data.Retryable
		case *FramingErrorData:
			return data.Retryable
		case *OperationErrorData:
			return data.Retryable
		}

		switch bridgeErr.Code() {
		case CodeTransportError, CodeConnectionLost,
			CodeNoData, CodeIncompleteMessage, CodeInvalidEncoding:
			return true
		}
		return false
	}

	// Raw socket errors that escaped classification.
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset by peer") ||
		strings.Contains(errStr, "broken pipe")
}
