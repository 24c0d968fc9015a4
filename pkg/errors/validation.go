package errors

import (
	"fmt"
	"reflect"
	"strings"
)

// ParameterErrorData contains structured data for parameter-related errors
type ParameterErrorData struct {
	Parameter string      `json:"parameter"`
	Value     interface{} `json:"value,omitempty"`
	Type      string      `json:"type,omitempty"`
	Required  bool        `json:"required,omitempty"`
	Allowed   []string    `json:"allowed,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// ValidationError creates a generic validation error
func ValidationError(message string) BridgeError {
	return NewError(CodeValidationError, message, CategoryValidation, SeverityError)
}

// ValidationErrorf creates a generic validation error with formatting
func ValidationErrorf(format string, args ...interface{}) BridgeError {
	return NewErrorf(CodeValidationError, CategoryValidation, SeverityError, format, args...)
}

// InvalidParameter creates an error for invalid parameter values
func InvalidParameter(param string, value interface{}, expected string) BridgeError {
	var got string
	if value != nil {
		got = fmt.Sprintf("%T", value)
		if str, ok := value.(string); ok && len(str) < 100 {
			got = fmt.Sprintf("%s(%q)", got, str)
		}
	} else {
		got = "nil"
	}

	return NewError(
		CodeInvalidParameter,
		fmt.Sprintf("Invalid parameter '%s': expected %s, got %s", param, expected, got),
		CategoryValidation,
		SeverityError,
	).WithData(&ParameterErrorData{
		Parameter: param,
		Value:     value,
		Type:      got,
		Reason:    fmt.Sprintf("expected %s", expected),
	})
}

// InvalidChoice creates an error for a parameter outside its allowed set
func InvalidChoice(param string, value interface{}, allowed []string) BridgeError {
	return NewError(
		CodeInvalidParameter,
		fmt.Sprintf("Invalid %s: %v. Must be one of: %s", param, value, strings.Join(allowed, ", ")),
		CategoryValidation,
		SeverityError,
	).WithData(&ParameterErrorData{
		Parameter: param,
		Value:     value,
		Allowed:   allowed,
		Reason:    "value outside allowed set",
	})
}

// MissingParameter creates an error for missing required parameters
func MissingParameter(param string) BridgeError {
	return NewError(
		CodeMissingParameter,
		fmt.Sprintf("Missing required parameter: %s", param),
		CategoryValidation,
		SeverityError,
	).WithData(&ParameterErrorData{
		Parameter: param,
		Required:  true,
	})
}

// InvalidParameterType creates an error for incorrect parameter types
func InvalidParameterType(param string, value interface{}, expectedType string) BridgeError {
	actualType := "nil"
	if value != nil {
		actualType = reflect.TypeOf(value).String()
	}

	return NewError(
		CodeInvalidParameter,
		fmt.Sprintf("Invalid type for parameter '%s': expected %s, got %s", param, expectedType, actualType),
		CategoryValidation,
		SeverityError,
	).WithData(&ParameterErrorData{
		Parameter: param,
		Value:     value,
		Type:      actualType,
		Reason:    fmt.Sprintf("expected %s", expectedType),
	})
}
