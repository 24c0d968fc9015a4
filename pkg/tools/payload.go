package tools

import (
	"encoding/json"
)

// payload is the uniform reply shape shared by all tools: a plain English
// message, the peer response (or null) under details, and an error flag
// set only when the exchange itself failed.
type payload struct {
	Message string      `json:"message"`
	Error   bool        `json:"error,omitempty"`
	Details interface{} `json:"details"`
}

// successPayload renders an outcome that carries a peer response. The
// peer may still have reported a failure; the message says which.
func successPayload(message string, details interface{}) string {
	return render(payload{Message: message, Details: details})
}

// errorPayload renders a bridge-side failure with no peer response.
func errorPayload(message string) string {
	return render(payload{Message: message, Error: true})
}

func render(p payload) string {
	data, err := json.Marshal(p)
	if err != nil {
		data, _ = json.Marshal(payload{Message: p.Message, Error: p.Error})
	}
	return string(data)
}

// result is a decoded response body from the extension.
type result map[string]interface{}

// decodeResult interprets the raw engine response as a JSON object.
// Empty and null bodies decode to an empty result; anything that is
// not an object reports false.
func decodeResult(raw json.RawMessage) (result, bool) {
	if len(raw) == 0 {
		return result{}, true
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	if m == nil {
		return result{}, true
	}
	return result(m), true
}

func (r result) empty() bool { return len(r) == 0 }

// succeeded reports whether the extension marked the operation successful.
// The success field counts only when present and truthy.
func (r result) succeeded() bool {
	return truthy(r["success"])
}

// text returns the value under key rendered as a string, or def when the
// key is absent. Non-string values render as compact JSON.
func (r result) text(key, def string) string {
	v, ok := r[key]
	if !ok {
		return def
	}
	return stringify(v)
}

// section returns the nested object under key, or an empty result.
func (r result) section(key string) result {
	if m, ok := r[key].(map[string]interface{}); ok {
		return result(m)
	}
	return result{}
}

// has reports whether every key is present.
func (r result) has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := r[k]; !ok {
			return false
		}
	}
	return true
}

func (r result) float(key string) float64 {
	f, _ := floatValue(r[key])
	return f
}

// reason extracts a failure explanation from the body, preferring the
// message field, then error, then the given default.
func (r result) reason(def string) string {
	if v, ok := r["message"]; ok {
		return stringify(v)
	}
	if v, ok := r["error"]; ok {
		return stringify(v)
	}
	return def
}

// truthy applies loose truthiness to a decoded JSON value: null, false,
// zero, empty strings and empty containers are all false.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return true
	}
}

// stringify renders a decoded JSON value for use inside a message.
func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return compactJSON(v)
}

// compactJSON renders any marshalable value on one line.
func compactJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
