package tools

import (
	"encoding/json"
	"math"
	"strings"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
)

// argReader extracts typed values from a decoded arguments object. The
// first failure is recorded and later extractions return zero values, so
// a handler reads everything it needs and checks Err once. Optional
// extractors substitute their default for absent and null values; the
// vector form also falls back on an empty list.
type argReader struct {
	args map[string]interface{}
	err  error
}

func newArgReader(args map[string]interface{}) *argReader {
	return &argReader{args: args}
}

func (r *argReader) Err() error { return r.err }

// Has reports whether key carries a non-null value.
func (r *argReader) Has(key string) bool {
	v, ok := r.args[key]
	return ok && v != nil
}

func (r *argReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *argReader) String(key string) string {
	if r.err != nil {
		return ""
	}
	if !r.Has(key) {
		r.fail(bridgeerrors.MissingParameter(key))
		return ""
	}
	s, ok := r.args[key].(string)
	if !ok {
		r.fail(bridgeerrors.InvalidParameterType(key, r.args[key], "string"))
		return ""
	}
	return s
}

func (r *argReader) StringOr(key, def string) string {
	if r.err != nil || !r.Has(key) {
		return def
	}
	s, ok := r.args[key].(string)
	if !ok {
		r.fail(bridgeerrors.InvalidParameterType(key, r.args[key], "string"))
		return ""
	}
	return s
}

func (r *argReader) FloatOr(key string, def float64) float64 {
	if r.err != nil || !r.Has(key) {
		return def
	}
	f, ok := floatValue(r.args[key])
	if !ok {
		r.fail(bridgeerrors.InvalidParameterType(key, r.args[key], "number"))
		return 0
	}
	return f
}

func (r *argReader) IntOr(key string, def int) int {
	if r.err != nil || !r.Has(key) {
		return def
	}
	f, ok := floatValue(r.args[key])
	if !ok || f != math.Trunc(f) {
		r.fail(bridgeerrors.InvalidParameterType(key, r.args[key], "integer"))
		return 0
	}
	return int(f)
}

func (r *argReader) BoolOr(key string, def bool) bool {
	if r.err != nil || !r.Has(key) {
		return def
	}
	b, ok := r.args[key].(bool)
	if !ok {
		r.fail(bridgeerrors.InvalidParameterType(key, r.args[key], "boolean"))
		return false
	}
	return b
}

// Vector returns the required numeric list under key. An empty list is
// returned as-is.
func (r *argReader) Vector(key string) []float64 {
	if r.err != nil {
		return nil
	}
	if !r.Has(key) {
		r.fail(bridgeerrors.MissingParameter(key))
		return nil
	}
	vec, err := toVector(key, r.args[key])
	if err != nil {
		r.fail(err)
		return nil
	}
	return vec
}

// VectorOr returns the numeric list under key, or def when the key is
// absent, null, or an empty list.
func (r *argReader) VectorOr(key string, def []float64) []float64 {
	if r.err != nil || !r.Has(key) {
		return def
	}
	vec, err := toVector(key, r.args[key])
	if err != nil {
		r.fail(err)
		return nil
	}
	if len(vec) == 0 {
		return def
	}
	return vec
}

// Points returns the required list of coordinate triples under key.
func (r *argReader) Points(key string) [][]float64 {
	if r.err != nil {
		return nil
	}
	if !r.Has(key) {
		r.fail(bridgeerrors.MissingParameter(key))
		return nil
	}
	list, ok := r.args[key].([]interface{})
	if !ok {
		r.fail(bridgeerrors.InvalidParameterType(key, r.args[key], "array of points"))
		return nil
	}
	points := make([][]float64, 0, len(list))
	for _, item := range list {
		point, err := toVector(key, item)
		if err != nil {
			r.fail(err)
			return nil
		}
		points = append(points, point)
	}
	return points
}

// Strings returns the required list of strings under key.
func (r *argReader) Strings(key string) []string {
	if r.err != nil {
		return nil
	}
	if !r.Has(key) {
		r.fail(bridgeerrors.MissingParameter(key))
		return nil
	}
	list, ok := r.args[key].([]interface{})
	if !ok {
		r.fail(bridgeerrors.InvalidParameterType(key, r.args[key], "array of strings"))
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			r.fail(bridgeerrors.InvalidParameterType(key, item, "string"))
			return nil
		}
		out = append(out, s)
	}
	return out
}

// Scale accepts a uniform scale factor or a per-axis [Sx, Sy, Sz] list
// and returns it in forwardable form.
func (r *argReader) Scale(key string) interface{} {
	if r.err != nil || !r.Has(key) {
		return nil
	}
	v := r.args[key]
	if f, ok := floatValue(v); ok {
		return f
	}
	vec, err := toVector(key, v)
	if err != nil {
		r.fail(bridgeerrors.InvalidParameterType(key, v, "number or array of numbers"))
		return nil
	}
	return vec
}

func toVector(key string, v interface{}) ([]float64, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, bridgeerrors.InvalidParameterType(key, v, "array of numbers")
	}
	out := make([]float64, 0, len(list))
	for _, item := range list {
		f, ok := floatValue(item)
		if !ok {
			return nil, bridgeerrors.InvalidParameterType(key, item, "number")
		}
		out = append(out, f)
	}
	return out, nil
}

func floatValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// capitalize uppercases the first letter and lowercases the rest, the way
// component types are rendered in messages.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
