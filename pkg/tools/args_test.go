package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bridgeerrors "github.com/sketchup-mcp/sketchup-mcp-go/pkg/errors"
)

func TestArgReaderFirstErrorWins(t *testing.T) {
	r := newArgReader(map[string]interface{}{"a": 1.0})
	_ = r.String("a")
	_ = r.String("b")

	err := r.Err()
	require.Error(t, err)
	bridgeErr, ok := bridgeerrors.AsBridgeError(err)
	require.True(t, ok)
	assert.Equal(t, bridgeerrors.CodeInvalidParameter, bridgeErr.Code())
	assert.Contains(t, err.Error(), "'a'")
}

func TestArgReaderOptionalDefaults(t *testing.T) {
	r := newArgReader(map[string]interface{}{"present": "value", "null": nil})

	assert.Equal(t, "value", r.StringOr("present", "def"))
	assert.Equal(t, "def", r.StringOr("missing", "def"))
	assert.Equal(t, "def", r.StringOr("null", "def"))
	assert.Equal(t, 2.5, r.FloatOr("missing", 2.5))
	assert.Equal(t, 7, r.IntOr("missing", 7))
	assert.True(t, r.BoolOr("missing", true))
	require.NoError(t, r.Err())
}

func TestArgReaderVectorDefaults(t *testing.T) {
	r := newArgReader(map[string]interface{}{
		"empty": []interface{}{},
		"full":  []interface{}{1.0, 2.0},
	})

	assert.Equal(t, []float64{9}, r.VectorOr("missing", []float64{9}))
	assert.Equal(t, []float64{9}, r.VectorOr("empty", []float64{9}))
	assert.Equal(t, []float64{1, 2}, r.VectorOr("full", nil))
	require.NoError(t, r.Err())
}

func TestArgReaderRequiredVectorKeepsEmpty(t *testing.T) {
	r := newArgReader(map[string]interface{}{"point": []interface{}{}})
	assert.Equal(t, []float64{}, r.Vector("point"))
	require.NoError(t, r.Err())
}

func TestArgReaderIntRejectsFraction(t *testing.T) {
	r := newArgReader(map[string]interface{}{"n": 2.5})
	r.IntOr("n", 1)
	require.Error(t, r.Err())
}

func TestArgReaderIntAcceptsWholeFloat(t *testing.T) {
	r := newArgReader(map[string]interface{}{"n": 3.0})
	assert.Equal(t, 3, r.IntOr("n", 1))
	require.NoError(t, r.Err())
}

func TestArgReaderScale(t *testing.T) {
	r := newArgReader(map[string]interface{}{
		"uniform": 2.0,
		"axes":    []interface{}{1.0, 2.0, 3.0},
	})

	assert.Equal(t, 2.0, r.Scale("uniform"))
	assert.Equal(t, []float64{1, 2, 3}, r.Scale("axes"))
	require.NoError(t, r.Err())

	r = newArgReader(map[string]interface{}{"bad": "two"})
	r.Scale("bad")
	require.Error(t, r.Err())
}

func TestTruthy(t *testing.T) {
	assert.False(t, truthy(nil))
	assert.False(t, truthy(false))
	assert.False(t, truthy(""))
	assert.False(t, truthy(0.0))
	assert.False(t, truthy([]interface{}{}))
	assert.False(t, truthy(map[string]interface{}{}))

	assert.True(t, truthy(true))
	assert.True(t, truthy("yes"))
	assert.True(t, truthy(1.0))
	assert.True(t, truthy([]interface{}{1}))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Cube", capitalize("cube"))
	assert.Equal(t, "Cylinder", capitalize("CYLINDER"))
	assert.Equal(t, "", capitalize(""))
}

func TestDecodeResult(t *testing.T) {
	res, ok := decodeResult(nil)
	require.True(t, ok)
	assert.True(t, res.empty())

	res, ok = decodeResult([]byte(`null`))
	require.True(t, ok)
	assert.True(t, res.empty())

	_, ok = decodeResult([]byte(`[1, 2]`))
	assert.False(t, ok)

	res, ok = decodeResult([]byte(`{"success": true}`))
	require.True(t, ok)
	assert.True(t, res.succeeded())
	assert.False(t, res.empty())
}

func TestResultReason(t *testing.T) {
	res := result{"message": "from message", "error": "from error"}
	assert.Equal(t, "from message", res.reason("fallback"))

	res = result{"error": "from error"}
	assert.Equal(t, "from error", res.reason("fallback"))

	assert.Equal(t, "fallback", result{}.reason("fallback"))
}
