package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

func mustTransform(t *testing.T, value any, kind schema.TransformKind) any {
	t.Helper()
	out, err := Transform(value, kind)
	require.NoError(t, err)
	return out
}

func TestTransform_Identity(t *testing.T) {
	assert.Equal(t, "unchanged", mustTransform(t, "unchanged", schema.TransformNone))
	assert.Equal(t, float64(3), mustTransform(t, float64(3), schema.TransformNone))
}

func TestTransform_StringCases(t *testing.T) {
	assert.Equal(t, "HELLO", mustTransform(t, "hello", schema.TransformUpper))
	assert.Equal(t, "hello", mustTransform(t, "HELLO", schema.TransformLower))
	assert.Equal(t, "Hi", mustTransform(t, "  Hi  ", schema.TransformTrim))
}

func TestTransform_StringifiesNonStrings(t *testing.T) {
	assert.Equal(t, "TRUE", mustTransform(t, true, schema.TransformUpper))
	assert.Equal(t, "42", mustTransform(t, float64(42), schema.TransformTrim))
}

func TestTransform_Int(t *testing.T) {
	assert.Equal(t, int64(12), mustTransform(t, "12abc", schema.TransformInt))
	assert.Equal(t, int64(0), mustTransform(t, "abc", schema.TransformInt))
	assert.Equal(t, int64(-7), mustTransform(t, "-7.9", schema.TransformInt))
	assert.Equal(t, int64(42), mustTransform(t, float64(42), schema.TransformInt))
}

func TestTransform_Float(t *testing.T) {
	assert.Equal(t, 3.14, mustTransform(t, "3.14 units", schema.TransformFloat))
	assert.Equal(t, float64(0), mustTransform(t, "units", schema.TransformFloat))
	assert.Equal(t, -0.5, mustTransform(t, "-0.5", schema.TransformFloat))
}

func TestTransform_Bool(t *testing.T) {
	assert.Equal(t, false, mustTransform(t, "", schema.TransformBool))
	assert.Equal(t, false, mustTransform(t, float64(0), schema.TransformBool))
	assert.Equal(t, false, mustTransform(t, nil, schema.TransformBool))
	assert.Equal(t, false, mustTransform(t, false, schema.TransformBool))
	// Loose coercion: a non-empty string is true even when it spells "false".
	assert.Equal(t, true, mustTransform(t, "false", schema.TransformBool))
	assert.Equal(t, true, mustTransform(t, float64(1), schema.TransformBool))
	assert.Equal(t, true, mustTransform(t, map[string]any{}, schema.TransformBool))
}

func TestTransform_JSON(t *testing.T) {
	out := mustTransform(t, map[string]any{"a": float64(1)}, schema.TransformJSON)
	assert.JSONEq(t, `{"a":1}`, out.(string))

	out = mustTransform(t, "plain", schema.TransformJSON)
	assert.Equal(t, `"plain"`, out)
}

func TestTransform_DateFormat(t *testing.T) {
	assert.Equal(t, "2024-03-05", mustTransform(t, "2024-03-05T10:00:00Z", schema.TransformDateFormat))
	assert.Equal(t, "2024-03-05", mustTransform(t, "2024-03-05 10:00:00", schema.TransformDateFormat))
	assert.Equal(t, "2024-03-05", mustTransform(t, "2024-03-05", schema.TransformDateFormat))
	assert.Equal(t, "2024-03-05", mustTransform(t, "2024/03/05", schema.TransformDateFormat))
}

func TestTransform_DateFormatInvalid(t *testing.T) {
	_, err := Transform("not a date", schema.TransformDateFormat)
	require.Error(t, err)
	assert.True(t, schema.IsCode(err, schema.ErrCodeInvalidDate))
}

func TestTransform_UnknownKindIsIdentity(t *testing.T) {
	assert.Equal(t, "x", mustTransform(t, "x", schema.TransformKind("bogus")))
}
