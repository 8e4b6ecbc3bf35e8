package variables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

func TestDefine_DuplicateRejected(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Define(schema.Variable{Name: "x", Value: "1"}))

	err := s.Define(schema.Variable{Name: "x", Value: "2"})
	require.Error(t, err)
	assert.True(t, schema.IsCode(err, schema.ErrCodeConflict))

	v, ok := s.Get("x")
	require.True(t, ok)
	assert.Equal(t, "1", v.Value)
}

func TestDefine_Defaults(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Define(schema.Variable{Name: "x", Value: "v"}))

	v, _ := s.Get("x")
	assert.Equal(t, schema.VariableString, v.Type)
	assert.Equal(t, schema.ScopeWorkflow, v.Scope)
}

func TestDefine_EmptyNameRejected(t *testing.T) {
	err := NewStore().Define(schema.Variable{Value: "v"})
	require.Error(t, err)
	assert.True(t, schema.IsCode(err, schema.ErrCodeValidation))
}

func TestUpdate_KeepsPosition(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Define(schema.Variable{Name: "a", Value: "1"}))
	require.NoError(t, s.Define(schema.Variable{Name: "b", Value: "2"}))

	require.NoError(t, s.Update("a", schema.Variable{Value: "10", Type: schema.VariableNumber}))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "10", list[0].Value)
	assert.Equal(t, schema.VariableNumber, list[0].Type)
}

func TestUpdate_Missing(t *testing.T) {
	err := NewStore().Update("ghost", schema.Variable{})
	require.Error(t, err)
	assert.True(t, schema.IsCode(err, schema.ErrCodeNotFound))
}

func TestDelete(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Define(schema.Variable{Name: "a"}))
	require.NoError(t, s.Define(schema.Variable{Name: "b"}))
	require.NoError(t, s.Delete("a"))

	_, ok := s.Get("a")
	assert.False(t, ok)
	require.Len(t, s.List(), 1)
	assert.Equal(t, "b", s.List()[0].Name)

	err := s.Delete("a")
	assert.True(t, schema.IsCode(err, schema.ErrCodeNotFound))
}

func TestRendered_MasksSecrets(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Define(schema.Variable{Name: "plain", Value: "visible"}))
	require.NoError(t, s.Define(schema.Variable{Name: "api_key", Value: "sk-real", IsSecret: true}))

	rendered := s.Rendered()
	require.Len(t, rendered, 2)
	assert.Equal(t, "visible", rendered[0].Value)
	assert.Equal(t, schema.SecretMask, rendered[1].Value)

	// The store itself keeps the real value.
	v, _ := s.Get("api_key")
	assert.Equal(t, "sk-real", v.Value)
}

func TestTypedValue(t *testing.T) {
	assert.Equal(t, 3.5, TypedValue(schema.Variable{Type: schema.VariableNumber, Value: "3.5"}))
	assert.Equal(t, true, TypedValue(schema.Variable{Type: schema.VariableBoolean, Value: "true"}))
	assert.Equal(t,
		map[string]any{"k": "v"},
		TypedValue(schema.Variable{Type: schema.VariableJSON, Value: `{"k":"v"}`}))
	assert.Equal(t, "text", TypedValue(schema.Variable{Type: schema.VariableString, Value: "text"}))
}

func TestTypedValue_ParseFailureDegradesToRaw(t *testing.T) {
	assert.Equal(t, "NaNish", TypedValue(schema.Variable{Type: schema.VariableNumber, Value: "NaNish"}))
	assert.Equal(t, "maybe", TypedValue(schema.Variable{Type: schema.VariableBoolean, Value: "maybe"}))
	assert.Equal(t, "{broken", TypedValue(schema.Variable{Type: schema.VariableJSON, Value: "{broken"}))
}

func TestContextLayer_RealSecretValues(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Define(schema.Variable{Name: "api_key", Value: "sk-real", IsSecret: true}))
	require.NoError(t, s.Define(schema.Variable{Name: "retries", Value: "3", Type: schema.VariableNumber}))

	layer := s.ContextLayer()
	assert.Equal(t, "sk-real", layer["api_key"])
	assert.Equal(t, float64(3), layer["retries"])
}

func TestLoad_ReplacesAndDeduplicates(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Define(schema.Variable{Name: "old"}))

	s.Load([]schema.Variable{
		{Name: "a", Value: "1"},
		{Name: "b", Value: "2"},
		{Name: "a", Value: "shadowed"},
	})

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "1", list[0].Value)
	_, ok := s.Get("old")
	assert.False(t, ok)
}
