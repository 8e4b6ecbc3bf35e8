package expressions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFields_FlatObject(t *testing.T) {
	fields := ExtractFields(map[string]any{"name": "Ada", "age": float64(30)})
	assert.Equal(t, []string{"age", "name"}, fields)
}

func TestExtractFields_NestedParentsBeforeChildren(t *testing.T) {
	data := map[string]any{
		"user": map[string]any{
			"name": "Ada",
			"age":  float64(30),
		},
	}
	fields := ExtractFields(data)
	assert.Equal(t, []string{"user", "user.age", "user.name"}, fields)
}

func TestExtractFields_ArrayUsesFirstElement(t *testing.T) {
	data := []any{
		map[string]any{"id": float64(1), "meta": map[string]any{"tag": "x"}},
		map[string]any{"other": "ignored"},
	}
	fields := ExtractFields(data)
	assert.Equal(t, []string{"id", "meta", "meta.tag"}, fields)
}

func TestExtractFields_DepthCap(t *testing.T) {
	// Five levels deep; emitted paths must never exceed 3 dot-segments.
	data := map[string]any{
		"a": map[string]any{
			"b": map[string]any{
				"c": map[string]any{
					"d": map[string]any{
						"e": "leaf",
					},
				},
			},
		},
	}
	fields := ExtractFields(data)
	assert.Equal(t, []string{"a", "a.b", "a.b.c"}, fields)
	for _, f := range fields {
		assert.LessOrEqual(t, strings.Count(f, "."), 2)
	}
}

func TestExtractFields_DegradesToEmpty(t *testing.T) {
	assert.Empty(t, ExtractFields(nil))
	assert.Empty(t, ExtractFields("scalar"))
	assert.Empty(t, ExtractFields(float64(42)))
	assert.Empty(t, ExtractFields([]any{}))
	assert.Empty(t, ExtractFields([]any{"just", "strings"}))
	assert.Empty(t, ExtractFields(map[string]any{}))
}
