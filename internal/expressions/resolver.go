// Package expressions implements the editor's template and expression
// support: {{path}} placeholder resolution against a layered scope,
// field-path extraction from node output payloads, and the pluggable
// condition-expression engines (CEL, expr, jq).
package expressions

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Resolve performs a single substitution pass over a template containing
// zero or more {{path}} placeholders, looking each dot-separated path up
// in the layered context assembled by ScopeBuilder.
//
// Resolution is best-effort by design: a placeholder whose path cannot be
// fully walked (missing segment, non-indexable intermediate, empty path)
// is left as its literal {{path}} text so partially-configured workflows
// remain displayable. Resolved values are not rescanned, so there is no
// expression-in-expression expansion. A template without placeholders
// resolves to itself.
func Resolve(template string, context map[string]any) string {
	if !strings.Contains(template, "{{") {
		return template
	}

	var result strings.Builder
	result.Grow(len(template))

	i := 0
	for i < len(template) {
		idx := strings.Index(template[i:], "{{")
		if idx == -1 {
			result.WriteString(template[i:])
			break
		}

		result.WriteString(template[i : i+idx])
		start := i + idx + 2 // skip "{{"

		// }} closes at its first occurrence.
		end := strings.Index(template[start:], "}}")
		if end == -1 {
			// Unterminated placeholder: emit the rest verbatim.
			result.WriteString(template[i+idx:])
			break
		}
		end += start

		token := template[i+idx : end+2]
		path := strings.TrimSpace(template[start:end])

		val, ok := lookupPath(context, path)
		if ok {
			result.WriteString(stringify(val))
		} else {
			result.WriteString(token)
		}

		i = end + 2
	}

	return result.String()
}

// lookupPath walks a dot-separated path through nested maps. It reports
// false if any segment is absent or an intermediate value is not
// indexable.
func lookupPath(root map[string]any, path string) (any, bool) {
	if path == "" || root == nil {
		return nil, false
	}

	var current any = root
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, false
		}
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// stringify converts a resolved value into its inline text form. Strings
// embed as-is; complex values are JSON-encoded.
func stringify(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case nil:
		return "null"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%v", v)
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case json.RawMessage:
		return string(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// HasPlaceholders reports whether a string contains any {{...}} reference.
func HasPlaceholders(s string) bool {
	return strings.Contains(s, "{{")
}
