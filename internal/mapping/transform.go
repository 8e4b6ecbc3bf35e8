package mapping

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// dateLayouts are the input formats Transform accepts for date_format,
// tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// Transform applies a mapping row's transform to a value. The empty and
// unknown kinds are the identity; validation flags unknown kinds before
// preview ever gets here. date_format is the only transform that can
// fail, with an INVALID_DATE error.
func Transform(value any, kind schema.TransformKind) (any, error) {
	switch kind {
	case schema.TransformUpper:
		return strings.ToUpper(stringify(value)), nil
	case schema.TransformLower:
		return strings.ToLower(stringify(value)), nil
	case schema.TransformTrim:
		return strings.TrimSpace(stringify(value)), nil
	case schema.TransformInt:
		return leadingInt(stringify(value)), nil
	case schema.TransformFloat:
		return leadingFloat(stringify(value)), nil
	case schema.TransformBool:
		return truthy(value), nil
	case schema.TransformJSON:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeExecution,
				"value is not JSON-encodable: %s", err.Error()).WithCause(err)
		}
		return string(b), nil
	case schema.TransformDateFormat:
		return formatDate(stringify(value))
	default:
		return value, nil
	}
}

// stringify renders a value the way it would appear interpolated into
// text: strings as-is, scalars via fmt, composites as compact JSON.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// leadingInt parses the longest leading integer of s, defaulting to 0.
// "12abc" is 12, "abc" is 0.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// leadingFloat parses the longest leading decimal of s, defaulting to 0.
func leadingFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}

// truthy follows loose boolean coercion: empty string, zero, nil, and
// false are false; everything else, the string "false" included, is true.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}

// formatDate normalizes a date string to YYYY-MM-DD.
func formatDate(s string) (any, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return nil, schema.NewErrorf(schema.ErrCodeInvalidDate,
		"cannot parse %q as a date", s).
		WithDetails(map[string]any{"value": s})
}
