package expressions

import "strings"

// maxFieldSegments caps how deep field extraction descends: emitted
// paths never exceed this many dot-separated segments. Bounds output
// size and guards against unbounded traversal of pathological payloads.
const maxFieldSegments = 3

// ExtractFields derives the set of addressable dotted field paths from an
// arbitrary JSON-shaped value (as produced by encoding/json: maps, slices,
// scalars). It never fails: scalar, nil, and malformed payloads yield an
// empty list.
//
// Arrays are represented by their first element only — a heterogeneous
// array under-reports fields, which is an accepted limitation of the
// representative-schema assumption. Keys are enumerated in sorted order
// for determinism, parents before children.
func ExtractFields(data any) []string {
	switch v := data.(type) {
	case []any:
		if len(v) == 0 {
			return nil
		}
		if obj, ok := v[0].(map[string]any); ok {
			var fields []string
			extractRecursive(obj, "", &fields)
			return fields
		}
		return nil
	case map[string]any:
		var fields []string
		extractRecursive(v, "", &fields)
		return fields
	default:
		return nil
	}
}

func extractRecursive(obj map[string]any, prefix string, fields *[]string) {
	for _, key := range sortedKeys(obj) {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		*fields = append(*fields, path)

		// A key's own path is emitted before its descendants are explored;
		// descend only while the accumulated path is below the segment cap.
		if child, ok := obj[key].(map[string]any); ok {
			if strings.Count(path, ".") < maxFieldSegments-1 {
				extractRecursive(child, path, fields)
			}
		}
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion sort; key sets here are small.
	for i := 1; i < len(keys); i++ {
		key := keys[i]
		j := i - 1
		for j >= 0 && keys[j] > key {
			keys[j+1] = keys[j]
			j--
		}
		keys[j+1] = key
	}
	return keys
}
