// Package mapping manages the data-mapping rows stored on each node and
// the transforms they apply. Rows live in node config under the reserved
// data_mappings key, ordered and addressed by position; each row also
// carries a stable ID so the UI can track a row across removals.
package mapping

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/abdsal1508/workflow-app/internal/graph"
	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// Engine reads and edits the mapping rows of nodes in one graph.
type Engine struct {
	g *graph.Graph
}

// NewEngine creates a mapping engine over a graph.
func NewEngine(g *graph.Graph) *Engine {
	return &Engine{g: g}
}

// Rows returns the node's mapping rows. A node with no rows yields an
// empty slice. Fails with NOT_FOUND if the node does not exist.
func (e *Engine) Rows(nodeID string) ([]schema.DataMapping, error) {
	n, ok := e.g.Node(nodeID)
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", nodeID)
	}
	return decodeRows(n.Config[schema.MappingConfigKey])
}

// Add appends an empty mapping row to the node and returns it. The row
// gets a fresh stable ID; every other field starts blank for the UI to
// fill in.
func (e *Engine) Add(nodeID string) (schema.DataMapping, error) {
	rows, err := e.Rows(nodeID)
	if err != nil {
		return schema.DataMapping{}, err
	}
	row := schema.DataMapping{ID: uuid.NewString()}
	rows = append(rows, row)
	if err := e.setRows(nodeID, rows); err != nil {
		return schema.DataMapping{}, err
	}
	return row, nil
}

// Update replaces the row at index. index may equal the current row
// count, which appends; anything beyond that is a gap and is rejected.
// The existing row's ID is preserved when the replacement carries none.
func (e *Engine) Update(nodeID string, index int, row schema.DataMapping) error {
	rows, err := e.Rows(nodeID)
	if err != nil {
		return err
	}
	if index < 0 || index > len(rows) {
		return schema.NewErrorf(schema.ErrCodeValidation,
			"mapping index %d out of range for %d rows", index, len(rows)).
			WithNode(nodeID)
	}
	if index == len(rows) {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		rows = append(rows, row)
	} else {
		if row.ID == "" {
			row.ID = rows[index].ID
		}
		rows[index] = row
	}
	return e.setRows(nodeID, rows)
}

// Remove deletes the row at index; later rows shift down one position.
func (e *Engine) Remove(nodeID string, index int) error {
	rows, err := e.Rows(nodeID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(rows) {
		return schema.NewErrorf(schema.ErrCodeValidation,
			"mapping index %d out of range for %d rows", index, len(rows)).
			WithNode(nodeID)
	}
	rows = append(rows[:index], rows[index+1:]...)
	return e.setRows(nodeID, rows)
}

// Validate checks one row's required fields. Each missing field yields
// its own message so the UI can attach them per input.
func Validate(row schema.DataMapping) []string {
	var msgs []string
	if strings.TrimSpace(row.SourceNode) == "" {
		msgs = append(msgs, "Source node is required")
	}
	if strings.TrimSpace(row.SourceField) == "" {
		msgs = append(msgs, "Source field is required")
	}
	if strings.TrimSpace(row.TargetField) == "" {
		msgs = append(msgs, "Target field is required")
	}
	return msgs
}

// ValidateAll checks every row on a node, including referential checks
// the per-row Validate cannot do: the source node must exist and be
// upstream of the mapped node, and the transform must be a known kind.
func (e *Engine) ValidateAll(nodeID string) (*schema.ValidationResult, error) {
	rows, err := e.Rows(nodeID)
	if err != nil {
		return nil, err
	}

	upstream := map[string]bool{}
	for _, n := range e.g.UpstreamNodes(nodeID) {
		upstream[n.ID] = true
	}

	result := &schema.ValidationResult{}
	for i, row := range rows {
		path := fmt.Sprintf("nodes.%s.%s[%d]", nodeID, schema.MappingConfigKey, i)
		for _, msg := range Validate(row) {
			result.AddError(path, schema.ErrCodeValidation, msg)
		}
		if row.SourceNode != "" {
			if _, ok := e.g.Node(row.SourceNode); !ok {
				result.AddError(path, schema.ErrCodeValidation,
					fmt.Sprintf("source node %q does not exist", row.SourceNode))
			} else if !upstream[row.SourceNode] {
				result.AddWarning(path, schema.ErrCodeValidation,
					fmt.Sprintf("source node %q is not upstream of %q", row.SourceNode, nodeID))
			}
		}
		if !row.Transform.Known() {
			result.AddError(path, schema.ErrCodeValidation,
				fmt.Sprintf("unknown transform %q", row.Transform))
		}
	}
	return result, nil
}

// Preview evaluates the node's mapping rows against the current output
// data of their source nodes and returns the assembled input object
// keyed by target field. Rows that fail per-row validation are skipped;
// a source field missing from the data maps to nil; a failing transform
// aborts the preview.
func (e *Engine) Preview(nodeID string) (map[string]any, error) {
	rows, err := e.Rows(nodeID)
	if err != nil {
		return nil, err
	}

	out := map[string]any{}
	for _, row := range rows {
		if len(Validate(row)) > 0 {
			continue
		}
		src, ok := e.g.Node(row.SourceNode)
		if !ok {
			continue
		}
		value := fieldValue(src.Data, row.SourceField)
		transformed, err := Transform(value, row.Transform)
		if err != nil {
			return nil, err
		}
		out[row.TargetField] = transformed
	}
	return out, nil
}

// fieldValue walks a dot path into node output data. Array data is read
// through its first element, mirroring how fields were offered for
// selection in the first place.
func fieldValue(data any, path string) any {
	cur := data
	for _, seg := range strings.Split(path, ".") {
		if arr, ok := cur.([]any); ok {
			if len(arr) == 0 {
				return nil
			}
			cur = arr[0]
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// decodeRows tolerates both natively-typed rows (set by this engine)
// and plain-JSON rows (loaded from a persisted definition).
func decodeRows(raw any) ([]schema.DataMapping, error) {
	if raw == nil {
		return []schema.DataMapping{}, nil
	}
	if rows, ok := raw.([]schema.DataMapping); ok {
		return append([]schema.DataMapping{}, rows...), nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeValidation,
			"data_mappings config is not a mapping row list").WithCause(err)
	}
	var rows []schema.DataMapping
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, schema.NewError(schema.ErrCodeValidation,
			"data_mappings config is not a mapping row list").WithCause(err)
	}
	return rows, nil
}

func (e *Engine) setRows(nodeID string, rows []schema.DataMapping) error {
	return e.g.SetConfigValue(nodeID, schema.MappingConfigKey, rows)
}
