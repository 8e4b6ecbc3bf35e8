package validation

import (
	"encoding/json"
	"fmt"

	"github.com/abdsal1508/workflow-app/internal/catalog"
	"github.com/abdsal1508/workflow-app/internal/expressions"
	"github.com/abdsal1508/workflow-app/internal/mapping"
	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// checkSemantics validates everything JSON Schema cannot express:
// duplicate IDs, connection endpoint references, mapping rows, and
// condition expressions. cat may be nil, which skips node-type checks.
func checkSemantics(def *schema.WorkflowDefinition, cat *catalog.Catalog, engines map[string]expressions.Engine) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	nodeIDs := make(map[string]bool, len(def.Nodes))
	for i, n := range def.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if nodeIDs[n.ID] {
			result.AddError(path, schema.ErrCodeValidation,
				fmt.Sprintf("duplicate node id %q", n.ID))
			continue
		}
		nodeIDs[n.ID] = true

		if cat != nil {
			if _, ok := cat.Lookup(n.Type); !ok {
				result.AddWarning(path, schema.ErrCodeValidation,
					fmt.Sprintf("node %q has unknown type %q", n.ID, n.Type))
			}
		}
	}

	connIDs := make(map[string]bool, len(def.Connections))
	for i, c := range def.Connections {
		path := fmt.Sprintf("connections[%d]", i)
		if connIDs[c.ID] {
			result.AddError(path, schema.ErrCodeValidation,
				fmt.Sprintf("duplicate connection id %q", c.ID))
		}
		connIDs[c.ID] = true

		if !nodeIDs[c.Source] {
			result.AddError(path, schema.ErrCodeInvalidConnection,
				fmt.Sprintf("connection %q references missing source node %q", c.ID, c.Source))
		}
		if !nodeIDs[c.Target] {
			result.AddError(path, schema.ErrCodeInvalidConnection,
				fmt.Sprintf("connection %q references missing target node %q", c.ID, c.Target))
		}
	}

	for _, n := range def.Nodes {
		result.Merge(checkMappingRows(&n, nodeIDs))
		if n.Type == "condition" {
			result.Merge(checkCondition(&n, engines))
		}
	}

	return result
}

// checkMappingRows validates a node's data_mappings config entry.
func checkMappingRows(n *schema.Node, nodeIDs map[string]bool) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	raw, ok := n.Config[schema.MappingConfigKey]
	if !ok || raw == nil {
		return result
	}

	rows, err := decodeMappingRows(raw)
	if err != nil {
		result.AddError(fmt.Sprintf("nodes.%s.%s", n.ID, schema.MappingConfigKey),
			schema.ErrCodeValidation, "data_mappings config is not a mapping row list")
		return result
	}

	for i, row := range rows {
		path := fmt.Sprintf("nodes.%s.%s[%d]", n.ID, schema.MappingConfigKey, i)
		for _, msg := range mapping.Validate(row) {
			result.AddError(path, schema.ErrCodeValidation, msg)
		}
		if row.SourceNode != "" && !nodeIDs[row.SourceNode] {
			result.AddError(path, schema.ErrCodeValidation,
				fmt.Sprintf("source node %q does not exist", row.SourceNode))
		}
		if !row.Transform.Known() {
			result.AddError(path, schema.ErrCodeValidation,
				fmt.Sprintf("unknown transform %q", row.Transform))
		}
	}
	return result
}

// checkCondition compiles a condition node's expression without
// evaluating it.
func checkCondition(n *schema.Node, engines map[string]expressions.Engine) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	path := fmt.Sprintf("nodes.%s", n.ID)

	expression, _ := n.Config["expression"].(string)
	if expression == "" {
		result.AddError(path, schema.ErrCodeValidation,
			fmt.Sprintf("condition node %q has no expression", n.ID))
		return result
	}

	language, _ := n.Config["language"].(string)
	if language == "" {
		language = expressions.DefaultLanguage
	}
	engine, ok := engines[language]
	if !ok {
		result.AddError(path, schema.ErrCodeValidation,
			fmt.Sprintf("condition node %q uses unknown language %q", n.ID, language))
		return result
	}

	if err := engine.Compile(expression); err != nil {
		result.AddError(path, schema.ErrCodeValidation,
			fmt.Sprintf("condition node %q: %s", n.ID, err.Error()))
	}
	return result
}

func decodeMappingRows(raw any) ([]schema.DataMapping, error) {
	if rows, ok := raw.([]schema.DataMapping); ok {
		return rows, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var rows []schema.DataMapping
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
