package expressions

import "encoding/json"

// ScopeBuilder assembles the flattened resolution context from up to four
// named layers, each addressable by a placeholder path's leading segment:
//
//	variables.<name>        workflow variables (real values, secrets included)
//	<nodeId>.data[.<field>] a node's last execution output
//	input.<field>           external run input
//	context.<field>         external ambient context
//
// Node outputs are frozen (deep-copied) when registered so later graph
// mutations cannot leak into a scope already handed to the resolver.
type ScopeBuilder struct {
	variables map[string]any
	nodes     map[string]any // node ID -> {"data": output}
	input     map[string]any
	ambient   map[string]any
}

// NewScopeBuilder creates an empty ScopeBuilder.
func NewScopeBuilder() *ScopeBuilder {
	return &ScopeBuilder{nodes: make(map[string]any)}
}

// WithVariables sets the variables layer: name -> typed value.
func (b *ScopeBuilder) WithVariables(vars map[string]any) *ScopeBuilder {
	b.variables = deepCopyMap(vars)
	return b
}

// WithNodeOutput registers a node's last execution output, addressable as
// {{<nodeId>.data}} and {{<nodeId>.data.<field>}}. A nil output still
// claims the node ID so {{id.data}} resolves to null rather than literal.
func (b *ScopeBuilder) WithNodeOutput(nodeID string, output any) *ScopeBuilder {
	b.nodes[nodeID] = map[string]any{"data": deepCopyAny(output)}
	return b
}

// WithInput sets the external run input layer.
func (b *ScopeBuilder) WithInput(input map[string]any) *ScopeBuilder {
	b.input = deepCopyMap(input)
	return b
}

// WithContext sets the ambient context layer.
func (b *ScopeBuilder) WithContext(ambient map[string]any) *ScopeBuilder {
	b.ambient = deepCopyMap(ambient)
	return b
}

// Build flattens the layers into the single mapping Resolve walks.
// Node IDs sit at the top level beside the named layers; a node whose ID
// collides with a reserved layer name loses to the layer.
func (b *ScopeBuilder) Build() map[string]any {
	flat := make(map[string]any, len(b.nodes)+3)
	for id, entry := range b.nodes {
		flat[id] = entry
	}
	if b.variables != nil {
		flat["variables"] = b.variables
	}
	if b.input != nil {
		flat["input"] = b.input
	}
	if b.ambient != nil {
		flat["context"] = b.ambient
	}
	return flat
}

// EngineData shapes the same layers for the condition-expression engines,
// which expose them as top-level variables rather than a flat path space.
func (b *ScopeBuilder) EngineData() map[string]any {
	nodes := make(map[string]any, len(b.nodes))
	for id, entry := range b.nodes {
		if m, ok := entry.(map[string]any); ok {
			nodes[id] = m["data"]
		}
	}
	return map[string]any{
		"variables": orEmpty(b.variables),
		"nodes":     nodes,
		"input":     orEmpty(b.input),
		"context":   orEmpty(b.ambient),
	}
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// --- Deep copy utilities ---

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = deepCopyAny(v)
	}
	return cp
}

// deepCopyAny recursively copies maps and slices; primitives are value
// types and pass through.
func deepCopyAny(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cp := make([]any, len(val))
		for i, item := range val {
			cp[i] = deepCopyAny(item)
		}
		return cp
	case json.RawMessage:
		if val == nil {
			return nil
		}
		cp := make(json.RawMessage, len(val))
		copy(cp, val)
		return cp
	default:
		return v
	}
}
