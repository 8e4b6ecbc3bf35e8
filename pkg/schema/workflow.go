package schema

// NodeStatus is a node's last known execution state.
type NodeStatus string

const (
	NodeStatusIdle    NodeStatus = "idle"
	NodeStatusRunning NodeStatus = "running"
	NodeStatusSuccess NodeStatus = "success"
	NodeStatusFailed  NodeStatus = "failed"
)

// WorkflowStatus is the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft  WorkflowStatus = "draft"
	WorkflowStatusActive WorkflowStatus = "active"
)

// Handle names on a node. Every node exposes exactly one of each.
const (
	HandleOutput = "output"
	HandleInput  = "input"
)

// Position is a node's canvas coordinate. The core carries it through
// persistence untouched; layout itself is the UI's concern.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a unit of work in the workflow graph.
// Config holds form-edited settings keyed by field name; the reserved
// MappingConfigKey entry holds the node's data mapping rows.
// Data and Status are written only by the execution-result merge.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Position Position       `json:"position"`
	Config   map[string]any `json:"config"`
	Data     any            `json:"data,omitempty"`
	Status   NodeStatus     `json:"status"`
}

// MappingConfigKey is the reserved node config key under which the
// node's DataMapping rows are stored.
const MappingConfigKey = "data_mappings"

// Connection is a directed edge from one node's output to another's input.
type Connection struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle"`
}

// TransformKind enumerates the value transforms a mapping row may apply.
// The empty kind is the identity.
type TransformKind string

const (
	TransformNone       TransformKind = ""
	TransformUpper      TransformKind = "upper"
	TransformLower      TransformKind = "lower"
	TransformTrim       TransformKind = "trim"
	TransformInt        TransformKind = "int"
	TransformFloat      TransformKind = "float"
	TransformBool       TransformKind = "bool"
	TransformJSON       TransformKind = "json"
	TransformDateFormat TransformKind = "date_format"
)

// TransformKinds lists every known transform, identity first.
var TransformKinds = []TransformKind{
	TransformNone, TransformUpper, TransformLower, TransformTrim,
	TransformInt, TransformFloat, TransformBool, TransformJSON,
	TransformDateFormat,
}

// Known reports whether k names a declared transform.
func (k TransformKind) Known() bool {
	for _, t := range TransformKinds {
		if t == k {
			return true
		}
	}
	return false
}

// DataMapping is one declared rule copying a field from an upstream node's
// output into the owning node's input. Rows are ordered and addressed by
// position; ID is a stable identifier assigned on append so callers can
// re-derive a row's index after removals shift positions.
type DataMapping struct {
	ID          string        `json:"id,omitempty"`
	SourceNode  string        `json:"sourceNode"`
	SourceField string        `json:"sourceField"`
	Transform   TransformKind `json:"transform,omitempty"`
	TargetField string        `json:"targetField"`
}

// VariableType enumerates the declared types of workflow variables.
type VariableType string

const (
	VariableString  VariableType = "string"
	VariableNumber  VariableType = "number"
	VariableBoolean VariableType = "boolean"
	VariableJSON    VariableType = "json"
)

// ScopeWorkflow is the only variable scope the editor currently supports.
const ScopeWorkflow = "workflow"

// SecretMask is what secret variable values render as. The real value is
// never shown but still resolves in expression evaluation.
const SecretMask = "***"

// Variable is a named workflow-scoped value usable in expressions as
// {{variables.<name>}}.
type Variable struct {
	Name        string       `json:"name"`
	Value       string       `json:"value"`
	Type        VariableType `json:"type"`
	Description string       `json:"description,omitempty"`
	IsSecret    bool         `json:"isSecret"`
	Scope       string       `json:"scope"`
}

// WorkflowDefinition is the JSON-serializable graph snapshot exchanged
// with the persistence backend.
type WorkflowDefinition struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
	Variables   []Variable   `json:"variables,omitempty"`
}

// SaveRequest is the persistence request body for create and update.
// The response must echo an "id".
type SaveRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Definition  WorkflowDefinition `json:"definition"`
	Status      WorkflowStatus     `json:"status"`
}

// SaveResponse echoes the persisted workflow's identity.
type SaveResponse struct {
	ID string `json:"id"`
}
