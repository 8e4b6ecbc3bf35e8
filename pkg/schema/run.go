package schema

// RunRequest is the body of a test-run dispatch to the external runtime.
type RunRequest struct {
	InputData map[string]any `json:"input_data"`
	TestMode  bool           `json:"test_mode"`
}

// NodeExecution is the runtime's report for a single node.
type NodeExecution struct {
	NodeID     string     `json:"node_id"`
	Status     NodeStatus `json:"status"`
	OutputData any        `json:"output_data,omitempty"`
	DurationMs int64      `json:"duration_ms,omitempty"`
	NodeName   string     `json:"node_name,omitempty"`
}

// RunResult is the runtime's response to a test-run request. Nodes absent
// from the list (unreached due to upstream failure) keep their reset state.
type RunResult struct {
	NodeExecutions []NodeExecution `json:"node_executions"`
}
