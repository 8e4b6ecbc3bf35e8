// Package execution merges runtime test-run results back into the graph:
// per-node status and output data, reset before every run.
package execution

import (
	"context"
	"log/slog"

	"github.com/abdsal1508/workflow-app/internal/graph"
	"github.com/abdsal1508/workflow-app/internal/logging"
	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// ValidTransitions maps each node status to the statuses it may move to.
// Reset bypasses the table; it forces every node back to idle.
var ValidTransitions = map[schema.NodeStatus][]schema.NodeStatus{
	schema.NodeStatusIdle:    {schema.NodeStatusRunning, schema.NodeStatusSuccess, schema.NodeStatusFailed},
	schema.NodeStatusRunning: {schema.NodeStatusSuccess, schema.NodeStatusFailed},
	schema.NodeStatusSuccess: {schema.NodeStatusIdle, schema.NodeStatusRunning},
	schema.NodeStatusFailed:  {schema.NodeStatusIdle, schema.NodeStatusRunning},
}

// CanTransition reports whether a node may move from one status to another.
func CanTransition(from, to schema.NodeStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range ValidTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Tracker applies execution results to the nodes of one graph.
type Tracker struct {
	g      *graph.Graph
	logger *slog.Logger
}

// NewTracker creates a tracker over a graph.
func NewTracker(g *graph.Graph, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{g: g, logger: logger}
}

// Reset returns every node to idle with no output data. Called before
// each test run so stale results never bleed into the next one.
func (t *Tracker) Reset() {
	for _, n := range t.g.Nodes() {
		n.Status = schema.NodeStatusIdle
		n.Data = nil
	}
}

// Apply merges a run result into the graph by node ID. Executions
// naming unknown nodes are skipped with a log line; the runtime may
// report nodes removed from the graph since the run was dispatched.
// Nodes absent from the result keep whatever state they had.
func (t *Tracker) Apply(ctx context.Context, result *schema.RunResult) {
	if result == nil {
		return
	}
	for _, exec := range result.NodeExecutions {
		n, ok := t.g.Node(exec.NodeID)
		if !ok {
			logging.LogWith(ctx, t.logger).WarnContext(ctx,
				"execution result for unknown node skipped",
				slog.String("result_node_id", exec.NodeID))
			continue
		}
		if exec.Status != "" {
			n.Status = exec.Status
		}
		n.Data = exec.OutputData
	}
}
