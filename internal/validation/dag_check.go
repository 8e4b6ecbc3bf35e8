package validation

import (
	"fmt"
	"sort"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// checkDAG runs cycle detection (Kahn's algorithm) and reachability
// analysis over the connection graph. Authoring rejects cycle-closing
// edges, but a definition loaded from storage or an external client
// can still carry one.
func checkDAG(def *schema.WorkflowDefinition) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	nodeIDs := make(map[string]bool, len(def.Nodes))
	for _, n := range def.Nodes {
		nodeIDs[n.ID] = true
	}

	// forward[src] = targets, inDegree counts incoming edges per node.
	forward := make(map[string][]string, len(def.Nodes))
	inDegree := make(map[string]int, len(def.Nodes))
	for id := range nodeIDs {
		inDegree[id] = 0
	}
	for _, c := range def.Connections {
		if !nodeIDs[c.Source] || !nodeIDs[c.Target] {
			continue // dangling refs already caught by semantic checks
		}
		forward[c.Source] = append(forward[c.Source], c.Target)
		inDegree[c.Target]++
	}

	queue := make([]string, 0, len(nodeIDs))
	for id, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, id)
		}
	}
	// Sort roots for deterministic order.
	sort.Strings(queue)

	visited := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range forward[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited != len(nodeIDs) {
		result.AddError("connections", schema.ErrCodeCyclicConnection,
			"workflow contains a connection cycle")
		return result // cycle makes isolation analysis meaningless
	}

	// Isolated nodes in a connected workflow are usually editor debris.
	if len(def.Connections) > 0 {
		connected := make(map[string]bool, len(nodeIDs))
		for _, c := range def.Connections {
			connected[c.Source] = true
			connected[c.Target] = true
		}
		for _, n := range def.Nodes {
			if !connected[n.ID] {
				result.AddWarning(fmt.Sprintf("nodes[%s]", n.ID),
					schema.ErrCodeValidation,
					fmt.Sprintf("node %q has no connections", n.ID))
			}
		}
	}

	return result
}
