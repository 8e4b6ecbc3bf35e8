// Package graph holds the mutable workflow model the editor operates on:
// nodes, directed connections, adjacency queries, and dirty tracking.
// It is the single source of truth during an editing session; all reads
// reflect the latest mutation. The graph is not safe for concurrent use —
// callers with multiple goroutines must serialize mutations (the session
// owns exactly one graph and edits it from one logical thread).
package graph

import (
	"github.com/google/uuid"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// Graph is the workflow aggregate: nodes, connections, and identity
// metadata, edited in place as a single mutable snapshot.
type Graph struct {
	id          string
	name        string
	description string
	status      schema.WorkflowStatus

	nodes     map[string]*schema.Node
	nodeOrder []string

	connections map[string]*schema.Connection
	// connOrder preserves connection insertion order; upstream/downstream
	// queries report neighbors in this order, duplicates included.
	connOrder []string

	dirty bool
}

// New creates an empty draft workflow graph.
func New() *Graph {
	return &Graph{
		status:      schema.WorkflowStatusDraft,
		nodes:       make(map[string]*schema.Node),
		connections: make(map[string]*schema.Connection),
	}
}

// --- Identity and lifecycle ---

func (g *Graph) ID() string          { return g.id }
func (g *Graph) Name() string        { return g.name }
func (g *Graph) Description() string { return g.description }

func (g *Graph) Status() schema.WorkflowStatus { return g.status }

// SetID records the persisted identity echoed back by the backend.
// It does not mark the graph dirty.
func (g *Graph) SetID(id string) { g.id = id }

func (g *Graph) SetName(name string) {
	g.name = name
	g.MarkDirty()
}

func (g *Graph) SetDescription(desc string) {
	g.description = desc
	g.MarkDirty()
}

func (g *Graph) SetStatus(status schema.WorkflowStatus) { g.status = status }

// Dirty reports whether the graph has unsaved mutations.
func (g *Graph) Dirty() bool { return g.dirty }

// MarkDirty flags the graph as having unsaved changes.
func (g *Graph) MarkDirty() { g.dirty = true }

// ClearDirty is called only after successful persistence.
func (g *Graph) ClearDirty() { g.dirty = false }

// --- Node operations ---

// AddNode creates a node of the given type at the given position and
// returns its ID. name is the initial display name (typically the node
// type's display name).
func (g *Graph) AddNode(nodeType, name string, pos schema.Position) string {
	id := "node_" + uuid.NewString()
	g.nodes[id] = &schema.Node{
		ID:       id,
		Type:     nodeType,
		Name:     name,
		Position: pos,
		Config:   map[string]any{},
		Status:   schema.NodeStatusIdle,
	}
	g.nodeOrder = append(g.nodeOrder, id)
	g.MarkDirty()
	return id
}

// RemoveNode deletes a node and cascades removal of every connection
// that references it as source or target.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", id)
	}

	delete(g.nodes, id)
	g.nodeOrder = removeString(g.nodeOrder, id)

	for _, connID := range g.connOrder {
		conn := g.connections[connID]
		if conn.Source == id || conn.Target == id {
			delete(g.connections, connID)
		}
	}
	g.connOrder = g.compactConnOrder()

	g.MarkDirty()
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*schema.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*schema.Node {
	out := make([]*schema.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	return out
}

// SetNodeName renames a node.
func (g *Graph) SetNodeName(id, name string) error {
	n, ok := g.nodes[id]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", id)
	}
	n.Name = name
	g.MarkDirty()
	return nil
}

// SetNodePosition moves a node on the canvas.
func (g *Graph) SetNodePosition(id string, pos schema.Position) error {
	n, ok := g.nodes[id]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", id)
	}
	n.Position = pos
	g.MarkDirty()
	return nil
}

// SetConfigValue writes one config field on a node.
func (g *Graph) SetConfigValue(id, key string, value any) error {
	n, ok := g.nodes[id]
	if !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", id)
	}
	if n.Config == nil {
		n.Config = map[string]any{}
	}
	n.Config[key] = value
	g.MarkDirty()
	return nil
}

// --- Connection operations ---

// AddConnection creates a directed edge from source's output handle to
// target's input handle and returns its ID. It fails with
// INVALID_CONNECTION if either endpoint is missing and with
// CYCLIC_CONNECTION if the edge would close a cycle; in both cases the
// graph is unchanged.
func (g *Graph) AddConnection(source, target string) (string, error) {
	if _, ok := g.nodes[source]; !ok {
		return "", schema.NewErrorf(schema.ErrCodeInvalidConnection,
			"source node %q not found", source)
	}
	if _, ok := g.nodes[target]; !ok {
		return "", schema.NewErrorf(schema.ErrCodeInvalidConnection,
			"target node %q not found", target)
	}
	if source == target || g.reaches(target, source) {
		return "", schema.NewErrorf(schema.ErrCodeCyclicConnection,
			"connection %s -> %s would create a cycle", source, target).
			WithDetails(map[string]any{"source": source, "target": target})
	}

	id := "conn_" + uuid.NewString()
	g.connections[id] = &schema.Connection{
		ID:           id,
		Source:       source,
		SourceHandle: schema.HandleOutput,
		Target:       target,
		TargetHandle: schema.HandleInput,
	}
	g.connOrder = append(g.connOrder, id)
	g.MarkDirty()
	return id, nil
}

// RemoveConnection deletes a connection by ID.
func (g *Graph) RemoveConnection(id string) error {
	if _, ok := g.connections[id]; !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "connection %q not found", id)
	}
	delete(g.connections, id)
	g.connOrder = removeString(g.connOrder, id)
	g.MarkDirty()
	return nil
}

// Connection returns the connection with the given ID.
func (g *Graph) Connection(id string) (*schema.Connection, bool) {
	c, ok := g.connections[id]
	return c, ok
}

// Connections returns all connections in insertion order.
func (g *Graph) Connections() []*schema.Connection {
	out := make([]*schema.Connection, 0, len(g.connOrder))
	for _, id := range g.connOrder {
		out = append(out, g.connections[id])
	}
	return out
}

// UpstreamNodes returns every node with a connection into nodeID, in
// connection insertion order. A node appears once per connection, so
// duplicates are possible.
func (g *Graph) UpstreamNodes(nodeID string) []*schema.Node {
	var out []*schema.Node
	for _, connID := range g.connOrder {
		conn := g.connections[connID]
		if conn.Target == nodeID {
			if n, ok := g.nodes[conn.Source]; ok {
				out = append(out, n)
			}
		}
	}
	return out
}

// DownstreamNodes returns every node nodeID connects into, in connection
// insertion order, duplicates possible.
func (g *Graph) DownstreamNodes(nodeID string) []*schema.Node {
	var out []*schema.Node
	for _, connID := range g.connOrder {
		conn := g.connections[connID]
		if conn.Source == nodeID {
			if n, ok := g.nodes[conn.Target]; ok {
				out = append(out, n)
			}
		}
	}
	return out
}

// reaches reports whether to is reachable from from by following
// connections forward. Used to reject cycle-closing edges.
func (g *Graph) reaches(from, to string) bool {
	visited := map[string]bool{from: true}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, conn := range g.connections {
			if conn.Source != cur {
				continue
			}
			if conn.Target == to {
				return true
			}
			if !visited[conn.Target] {
				visited[conn.Target] = true
				stack = append(stack, conn.Target)
			}
		}
	}
	return false
}

// --- Snapshot / load ---

// Definition returns a serializable snapshot of the graph, nodes and
// connections in insertion order. Variables are merged in by the session.
func (g *Graph) Definition() schema.WorkflowDefinition {
	def := schema.WorkflowDefinition{
		Nodes:       make([]schema.Node, 0, len(g.nodeOrder)),
		Connections: make([]schema.Connection, 0, len(g.connOrder)),
	}
	for _, id := range g.nodeOrder {
		def.Nodes = append(def.Nodes, *g.nodes[id])
	}
	for _, id := range g.connOrder {
		def.Connections = append(def.Connections, *g.connections[id])
	}
	return def
}

// Load replaces the graph's contents with a persisted definition.
// Loaded state starts clean.
func (g *Graph) Load(def schema.WorkflowDefinition) {
	g.nodes = make(map[string]*schema.Node, len(def.Nodes))
	g.nodeOrder = g.nodeOrder[:0]
	for i := range def.Nodes {
		n := def.Nodes[i]
		if n.Config == nil {
			n.Config = map[string]any{}
		}
		if n.Status == "" {
			n.Status = schema.NodeStatusIdle
		}
		g.nodes[n.ID] = &n
		g.nodeOrder = append(g.nodeOrder, n.ID)
	}

	g.connections = make(map[string]*schema.Connection, len(def.Connections))
	g.connOrder = g.connOrder[:0]
	for i := range def.Connections {
		c := def.Connections[i]
		g.connections[c.ID] = &c
		g.connOrder = append(g.connOrder, c.ID)
	}

	g.dirty = false
}

// Clear removes every node and connection.
func (g *Graph) Clear() {
	g.nodes = make(map[string]*schema.Node)
	g.nodeOrder = nil
	g.connections = make(map[string]*schema.Connection)
	g.connOrder = nil
	g.MarkDirty()
}

func (g *Graph) compactConnOrder() []string {
	out := g.connOrder[:0]
	for _, id := range g.connOrder {
		if _, ok := g.connections[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
