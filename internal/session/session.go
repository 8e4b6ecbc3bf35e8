// Package session owns one open workflow editing session: the graph,
// its variables, mapping rows, execution state, and current selection,
// plus persistence and runtime dispatch for that workflow.
package session

import (
	"context"
	"log/slog"

	"github.com/abdsal1508/workflow-app/internal/catalog"
	"github.com/abdsal1508/workflow-app/internal/execution"
	"github.com/abdsal1508/workflow-app/internal/expressions"
	"github.com/abdsal1508/workflow-app/internal/graph"
	"github.com/abdsal1508/workflow-app/internal/logging"
	"github.com/abdsal1508/workflow-app/internal/mapping"
	"github.com/abdsal1508/workflow-app/internal/runtime"
	"github.com/abdsal1508/workflow-app/internal/store"
	"github.com/abdsal1508/workflow-app/internal/validation"
	"github.com/abdsal1508/workflow-app/internal/variables"
	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// Runner dispatches workflow executions to the runtime.
type Runner interface {
	TestRun(ctx context.Context, workflowID string, req schema.RunRequest) (*schema.RunResult, error)
	Deploy(ctx context.Context, workflowID string) error
}

var _ Runner = (*runtime.Client)(nil)

// Session is one workflow open for editing. It is not safe for
// concurrent use; callers serialize access per session.
type Session struct {
	graph    *graph.Graph
	vars     *variables.Store
	mappings *mapping.Engine
	tracker  *execution.Tracker
	engines  map[string]expressions.Engine

	validator *validation.Validator
	store     store.Store
	runner    Runner
	logger    *slog.Logger

	selectedNode string
	selectedConn string
}

// New creates an empty session. cat may be nil to skip node-type
// validation; st and runner may be nil for sessions that never persist
// or dispatch.
func New(cat *catalog.Catalog, st store.Store, runner Runner, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engines, err := expressions.Engines()
	if err != nil {
		return nil, err
	}
	validator, err := validation.NewValidator(cat)
	if err != nil {
		return nil, err
	}

	g := graph.New()
	return &Session{
		graph:     g,
		vars:      variables.NewStore(),
		mappings:  mapping.NewEngine(g),
		tracker:   execution.NewTracker(g, logger),
		engines:   engines,
		validator: validator,
		store:     st,
		runner:    runner,
		logger:    logger,
	}, nil
}

// Graph returns the session's workflow graph.
func (s *Session) Graph() *graph.Graph { return s.graph }

// Variables returns the session's variable store.
func (s *Session) Variables() *variables.Store { return s.vars }

// Mappings returns the mapping engine bound to this session's graph.
func (s *Session) Mappings() *mapping.Engine { return s.mappings }

// --- Selection ---

// SelectNode marks a node as the current selection, replacing any
// selected connection.
func (s *Session) SelectNode(id string) error {
	if _, ok := s.graph.Node(id); !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", id)
	}
	s.selectedNode = id
	s.selectedConn = ""
	return nil
}

// SelectConnection marks a connection as the current selection,
// replacing any selected node.
func (s *Session) SelectConnection(id string) error {
	if _, ok := s.graph.Connection(id); !ok {
		return schema.NewErrorf(schema.ErrCodeNotFound, "connection %q not found", id)
	}
	s.selectedConn = id
	s.selectedNode = ""
	return nil
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.selectedNode = ""
	s.selectedConn = ""
}

// SelectedNode returns the selected node ID, "" if none.
func (s *Session) SelectedNode() string { return s.selectedNode }

// SelectedConnection returns the selected connection ID, "" if none.
func (s *Session) SelectedConnection() string { return s.selectedConn }

// RemoveNode deletes a node through the graph and keeps the selection
// consistent: the removed node, and any connection it anchored, stop
// being selected.
func (s *Session) RemoveNode(id string) error {
	if err := s.graph.RemoveNode(id); err != nil {
		return err
	}
	if s.selectedNode == id {
		s.selectedNode = ""
	}
	if s.selectedConn != "" {
		if _, ok := s.graph.Connection(s.selectedConn); !ok {
			s.selectedConn = ""
		}
	}
	return nil
}

// RemoveConnection deletes a connection and clears its selection.
func (s *Session) RemoveConnection(id string) error {
	if err := s.graph.RemoveConnection(id); err != nil {
		return err
	}
	if s.selectedConn == id {
		s.selectedConn = ""
	}
	return nil
}

// --- Expression support ---

// UpstreamFields returns, per upstream node of nodeID, the dot-path
// fields extractable from that node's current output data. Feeds the
// mapping source-field dropdown.
func (s *Session) UpstreamFields(nodeID string) map[string][]string {
	out := map[string][]string{}
	for _, n := range s.graph.UpstreamNodes(nodeID) {
		if _, seen := out[n.ID]; seen {
			continue
		}
		out[n.ID] = expressions.ExtractFields(n.Data)
	}
	return out
}

// scopeBuilder assembles the resolution scope from the session state:
// variables, every node's output data, and the given input and ambient
// context layers.
func (s *Session) scopeBuilder(input, runCtx map[string]any) *expressions.ScopeBuilder {
	b := expressions.NewScopeBuilder().WithVariables(s.vars.ContextLayer())
	for _, n := range s.graph.Nodes() {
		if n.Data != nil {
			b.WithNodeOutput(n.ID, n.Data)
		}
	}
	return b.WithInput(input).WithContext(runCtx)
}

// ResolveExpression resolves {{path}} placeholders in a template
// against the session's current state.
func (s *Session) ResolveExpression(template string, input map[string]any) string {
	return expressions.Resolve(template, s.scopeBuilder(input, nil).Build())
}

// PreviewCondition evaluates a condition node's expression against the
// session's current state, using the engine its config names.
func (s *Session) PreviewCondition(ctx context.Context, nodeID string, input map[string]any) (any, error) {
	n, ok := s.graph.Node(nodeID)
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "node %q not found", nodeID)
	}

	expression, _ := n.Config["expression"].(string)
	if expression == "" {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"node %q has no expression", nodeID).WithNode(nodeID)
	}
	language, _ := n.Config["language"].(string)
	if language == "" {
		language = expressions.DefaultLanguage
	}
	engine, ok := s.engines[language]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeValidation,
			"unknown expression language %q", language).WithNode(nodeID)
	}

	return engine.Evaluate(ctx, expression, s.scopeBuilder(input, nil).EngineData())
}

// --- Persistence ---

// Definition snapshots the full session state: graph plus variables.
func (s *Session) Definition() schema.WorkflowDefinition {
	def := s.graph.Definition()
	def.Variables = s.vars.List()
	return def
}

// SaveRequest builds the persistence request body for the session.
func (s *Session) SaveRequest() schema.SaveRequest {
	return schema.SaveRequest{
		Name:        s.graph.Name(),
		Description: s.graph.Description(),
		Definition:  s.Definition(),
		Status:      s.graph.Status(),
	}
}

// Validate runs the full validation pipeline over the session state.
func (s *Session) Validate() *schema.ValidationResult {
	def := s.Definition()
	return s.validator.Validate(&def)
}

// Save validates and persists the workflow, creating it on first save.
// The dirty flag clears only on success; the persisted ID is recorded
// on the graph.
func (s *Session) Save(ctx context.Context) (string, error) {
	if s.store == nil {
		return "", schema.NewError(schema.ErrCodeStore, "session has no store")
	}
	if err := s.Validate().ToError(); err != nil {
		return "", err
	}

	wf := &store.Workflow{
		ID:          s.graph.ID(),
		Name:        s.graph.Name(),
		Description: s.graph.Description(),
		Definition:  s.Definition(),
		Status:      s.graph.Status(),
	}

	var err error
	if wf.ID == "" {
		err = s.store.CreateWorkflow(ctx, wf)
	} else {
		err = s.store.UpdateWorkflow(ctx, wf)
	}
	if err != nil {
		return "", err
	}

	s.graph.SetID(wf.ID)
	s.graph.ClearDirty()
	logging.LogWith(logging.WithWorkflowID(ctx, wf.ID), s.logger).
		InfoContext(ctx, "workflow saved", slog.String("name", wf.Name))
	return wf.ID, nil
}

// LoadFrom replaces the session state with a persisted workflow.
// Selection and execution state reset.
func (s *Session) LoadFrom(ctx context.Context, id string) error {
	if s.store == nil {
		return schema.NewError(schema.ErrCodeStore, "session has no store")
	}
	wf, err := s.store.GetWorkflow(ctx, id)
	if err != nil {
		return err
	}

	s.graph.Load(wf.Definition)
	s.graph.SetID(wf.ID)
	s.graph.SetName(wf.Name)
	s.graph.SetDescription(wf.Description)
	s.graph.SetStatus(wf.Status)
	s.graph.ClearDirty()
	s.vars.Load(wf.Definition.Variables)
	s.ClearSelection()
	return nil
}

// --- Execution ---

// TestRun saves any pending changes, dispatches a test execution, and
// merges the results into the graph. Execution state resets first so a
// failed dispatch leaves every node idle rather than stale.
func (s *Session) TestRun(ctx context.Context, input map[string]any) (*schema.RunResult, error) {
	if s.runner == nil {
		return nil, schema.NewError(schema.ErrCodeRuntime, "session has no runtime")
	}
	if s.graph.ID() == "" || s.graph.Dirty() {
		if _, err := s.Save(ctx); err != nil {
			return nil, err
		}
	}

	ctx = logging.WithWorkflowID(ctx, s.graph.ID())
	s.tracker.Reset()

	result, err := s.runner.TestRun(ctx, s.graph.ID(), schema.RunRequest{
		InputData: input,
		TestMode:  true,
	})
	if err != nil {
		return nil, err
	}

	s.tracker.Apply(ctx, result)
	return result, nil
}

// Deploy activates the workflow. The workflow must be saved and not
// already active; on success the active status is persisted.
func (s *Session) Deploy(ctx context.Context) error {
	if s.runner == nil {
		return schema.NewError(schema.ErrCodeRuntime, "session has no runtime")
	}
	if s.graph.Status() == schema.WorkflowStatusActive {
		return schema.NewError(schema.ErrCodeConflict, "workflow is already active")
	}
	if s.graph.ID() == "" || s.graph.Dirty() {
		if _, err := s.Save(ctx); err != nil {
			return err
		}
	}

	ctx = logging.WithWorkflowID(ctx, s.graph.ID())
	if err := s.runner.Deploy(ctx, s.graph.ID()); err != nil {
		return err
	}

	s.graph.SetStatus(schema.WorkflowStatusActive)
	if _, err := s.Save(ctx); err != nil {
		return err
	}
	logging.LogWith(ctx, s.logger).InfoContext(ctx, "workflow deployed")
	return nil
}
