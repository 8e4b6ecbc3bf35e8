package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

func newTestStore(t *testing.T) *LibSQLStore {
	t.Helper()
	dbPath := "file:" + filepath.Join(t.TempDir(), "test.db")
	s, err := NewLibSQLStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleDefinition() schema.WorkflowDefinition {
	return schema.WorkflowDefinition{
		Nodes: []schema.Node{
			{ID: "node_a", Type: "manual_trigger", Name: "Start",
				Config: map[string]any{}, Status: schema.NodeStatusIdle},
			{ID: "node_b", Type: "email_send", Name: "Notify",
				Config: map[string]any{"to": "ops@example.com"}, Status: schema.NodeStatusIdle},
		},
		Connections: []schema.Connection{
			{ID: "conn_1", Source: "node_a", SourceHandle: schema.HandleOutput,
				Target: "node_b", TargetHandle: schema.HandleInput},
		},
		Variables: []schema.Variable{
			{Name: "greeting", Value: "hello", Type: schema.VariableString, Scope: schema.ScopeWorkflow},
		},
	}
}

func TestCreateAndGetWorkflow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wf := &Workflow{Name: "Onboarding", Description: "greets new users", Definition: sampleDefinition()}
	require.NoError(t, s.CreateWorkflow(ctx, wf))
	assert.NotEmpty(t, wf.ID)
	assert.Equal(t, schema.WorkflowStatusDraft, wf.Status)

	loaded, err := s.GetWorkflow(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "Onboarding", loaded.Name)
	assert.Equal(t, "greets new users", loaded.Description)
	require.Len(t, loaded.Definition.Nodes, 2)
	assert.Equal(t, "node_a", loaded.Definition.Nodes[0].ID)
	require.Len(t, loaded.Definition.Connections, 1)
	require.Len(t, loaded.Definition.Variables, 1)
	assert.Equal(t, "greeting", loaded.Definition.Variables[0].Name)
}

func TestGetWorkflow_Missing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetWorkflow(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, schema.IsCode(err, schema.ErrCodeNotFound))
}

func TestUpdateWorkflow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wf := &Workflow{Name: "v1", Definition: sampleDefinition()}
	require.NoError(t, s.CreateWorkflow(ctx, wf))

	wf.Name = "v2"
	wf.Status = schema.WorkflowStatusActive
	require.NoError(t, s.UpdateWorkflow(ctx, wf))

	loaded, err := s.GetWorkflow(ctx, wf.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", loaded.Name)
	assert.Equal(t, schema.WorkflowStatusActive, loaded.Status)
}

func TestUpdateWorkflow_Missing(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateWorkflow(context.Background(), &Workflow{ID: "ghost"})
	require.Error(t, err)
	assert.True(t, schema.IsCode(err, schema.ErrCodeNotFound))
}

func TestDeleteWorkflow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	wf := &Workflow{Name: "doomed", Definition: sampleDefinition()}
	require.NoError(t, s.CreateWorkflow(ctx, wf))
	require.NoError(t, s.DeleteWorkflow(ctx, wf.ID))

	_, err := s.GetWorkflow(ctx, wf.ID)
	assert.True(t, schema.IsCode(err, schema.ErrCodeNotFound))

	err = s.DeleteWorkflow(ctx, wf.ID)
	assert.True(t, schema.IsCode(err, schema.ErrCodeNotFound))
}

func TestListWorkflowsByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	draft := &Workflow{Name: "draft-wf", Definition: sampleDefinition()}
	require.NoError(t, s.CreateWorkflow(ctx, draft))
	active := &Workflow{Name: "active-wf", Status: schema.WorkflowStatusActive, Definition: sampleDefinition()}
	require.NoError(t, s.CreateWorkflow(ctx, active))

	all, err := s.ListWorkflows(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	actives, err := s.ListWorkflowsByStatus(ctx, schema.WorkflowStatusActive)
	require.NoError(t, err)
	require.Len(t, actives, 1)
	assert.Equal(t, "active-wf", actives[0].Name)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}
