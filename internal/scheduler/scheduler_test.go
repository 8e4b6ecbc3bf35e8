package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdsal1508/workflow-app/internal/store"
	"github.com/abdsal1508/workflow-app/pkg/schema"
)

type fixedStore struct {
	workflows []*store.Workflow
}

func (f *fixedStore) CreateWorkflow(context.Context, *store.Workflow) error { return nil }
func (f *fixedStore) GetWorkflow(context.Context, string) (*store.Workflow, error) {
	return nil, schema.NewError(schema.ErrCodeNotFound, "not found")
}
func (f *fixedStore) UpdateWorkflow(context.Context, *store.Workflow) error { return nil }
func (f *fixedStore) DeleteWorkflow(context.Context, string) error          { return nil }
func (f *fixedStore) ListWorkflows(context.Context) ([]*store.Workflow, error) {
	return f.workflows, nil
}
func (f *fixedStore) ListWorkflowsByStatus(_ context.Context, status schema.WorkflowStatus) ([]*store.Workflow, error) {
	var out []*store.Workflow
	for _, wf := range f.workflows {
		if wf.Status == status {
			out = append(out, wf)
		}
	}
	return out, nil
}
func (f *fixedStore) Close() error { return nil }

type countingDispatcher struct {
	runs []string
}

func (d *countingDispatcher) TestRun(_ context.Context, workflowID string, _ schema.RunRequest) (*schema.RunResult, error) {
	d.runs = append(d.runs, workflowID)
	return &schema.RunResult{}, nil
}

func scheduledWorkflow(id, expr string, status schema.WorkflowStatus) *store.Workflow {
	return &store.Workflow{
		ID:     id,
		Name:   id,
		Status: status,
		Definition: schema.WorkflowDefinition{
			Nodes: []schema.Node{{
				ID:     "node_t",
				Type:   "manual_trigger",
				Config: map[string]any{"schedule": expr},
				Status: schema.NodeStatusIdle,
			}},
			Connections: []schema.Connection{},
		},
	}
}

func TestTick_DispatchesWhenDue(t *testing.T) {
	st := &fixedStore{workflows: []*store.Workflow{
		scheduledWorkflow("wf-1", "*/5 * * * *", schema.WorkflowStatusActive),
	}}
	d := &countingDispatcher{}
	s := New(st, d, time.Minute, nil)

	base := time.Date(2026, 9, 1, 12, 0, 30, 0, time.UTC)

	// First sighting only schedules; nothing fires retroactively.
	s.Tick(context.Background(), base)
	assert.Empty(t, d.runs)

	// Before the next five-minute boundary: still nothing.
	s.Tick(context.Background(), base.Add(time.Minute))
	assert.Empty(t, d.runs)

	// Past the boundary: exactly one dispatch.
	s.Tick(context.Background(), base.Add(5*time.Minute))
	require.Equal(t, []string{"wf-1"}, d.runs)

	// Same window again: no duplicate.
	s.Tick(context.Background(), base.Add(5*time.Minute+time.Second))
	assert.Len(t, d.runs, 1)
}

func TestTick_IgnoresDraftsAndUnscheduled(t *testing.T) {
	noSchedule := scheduledWorkflow("wf-plain", "", schema.WorkflowStatusActive)
	delete(noSchedule.Definition.Nodes[0].Config, "schedule")

	st := &fixedStore{workflows: []*store.Workflow{
		scheduledWorkflow("wf-draft", "* * * * *", schema.WorkflowStatusDraft),
		noSchedule,
	}}
	d := &countingDispatcher{}
	s := New(st, d, time.Minute, nil)

	base := time.Now().UTC()
	s.Tick(context.Background(), base)
	s.Tick(context.Background(), base.Add(2*time.Minute))
	assert.Empty(t, d.runs)
}

func TestTick_InvalidCronLogged(t *testing.T) {
	st := &fixedStore{workflows: []*store.Workflow{
		scheduledWorkflow("wf-bad", "not a cron", schema.WorkflowStatusActive),
	}}
	d := &countingDispatcher{}
	s := New(st, d, time.Minute, nil)

	s.Tick(context.Background(), time.Now().UTC())
	s.Tick(context.Background(), time.Now().UTC().Add(time.Hour))
	assert.Empty(t, d.runs)
}

func TestTick_ForgetsDeactivatedWorkflows(t *testing.T) {
	wf := scheduledWorkflow("wf-1", "* * * * *", schema.WorkflowStatusActive)
	st := &fixedStore{workflows: []*store.Workflow{wf}}
	d := &countingDispatcher{}
	s := New(st, d, time.Minute, nil)

	base := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s.Tick(context.Background(), base)
	wf.Status = schema.WorkflowStatusDraft
	s.Tick(context.Background(), base.Add(time.Minute))

	s.nextMu.Lock()
	_, tracked := s.nextRun["wf-1"]
	s.nextMu.Unlock()
	assert.False(t, tracked)
}

func TestStartStop(t *testing.T) {
	st := &fixedStore{}
	s := New(st, &countingDispatcher{}, time.Hour, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestTriggerSchedule(t *testing.T) {
	def := scheduledWorkflow("wf", "0 9 * * 1", schema.WorkflowStatusActive).Definition
	assert.Equal(t, "0 9 * * 1", triggerSchedule(&def))

	def.Nodes[0].Type = "email_send"
	assert.Empty(t, triggerSchedule(&def))
}
