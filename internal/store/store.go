// Package store persists workflows in an embedded libSQL database.
package store

import (
	"context"
	"time"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// Workflow is the persisted record: identity, metadata, and the full
// definition snapshot.
type Workflow struct {
	ID          string
	Name        string
	Description string
	Definition  schema.WorkflowDefinition
	Status      schema.WorkflowStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store is the persistence interface for workflows.
type Store interface {
	CreateWorkflow(ctx context.Context, wf *Workflow) error
	GetWorkflow(ctx context.Context, id string) (*Workflow, error)
	UpdateWorkflow(ctx context.Context, wf *Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
	ListWorkflows(ctx context.Context) ([]*Workflow, error)
	ListWorkflowsByStatus(ctx context.Context, status schema.WorkflowStatus) ([]*Workflow, error)
	Close() error
}
