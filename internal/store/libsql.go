package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// LibSQLStore implements Store on libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path. The path
// should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Connection-level PRAGMAs. Some return rows so QueryRow is used.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// CreateWorkflow inserts a new workflow. A missing ID is generated.
func (s *LibSQLStore) CreateWorkflow(ctx context.Context, wf *Workflow) error {
	if wf.ID == "" {
		wf.ID = uuid.NewString()
	}
	if wf.Status == "" {
		wf.Status = schema.WorkflowStatusDraft
	}
	def, err := json.Marshal(wf.Definition)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "marshal definition").WithCause(err)
	}

	now := time.Now().UTC()
	if wf.CreatedAt.IsZero() {
		wf.CreatedAt = now
	}
	wf.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workflows (id, name, description, definition, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		wf.ID, wf.Name, wf.Description, string(def), string(wf.Status), wf.CreatedAt, wf.UpdatedAt,
	)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeStore, "insert workflow %q", wf.ID).WithCause(err)
	}
	return nil
}

// GetWorkflow loads one workflow by ID.
func (s *LibSQLStore) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	wf := &Workflow{}
	var defJSON, status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, definition, status, created_at, updated_at
		 FROM workflows WHERE id = ?`, id,
	).Scan(&wf.ID, &wf.Name, &wf.Description, &defJSON, &status, &wf.CreatedAt, &wf.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "workflow %q not found", id)
	}
	if err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeStore, "load workflow %q", id).WithCause(err)
	}

	wf.Status = schema.WorkflowStatus(status)
	if err := json.Unmarshal([]byte(defJSON), &wf.Definition); err != nil {
		return nil, schema.NewErrorf(schema.ErrCodeStore,
			"workflow %q has a corrupt definition", id).WithCause(err)
	}
	return wf, nil
}

// UpdateWorkflow replaces an existing workflow's record.
func (s *LibSQLStore) UpdateWorkflow(ctx context.Context, wf *Workflow) error {
	def, err := json.Marshal(wf.Definition)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "marshal definition").WithCause(err)
	}
	wf.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE workflows SET name = ?, description = ?, definition = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		wf.Name, wf.Description, string(def), string(wf.Status), wf.UpdatedAt, wf.ID,
	)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeStore, "update workflow %q", wf.ID).WithCause(err)
	}
	return checkRowsAffected(res, wf.ID)
}

// DeleteWorkflow removes a workflow by ID.
func (s *LibSQLStore) DeleteWorkflow(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return schema.NewErrorf(schema.ErrCodeStore, "delete workflow %q", id).WithCause(err)
	}
	return checkRowsAffected(res, id)
}

// ListWorkflows returns all workflows, most recently updated first.
func (s *LibSQLStore) ListWorkflows(ctx context.Context) ([]*Workflow, error) {
	return s.list(ctx,
		`SELECT id, name, description, definition, status, created_at, updated_at
		 FROM workflows ORDER BY updated_at DESC`)
}

// ListWorkflowsByStatus returns workflows in the given status, most
// recently updated first.
func (s *LibSQLStore) ListWorkflowsByStatus(ctx context.Context, status schema.WorkflowStatus) ([]*Workflow, error) {
	return s.list(ctx,
		`SELECT id, name, description, definition, status, created_at, updated_at
		 FROM workflows WHERE status = ? ORDER BY updated_at DESC`, string(status))
}

func (s *LibSQLStore) list(ctx context.Context, query string, args ...any) ([]*Workflow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "list workflows").WithCause(err)
	}
	defer rows.Close()

	var out []*Workflow
	for rows.Next() {
		wf := &Workflow{}
		var defJSON, status string
		if err := rows.Scan(&wf.ID, &wf.Name, &wf.Description, &defJSON, &status,
			&wf.CreatedAt, &wf.UpdatedAt); err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "scan workflow row").WithCause(err)
		}
		wf.Status = schema.WorkflowStatus(status)
		if err := json.Unmarshal([]byte(defJSON), &wf.Definition); err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeStore,
				"workflow %q has a corrupt definition", wf.ID).WithCause(err)
		}
		out = append(out, wf)
	}
	return out, rows.Err()
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "rows affected").WithCause(err)
	}
	if n == 0 {
		return schema.NewErrorf(schema.ErrCodeNotFound, "workflow %q not found", id)
	}
	return nil
}

var _ Store = (*LibSQLStore)(nil)
