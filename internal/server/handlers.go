package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/abdsal1508/workflow-app/internal/logging"
	"github.com/abdsal1508/workflow-app/internal/store"
	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// workflowSummary is the list-endpoint projection; definitions are
// fetched per workflow.
type workflowSummary struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Status      schema.WorkflowStatus `json:"status"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

type workflowResponse struct {
	workflowSummary
	Definition schema.WorkflowDefinition `json:"definition"`
	CreatedAt  time.Time                 `json:"created_at"`
}

func toResponse(wf *store.Workflow) workflowResponse {
	return workflowResponse{
		workflowSummary: workflowSummary{
			ID:          wf.ID,
			Name:        wf.Name,
			Description: wf.Description,
			Status:      wf.Status,
			UpdatedAt:   wf.UpdatedAt,
		},
		Definition: wf.Definition,
		CreatedAt:  wf.CreatedAt,
	}
}

func (s *Server) handleNodeTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.catalog.Types())
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	workflows, err := s.store.ListWorkflows(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summaries := make([]workflowSummary, 0, len(workflows))
	for _, wf := range workflows {
		summaries = append(summaries, toResponse(wf).workflowSummary)
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req schema.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, schema.NewError(schema.ErrCodeValidation, "invalid request body").WithCause(err))
		return
	}
	if err := s.validator.Validate(&req.Definition).ToError(); err != nil {
		s.writeError(w, r, err)
		return
	}

	wf := &store.Workflow{
		Name:        req.Name,
		Description: req.Description,
		Definition:  req.Definition,
		Status:      req.Status,
	}
	if err := s.store.CreateWorkflow(r.Context(), wf); err != nil {
		s.writeError(w, r, err)
		return
	}

	logging.LogWith(logging.WithWorkflowID(r.Context(), wf.ID), s.logger).
		InfoContext(r.Context(), "workflow created", slog.String("name", wf.Name))
	s.writeJSON(w, http.StatusCreated, schema.SaveResponse{ID: wf.ID})
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.store.GetWorkflow(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toResponse(wf))
}

func (s *Server) handleUpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req schema.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, schema.NewError(schema.ErrCodeValidation, "invalid request body").WithCause(err))
		return
	}
	if err := s.validator.Validate(&req.Definition).ToError(); err != nil {
		s.writeError(w, r, err)
		return
	}

	wf, err := s.store.GetWorkflow(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	wf.Name = req.Name
	wf.Description = req.Description
	wf.Definition = req.Definition
	if req.Status != "" {
		wf.Status = req.Status
	}
	if err := s.store.UpdateWorkflow(r.Context(), wf); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, schema.SaveResponse{ID: wf.ID})
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteWorkflow(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleValidateWorkflow(w http.ResponseWriter, r *http.Request) {
	wf, err := s.store.GetWorkflow(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.validator.Validate(&wf.Definition))
}

func (s *Server) handleTestWorkflow(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.writeError(w, r, schema.NewError(schema.ErrCodeRuntime, "no runtime configured"))
		return
	}
	id := r.PathValue("id")
	if _, err := s.store.GetWorkflow(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req schema.RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, r, schema.NewError(schema.ErrCodeValidation, "invalid request body").WithCause(err))
			return
		}
	}
	req.TestMode = true

	result, err := s.runner.TestRun(logging.WithWorkflowID(r.Context(), id), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleActivateWorkflow(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.writeError(w, r, schema.NewError(schema.ErrCodeRuntime, "no runtime configured"))
		return
	}
	id := r.PathValue("id")
	wf, err := s.store.GetWorkflow(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if wf.Status == schema.WorkflowStatusActive {
		s.writeError(w, r, schema.NewError(schema.ErrCodeConflict, "workflow is already active"))
		return
	}
	if err := s.validator.Validate(&wf.Definition).ToError(); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := logging.WithWorkflowID(r.Context(), id)
	if err := s.runner.Deploy(ctx, id); err != nil {
		s.writeError(w, r, err)
		return
	}

	wf.Status = schema.WorkflowStatusActive
	if err := s.store.UpdateWorkflow(r.Context(), wf); err != nil {
		s.writeError(w, r, err)
		return
	}
	logging.LogWith(ctx, s.logger).InfoContext(ctx, "workflow activated")
	s.writeJSON(w, http.StatusOK, map[string]string{"status": string(wf.Status)})
}

// --- Response helpers ---

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", slog.String("error", err.Error()))
	}
}

// writeError maps AppError codes to HTTP status and renders the
// {"detail": ...} body clients expect.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := err.Error()

	if appErr, ok := err.(*schema.AppError); ok {
		detail = appErr.Message
		switch appErr.Code {
		case schema.ErrCodeNotFound:
			status = http.StatusNotFound
		case schema.ErrCodeValidation, schema.ErrCodeInvalidConnection,
			schema.ErrCodeCyclicConnection, schema.ErrCodeInvalidDate:
			status = http.StatusBadRequest
		case schema.ErrCodeConflict:
			status = http.StatusConflict
		case schema.ErrCodeRuntime:
			status = http.StatusBadGateway
		}
	}

	logging.LogWith(r.Context(), s.logger).WarnContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()))

	s.writeJSON(w, status, map[string]string{"detail": detail})
}
