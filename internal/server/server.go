// Package server exposes the editor's REST API: the node-type palette,
// workflow CRUD, and test/activate dispatch to the runtime.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/abdsal1508/workflow-app/internal/catalog"
	"github.com/abdsal1508/workflow-app/internal/store"
	"github.com/abdsal1508/workflow-app/internal/validation"
	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// Runner dispatches workflow executions to the external runtime.
type Runner interface {
	TestRun(ctx context.Context, workflowID string, req schema.RunRequest) (*schema.RunResult, error)
	Deploy(ctx context.Context, workflowID string) error
}

// Server is the editor REST API.
type Server struct {
	store     store.Store
	catalog   *catalog.Catalog
	validator *validation.Validator
	runner    Runner
	logger    *slog.Logger

	httpSrv *http.Server
}

// New creates a server. runner may be nil, which disables the test and
// activate endpoints with a RUNTIME_ERROR response.
func New(st store.Store, cat *catalog.Catalog, runner Runner, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	validator, err := validation.NewValidator(cat)
	if err != nil {
		return nil, err
	}
	return &Server{
		store:     st,
		catalog:   cat,
		validator: validator,
		runner:    runner,
		logger:    logger,
	}, nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/node-types", s.handleNodeTypes)

	mux.HandleFunc("GET /api/workflows", s.handleListWorkflows)
	mux.HandleFunc("POST /api/workflows", s.handleCreateWorkflow)
	mux.HandleFunc("GET /api/workflows/{id}", s.handleGetWorkflow)
	mux.HandleFunc("PUT /api/workflows/{id}", s.handleUpdateWorkflow)
	mux.HandleFunc("DELETE /api/workflows/{id}", s.handleDeleteWorkflow)

	mux.HandleFunc("POST /api/workflows/{id}/validate", s.handleValidateWorkflow)
	mux.HandleFunc("POST /api/workflows/{id}/test", s.handleTestWorkflow)
	mux.HandleFunc("POST /api/workflows/{id}/activate", s.handleActivateWorkflow)

	return mux
}

// Start begins serving on addr. Blocks until the listener fails or
// Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("api server listening", slog.String("addr", addr))

	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
