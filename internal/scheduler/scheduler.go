// Package scheduler dispatches runs of active workflows whose trigger
// node carries a cron schedule in its config.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abdsal1508/workflow-app/internal/store"
	"github.com/abdsal1508/workflow-app/pkg/schema"
)

// RunDispatcher is the interface the scheduler uses to run workflows.
// Satisfied by the runtime client.
type RunDispatcher interface {
	TestRun(ctx context.Context, workflowID string, req schema.RunRequest) (*schema.RunResult, error)
}

// Scheduler polls the store for active scheduled workflows and
// dispatches those that are due. Next-run times are tracked in memory;
// a restart recomputes them from the cron expressions.
type Scheduler struct {
	store      store.Store
	dispatcher RunDispatcher
	parser     cron.Parser
	interval   time.Duration
	logger     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	nextMu  sync.Mutex
	nextRun map[string]time.Time // workflow ID -> next due time
}

// New creates a scheduler polling at the given interval. A zero
// interval defaults to one minute.
func New(st store.Store, dispatcher RunDispatcher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		store:      st,
		dispatcher: dispatcher,
		parser:     cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		interval:   interval,
		logger:     logger,
		nextRun:    make(map[string]time.Time),
	}
}

// Start launches the background polling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.done != nil {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(loopCtx)
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run an initial tick immediately.
	s.Tick(ctx, time.Now().UTC())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx, time.Now().UTC())
		}
	}
}

// Tick checks all active workflows and dispatches those due at now.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	workflows, err := s.store.ListWorkflowsByStatus(ctx, schema.WorkflowStatusActive)
	if err != nil {
		s.logger.Error("failed to list active workflows", slog.String("error", err.Error()))
		return
	}

	seen := make(map[string]bool, len(workflows))
	for _, wf := range workflows {
		expr := triggerSchedule(&wf.Definition)
		if expr == "" {
			continue
		}
		seen[wf.ID] = true

		next, tracked := s.getNext(wf.ID)
		if !tracked {
			// First sighting: schedule forward, never fire retroactively.
			next, err = s.nextAfter(expr, now)
			if err != nil {
				s.logger.Warn("workflow has invalid cron schedule",
					slog.String("workflow_id", wf.ID),
					slog.String("schedule", expr),
					slog.String("error", err.Error()))
				continue
			}
			s.setNext(wf.ID, next)
			continue
		}

		if next.After(now) {
			continue
		}

		s.dispatch(ctx, wf.ID)
		next, err = s.nextAfter(expr, now)
		if err != nil {
			s.dropNext(wf.ID)
			continue
		}
		s.setNext(wf.ID, next)
	}

	// Forget workflows that were deactivated or lost their schedule.
	s.nextMu.Lock()
	for id := range s.nextRun {
		if !seen[id] {
			delete(s.nextRun, id)
		}
	}
	s.nextMu.Unlock()
}

func (s *Scheduler) dispatch(ctx context.Context, workflowID string) {
	s.logger.Info("dispatching scheduled run", slog.String("workflow_id", workflowID))
	if _, err := s.dispatcher.TestRun(ctx, workflowID, schema.RunRequest{}); err != nil {
		s.logger.Error("scheduled run failed",
			slog.String("workflow_id", workflowID),
			slog.String("error", err.Error()))
	}
}

// nextAfter computes the next fire time of a cron expression after from.
func (s *Scheduler) nextAfter(expr string, from time.Time) (time.Time, error) {
	schedule, err := s.parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return schedule.Next(from), nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return nil
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	s.logger.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) getNext(id string) (time.Time, bool) {
	s.nextMu.Lock()
	defer s.nextMu.Unlock()
	t, ok := s.nextRun[id]
	return t, ok
}

func (s *Scheduler) setNext(id string, t time.Time) {
	s.nextMu.Lock()
	defer s.nextMu.Unlock()
	s.nextRun[id] = t
}

func (s *Scheduler) dropNext(id string) {
	s.nextMu.Lock()
	defer s.nextMu.Unlock()
	delete(s.nextRun, id)
}

// triggerSchedule returns the cron expression of the workflow's
// trigger node, "" if it has none. Trigger nodes are recognized by
// type name convention.
func triggerSchedule(def *schema.WorkflowDefinition) string {
	for _, n := range def.Nodes {
		if !strings.HasSuffix(n.Type, "_trigger") && n.Type != "trigger" {
			continue
		}
		if expr, ok := n.Config["schedule"].(string); ok && expr != "" {
			return expr
		}
	}
	return ""
}
