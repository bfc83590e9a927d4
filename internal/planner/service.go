// Package planner owns plan semantics on the server: generating plans from
// goals, deriving progress and validating task status changes.
package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/pablasso/smartplan/internal/ai"
	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/storage"
	"github.com/pablasso/smartplan/internal/telemetry"
	"github.com/pablasso/smartplan/internal/util"
)

var (
	ErrEmptyGoal  = errors.New("goal is required")
	ErrGeneration = errors.New("plan generation failed")
)

// idAttempts bounds retries when a generated id collides.
const idAttempts = 3

// Service coordinates a generator and a store.
type Service struct {
	store     storage.Store
	generator ai.Generator
	now       func() time.Time
	newID     func() (string, error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDFunc sets the plan id generator.
func WithIDFunc(newID func() (string, error)) Option {
	return func(s *Service) { s.newID = newID }
}

// New returns a Service backed by store and generator.
func New(store storage.Store, generator ai.Generator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		generator: generator,
		now:       time.Now,
		newID:     util.GeneratePlanID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create generates a breakdown for goal and persists it as a new plan with
// every task pending.
func (s *Service) Create(ctx context.Context, goal string) (*plan.Plan, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, ErrEmptyGoal
	}

	generated, err := s.generate(ctx, goal)
	if err != nil {
		return nil, err
	}

	p := &plan.Plan{
		Goal:      goal,
		CreatedAt: s.now().UTC(),
		Tasks:     generated.ToTasks(),
	}

	for attempt := 0; attempt < idAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate plan id: %w", err)
		}
		p.ID = id
		err = s.store.CreatePlan(ctx, p)
		if err == nil {
			p.Progress = plan.ComputeProgress(p.Tasks)
			return p, nil
		}
		if !errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("failed to save plan: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to save plan: %w", storage.ErrAlreadyExists)
}

func (s *Service) generate(ctx context.Context, goal string) (*plan.Generated, error) {
	ctx, span := otel.Tracer(telemetry.InstrumentationName).Start(ctx, "planner.generate")
	defer span.End()
	span.SetAttributes(attribute.Int("goal.length", len(goal)))

	generated, err := s.generator.Generate(ctx, goal)
	if err == nil {
		err = generated.Validate()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	span.SetAttributes(attribute.Int("plan.tasks", len(generated.Tasks)))
	return generated, nil
}

// List returns plan summaries in creation order.
func (s *Service) List(ctx context.Context) ([]plan.Summary, error) {
	return s.store.ListPlans(ctx)
}

// Get returns a plan with tasks in id order and progress derived from them.
func (s *Service) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	p.SortTasks()
	p.Progress = plan.ComputeProgress(p.Tasks)
	return p, nil
}

// UpdateTaskStatus parses status and applies it to one task.
func (s *Service) UpdateTaskStatus(ctx context.Context, planID string, taskID int, status string) error {
	parsed, err := plan.ParseStatus(status)
	if err != nil {
		return err
	}
	return s.store.UpdateTaskStatus(ctx, planID, taskID, parsed)
}

// Delete removes a plan and its tasks.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeletePlan(ctx, id)
}

// Progress returns per-status task counts for a plan.
func (s *Service) Progress(ctx context.Context, id string) (plan.Report, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return plan.Report{}, err
	}
	return plan.Summarize(p), nil
}

// ExportCSV writes a plan's tasks as CSV.
func (s *Service) ExportCSV(ctx context.Context, id string, w io.Writer) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return plan.WriteCSV(w, p)
}
