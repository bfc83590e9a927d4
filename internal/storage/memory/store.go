// Package memory provides an in-process plan store.
package memory

import (
	"context"
	"sync"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/storage"
)

// Store keeps plans in a map guarded by a mutex. Creation order is tracked
// separately so listings are stable.
type Store struct {
	mu    sync.RWMutex
	plans map[string]*plan.Plan
	order []string
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{plans: map[string]*plan.Plan{}}
}

func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[p.ID]; ok {
		return storage.ErrAlreadyExists
	}
	stored := p.Clone()
	stored.Progress = 0
	stored.SortTasks()
	s.plans[p.ID] = stored
	s.order = append(s.order, p.ID)
	return nil
}

func (s *Store) ListPlans(ctx context.Context) ([]plan.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]plan.Summary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.plans[id].Summary())
	}
	return out, nil
}

func (s *Store) GetPlan(ctx context.Context, id string) (*plan.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *Store) UpdateTaskStatus(ctx context.Context, planID string, taskID int, status plan.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.plans[planID]
	if !ok {
		return storage.ErrNotFound
	}
	t := p.Task(taskID)
	if t == nil {
		return storage.ErrTaskNotFound
	}
	t.Status = status
	return nil
}

func (s *Store) DeletePlan(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.plans, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
