// Package file stores each plan as a JSON document in its own directory.
//
// Layout:
//
//	<dir>/store.lock
//	<dir>/plans/<plan-id>/plan.json
//	<dir>/plans/<plan-id>/activity.log
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/storage"
)

const plansDir = "plans"

// Store is a directory-backed plan store. It holds the directory lock for its
// whole lifetime.
type Store struct {
	mu   sync.Mutex
	dir  string
	lock *DirLock
}

var _ storage.Store = (*Store)(nil)

// Open creates the directory structure if needed and acquires its lock.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Join(dir, plansDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	lock := NewDirLock(dir)
	if err := lock.Acquire(); err != nil {
		return nil, err
	}

	return &Store{dir: dir, lock: lock}, nil
}

// Close releases the directory lock.
func (s *Store) Close() error {
	if s == nil || s.lock == nil {
		return nil
	}
	return s.lock.Release()
}

// PlanDir returns the directory holding the given plan.
func (s *Store) PlanDir(id string) string {
	return filepath.Join(s.dir, plansDir, id)
}

// validID rejects ids that would escape the plans directory.
func validID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

func (s *Store) CreatePlan(ctx context.Context, p *plan.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validID(p.ID) {
		return fmt.Errorf("invalid plan id %q", p.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	planDir := s.PlanDir(p.ID)
	if err := os.Mkdir(planDir, 0755); err != nil {
		if os.IsExist(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create plan folder: %w", err)
	}

	stored := p.Clone()
	stored.Progress = 0
	stored.SortTasks()
	if err := savePlan(planDir, stored); err != nil {
		os.RemoveAll(planDir)
		return err
	}

	if err := NewActivityLogger(planDir).PlanCreated(p.ID, len(p.Tasks)); err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}

func (s *Store) ListPlans(ctx context.Context) ([]plan.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(s.dir, plansDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read plans directory: %w", err)
	}

	summaries := []plan.Summary{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := loadPlan(filepath.Join(s.dir, plansDir, entry.Name()))
		if err != nil {
			// Half-written or foreign folders are skipped.
			continue
		}
		summaries = append(summaries, p.Summary())
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if !summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

func (s *Store) GetPlan(ctx context.Context, id string) (*plan.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(id)
}

func (s *Store) load(id string) (*plan.Plan, error) {
	if !validID(id) {
		return nil, storage.ErrNotFound
	}
	p, err := loadPlan(s.PlanDir(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Store) UpdateTaskStatus(ctx context.Context, planID string, taskID int, status plan.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load(planID)
	if err != nil {
		return err
	}
	t := p.Task(taskID)
	if t == nil {
		return storage.ErrTaskNotFound
	}
	from := t.Status
	t.Status = status

	planDir := s.PlanDir(planID)
	if err := savePlan(planDir, p); err != nil {
		return err
	}
	if err := NewActivityLogger(planDir).TaskStatusChanged(taskID, string(from), string(status)); err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}

func (s *Store) DeletePlan(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validID(id) {
		return storage.ErrNotFound
	}
	planDir := s.PlanDir(id)
	if _, err := os.Stat(filepath.Join(planDir, planFileName)); err != nil {
		if os.IsNotExist(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to access plan: %w", err)
	}
	if err := os.RemoveAll(planDir); err != nil {
		return fmt.Errorf("failed to delete plan folder: %w", err)
	}
	return nil
}
