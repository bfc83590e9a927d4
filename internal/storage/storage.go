// Package storage defines the persistence contract for plans and their tasks.
package storage

import (
	"context"
	"errors"

	"github.com/pablasso/smartplan/internal/plan"
)

var (
	ErrNotFound      = errors.New("plan not found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrAlreadyExists = errors.New("plan already exists")
)

// Store persists plans. A plan owns its tasks: deleting a plan deletes them.
//
// Implementations return plans with tasks ordered by task number and leave
// Progress unset; it is derived by the caller.
type Store interface {
	CreatePlan(ctx context.Context, p *plan.Plan) error
	ListPlans(ctx context.Context) ([]plan.Summary, error)
	GetPlan(ctx context.Context, id string) (*plan.Plan, error)
	UpdateTaskStatus(ctx context.Context, planID string, taskID int, status plan.Status) error
	DeletePlan(ctx context.Context, id string) error
	Close() error
}
