// Package storagetest holds the behaviour every storage.Store must satisfy.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/storage"
)

// Factory opens a fresh, empty store for one subtest.
type Factory func(t *testing.T) storage.Store

// SamplePlan returns a three-task plan with dependencies and a mix of
// estimate styles.
func SamplePlan(id, goal string) *plan.Plan {
	return &plan.Plan{
		ID:        id,
		Goal:      goal,
		CreatedAt: time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC),
		Tasks: []plan.Task{
			{
				ID:                1,
				Name:              "Research",
				Description:       "Find out what exists",
				Priority:          plan.PriorityHigh,
				EstimatedDays:     2,
				EstimatedDuration: &plan.Duration{Value: 2, Unit: "days"},
				Dependencies:      []int{},
				Status:            plan.StatusPending,
			},
			{
				ID:            2,
				Name:          "Design",
				Description:   "Sketch the screens",
				Priority:      plan.PriorityMedium,
				EstimatedDays: 3,
				Dependencies:  []int{1},
				Status:        plan.StatusPending,
			},
			{
				ID:                3,
				Name:              "Build",
				Description:       "Write the code",
				Priority:          plan.PriorityLow,
				EstimatedDays:     14,
				EstimatedDuration: &plan.Duration{Value: 2, Unit: "weeks"},
				Dependencies:      []int{2, 1},
				Status:            plan.StatusPending,
			},
		},
	}
}

// Run exercises the storage contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("create then get round trips", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		want := SamplePlan("plan-a", "Build a mobile app")

		require.NoError(t, s.CreatePlan(ctx, want))

		got, err := s.GetPlan(ctx, "plan-a")
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Goal, got.Goal)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created_at %v != %v", got.CreatedAt, want.CreatedAt)
		require.Len(t, got.Tasks, 3)
		for i := range want.Tasks {
			assert.Equal(t, want.Tasks[i].ID, got.Tasks[i].ID)
			assert.Equal(t, want.Tasks[i].Name, got.Tasks[i].Name)
			assert.Equal(t, want.Tasks[i].Description, got.Tasks[i].Description)
			assert.Equal(t, want.Tasks[i].Priority, got.Tasks[i].Priority)
			assert.InDelta(t, want.Tasks[i].EstimatedDays, got.Tasks[i].EstimatedDays, 1e-9)
			assert.Equal(t, want.Tasks[i].EstimatedDuration, got.Tasks[i].EstimatedDuration)
			assert.Equal(t, want.Tasks[i].Dependencies, got.Tasks[i].Dependencies)
			assert.Equal(t, want.Tasks[i].Status, got.Tasks[i].Status)
		}
	})

	t.Run("tasks come back in id order", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		p := SamplePlan("plan-order", "Order")
		p.Tasks[0], p.Tasks[2] = p.Tasks[2], p.Tasks[0]

		require.NoError(t, s.CreatePlan(ctx, p))
		got, err := s.GetPlan(ctx, "plan-order")
		require.NoError(t, err)
		require.Len(t, got.Tasks, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{got.Tasks[0].ID, got.Tasks[1].ID, got.Tasks[2].ID})
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.CreatePlan(ctx, SamplePlan("dup", "first")))
		err := s.CreatePlan(ctx, SamplePlan("dup", "second"))
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	})

	t.Run("list is empty then in creation order", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		list, err := s.ListPlans(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		first := SamplePlan("p1", "First goal")
		second := SamplePlan("p2", "Second goal")
		second.CreatedAt = first.CreatedAt.Add(time.Minute)
		second.Tasks = second.Tasks[:1]
		require.NoError(t, s.CreatePlan(ctx, first))
		require.NoError(t, s.CreatePlan(ctx, second))

		list, err = s.ListPlans(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "p1", list[0].ID)
		assert.Equal(t, "First goal", list[0].Goal)
		assert.Equal(t, 3, list[0].TaskCount)
		assert.Equal(t, "p2", list[1].ID)
		assert.Equal(t, 1, list[1].TaskCount)
	})

	t.Run("get missing plan", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetPlan(context.Background(), "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("update task status", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.CreatePlan(ctx, SamplePlan("upd", "Update")))

		require.NoError(t, s.UpdateTaskStatus(ctx, "upd", 2, plan.StatusCompleted))
		// Setting the same status again is not an error.
		require.NoError(t, s.UpdateTaskStatus(ctx, "upd", 2, plan.StatusCompleted))

		got, err := s.GetPlan(ctx, "upd")
		require.NoError(t, err)
		assert.Equal(t, plan.StatusPending, got.Tasks[0].Status)
		assert.Equal(t, plan.StatusCompleted, got.Tasks[1].Status)
		assert.Equal(t, plan.StatusPending, got.Tasks[2].Status)
	})

	t.Run("update on missing plan or task", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.CreatePlan(ctx, SamplePlan("upd-missing", "Update")))

		err := s.UpdateTaskStatus(ctx, "ghost", 1, plan.StatusCompleted)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = s.UpdateTaskStatus(ctx, "upd-missing", 42, plan.StatusCompleted)
		assert.ErrorIs(t, err, storage.ErrTaskNotFound)
	})

	t.Run("delete removes plan and tasks", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.CreatePlan(ctx, SamplePlan("del", "Delete me")))
		require.NoError(t, s.CreatePlan(ctx, SamplePlan("keep", "Keep me")))

		require.NoError(t, s.DeletePlan(ctx, "del"))

		_, err := s.GetPlan(ctx, "del")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, s.UpdateTaskStatus(ctx, "del", 1, plan.StatusCompleted), storage.ErrNotFound)

		list, err := s.ListPlans(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "keep", list[0].ID)

		kept, err := s.GetPlan(ctx, "keep")
		require.NoError(t, err)
		assert.Len(t, kept.Tasks, 3)
	})

	t.Run("delete missing plan", func(t *testing.T) {
		s := newStore(t)
		assert.ErrorIs(t, s.DeletePlan(context.Background(), "nope"), storage.ErrNotFound)
	})

	t.Run("returned plans are copies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.CreatePlan(ctx, SamplePlan("copy", "Copy")))

		got, err := s.GetPlan(ctx, "copy")
		require.NoError(t, err)
		got.Tasks[0].Status = plan.StatusCompleted
		got.Tasks[2].Dependencies[0] = 99

		again, err := s.GetPlan(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, plan.StatusPending, again.Tasks[0].Status)
		assert.Equal(t, []int{2, 1}, again.Tasks[2].Dependencies)
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.ListPlans(ctx)
		assert.Error(t, err)
	})
}
