package plan

import (
	"errors"
	"strings"
	"testing"
)

func validBreakdown() *Generated {
	return &Generated{Tasks: []GeneratedTask{
		{ID: 1, Name: "Research", Priority: "High", EstimatedDuration: &Duration{Value: 2, Unit: "days"}},
		{ID: 2, Name: "Design", Priority: "Medium", Dependencies: []int{1}},
		{ID: 3, Name: "Build", Priority: "low", Dependencies: []int{1, 2}, EstimatedDuration: &Duration{Value: 1, Unit: "Weeks"}},
	}}
}

func TestGenerated_Validate(t *testing.T) {
	t.Run("valid breakdown", func(t *testing.T) {
		if err := validBreakdown().Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(g *Generated)
		wantErr error
		msg     string
	}{
		{
			name:    "no tasks",
			mutate:  func(g *Generated) { g.Tasks = nil },
			wantErr: ErrInvalidBreakdown,
			msg:     "no tasks",
		},
		{
			name:    "duplicate id",
			mutate:  func(g *Generated) { g.Tasks[1].ID = 1 },
			wantErr: ErrInvalidBreakdown,
			msg:     "duplicate task id 1",
		},
		{
			name:    "zero id",
			mutate:  func(g *Generated) { g.Tasks[0].ID = 0 },
			wantErr: ErrInvalidBreakdown,
			msg:     "non-positive",
		},
		{
			name:    "missing name",
			mutate:  func(g *Generated) { g.Tasks[2].Name = "  " },
			wantErr: ErrInvalidBreakdown,
			msg:     "missing name",
		},
		{
			name:    "bad priority",
			mutate:  func(g *Generated) { g.Tasks[0].Priority = "Critical" },
			wantErr: ErrInvalidBreakdown,
			msg:     "invalid priority",
		},
		{
			name:    "bad unit",
			mutate:  func(g *Generated) { g.Tasks[0].EstimatedDuration.Unit = "sprints" },
			wantErr: ErrInvalidBreakdown,
			msg:     "unknown duration unit",
		},
		{
			name:    "self dependency",
			mutate:  func(g *Generated) { g.Tasks[1].Dependencies = []int{2} },
			wantErr: ErrInvalidBreakdown,
			msg:     "depends on itself",
		},
		{
			name:    "unknown dependency",
			mutate:  func(g *Generated) { g.Tasks[1].Dependencies = []int{7} },
			wantErr: ErrInvalidBreakdown,
			msg:     "unknown task 7",
		},
		{
			name:    "cycle",
			mutate:  func(g *Generated) { g.Tasks[0].Dependencies = []int{3} },
			wantErr: ErrDependencyCycle,
			msg:     "tasks 1, 2, 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validBreakdown()
			tt.mutate(g)
			err := g.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.msg)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestGenerated_ToTasks(t *testing.T) {
	g := validBreakdown()
	g.Tasks[0], g.Tasks[2] = g.Tasks[2], g.Tasks[0]

	tasks := g.ToTasks()
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i, task := range tasks {
		if task.ID != i+1 {
			t.Errorf("task %d has id %d; expected id order", i, task.ID)
		}
		if task.Status != StatusPending {
			t.Errorf("task %d status = %q, want pending", task.ID, task.Status)
		}
		if task.Dependencies == nil {
			t.Errorf("task %d dependencies should be empty, not nil", task.ID)
		}
	}
	if tasks[0].Priority != PriorityHigh {
		t.Errorf("priority not canonicalised: %q", tasks[0].Priority)
	}
	if tasks[2].EstimatedDays != 7 {
		t.Errorf("EstimatedDays = %v, want 7", tasks[2].EstimatedDays)
	}
	if tasks[2].EstimatedDuration.Unit != "weeks" {
		t.Errorf("unit not lowercased: %q", tasks[2].EstimatedDuration.Unit)
	}

	// Mutating the result must not touch the breakdown.
	tasks[2].Dependencies[0] = 99
	for _, gt := range g.Tasks {
		if gt.ID == 3 && gt.Dependencies[0] != 1 {
			t.Error("ToTasks shares dependency slices with the breakdown")
		}
	}
}
