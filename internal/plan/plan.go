package plan

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Plan is a goal together with the ordered tasks it was broken into.
type Plan struct {
	ID        string    `json:"id"`
	Goal      string    `json:"goal"`
	Progress  Percent   `json:"progress"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	Tasks     []Task    `json:"tasks"`
}

// Summary is the list-view projection of a plan.
type Summary struct {
	ID        string    `json:"id"`
	Goal      string    `json:"goal"`
	TaskCount int       `json:"task_count"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Summary returns the list projection of p.
func (p *Plan) Summary() Summary {
	return Summary{
		ID:        p.ID,
		Goal:      p.Goal,
		TaskCount: len(p.Tasks),
		CreatedAt: p.CreatedAt,
	}
}

// Task returns a pointer to the task with the given number, or nil.
func (p *Plan) Task(id int) *Task {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	return nil
}

// SortTasks orders tasks by task number, keeping the relative order of
// duplicates.
func (p *Plan) SortTasks() {
	sort.SliceStable(p.Tasks, func(i, j int) bool {
		return p.Tasks[i].ID < p.Tasks[j].ID
	})
}

// Clone returns a deep copy of p.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := *p
	out.Tasks = make([]Task, len(p.Tasks))
	for i, t := range p.Tasks {
		out.Tasks[i] = t.clone()
	}
	return &out
}

// Percent is a completion percentage in the range 0-100.
//
// It decodes integers as well as fractional values such as 33.33, rounding to
// the nearest whole percent.
type Percent int

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid progress value %s: %w", data, err)
	}
	// Clamp before converting: out-of-range float to int is undefined.
	f = math.Max(0, math.Min(100, math.Round(f)))
	*p = Percent(f)
	return nil
}

func clampPercent(v int) Percent {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return Percent(v)
}

// ComputeProgress returns the share of completed tasks as a whole percentage.
// A plan without tasks has zero progress.
func ComputeProgress(tasks []Task) Percent {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == StatusCompleted {
			completed++
		}
	}
	return clampPercent(int(math.Round(float64(completed) * 100 / float64(len(tasks)))))
}

// Report breaks down a plan's tasks by status.
type Report struct {
	PlanID             string  `json:"plan_id"`
	Goal               string  `json:"goal"`
	TotalTasks         int     `json:"total_tasks"`
	Completed          int     `json:"completed"`
	InProgress         int     `json:"in_progress"`
	Pending            int     `json:"pending"`
	ProgressPercentage Percent `json:"progress_percentage"`
}

// Summarize builds the status report for p.
func Summarize(p *Plan) Report {
	r := Report{
		PlanID:     p.ID,
		Goal:       p.Goal,
		TotalTasks: len(p.Tasks),
	}
	for _, t := range p.Tasks {
		switch t.Status {
		case StatusCompleted:
			r.Completed++
		case StatusInProgress:
			r.InProgress++
		default:
			r.Pending++
		}
	}
	r.ProgressPercentage = ComputeProgress(p.Tasks)
	return r
}
