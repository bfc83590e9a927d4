package plan

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Generated is the structured breakdown a generator returns for a goal.
type Generated struct {
	Tasks []GeneratedTask `json:"tasks"`
}

// GeneratedTask is a single task as produced by a generator.
type GeneratedTask struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	EstimatedDuration *Duration `json:"estimated_duration,omitempty"`
	EstimatedDays     float64   `json:"estimated_days,omitempty"`
	Priority          string    `json:"priority"`
	Dependencies      []int     `json:"dependencies"`
}

var (
	ErrInvalidBreakdown = errors.New("invalid task breakdown")
	ErrDependencyCycle  = errors.New("dependency cycle")
)

// ValidationError describes why a generated breakdown was rejected.
type ValidationError struct {
	Kind error
	Msg  string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &ValidationError{Kind: ErrInvalidBreakdown, Msg: fmt.Sprintf(format, args...)}
}

// Validate checks ids, names, priorities, units and that dependencies form an
// acyclic graph over ids in the same breakdown.
func (g *Generated) Validate() error {
	if len(g.Tasks) == 0 {
		return invalidf("no tasks generated")
	}

	ids := make(map[int]bool, len(g.Tasks))
	for i, t := range g.Tasks {
		if t.ID <= 0 {
			return invalidf("task %d has non-positive id %d", i+1, t.ID)
		}
		if ids[t.ID] {
			return invalidf("duplicate task id %d", t.ID)
		}
		ids[t.ID] = true
		if strings.TrimSpace(t.Name) == "" {
			return invalidf("task %d missing name", t.ID)
		}
		if _, err := ParsePriority(t.Priority); err != nil {
			return invalidf("task %d (%s): %v", t.ID, t.Name, err)
		}
		if t.EstimatedDuration != nil && !ValidUnit(t.EstimatedDuration.Unit) {
			return invalidf("task %d (%s) has unknown duration unit %q", t.ID, t.Name, t.EstimatedDuration.Unit)
		}
	}

	for _, t := range g.Tasks {
		for _, dep := range t.Dependencies {
			if dep == t.ID {
				return invalidf("task %d depends on itself", t.ID)
			}
			if !ids[dep] {
				return invalidf("task %d depends on unknown task %d", t.ID, dep)
			}
		}
	}

	return g.validateAcyclic()
}

// validateAcyclic runs Kahn's algorithm over the dependency edges. Ready nodes
// are drained in id order so the reported cycle members are stable.
func (g *Generated) validateAcyclic() error {
	indeg := make(map[int]int, len(g.Tasks))
	dependents := make(map[int][]int, len(g.Tasks))
	for _, t := range g.Tasks {
		indeg[t.ID] = len(t.Dependencies)
		for _, dep := range t.Dependencies {
			dependents[dep] = append(dependents[dep], t.ID)
		}
	}

	var ready []int
	for id, n := range indeg {
		if n == 0 {
			ready = append(ready, id)
		}
	}
	sort.Ints(ready)

	visited := 0
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		visited++
		for _, next := range dependents[id] {
			indeg[next]--
			if indeg[next] == 0 {
				ready = append(ready, next)
				sort.Ints(ready)
			}
		}
	}

	if visited == len(g.Tasks) {
		return nil
	}

	var stuck []int
	for id, n := range indeg {
		if n > 0 {
			stuck = append(stuck, id)
		}
	}
	sort.Ints(stuck)
	return &ValidationError{Kind: ErrDependencyCycle, Msg: "tasks " + FormatDependencies(stuck)}
}

// ToTasks converts the breakdown into pending plan tasks ordered by id.
// Priorities are canonicalised and estimated days derived from the duration
// when one is given.
func (g *Generated) ToTasks() []Task {
	tasks := make([]Task, len(g.Tasks))
	for i, gt := range g.Tasks {
		priority, _ := ParsePriority(gt.Priority)
		deps := make([]int, len(gt.Dependencies))
		copy(deps, gt.Dependencies)
		t := Task{
			ID:            gt.ID,
			Name:          gt.Name,
			Description:   gt.Description,
			Priority:      priority,
			EstimatedDays: gt.EstimatedDays,
			Dependencies:  deps,
			Status:        StatusPending,
		}
		if gt.EstimatedDuration != nil {
			d := *gt.EstimatedDuration
			d.Unit = strings.ToLower(d.Unit)
			t.EstimatedDuration = &d
			t.EstimatedDays = d.Days()
		}
		tasks[i] = t
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}
