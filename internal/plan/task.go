package plan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Task is a single unit of work inside a plan.
type Task struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Priority          Priority  `json:"priority"`
	EstimatedDays     float64   `json:"estimated_days"`
	EstimatedDuration *Duration `json:"estimated_duration,omitempty"`
	Dependencies      []int     `json:"dependencies"`
	Status            Status    `json:"status"`
}

func (t Task) clone() Task {
	out := t
	if t.Dependencies != nil {
		out.Dependencies = make([]int, len(t.Dependencies))
		copy(out.Dependencies, t.Dependencies)
	}
	if t.EstimatedDuration != nil {
		d := *t.EstimatedDuration
		out.EstimatedDuration = &d
	}
	return out
}

// Status is the lifecycle state of a task.
type Status string

// Task status constants
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the valid statuses in lifecycle order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// ErrInvalidStatus is returned when a status is outside the known set.
var ErrInvalidStatus = errors.New("invalid status")

// ParseStatus validates s against the known statuses. Matching is exact.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w %q: must be one of pending, in_progress, completed", ErrInvalidStatus, s)
}

// Next returns the status that follows s, wrapping back to pending.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusPending
}

// Label returns the human readable label for s.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Priority ranks a task. Values are compared case-insensitively; the stored
// form keeps whatever casing the generator produced.
type Priority string

// Priority constants
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ErrInvalidPriority is returned for priorities outside LOW/MEDIUM/HIGH.
var ErrInvalidPriority = errors.New("invalid priority")

// ParsePriority returns the canonical priority for s.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return PriorityLow, nil
	case "MEDIUM":
		return PriorityMedium, nil
	case "HIGH":
		return PriorityHigh, nil
	}
	return "", fmt.Errorf("%w %q", ErrInvalidPriority, s)
}

// Is reports whether p and other name the same priority.
func (p Priority) Is(other Priority) bool {
	return strings.EqualFold(string(p), string(other))
}

// Display renders the priority in title case, e.g. "High".
// Casers are stateful, so each call builds its own.
func (p Priority) Display() string {
	return cases.Title(language.English).String(string(p))
}

// Badge renders the priority in lower case for styling lookups.
func (p Priority) Badge() string {
	return cases.Lower(language.English).String(string(p))
}

// Duration is an estimate expressed as a value and a unit.
type Duration struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ValidUnit reports whether unit is a known duration unit.
func ValidUnit(unit string) bool {
	switch strings.ToLower(unit) {
	case "minutes", "hours", "days", "weeks", "months":
		return true
	}
	return false
}

// Days converts the duration to calendar days. Unknown units yield zero.
func (d Duration) Days() float64 {
	switch strings.ToLower(d.Unit) {
	case "minutes":
		return d.Value / (24 * 60)
	case "hours":
		return d.Value / 24
	case "days":
		return d.Value
	case "weeks":
		return d.Value * 7
	case "months":
		return d.Value * 30
	}
	return 0
}

func (d Duration) String() string {
	return fmt.Sprintf("%s %s", formatNumber(d.Value), d.Unit)
}

// EstimateLabel renders the task estimate, preferring the original unit.
func (t Task) EstimateLabel() string {
	if t.EstimatedDuration != nil && t.EstimatedDuration.Unit != "" {
		return t.EstimatedDuration.String()
	}
	return fmt.Sprintf("%s days", formatNumber(t.EstimatedDays))
}

// FormatDependencies joins dependency ids with ", " in their original order.
func FormatDependencies(deps []int) string {
	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ", ")
}

// DependsOnLabel returns "Depends on: 1, 2", or "" when there are none.
func (t Task) DependsOnLabel() string {
	if len(t.Dependencies) == 0 {
		return ""
	}
	return "Depends on: " + FormatDependencies(t.Dependencies)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
