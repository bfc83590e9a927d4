// Package msgs defines the messages passed between TUI views and the app.
package msgs

import (
	"github.com/pablasso/smartplan/internal/client"
	"github.com/pablasso/smartplan/internal/plan"
)

// Intents raised by views. The app turns them into store operations.

// SubmitGoalMsg asks for a plan to be generated for Goal.
type SubmitGoalMsg struct {
	Goal string
}

// SelectPlanMsg asks for a plan's detail to be loaded.
type SelectPlanMsg struct {
	PlanID string
}

// SetStatusMsg asks for a task's status to change.
type SetStatusMsg struct {
	PlanID string
	TaskID int
	Status plan.Status
}

// DeletePlanMsg asks for confirmation before deleting a plan.
type DeletePlanMsg struct {
	PlanID string
}

// ExportPlanMsg asks for a plan's CSV export to be saved.
type ExportPlanMsg struct {
	PlanID string
}

// Results of store operations.

// StateMsg carries the store state after an operation, along with any
// notices raised while it ran.
type StateMsg struct {
	Op      string
	State   client.State
	Notices []client.Notice
	Err     error
}

// ExportedMsg reports where a CSV export was written.
type ExportedMsg struct {
	Path    string
	Notices []client.Notice
	Err     error
}
