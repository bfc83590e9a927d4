package file

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const activityLogFileName = "activity.log"

// Event type constants for the activity log.
const (
	EventPlanCreated       = "plan_created"
	EventTaskStatusChanged = "task_status_changed"
)

// ActivityEvent is a single activity log entry.
type ActivityEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

// ActivityLogger appends events to a plan's JSON Lines activity log.
type ActivityLogger struct {
	path string
}

// NewActivityLogger creates a logger for the given plan directory.
func NewActivityLogger(planDir string) *ActivityLogger {
	return &ActivityLogger{
		path: filepath.Join(planDir, activityLogFileName),
	}
}

// Log appends an event to the log file.
func (a *ActivityLogger) Log(event string, data map[string]any) error {
	entry := ActivityEvent{
		Timestamp: time.Now(),
		Event:     event,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// PlanCreated logs a plan_created event.
func (a *ActivityLogger) PlanCreated(planID string, taskCount int) error {
	return a.Log(EventPlanCreated, map[string]any{
		"plan_id":    planID,
		"task_count": taskCount,
	})
}

// TaskStatusChanged logs a task_status_changed event.
func (a *ActivityLogger) TaskStatusChanged(taskID int, from, to string) error {
	return a.Log(EventTaskStatusChanged, map[string]any{
		"task_id": taskID,
		"from":    from,
		"to":      to,
	})
}

// ReadActivity returns every event recorded for a plan directory, oldest
// first. A missing log yields no events.
func ReadActivity(planDir string) ([]ActivityEvent, error) {
	data, err := os.ReadFile(filepath.Join(planDir, activityLogFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var events []ActivityEvent
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var ev ActivityEvent
		if err := dec.Decode(&ev); err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}
