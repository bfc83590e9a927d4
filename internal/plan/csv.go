package plan

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrNoTasks is returned when exporting a plan that has no tasks.
var ErrNoTasks = errors.New("no tasks found")

var csvHeader = []string{
	"Task ID",
	"Task Name",
	"Description",
	"Estimated Duration",
	"Priority",
	"Dependencies",
	"Status",
}

// ExportFileName is the download name used for a plan's CSV export.
func ExportFileName(planID string) string {
	return fmt.Sprintf("task_plan_%s.csv", planID)
}

// WriteCSV writes one row per task of p, preceded by a header row.
func WriteCSV(w io.Writer, p *Plan) error {
	if len(p.Tasks) == 0 {
		return ErrNoTasks
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, t := range p.Tasks {
		deps := "None"
		if len(t.Dependencies) > 0 {
			deps = FormatDependencies(t.Dependencies)
		}
		row := []string{
			strconv.Itoa(t.ID),
			t.Name,
			t.Description,
			t.EstimateLabel(),
			string(t.Priority),
			deps,
			string(t.Status),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for task %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
