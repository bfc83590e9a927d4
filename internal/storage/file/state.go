package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pablasso/smartplan/internal/plan"
)

const planFileName = "plan.json"

// loadPlan reads and parses plan.json from a plan directory.
func loadPlan(planDir string) (*plan.Plan, error) {
	data, err := os.ReadFile(filepath.Join(planDir, planFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read plan.json: %w", err)
	}

	var p plan.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan.json: %w", err)
	}

	return &p, nil
}

// savePlan atomically writes plan.json to the plan directory.
// Uses a temp file + rename to ensure atomic writes.
func savePlan(planDir string, p *plan.Plan) error {
	planPath := filepath.Join(planDir, planFileName)
	tmpPath := fmt.Sprintf("%s.tmp.%d", planPath, os.Getpid())

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, planPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
