package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pablasso/smartplan/internal/ai"
)

// PrerequisiteError represents a failed prerequisite check with helpful remediation info.
type PrerequisiteError struct {
	Check   string
	Message string
	Help    string
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("%s: %s\n\n%s", e.Check, e.Message, e.Help)
}

// checkClaudeCode verifies the Claude Code CLI used for plan generation is
// installed and runs.
func checkClaudeCode(ctx context.Context) error {
	if _, err := ai.LookPath("claude"); err != nil {
		return &PrerequisiteError{
			Check:   "Claude Code CLI",
			Message: "Claude Code CLI not found",
			Help:    "Install Claude Code: https://claude.ai/code\nOr start with --skip-checks to serve existing plans only.",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := ai.CommandContext(ctx, "claude", "--version").Run(); err != nil {
		return &PrerequisiteError{
			Check:   "Claude Code CLI",
			Message: fmt.Sprintf("Claude Code CLI failed to run: %v", err),
			Help:    "Check that 'claude --version' works in this shell.",
		}
	}
	return nil
}
