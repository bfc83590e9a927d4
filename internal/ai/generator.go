package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pablasso/smartplan/internal/plan"
)

// Generator turns a free-text goal into a validated task breakdown.
type Generator interface {
	Generate(ctx context.Context, goal string) (*plan.Generated, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, goal string) (*plan.Generated, error)

func (f GeneratorFunc) Generate(ctx context.Context, goal string) (*plan.Generated, error) {
	return f(ctx, goal)
}

// ErrClaudeNotFound is returned when the claude CLI is not on PATH.
var ErrClaudeNotFound = errors.New("Claude Code CLI not found. Install it: https://claude.ai/code")

// claudeResponse represents the JSON structure returned by Claude Code CLI
// when using --output-format json.
type claudeResponse struct {
	Type    string `json:"type"`
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// CommandContext is the function used to create exec.Cmd instances.
// It can be replaced in tests to mock command execution.
var CommandContext = exec.CommandContext

// LookPath finds the claude binary. Replaced in tests.
var LookPath = exec.LookPath

// DefaultTimeout is the maximum time allowed for one generation.
const DefaultTimeout = 5 * time.Minute

// IsClaudeAvailable checks if the claude command exists in PATH.
func IsClaudeAvailable() bool {
	_, err := LookPath("claude")
	return err == nil
}

// ClaudeGenerator generates task breakdowns with the Claude Code CLI.
type ClaudeGenerator struct {
	// Timeout applies when the caller's context has no deadline.
	// Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewClaudeGenerator returns a generator with the given timeout.
func NewClaudeGenerator(timeout time.Duration) *ClaudeGenerator {
	return &ClaudeGenerator{Timeout: timeout}
}

// Generate asks Claude for a breakdown of goal and validates the result.
func (g *ClaudeGenerator) Generate(ctx context.Context, goal string) (*plan.Generated, error) {
	if !IsClaudeAvailable() {
		return nil, ErrClaudeNotFound
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		timeout := g.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	prompt := buildPlanPrompt(goal)

	// --dangerously-skip-permissions is required for non-interactive use. The
	// prompt only asks for JSON; no files or tools are involved.
	cmd := CommandContext(ctx, "claude", "-p", prompt, "--output-format", "json", "--dangerously-skip-permissions")
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New("plan generation timed out")
		}
		if ctx.Err() == context.Canceled {
			return nil, errors.New("plan generation was cancelled")
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("claude command failed: %s", string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("failed to execute claude command: %w", err)
	}

	jsonData, err := extractJSON(output)
	if err != nil {
		return nil, fmt.Errorf("failed to extract JSON from claude response: %w", err)
	}

	var result plan.Generated
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, fmt.Errorf("failed to parse claude response: %w", err)
	}

	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan breakdown: %w", err)
	}

	return &result, nil
}

// buildPlanPrompt creates the prompt that breaks a goal into tasks.
func buildPlanPrompt(goal string) string {
	return fmt.Sprintf(`Break down this goal into actionable tasks with dependencies.

GOAL:
%s

OUTPUT REQUIREMENTS:
Return a JSON object with this exact structure:
{
  "tasks": [
    {
      "id": 1,
      "name": "task name",
      "description": "detailed description of what to do",
      "estimated_duration": {"value": 2, "unit": "days"},
      "priority": "High",
      "dependencies": []
    }
  ]
}

RULES:
- Create 5-8 tasks
- Task ids are consecutive integers starting at 1
- Dependencies are ids of tasks that must be completed first (empty array if none); no cycles
- Priority is one of: High, Medium, Low
- estimated_duration has "value" (number) and "unit" (one of: minutes, hours, days, weeks, months)
- Choose the unit by task size:
  * minutes: very quick tasks (5-60 minutes)
  * hours: part of a day (1-23 hours)
  * days: full days (1-30 days)
  * weeks: longer tasks (1-12 weeks)
  * months: very long tasks (1-12 months)
- Use realistic estimates

Return ONLY the JSON, no markdown formatting or explanation.`, goal)
}

// extractJSON extracts a JSON object from potentially noisy output.
func extractJSON(data []byte) ([]byte, error) {
	// First, try to parse as Claude Code CLI response wrapper
	var claudeResp claudeResponse
	if err := json.Unmarshal(data, &claudeResp); err == nil && claudeResp.Type == "result" {
		if claudeResp.IsError {
			return nil, errors.New("claude returned an error: " + claudeResp.Result)
		}
		data = []byte(claudeResp.Result)
	}

	str := stripMarkdownCodeBlocks(string(data))

	if json.Valid([]byte(str)) {
		return []byte(str), nil
	}

	// Find JSON object boundaries as fallback
	start := strings.Index(str, "{")
	end := strings.LastIndex(str, "}")

	if start == -1 || end == -1 || start >= end {
		return nil, errors.New("no JSON object found in response")
	}

	extracted := str[start : end+1]
	if !json.Valid([]byte(extracted)) {
		return nil, errors.New("extracted content is not valid JSON")
	}

	return []byte(extracted), nil
}

// stripMarkdownCodeBlocks removes markdown code block markers from a string.
func stripMarkdownCodeBlocks(s string) string {
	s = strings.TrimSpace(s)
	if cut, found := strings.CutPrefix(s, "```json"); found {
		s = cut
	} else if cut, found := strings.CutPrefix(s, "```"); found {
		s = cut
	}
	if cut, found := strings.CutSuffix(s, "```"); found {
		s = cut
	}
	return strings.TrimSpace(s)
}
