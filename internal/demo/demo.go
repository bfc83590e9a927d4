// Package demo generates canned plans so the server can run without the
// Claude Code CLI. Presets control pacing and scenarios control failures.
package demo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pablasso/smartplan/internal/ai"
	"github.com/pablasso/smartplan/internal/plan"
)

// Preset controls how long a generation takes and how many tasks it yields.
type Preset string

const (
	PresetQuick  Preset = "quick"
	PresetMedium Preset = "medium"
	PresetSlow   Preset = "slow"
)

func ParsePreset(value string) (Preset, error) {
	switch Preset(strings.ToLower(strings.TrimSpace(value))) {
	case PresetQuick, PresetMedium, PresetSlow:
		return Preset(strings.ToLower(strings.TrimSpace(value))), nil
	default:
		return "", fmt.Errorf("invalid demo preset %q (valid: quick, medium, slow)", value)
	}
}

type presetSettings struct {
	Delay    time.Duration
	MaxTasks int
}

func settingsForPreset(preset Preset) (presetSettings, error) {
	switch preset {
	case PresetQuick:
		return presetSettings{Delay: 0, MaxTasks: 5}, nil
	case PresetMedium:
		return presetSettings{Delay: 2 * time.Second, MaxTasks: 6}, nil
	case PresetSlow:
		return presetSettings{Delay: 8 * time.Second, MaxTasks: 0}, nil // all template tasks
	default:
		return presetSettings{}, fmt.Errorf("unknown demo preset %q", preset)
	}
}

// Scenario controls generation outcomes.
type Scenario string

const (
	ScenarioSuccess Scenario = "success"
	// ScenarioFlaky fails every other generation, starting with the first.
	ScenarioFlaky Scenario = "flaky"
	ScenarioFail  Scenario = "fail"
)

func ParseScenario(value string) (Scenario, error) {
	switch Scenario(strings.ToLower(strings.TrimSpace(value))) {
	case ScenarioSuccess, ScenarioFlaky, ScenarioFail:
		return Scenario(strings.ToLower(strings.TrimSpace(value))), nil
	default:
		return "", fmt.Errorf("invalid demo scenario %q (valid: success, flaky, fail)", value)
	}
}

// ErrSimulated is returned by generations the scenario decided to fail.
var ErrSimulated = errors.New("simulated generation failure")

// Generator returns canned breakdowns chosen by keywords in the goal.
type Generator struct {
	preset   Preset
	settings presetSettings
	scenario Scenario
	calls    atomic.Int64
	// sleep waits d or until ctx is done. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

var _ ai.Generator = (*Generator)(nil)

// New returns a generator for preset and scenario.
func New(preset Preset, scenario Scenario) (*Generator, error) {
	settings, err := settingsForPreset(preset)
	if err != nil {
		return nil, err
	}
	if _, err := ParseScenario(string(scenario)); err != nil {
		return nil, err
	}
	return &Generator{
		preset:   preset,
		settings: settings,
		scenario: scenario,
		sleep:    sleepContext,
	}, nil
}

// Generate waits out the preset delay and returns the template matching goal.
func (g *Generator) Generate(ctx context.Context, goal string) (*plan.Generated, error) {
	n := g.calls.Add(1)

	if err := g.sleep(ctx, g.settings.Delay); err != nil {
		return nil, fmt.Errorf("plan generation was cancelled: %w", err)
	}

	switch {
	case g.scenario == ScenarioFail:
		return nil, ErrSimulated
	case g.scenario == ScenarioFlaky && n%2 == 1:
		return nil, fmt.Errorf("attempt %d: %w", n, ErrSimulated)
	}

	tmpl := match(goal)
	tasks := tmpl.build(strings.TrimSpace(goal))
	if limit := g.settings.MaxTasks; limit > 0 && len(tasks) > limit {
		tasks = trim(tasks, limit)
	}

	result := &plan.Generated{Tasks: tasks}
	if err := result.Validate(); err != nil {
		return nil, fmt.Errorf("invalid demo template %q: %w", tmpl.name, err)
	}
	return result, nil
}

// trim keeps the first limit tasks and drops dependencies on removed ones.
func trim(tasks []plan.GeneratedTask, limit int) []plan.GeneratedTask {
	kept := tasks[:limit]
	for i := range kept {
		deps := kept[i].Dependencies[:0:0]
		for _, d := range kept[i].Dependencies {
			if d <= limit {
				deps = append(deps, d)
			}
		}
		kept[i].Dependencies = deps
	}
	return kept
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
