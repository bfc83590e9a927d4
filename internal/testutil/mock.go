// Package testutil holds helpers shared by smartplan tests.
package testutil

import (
	"context"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

// CommandFunc matches ai.CommandContext.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// StubCommand returns a CommandFunc whose commands print output verbatim and
// exit 0, whatever they were asked to run.
func StubCommand(output string) CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "printf", "%s", output)
	}
}

// FailingCommand returns a CommandFunc whose commands write stderr and exit 1.
func FailingCommand(stderr string) CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", `printf '%s' "$1" >&2; exit 1`, "sh", stderr)
	}
}

// ClaudeResult wraps result in the envelope `claude -p --output-format json`
// prints.
func ClaudeResult(result string, isError bool) string {
	b, _ := json.Marshal(struct {
		Type    string `json:"type"`
		Result  string `json:"result"`
		IsError bool   `json:"is_error"`
	}{Type: "result", Result: result, IsError: isError})
	return string(b)
}

// ClaudeCommand stubs a successful claude run that answers with result.
func ClaudeCommand(result string) CommandFunc {
	return StubCommand(ClaudeResult(result, false))
}

// Invocations records the argument lists a CommandFunc was called with.
type Invocations struct {
	mu    sync.Mutex
	calls [][]string
}

// Wrap records each call before delegating to next.
func (r *Invocations) Wrap(next CommandFunc) CommandFunc {
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		r.mu.Lock()
		r.calls = append(r.calls, append([]string{name}, args...))
		r.mu.Unlock()
		return next(ctx, name, args...)
	}
}

// Calls returns the recorded invocations, program name first.
func (r *Invocations) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

// ChdirTemp moves the test into a fresh temp directory, restored on cleanup,
// and returns its symlink-resolved path (macOS maps /var to /private/var).
func ChdirTemp(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	t.Chdir(dir)
	return dir
}
