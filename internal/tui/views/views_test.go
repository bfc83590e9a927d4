package views

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/tui/msgs"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

func samplePlan() *plan.Plan {
	return &plan.Plan{
		ID:       "abc",
		Goal:     "Build a mobile app",
		Progress: 50,
		Tasks: []plan.Task{
			{ID: 1, Name: "Research", Description: "Look at competitors", Priority: plan.PriorityHigh,
				EstimatedDays: 2, EstimatedDuration: &plan.Duration{Value: 2, Unit: "days"},
				Dependencies: []int{}, Status: plan.StatusCompleted},
			{ID: 2, Name: "Design", Description: "Sketch screens", Priority: plan.PriorityMedium,
				EstimatedDays: 7, EstimatedDuration: &plan.Duration{Value: 1, Unit: "weeks"},
				Dependencies: []int{1}, Status: plan.StatusPending},
		},
	}
}

func TestGoalForm_Submit(t *testing.T) {
	m := NewGoalFormModel()
	m.Focus()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("blank goal should not submit")
	}

	m.SetValue("  Learn Go  ")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := runCmd(t, cmd).(msgs.SubmitGoalMsg)
	if !ok {
		t.Fatalf("expected SubmitGoalMsg, got %T", msg)
	}
	if msg.Goal != "Learn Go" {
		t.Errorf("Goal = %q, want trimmed goal", msg.Goal)
	}
}

func TestGoalForm_Typing(t *testing.T) {
	m := NewGoalFormModel()
	m.Focus()
	m, _ = m.Update(runeKey("G"))
	m, _ = m.Update(runeKey("o"))
	if m.Value() != "Go" {
		t.Errorf("Value() = %q, want %q", m.Value(), "Go")
	}

	m.Blur()
	m, _ = m.Update(runeKey("!"))
	if m.Value() != "Go" {
		t.Error("unfocused form should ignore keys")
	}
}

func TestGoalForm_BusyDisablesInput(t *testing.T) {
	m := NewGoalFormModel()
	m.Focus()
	m.SetValue("Learn Go")

	if cmd := m.SetBusy(true); cmd == nil {
		t.Error("entering busy should start the spinner")
	}
	if !m.Busy() {
		t.Fatal("expected busy")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("busy form should not submit")
	}
	m, _ = m.Update(runeKey("x"))
	if m.Value() != "Learn Go" {
		t.Error("busy form should not accept input")
	}
	if !strings.Contains(m.View(), "Generating Plan...") {
		t.Errorf("expected generating indicator, got:\n%s", m.View())
	}

	m.SetBusy(false)
	if !strings.Contains(m.View(), "Generate Plan") || strings.Contains(m.View(), "Generating") {
		t.Errorf("expected idle hint, got:\n%s", m.View())
	}
	m.Reset()
	if m.Value() != "" {
		t.Error("Reset should clear the input")
	}
}

func TestPlanList_EmptyState(t *testing.T) {
	m := NewPlanListModel()
	m.SetSize(40, 10)

	view := m.View()
	if !strings.Contains(view, EmptyPlansMessage) {
		t.Errorf("expected empty message, got:\n%s", view)
	}
	if !strings.Contains(view, "Your Plans (0)") {
		t.Errorf("expected count header, got:\n%s", view)
	}

	m.SetFocused(true)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter on an empty list should do nothing")
	}
}

func TestPlanList_NavigateAndSelect(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewPlanListModel()
	m.now = func() time.Time { return now }
	m.SetSize(50, 20)
	m.SetPlans([]plan.Summary{
		{ID: "a", Goal: "First", TaskCount: 1, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "b", Goal: "Second", TaskCount: 5},
	})

	if _, cmd := m.Update(runeKey("j")); cmd != nil || m.Cursor() != 0 {
		t.Error("unfocused list should ignore keys")
	}

	m.SetFocused(true)
	m, _ = m.Update(runeKey("j"))
	m, _ = m.Update(runeKey("j"))
	if m.Cursor() != 1 {
		t.Errorf("cursor = %d, want 1 (clamped)", m.Cursor())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := runCmd(t, cmd).(msgs.SelectPlanMsg)
	if !ok || msg.PlanID != "b" {
		t.Errorf("expected SelectPlanMsg for b, got %#v", msg)
	}

	view := m.View()
	for _, want := range []string{"Your Plans (2)", "First", "1 task", "2 hours ago", "5 tasks"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestPlanList_SetPlansKeepsCursor(t *testing.T) {
	m := NewPlanListModel()
	m.SetPlans([]plan.Summary{{ID: "a"}, {ID: "b"}, {ID: "c"}})
	m.MoveTo("b")

	m.SetPlans([]plan.Summary{{ID: "z"}, {ID: "a"}, {ID: "b"}})
	if m.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor())
	}

	m.SetPlans([]plan.Summary{{ID: "z"}})
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d after plan removed, want 0", m.Cursor())
	}
}

func TestPlanDetail_View(t *testing.T) {
	m := NewPlanDetailModel()
	m.SetSize(70, 30)

	if !strings.Contains(m.View(), "Select a plan") {
		t.Errorf("expected placeholder, got:\n%s", m.View())
	}

	m.SetPlan(samplePlan())
	view := m.View()
	for _, want := range []string{
		"Build a mobile app",
		"50% Complete",
		"#1 Research",
		"High",
		"Look at competitors",
		"⏱ 2 days",
		"⏱ 7 days (1 weeks)",
		"Depends on: 1",
		"Status: Completed",
		"Status: Pending",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q, got:\n%s", want, view)
		}
	}
	if strings.Index(view, "#1 Research") > strings.Index(view, "#2 Design") {
		t.Error("tasks should render in id order")
	}
}

func TestPlanDetail_Keys(t *testing.T) {
	m := NewPlanDetailModel()
	m.SetSize(70, 30)
	m.SetPlan(samplePlan())

	if _, cmd := m.Update(runeKey("p")); cmd != nil {
		t.Error("unfocused detail should ignore keys")
	}
	m.SetFocused(true)

	// Task 1 is completed, so "c" is a no-op.
	if _, cmd := m.Update(runeKey("c")); cmd != nil {
		t.Error("setting the current status should not send a request")
	}

	tests := []struct {
		key    tea.KeyMsg
		status plan.Status
	}{
		{key: runeKey("p"), status: plan.StatusPending},
		{key: runeKey("i"), status: plan.StatusInProgress},
		{key: tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, status: plan.StatusPending},
	}
	for _, tt := range tests {
		_, cmd := m.Update(tt.key)
		msg, ok := runCmd(t, cmd).(msgs.SetStatusMsg)
		if !ok {
			t.Fatalf("%s: expected SetStatusMsg", tt.key)
		}
		if msg.PlanID != "abc" || msg.TaskID != 1 || msg.Status != tt.status {
			t.Errorf("%s: got %+v, want task 1 -> %s", tt.key, msg, tt.status)
		}
	}

	m, _ = m.Update(runeKey("j"))
	if m.Cursor() != 1 {
		t.Fatalf("cursor = %d, want 1", m.Cursor())
	}
	_, cmd := m.Update(runeKey("c"))
	if msg := runCmd(t, cmd).(msgs.SetStatusMsg); msg.TaskID != 2 || msg.Status != plan.StatusCompleted {
		t.Errorf("got %+v, want task 2 -> completed", msg)
	}

	_, cmd = m.Update(runeKey("d"))
	if msg, ok := runCmd(t, cmd).(msgs.DeletePlanMsg); !ok || msg.PlanID != "abc" {
		t.Errorf("expected DeletePlanMsg, got %#v", msg)
	}
	_, cmd = m.Update(runeKey("x"))
	if msg, ok := runCmd(t, cmd).(msgs.ExportPlanMsg); !ok || msg.PlanID != "abc" {
		t.Errorf("expected ExportPlanMsg, got %#v", msg)
	}
}

func TestPlanDetail_ReloadKeepsTaskCursor(t *testing.T) {
	m := NewPlanDetailModel()
	m.SetSize(70, 30)
	m.SetFocused(true)
	m.SetPlan(samplePlan())
	m, _ = m.Update(runeKey("j"))

	updated := samplePlan()
	updated.Tasks[1].Status = plan.StatusInProgress
	m.SetPlan(updated)
	if m.Cursor() != 1 {
		t.Errorf("cursor = %d after reload, want 1", m.Cursor())
	}

	other := samplePlan()
	other.ID = "other"
	m.SetPlan(other)
	if m.Cursor() != 0 {
		t.Errorf("cursor = %d after switching plans, want 0", m.Cursor())
	}

	m.SetPlan(nil)
	if m.Plan() != nil {
		t.Error("expected nil plan")
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "a long goal here", max: 8, want: "a lon..."},
		{in: "abcdef", max: 3, want: "abc"},
	}
	for _, tt := range tests {
		if got := truncateWithEllipsis(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
