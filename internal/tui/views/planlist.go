package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/tui/msgs"
	"github.com/pablasso/smartplan/internal/tui/styles"
)

// EmptyPlansMessage is shown when there are no plans.
const EmptyPlansMessage = "No plans yet. Create one above!"

// PlanListModel is the "Your Plans" panel.
type PlanListModel struct {
	plans      []plan.Summary
	cursor     int
	selectedID string
	focused    bool
	width      int
	height     int
	now        func() time.Time
}

// NewPlanListModel creates an empty list.
func NewPlanListModel() PlanListModel {
	return PlanListModel{now: time.Now}
}

// SetPlans replaces the list, keeping the cursor on the same plan when it is
// still present.
func (m *PlanListModel) SetPlans(plans []plan.Summary) {
	var current string
	if m.cursor < len(m.plans) {
		current = m.plans[m.cursor].ID
	}
	m.plans = plans
	m.cursor = 0
	for i, p := range plans {
		if p.ID == current {
			m.cursor = i
			break
		}
	}
}

// SetSelected marks the plan shown in the detail panel.
func (m *PlanListModel) SetSelected(id string) {
	m.selectedID = id
}

// MoveTo puts the cursor on the plan with id, if present.
func (m *PlanListModel) MoveTo(id string) {
	for i, p := range m.plans {
		if p.ID == id {
			m.cursor = i
			return
		}
	}
}

// SetFocused sets whether the list receives keys.
func (m *PlanListModel) SetFocused(focused bool) {
	m.focused = focused
}

// SetSize updates the model dimensions.
func (m *PlanListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Plans returns the listed plans.
func (m PlanListModel) Plans() []plan.Summary {
	return m.plans
}

// Cursor returns the current cursor position.
func (m PlanListModel) Cursor() int {
	return m.cursor
}

// Update handles navigation and selection.
func (m PlanListModel) Update(msg tea.Msg) (PlanListModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused || len(m.plans) == 0 {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.plans)-1 {
			m.cursor++
		}
	case "enter":
		id := m.plans[m.cursor].ID
		return m, func() tea.Msg { return msgs.SelectPlanMsg{PlanID: id} }
	}
	return m, nil
}

// View renders the panel.
func (m PlanListModel) View() string {
	lines := []string{styles.HeadingStyle.Render(fmt.Sprintf("Your Plans (%d)", len(m.plans))), ""}

	if len(m.plans) == 0 {
		lines = append(lines, styles.SubtleStyle.Render(EmptyPlansMessage))
	} else {
		lines = append(lines, m.visibleLines()...)
	}

	box := styles.BoxStyle
	if m.focused {
		box = styles.FocusedBoxStyle
	}
	if m.width > 0 {
		box = box.Width(m.width - 2)
	}
	if m.height > 0 {
		box = box.Height(m.height - 2)
	}
	return box.Render(strings.Join(lines, "\n"))
}

// visibleLines renders two lines per plan, windowed around the cursor.
func (m PlanListModel) visibleLines() []string {
	const linesPerPlan = 2
	capacity := len(m.plans)
	if m.height > 0 {
		capacity = max((m.height-4)/linesPerPlan, 1)
	}

	start := 0
	if m.cursor >= capacity {
		start = m.cursor - capacity + 1
	}
	end := min(start+capacity, len(m.plans))

	var lines []string
	for i := start; i < end; i++ {
		lines = append(lines, m.formatPlan(i, m.plans[i])...)
	}
	return lines
}

func (m PlanListModel) formatPlan(index int, p plan.Summary) []string {
	indicator := "○"
	if p.ID == m.selectedID {
		indicator = "●"
	}

	goal := truncateWithEllipsis(p.Goal, max(m.width-8, 10))
	title := fmt.Sprintf("%s %s", indicator, goal)
	if index == m.cursor && m.focused {
		title = styles.SelectedStyle.Render(title)
	}

	meta := taskCount(p.TaskCount)
	if !p.CreatedAt.IsZero() {
		meta += " · " + humanize.RelTime(p.CreatedAt, m.now(), "ago", "from now")
	}
	return []string{title, "  " + styles.SubtleStyle.Render(meta)}
}

func taskCount(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}

// truncateWithEllipsis shortens s to maxLen runes.
func truncateWithEllipsis(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
