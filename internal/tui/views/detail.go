package views

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/tui/components"
	"github.com/pablasso/smartplan/internal/tui/msgs"
	"github.com/pablasso/smartplan/internal/tui/styles"
)

// headerLines is the goal, progress bar and a blank line above the tasks.
const headerLines = 3

// PlanDetailModel shows the selected plan and its tasks.
type PlanDetailModel struct {
	plan    *plan.Plan
	cursor  int
	focused bool
	pane    components.Pane
	spans   [][2]int // first and last pane line of each task
	width   int
	height  int
}

// NewPlanDetailModel creates a detail panel with nothing selected.
func NewPlanDetailModel() PlanDetailModel {
	return PlanDetailModel{pane: components.NewPane(0, 0)}
}

// SetPlan replaces the shown plan. The task cursor stays on the same task
// number when the plan is unchanged.
func (m *PlanDetailModel) SetPlan(p *plan.Plan) {
	var keepTask int
	if m.plan != nil && p != nil && m.plan.ID == p.ID && m.cursor < len(m.plan.Tasks) {
		keepTask = m.plan.Tasks[m.cursor].ID
	}
	samePlan := keepTask != 0

	m.plan = p
	m.cursor = 0
	if p != nil && samePlan {
		for i, t := range p.Tasks {
			if t.ID == keepTask {
				m.cursor = i
				break
			}
		}
	}
	m.rebuild()
	if !samePlan {
		m.pane.GotoTop()
	}
}

// Plan returns the shown plan, or nil.
func (m PlanDetailModel) Plan() *plan.Plan {
	return m.plan
}

// Cursor returns the index of the highlighted task.
func (m PlanDetailModel) Cursor() int {
	return m.cursor
}

// SetFocused sets whether the panel receives keys.
func (m *PlanDetailModel) SetFocused(focused bool) {
	m.focused = focused
	m.rebuild()
}

// SetSize updates the model dimensions.
func (m *PlanDetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.pane.SetSize(max(width-4, 0), max(height-2-headerLines, 1))
	m.rebuild()
}

// Update handles task navigation and plan actions.
func (m PlanDetailModel) Update(msg tea.Msg) (PlanDetailModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused || m.plan == nil {
		return m, nil
	}
	planID := m.plan.ID

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.rebuild()
		}
	case "down", "j":
		if m.cursor < len(m.plan.Tasks)-1 {
			m.cursor++
			m.rebuild()
		}
	case "p":
		return m, m.setStatus(plan.StatusPending)
	case "i":
		return m, m.setStatus(plan.StatusInProgress)
	case "c":
		return m, m.setStatus(plan.StatusCompleted)
	case " ":
		if task := m.current(); task != nil {
			return m, m.setStatus(task.Status.Next())
		}
	case "d":
		return m, func() tea.Msg { return msgs.DeletePlanMsg{PlanID: planID} }
	case "x":
		return m, func() tea.Msg { return msgs.ExportPlanMsg{PlanID: planID} }
	}
	return m, nil
}

func (m PlanDetailModel) current() *plan.Task {
	if m.plan == nil || m.cursor >= len(m.plan.Tasks) {
		return nil
	}
	return &m.plan.Tasks[m.cursor]
}

func (m PlanDetailModel) setStatus(status plan.Status) tea.Cmd {
	task := m.current()
	if task == nil || task.Status == status {
		return nil
	}
	sm := msgs.SetStatusMsg{PlanID: m.plan.ID, TaskID: task.ID, Status: status}
	return func() tea.Msg { return sm }
}

// rebuild re-renders the task lines into the pane.
func (m *PlanDetailModel) rebuild() {
	if m.plan == nil {
		m.pane.SetLines(nil)
		m.spans = nil
		return
	}

	width := max(m.pane.ContentWidth(), 20)
	var lines []string
	m.spans = make([][2]int, len(m.plan.Tasks))
	for i, task := range m.plan.Tasks {
		first := len(lines)
		lines = append(lines, renderTask(task, i == m.cursor && m.focused, width)...)
		m.spans[i] = [2]int{first, len(lines) - 1}
		lines = append(lines, "")
	}
	m.pane.SetLines(lines)
	if m.cursor < len(m.spans) {
		m.pane.EnsureVisible(m.spans[m.cursor][0], m.spans[m.cursor][1])
	}
}

func renderTask(task plan.Task, highlighted bool, width int) []string {
	marker := " "
	if highlighted {
		marker = styles.SelectedStyle.Render("▶")
	}

	name := fmt.Sprintf("#%d %s", task.ID, task.Name)
	if highlighted {
		name = styles.SelectedStyle.Render(name)
	} else {
		name = styles.HeadingStyle.Render(name)
	}
	badge := styles.Priority(task.Priority).Render(task.Priority.Display())
	lines := []string{marker + " " + name + "  " + badge}

	if desc := strings.TrimSpace(task.Description); desc != "" {
		wrapped := lipgloss.NewStyle().Width(max(width-2, 10)).Render(desc)
		for _, l := range strings.Split(wrapped, "\n") {
			lines = append(lines, "  "+l)
		}
	}

	meta := fmt.Sprintf("⏱ %s days", strconv.FormatFloat(task.EstimatedDays, 'f', -1, 64))
	if d := task.EstimatedDuration; d != nil && d.Unit != "" && d.Unit != "days" {
		meta += " (" + d.String() + ")"
	}
	if deps := task.DependsOnLabel(); deps != "" {
		meta += "   " + deps
	}
	lines = append(lines, "  "+styles.SubtleStyle.Render(meta))
	lines = append(lines, "  Status: "+styles.Status(task.Status).Render(task.Status.Label()))
	return lines
}

// View renders the panel.
func (m PlanDetailModel) View() string {
	var content string
	if m.plan == nil {
		content = styles.SubtleStyle.Render("Select a plan to see its tasks.")
	} else {
		barWidth := min(max(m.width-24, 10), 40)
		header := []string{
			styles.HeadingStyle.Render("📋 " + truncateWithEllipsis(m.plan.Goal, max(m.width-8, 10))),
			components.NewProgress(int(m.plan.Progress), barWidth).View(),
			"",
		}
		content = strings.Join(header, "\n") + "\n" + m.pane.View()
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
	return box.Render(content)
}
