package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pablasso/smartplan/internal/tui/msgs"
	"github.com/pablasso/smartplan/internal/tui/styles"
)

const goalPlaceholder = "Enter your goal (e.g., Build a mobile app)"

// GoalFormModel is the "Create New Plan" form. While a plan is being
// generated the input is disabled and a spinner is shown.
type GoalFormModel struct {
	input   textinput.Model
	spinner spinner.Model
	busy    bool
	focused bool
	width   int
}

// NewGoalFormModel creates an empty, unfocused form.
func NewGoalFormModel() GoalFormModel {
	ti := textinput.New()
	ti.Placeholder = goalPlaceholder
	ti.CharLimit = 500
	ti.Prompt = "› "

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	return GoalFormModel{input: ti, spinner: s}
}

// Focus gives the form keyboard focus.
func (m *GoalFormModel) Focus() tea.Cmd {
	m.focused = true
	if m.busy {
		return nil
	}
	return m.input.Focus()
}

// Blur removes keyboard focus.
func (m *GoalFormModel) Blur() {
	m.focused = false
	m.input.Blur()
}

// Focused reports whether the form has keyboard focus.
func (m GoalFormModel) Focused() bool {
	return m.focused
}

// SetBusy toggles the generating state. Entering it starts the spinner.
func (m *GoalFormModel) SetBusy(busy bool) tea.Cmd {
	if m.busy == busy {
		return nil
	}
	m.busy = busy
	if busy {
		m.input.Blur()
		return m.spinner.Tick
	}
	if m.focused {
		return m.input.Focus()
	}
	return nil
}

// Busy reports whether a plan is being generated.
func (m GoalFormModel) Busy() bool {
	return m.busy
}

// Reset clears the input.
func (m *GoalFormModel) Reset() {
	m.input.SetValue("")
}

// Value returns the current input.
func (m GoalFormModel) Value() string {
	return m.input.Value()
}

// SetValue replaces the current input.
func (m *GoalFormModel) SetValue(v string) {
	m.input.SetValue(v)
}

// SetWidth updates the form width.
func (m *GoalFormModel) SetWidth(width int) {
	m.width = width
	m.input.Width = max(width-8, 10)
}

// Update handles typing and submission.
func (m GoalFormModel) Update(msg tea.Msg) (GoalFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.focused || m.busy {
			return m, nil
		}
		if msg.Type == tea.KeyEnter {
			goal := strings.TrimSpace(m.input.Value())
			if goal == "" {
				return m, nil
			}
			return m, func() tea.Msg { return msgs.SubmitGoalMsg{Goal: goal} }
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the form.
func (m GoalFormModel) View() string {
	var b strings.Builder
	b.WriteString(styles.HeadingStyle.Render("Create New Plan"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.busy {
		b.WriteString(m.spinner.View() + styles.WarningStyle.Render(" Generating Plan..."))
	} else {
		b.WriteString(styles.SubtleStyle.Render("Enter Generate Plan"))
	}

	box := styles.BoxStyle
	if m.focused {
		box = styles.FocusedBoxStyle
	}
	if m.width > 0 {
		box = box.Width(m.width - 2)
	}
	return box.Render(b.String())
}
