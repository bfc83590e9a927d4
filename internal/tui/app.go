// Package tui is the interactive terminal client for the planner API.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pablasso/smartplan/internal/client"
	"github.com/pablasso/smartplan/internal/plan"
	"github.com/pablasso/smartplan/internal/tui/components"
	"github.com/pablasso/smartplan/internal/tui/msgs"
	"github.com/pablasso/smartplan/internal/tui/styles"
	"github.com/pablasso/smartplan/internal/tui/views"
)

// Minimum terminal dimensions for the layout.
const (
	MinTerminalWidth  = 60
	MinTerminalHeight = 20
)

const (
	titleHeight     = 2
	formHeight      = 5
	statusBarHeight = 1
)

// Focus identifies the panel that receives keys.
type Focus int

const (
	FocusForm Focus = iota
	FocusList
	FocusDetail
)

// Model is the main Bubble Tea model that orchestrates all views.
type Model struct {
	ctx       context.Context
	store     *client.Store
	notices   *noticeQueue
	exportDir string

	form   views.GoalFormModel
	list   views.PlanListModel
	detail views.PlanDetailModel

	focus         Focus
	version       uint64
	modal         []client.Notice
	confirmDelete string

	width  int
	height int
}

// Run starts the TUI against api and blocks until the user quits.
func Run(ctx context.Context, api client.API, opts Options) error {
	p := tea.NewProgram(
		NewModel(ctx, api, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

// NewModel builds the root model with its own client store.
func NewModel(ctx context.Context, api client.API, opts Options) Model {
	q := &noticeQueue{}
	storeOpts := []client.Option{client.WithNotifier(q)}
	if opts.Logger != nil {
		storeOpts = append(storeOpts, client.WithLogger(opts.Logger))
	}

	m := Model{
		ctx:       ctx,
		store:     client.New(api, storeOpts...),
		notices:   q,
		exportDir: opts.ExportDir,
		form:      views.NewGoalFormModel(),
		list:      views.NewPlanListModel(),
		detail:    views.NewPlanDetailModel(),
	}
	m.form.Focus()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.form.Focus(), m.refresh())
}

// Focus returns the focused panel.
func (m Model) Focus() Focus {
	return m.focus
}

// Notices returns notices waiting to be acknowledged.
func (m Model) Notices() []client.Notice {
	return m.modal
}

// PendingDelete returns the plan awaiting delete confirmation, or "".
func (m Model) PendingDelete() string {
	return m.confirmDelete
}

// run executes op against the store off the UI goroutine and reports the
// resulting state.
func (m Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx, store, q := m.ctx, m.store, m.notices
	return func() tea.Msg {
		err := fn(ctx)
		return msgs.StateMsg{Op: op, State: store.Snapshot(), Notices: q.drain(), Err: err}
	}
}

func (m Model) refresh() tea.Cmd {
	return m.run("refresh", m.store.Refresh)
}

func (m Model) export(planID string) tea.Cmd {
	ctx, store, q := m.ctx, m.store, m.notices
	path := filepath.Join(m.exportDir, plan.ExportFileName(planID))
	return func() tea.Msg {
		err := writeExport(ctx, store, planID, path)
		notices := q.drain()
		if err == nil {
			notices = append(notices, client.Notice{Level: client.LevelInfo, Message: "Exported to " + path})
		}
		return msgs.ExportedMsg{Path: path, Notices: notices, Err: err}
	}
}

func writeExport(ctx context.Context, store *client.Store, planID, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := store.Export(ctx, planID, f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case msgs.StateMsg:
		return m.applyState(msg)

	case msgs.ExportedMsg:
		if msg.Err != nil && len(msg.Notices) == 0 {
			msg.Notices = []client.Notice{{Level: client.LevelError, Message: fmt.Sprintf("Error exporting plan: %v", msg.Err)}}
		}
		m.modal = append(m.modal, msg.Notices...)
		return m, nil

	case msgs.SubmitGoalMsg:
		goal := msg.Goal
		busy := m.form.SetBusy(true)
		return m, tea.Batch(busy, m.run("create", func(ctx context.Context) error {
			return m.store.Create(ctx, goal)
		}))

	case msgs.SelectPlanMsg:
		id := msg.PlanID
		return m, m.run("select", func(ctx context.Context) error {
			return m.store.Select(ctx, id)
		})

	case msgs.SetStatusMsg:
		return m, m.run("update", func(ctx context.Context) error {
			return m.store.UpdateTaskStatus(ctx, msg.PlanID, msg.TaskID, string(msg.Status))
		})

	case msgs.DeletePlanMsg:
		m.confirmDelete = msg.PlanID
		return m, nil

	case msgs.ExportPlanMsg:
		return m, m.export(msg.PlanID)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	if m.focus == FocusForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) applyState(msg msgs.StateMsg) (tea.Model, tea.Cmd) {
	m.modal = append(m.modal, msg.Notices...)

	var cmds []tea.Cmd
	// A rejected duplicate submit reports Creating while the first create
	// is still running, so the form stays locked until that one lands.
	if msg.Op == "create" {
		cmds = append(cmds, m.form.SetBusy(msg.State.Creating))
		if msg.Err == nil && !msg.State.Creating {
			m.form.Reset()
		}
	}

	if msg.State.Version >= m.version {
		m.version = msg.State.Version
		m.list.SetPlans(msg.State.Plans)
		m.detail.SetPlan(msg.State.Selected)
		selectedID := ""
		if msg.State.Selected != nil {
			selectedID = msg.State.Selected.ID
		}
		m.list.SetSelected(selectedID)
		if msg.Op == "create" && msg.Err == nil {
			m.list.MoveTo(selectedID)
		}
	}

	if msg.Op == "select" && msg.Err == nil && m.focus == FocusList {
		cmds = append(cmds, m.setFocus(FocusDetail))
	}
	if m.focus == FocusDetail && m.detail.Plan() == nil {
		cmds = append(cmds, m.setFocus(FocusList))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if len(m.modal) > 0 {
		m.modal = m.modal[1:]
		return m, nil
	}

	if m.confirmDelete != "" {
		switch key {
		case "y", "Y":
			id := m.confirmDelete
			m.confirmDelete = ""
			return m, m.run("delete", func(ctx context.Context) error {
				return m.store.DeleteConfirmed(ctx, id)
			})
		case "n", "N", "esc":
			m.confirmDelete = ""
		}
		return m, nil
	}

	switch key {
	case "tab":
		return m, m.setFocus(m.nextFocus(1))
	case "shift+tab":
		return m, m.setFocus(m.nextFocus(-1))
	}

	var cmd tea.Cmd
	if m.focus == FocusForm {
		if key == "esc" {
			return m, m.setFocus(FocusList)
		}
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "r":
		return m, m.refresh()
	case "esc":
		return m, m.setFocus(FocusForm)
	}

	switch m.focus {
	case FocusList:
		m.list, cmd = m.list.Update(msg)
	case FocusDetail:
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

// nextFocus steps through the panels, skipping the detail panel when no
// plan is selected.
func (m Model) nextFocus(step int) Focus {
	order := []Focus{FocusForm, FocusList}
	if m.detail.Plan() != nil {
		order = append(order, FocusDetail)
	}
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
		}
	}
	return order[(idx+step+len(order))%len(order)]
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	m.focus = f
	m.list.SetFocused(f == FocusList)
	m.detail.SetFocused(f == FocusDetail)
	if f == FocusForm {
		return m.form.Focus()
	}
	m.form.Blur()
	return nil
}

func (m *Model) layout() {
	m.form.SetWidth(m.width)
	panelHeight := max(m.height-titleHeight-formHeight-statusBarHeight, 3)
	listWidth := m.width / 3
	m.list.SetSize(listWidth, panelHeight)
	m.detail.SetSize(m.width-listWidth, panelHeight)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.width < MinTerminalWidth || m.height < MinTerminalHeight {
		return m.renderTerminalTooSmall()
	}
	if len(m.modal) > 0 {
		return m.renderNotice(m.modal[0])
	}
	if m.confirmDelete != "" {
		return m.renderConfirm()
	}

	title := styles.TitleStyle.Render("🎯 Smart Task Planner") + "  " +
		styles.SubtleStyle.Render("AI-Powered Task Breakdown System")
	panels := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.detail.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.form.View(),
		panels,
		components.NewStatusBar().Render(m.width, m.helpItems()),
	)
}

func (m Model) helpItems() []components.KeyHelp {
	switch m.focus {
	case FocusForm:
		return []components.KeyHelp{{Key: "Enter", Desc: "Generate"}, {Key: "Tab", Desc: "Plans"}, {Key: "Ctrl+C", Desc: "Quit"}}
	case FocusList:
		return []components.KeyHelp{{Key: "↑↓", Desc: "Navigate"}, {Key: "Enter", Desc: "View"}, {Key: "Tab", Desc: "Focus"}, {Key: "r", Desc: "Refresh"}, {Key: "q", Desc: "Quit"}}
	default:
		return []components.KeyHelp{{Key: "↑↓", Desc: "Task"}, {Key: "p/i/c", Desc: "Status"}, {Key: "Space", Desc: "Cycle"}, {Key: "x", Desc: "Export CSV"}, {Key: "d", Desc: "Delete"}, {Key: "q", Desc: "Quit"}}
	}
}

func (m Model) renderNotice(n client.Notice) string {
	text := styles.SuccessStyle.Render(n.Message)
	if n.Level == client.LevelError {
		text = styles.ErrorStyle.Render(n.Message)
	}
	box := styles.ModalStyle.Render(text + "\n\n" + styles.SubtleStyle.Render("Press any key"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderConfirm() string {
	goal := m.confirmDelete
	if p := m.detail.Plan(); p != nil && p.ID == m.confirmDelete {
		goal = p.Goal
	}
	body := strings.Join([]string{
		client.DeleteConfirmMsg,
		styles.SubtleStyle.Render(goal),
		"",
		styles.SubtleStyle.Render("y Yes • n No"),
	}, "\n")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, styles.ModalStyle.Render(body))
}

func (m Model) renderTerminalTooSmall() string {
	msg := strings.Join([]string{
		styles.ErrorStyle.Render("Terminal too small"),
		fmt.Sprintf("Minimum: %dx%d", MinTerminalWidth, MinTerminalHeight),
		fmt.Sprintf("Current: %dx%d", m.width, m.height),
	}, "\n")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}
