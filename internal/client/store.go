// Package client holds the plan client's state and the operations that
// change it.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/pablasso/smartplan/internal/plan"
)

var (
	ErrEmptyGoal      = errors.New("goal must not be empty")
	ErrCreateInFlight = errors.New("a plan is already being created")
	ErrDeleteDeclined = errors.New("delete not confirmed")
	ErrStale          = errors.New("response superseded by a newer request")
)

// User-facing notice texts.
const (
	MsgPlanCreated   = "Plan created successfully!"
	MsgPlanDeleted   = "Plan deleted successfully!"
	MsgCreateFailed  = "Error creating plan."
	MsgDeleteFailed  = "Error deleting plan."
	MsgListFailed    = "Error loading plans."
	MsgSelectFailed  = "Error loading plan."
	MsgUpdateFailed  = "Error updating task status."
	MsgExportFailed  = "Error exporting plan."
	DeleteConfirmMsg = "Are you sure you want to delete this plan?"
)

// API is the transport the store drives.
type API interface {
	ListPlans(ctx context.Context) ([]plan.Summary, error)
	CreatePlan(ctx context.Context, goal string) (string, error)
	GetPlan(ctx context.Context, id string) (*plan.Plan, error)
	UpdateTaskStatus(ctx context.Context, planID string, taskID int, status plan.Status) error
	DeletePlan(ctx context.Context, id string) error
	ExportCSV(ctx context.Context, id string, w io.Writer) error
	ExportURL(id string) string
}

// Level is the severity of a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a message shown to the user until acknowledged.
type Notice struct {
	Level   Level
	Message string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// State is a point-in-time copy of the store.
type State struct {
	Plans    []plan.Summary
	Selected *plan.Plan
	Creating bool
	// Version increases with every change, so consumers can drop snapshots
	// that arrive out of order.
	Version uint64
}

// Empty reports whether there are no plans. It is a valid state, not an error.
func (s State) Empty() bool { return len(s.Plans) == 0 }

// Store keeps the plan list and at most one selected plan, and routes every
// mutation through the API.
//
// Invalidation contract: each mutating operation reloads what it invalidates
// before returning.
//
//	Create           -> plan list, selected plan (the new plan)
//	UpdateTaskStatus -> selected plan
//	Delete           -> plan list, selected plan (cleared)
//
// Derived fields (progress, task counts) always come from the server.
// Every Select takes a ticket; a response whose ticket is no longer the
// latest is discarded with ErrStale. Clearing the selection also advances
// the ticket, so a select started before a delete cannot resurrect it.
type Store struct {
	api     API
	notify  Notifier
	confirm Confirmer
	logger  *log.Logger

	mu           sync.Mutex
	plans        []plan.Summary
	selected     *plan.Plan
	creating     bool
	selectTicket uint64
	listTicket   uint64
	version      uint64
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets where notices go. The default drops them.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notify = n }
}

// WithConfirmer sets the delete confirmation. The default declines.
func WithConfirmer(c Confirmer) Option {
	return func(s *Store) { s.confirm = c }
}

// WithLogger sets the diagnostic logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns an empty store backed by api.
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:     api,
		notify:  NotifierFunc(func(Notice) {}),
		confirm: ConfirmFunc(func(string) bool { return false }),
		logger:  log.New(io.Discard, "", 0),
		plans:   []plan.Summary{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	plans := make([]plan.Summary, len(s.plans))
	copy(plans, s.plans)
	return State{
		Plans:    plans,
		Selected: s.selected.Clone(),
		Creating: s.creating,
		Version:  s.version,
	}
}

func (s *Store) fail(op, msg string, err error) error {
	s.logger.Printf("%s: %v", op, err)
	s.notify.Notify(Notice{Level: LevelError, Message: msg})
	return err
}

func (s *Store) info(msg string) {
	s.notify.Notify(Notice{Level: LevelInfo, Message: msg})
}

// Refresh reloads the plan list. On failure the previous list is kept.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.listTicket++
	ticket := s.listTicket
	s.mu.Unlock()

	plans, err := s.api.ListPlans(ctx)
	if err != nil {
		return s.fail("list plans", MsgListFailed, err)
	}
	if plans == nil {
		plans = []plan.Summary{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.listTicket {
		return ErrStale
	}
	s.plans = plans
	s.version++
	return nil
}

// Create submits goal, then reloads the list and selects the new plan.
// Only one create may be in flight.
func (s *Store) Create(ctx context.Context, goal string) error {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return ErrEmptyGoal
	}

	s.mu.Lock()
	if s.creating {
		s.mu.Unlock()
		return ErrCreateInFlight
	}
	s.creating = true
	s.version++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.creating = false
		s.version++
		s.mu.Unlock()
	}()

	id, err := s.api.CreatePlan(ctx, goal)
	if err != nil {
		return s.fail("create plan", MsgCreateFailed, err)
	}
	s.info(MsgPlanCreated)

	refreshErr := s.Refresh(ctx)
	selectErr := s.Select(ctx, id)
	return errors.Join(ignoreStale(refreshErr), selectErr)
}

// Select loads the full plan and makes it the selected plan. On failure the
// previous selection stays.
func (s *Store) Select(ctx context.Context, id string) error {
	s.mu.Lock()
	s.selectTicket++
	ticket := s.selectTicket
	s.mu.Unlock()

	p, err := s.api.GetPlan(ctx, id)

	s.mu.Lock()
	stale := ticket != s.selectTicket
	if err == nil && !stale {
		s.selected = p
		s.version++
	}
	s.mu.Unlock()

	if stale {
		if err != nil {
			s.logger.Printf("get plan %s (superseded): %v", id, err)
		}
		return ErrStale
	}
	if err != nil {
		return s.fail("get plan "+id, MsgSelectFailed, err)
	}
	return nil
}

// UpdateTaskStatus changes one task's status on the server and then reloads
// the plan so progress reflects the server's computation.
func (s *Store) UpdateTaskStatus(ctx context.Context, planID string, taskID int, status string) error {
	parsed, err := plan.ParseStatus(status)
	if err != nil {
		return err
	}
	if err := s.api.UpdateTaskStatus(ctx, planID, taskID, parsed); err != nil {
		return s.fail(fmt.Sprintf("update task %s/%d", planID, taskID), MsgUpdateFailed, err)
	}
	return s.Select(ctx, planID)
}

// Delete asks for confirmation, deletes the plan, clears the selection and
// reloads the list. Declining changes nothing.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !s.confirm.Confirm(DeleteConfirmMsg) {
		return ErrDeleteDeclined
	}
	return s.DeleteConfirmed(ctx, id)
}

// DeleteConfirmed deletes without asking. Callers that run their own
// confirmation, such as the terminal UI, use it after the user agreed.
func (s *Store) DeleteConfirmed(ctx context.Context, id string) error {
	if err := s.api.DeletePlan(ctx, id); err != nil {
		return s.fail("delete plan "+id, MsgDeleteFailed, err)
	}
	s.info(MsgPlanDeleted)

	s.mu.Lock()
	s.selected = nil
	s.selectTicket++
	s.version++
	s.mu.Unlock()

	return ignoreStale(s.Refresh(ctx))
}

// ExportURL returns the CSV download location for a plan.
func (s *Store) ExportURL(id string) string {
	return s.api.ExportURL(id)
}

// Export copies the plan's CSV export to w without interpreting it.
func (s *Store) Export(ctx context.Context, id string, w io.Writer) error {
	if err := s.api.ExportCSV(ctx, id, w); err != nil {
		return s.fail("export plan "+id, MsgExportFailed, err)
	}
	return nil
}

func ignoreStale(err error) error {
	if errors.Is(err, ErrStale) {
		return nil
	}
	return err
}
