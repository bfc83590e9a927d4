// Package display draws a single self-updating status line on a terminal
// while the CLI waits on a slow request.
package display

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Status represents the state of the awaited operation.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusRunning:
		return "Running"
	case StatusCompleted:
		return "Completed"
	case StatusFailed:
		return "Failed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

const maxLabelRunes = 48

// State holds the current display state.
type State struct {
	Label     string
	Status    Status
	StartTime time.Time
}

// Display manages the terminal status line.
type Display struct {
	mu       sync.Mutex
	writer   io.Writer
	state    State
	ticker   *time.Ticker
	done     chan struct{}
	wg       sync.WaitGroup
	active   bool
	lastLine string
}

// New creates a new Display writing to the given writer.
func New(w io.Writer) *Display {
	return &Display{writer: w}
}

// IsTerminal reports whether w is an interactive terminal. The status line
// relies on carriage returns, so callers skip it otherwise.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Start shows label with a running clock until Stop. Calling Start on an
// active display is a no-op.
func (d *Display) Start(label string) {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return
	}
	d.active = true
	d.state = State{Label: label, Status: StatusRunning, StartTime: time.Now()}
	d.lastLine = ""
	d.done = make(chan struct{})
	d.ticker = time.NewTicker(time.Second)
	d.wg.Add(1)
	d.mu.Unlock()

	go d.updateLoop()
}

// Stop halts the update loop and clears the status line. It blocks until the
// loop goroutine has exited.
func (d *Display) Stop() {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return
	}
	d.active = false
	d.mu.Unlock()

	d.ticker.Stop()
	close(d.done)
	d.wg.Wait()
	d.clearLine()
}

// Active reports whether the status line is being drawn.
func (d *Display) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// UpdateStatus updates the operation status.
func (d *Display) UpdateStatus(status Status) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Status = status
}

func (d *Display) updateLoop() {
	defer d.wg.Done()
	d.render()
	for {
		select {
		case <-d.ticker.C:
			d.render()
		case <-d.done:
			return
		}
	}
}

func (d *Display) render() {
	d.mu.Lock()
	state := d.state
	lastLine := d.lastLine
	d.mu.Unlock()

	line := formatLine(state, time.Since(state.StartTime))

	// Only update if changed (reduces flicker)
	if line == lastLine {
		return
	}

	d.mu.Lock()
	d.lastLine = line
	d.mu.Unlock()

	fmt.Fprintf(d.writer, "\r\033[K%s", line)
}

func formatLine(state State, elapsed time.Duration) string {
	if state.Label == "" {
		return ""
	}

	label := []rune(state.Label)
	if len(label) > maxLabelRunes {
		label = append(label[:maxLabelRunes-3], []rune("...")...)
	}

	return fmt.Sprintf("⏳ %s │ ⏱ %s │ %s", string(label), formatDuration(elapsed), state.Status)
}

func (d *Display) clearLine() {
	fmt.Fprint(d.writer, "\r\033[K")
}

// PrintAbove prints a message above the status line.
func (d *Display) PrintAbove(format string, args ...any) {
	d.clearLine()
	fmt.Fprintf(d.writer, format+"\n", args...)
	d.mu.Lock()
	d.lastLine = ""
	active := d.active
	d.mu.Unlock()
	if active {
		d.render()
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
