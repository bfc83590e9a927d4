package tui

import (
	"log"
	"sync"

	"github.com/pablasso/smartplan/internal/client"
)

// Options configures TUI startup behavior.
type Options struct {
	// Logger receives diagnostics. Writing to the terminal would corrupt
	// the alt screen, so nil discards.
	Logger *log.Logger
	// ExportDir is where CSV exports are written. Empty means the working
	// directory.
	ExportDir string
}

// noticeQueue collects store notices until the next state message picks
// them up.
type noticeQueue struct {
	mu      sync.Mutex
	pending []client.Notice
}

func (q *noticeQueue) Notify(n client.Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, n)
}

func (q *noticeQueue) drain() []client.Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}
