// Package jobs provides the asynchronous batch-submission mode: a deck
// request is submitted as a job, picked up by a worker, and its result
// polled later. Job state lives in an in-memory store for the lifetime of
// the process; delivery guarantees do not survive a restart.
package jobs

import (
	"time"

	"github.com/dusk-indust/deckgen/internal/deck"
	"github.com/dusk-indust/deckgen/internal/orchestrator"
)

// State is the lifecycle state of a job.
type State string

const (
	StateSubmitted State = "submitted"
	StateWorking   State = "working"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// IsTerminal reports whether a job in this state will never change again.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Request holds the parameters of one deck generation.
type Request struct {
	Topic    string        `json:"topic"`
	Slides   int           `json:"slides"`
	Backends []string      `json:"backends"`
	Theme    string        `json:"theme,omitempty"`
	Window   int           `json:"window,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

// Job tracks one submitted deck request through its lifecycle.
type Job struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Request   Request   `json:"request"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Error is set when State is failed.
	Error string `json:"error,omitempty"`

	// Totals and Slides are set when State is completed. Slides is the
	// best-effort ordered snapshot; Markdown is its interchange form.
	Totals   *orchestrator.BatchTotals `json:"totals,omitempty"`
	Slides   []deck.Slide              `json:"slides,omitempty"`
	Markdown string                    `json:"markdown,omitempty"`
}
