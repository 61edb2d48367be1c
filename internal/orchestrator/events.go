package orchestrator

import "github.com/dusk-indust/deckgen/internal/deck"

// EventType names a batch lifecycle event. The vocabulary is fixed; sinks
// may rely on no other values appearing.
type EventType string

const (
	EventBatchStart    EventType = "start-of-batch"
	EventTaskAdmitted  EventType = "task-admitted"
	EventUnitUpdated   EventType = "unit-updated"
	EventTaskTimeout   EventType = "task-timeout"
	EventTaskFailed    EventType = "task-failed"
	EventBatchComplete EventType = "batch-complete"
)

// BatchTotals summarizes a finished batch. Failed counts both backend
// failures and timeouts.
type BatchTotals struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Event is one progress notification. unit-updated events carry both the
// changed slide and the full ordered snapshot so a consumer can render
// incrementally or from scratch.
type Event struct {
	Type     EventType    `json:"type"`
	Topic    string       `json:"topic,omitempty"`
	Index    int          `json:"index,omitempty"`
	Backend  string       `json:"backend,omitempty"`
	Message  string       `json:"message,omitempty"`
	Slide    *deck.Slide  `json:"slide,omitempty"`
	Snapshot []deck.Slide `json:"snapshot,omitempty"`
	Totals   *BatchTotals `json:"totals,omitempty"`
}

// Reporter delivers events through a buffered channel. Delivery is
// fire-and-forget: when no consumer keeps up, events are dropped rather
// than blocking the batch.
type Reporter struct {
	ch chan Event
}

// NewReporter creates a Reporter with a buffered channel of size 64.
func NewReporter() *Reporter {
	return &Reporter{ch: make(chan Event, 64)}
}

// Emit sends an event in a non-blocking fashion. If the channel is full,
// the event is silently dropped.
func (r *Reporter) Emit(event Event) {
	select {
	case r.ch <- event:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming events.
func (r *Reporter) Subscribe() <-chan Event {
	return r.ch
}

// Close closes the event channel.
func (r *Reporter) Close() {
	close(r.ch)
}
