package httpapi

import (
	"sync"

	"github.com/dusk-indust/deckgen/internal/orchestrator"
)

// subscriberBuffer is the per-subscriber channel capacity. A subscriber
// that falls this far behind starts losing events rather than stalling
// the publishing job.
const subscriberBuffer = 64

// Hub fans batch events out to SSE subscribers, keyed by job ID. It
// implements jobs.EventSink.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan orchestrator.Event]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan orchestrator.Event]struct{})}
}

// Publish delivers ev to every subscriber of jobID. Delivery is
// non-blocking; slow subscribers drop events.
func (h *Hub) Publish(jobID string, ev orchestrator.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[jobID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe returns a channel of events for jobID and a cancel function.
// The caller must call cancel when done; the channel is closed by cancel.
func (h *Hub) Subscribe(jobID string) (<-chan orchestrator.Event, func()) {
	ch := make(chan orchestrator.Event, subscriberBuffer)

	h.mu.Lock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[chan orchestrator.Event]struct{})
	}
	h.subs[jobID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[jobID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, jobID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}
