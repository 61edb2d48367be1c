package deck

import (
	"sort"
	"sync"
)

// Store is the shared aggregation point for one batch run. It maps slide
// index to the most recently produced Slide for that index and hands out
// ordered snapshots. Replace-by-index is idempotent: re-upserting an equal
// slide leaves the snapshot unchanged. A populated index is never dropped,
// even if a later attempt for the same index fails upstream.
//
// Store is safe for concurrent use by the task goroutines of one batch.
type Store struct {
	mu     sync.RWMutex
	slides map[int]Slide
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{slides: make(map[int]Slide)}
}

// Upsert records slide under its index, superseding any earlier slide for
// that index, and returns the updated ordered snapshot. Slides with a
// non-positive index are ignored and do not appear in snapshots.
func (s *Store) Upsert(slide Slide) []Slide {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slide.Index > 0 {
		s.slides[slide.Index] = slide
	}
	return s.snapshotLocked()
}

// Snapshot returns all stored slides sorted ascending by index. The result
// contains no duplicate indices and no index outside the populated range.
func (s *Store) Snapshot() []Slide {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Len reports how many indices are populated.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slides)
}

func (s *Store) snapshotLocked() []Slide {
	out := make([]Slide, 0, len(s.slides))
	for _, slide := range s.slides {
		out = append(out, slide)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
