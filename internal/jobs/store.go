package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/dusk-indust/deckgen/internal/deck"
	"github.com/google/uuid"
)

// Store is a concurrency-safe in-memory job store. Jobs are kept in a map
// keyed by ID with a separate slice maintaining insertion order for
// deterministic listing and pagination.
type Store struct {
	mu       sync.RWMutex
	jobs     map[string]*Job
	orderIDs []string // insertion-order job IDs
}

// NewStore returns an initialized Store ready for use.
func NewStore() *Store {
	return &Store{
		jobs:     make(map[string]*Job),
		orderIDs: make([]string, 0),
	}
}

// Create stores a new job for req in submitted state and returns a copy.
func (s *Store) Create(req Request) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		State:     StateSubmitted,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[job.ID] = job
	s.orderIDs = append(s.orderIDs, job.ID)
	return copyJob(job)
}

// Get returns a copy of the job with the given ID. The copy is safe to
// mutate without affecting the store.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %q not found", id)
	}
	return copyJob(job), nil
}

// Update applies fn to the stored job under a write lock and bumps its
// UpdatedAt timestamp.
func (s *Store) Update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %q not found", id)
	}
	fn(job)
	job.UpdatedAt = time.Now().UTC()
	return nil
}

// ListRequest filters and paginates a job listing.
type ListRequest struct {
	// State limits results to jobs in that state when non-empty.
	State State

	// PageToken is the ID of the last job from the previous page; results
	// start after it in insertion order.
	PageToken string

	// PageSize <= 0 returns all matching jobs.
	PageSize int
}

// ListResponse is one page of jobs.
type ListResponse struct {
	Jobs          []Job  `json:"jobs"`
	TotalSize     int    `json:"totalSize"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// List returns jobs matching the filter in insertion order.
func (s *Store) List(filter ListRequest) (*ListResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	startIdx := 0
	if filter.PageToken != "" {
		found := false
		for i, id := range s.orderIDs {
			if id == filter.PageToken {
				startIdx = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("invalid page token %q", filter.PageToken)
		}
	}

	var matched []Job
	for i := startIdx; i < len(s.orderIDs); i++ {
		job := s.jobs[s.orderIDs[i]]
		if filter.State != "" && job.State != filter.State {
			continue
		}
		matched = append(matched, *copyJob(job))
	}

	totalBefore := 0
	for i := 0; i < startIdx; i++ {
		job := s.jobs[s.orderIDs[i]]
		if filter.State == "" || job.State == filter.State {
			totalBefore++
		}
	}

	// Total counts every match from the start of the listing, so it must
	// be taken before the page size truncates the tail.
	totalSize := totalBefore + len(matched)

	var nextPageToken string
	if filter.PageSize > 0 && len(matched) > filter.PageSize {
		nextPageToken = matched[filter.PageSize-1].ID
		matched = matched[:filter.PageSize]
	}
	if matched == nil {
		matched = []Job{}
	}

	return &ListResponse{
		Jobs:          matched,
		TotalSize:     totalSize,
		NextPageToken: nextPageToken,
	}, nil
}

// copyJob returns a Job that shares no mutable state with src. Slide
// values are plain data, so copying the slices is sufficient.
func copyJob(src *Job) *Job {
	dst := *src

	if src.Request.Backends != nil {
		dst.Request.Backends = make([]string, len(src.Request.Backends))
		copy(dst.Request.Backends, src.Request.Backends)
	}
	if src.Slides != nil {
		dst.Slides = make([]deck.Slide, len(src.Slides))
		copy(dst.Slides, src.Slides)
	}
	if src.Totals != nil {
		totals := *src.Totals
		dst.Totals = &totals
	}
	return &dst
}
