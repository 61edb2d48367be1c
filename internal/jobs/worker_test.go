package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dusk-indust/deckgen/internal/backend"
	"github.com/dusk-indust/deckgen/internal/imagery"
	"github.com/dusk-indust/deckgen/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures published events per job.
type recordingSink struct {
	mu     sync.Mutex
	events map[string][]orchestrator.Event
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(map[string][]orchestrator.Event)}
}

func (s *recordingSink) Publish(jobID string, ev orchestrator.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[jobID] = append(s.events[jobID], ev)
}

func (s *recordingSink) forJob(jobID string) []orchestrator.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]orchestrator.Event(nil), s.events[jobID]...)
}

func echoBackend(t *testing.T) backend.Backend {
	t.Helper()
	return backend.NewMock("echo", func(prompt string) (string, error) {
		var pos, total int
		if _, err := fmt.Sscanf(prompt, "You are writing slide %d of a %d-slide", &pos, &total); err != nil {
			return "", err
		}
		return fmt.Sprintf("# Slide %d\n\nBody %d.\n", pos, pos), nil
	})
}

func newTestWorker(t *testing.T, sink EventSink) (*Worker, *Store) {
	t.Helper()
	registry := backend.NewRegistry()
	require.NoError(t, registry.Register(echoBackend(t)))

	store := NewStore()
	worker := NewWorker(store, registry, imagery.NewResolver(nil), sink, nil)
	return worker, store
}

// waitTerminal polls until the job reaches a terminal state.
func waitTerminal(t *testing.T, store *Store, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.Get(id)
		require.NoError(t, err)
		if job.State.IsTerminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return nil
}

func TestWorker_SubmitInvalidRequestRejected(t *testing.T) {
	worker, store := newTestWorker(t, nil)

	_, err := worker.Submit(Request{Topic: "t", Slides: 0, Backends: []string{"echo"}})
	var cfgErr *orchestrator.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	// Nothing may be stored for a rejected request.
	resp, err := store.List(ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Jobs)
}

func TestWorker_RunsJobToCompletion(t *testing.T) {
	sink := newRecordingSink()
	worker, store := newTestWorker(t, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx, 1)

	job, err := worker.Submit(Request{Topic: "launch", Slides: 3, Backends: []string{"echo"}})
	require.NoError(t, err)

	done := waitTerminal(t, store, job.ID)
	require.Equal(t, StateCompleted, done.State)
	require.NotNil(t, done.Totals)
	assert.Equal(t, 3, done.Totals.Succeeded)
	require.Len(t, done.Slides, 3)
	assert.Contains(t, done.Markdown, "## Slide 1")
	assert.Contains(t, done.Markdown, "## Slide 3")

	events := sink.forJob(job.ID)
	require.NotEmpty(t, events)
	assert.Equal(t, orchestrator.EventBatchStart, events[0].Type)
	assert.Equal(t, orchestrator.EventBatchComplete, events[len(events)-1].Type)
}

func TestWorker_UnknownBackendProducesFailedSlides(t *testing.T) {
	worker, store := newTestWorker(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx, 1)

	// The name passes build validation but is not registered, so every
	// task fails while the batch itself completes.
	job, err := worker.Submit(Request{Topic: "launch", Slides: 2, Backends: []string{"ghost"}})
	require.NoError(t, err)

	done := waitTerminal(t, store, job.ID)
	require.Equal(t, StateCompleted, done.State)
	require.NotNil(t, done.Totals)
	assert.Equal(t, 2, done.Totals.Failed)
	assert.Empty(t, done.Slides)
}

// stateAtCompleteSink records the stored job state at the instant the
// terminal event is published.
type stateAtCompleteSink struct {
	store *Store

	mu       sync.Mutex
	state    State
	observed bool
}

func (s *stateAtCompleteSink) Publish(jobID string, ev orchestrator.Event) {
	if ev.Type != orchestrator.EventBatchComplete {
		return
	}
	job, err := s.store.Get(jobID)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.state, s.observed = job.State, true
	s.mu.Unlock()
}

func TestWorker_JobIsTerminalBeforeCompleteEventPublished(t *testing.T) {
	sink := &stateAtCompleteSink{}
	worker, store := newTestWorker(t, sink)
	sink.store = store

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx, 1)

	job, err := worker.Submit(Request{Topic: "launch", Slides: 2, Backends: []string{"echo"}})
	require.NoError(t, err)
	waitTerminal(t, store, job.ID)

	// The event is published just after the terminal store update; give
	// it the same deadline the state poll gets.
	deadline := time.Now().Add(5 * time.Second)
	for {
		sink.mu.Lock()
		observed, state := sink.observed, sink.state
		sink.mu.Unlock()
		if observed {
			assert.Equal(t, StateCompleted, state)
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("terminal event was never published")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestWorker_ConcurrentJobsAllComplete(t *testing.T) {
	worker, store := newTestWorker(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Start(ctx, 3)

	var ids []string
	for i := 0; i < 5; i++ {
		job, err := worker.Submit(Request{Topic: fmt.Sprintf("topic %d", i), Slides: 2, Backends: []string{"echo"}})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	for _, id := range ids {
		done := waitTerminal(t, store, id)
		assert.Equal(t, StateCompleted, done.State)
	}
}
