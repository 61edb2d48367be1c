package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dusk-indust/deckgen/internal/backend"
	"github.com/dusk-indust/deckgen/internal/deck"
	"github.com/dusk-indust/deckgen/internal/imagery"
	"github.com/dusk-indust/deckgen/internal/parse"
	"go.uber.org/zap"
)

// DefaultWindow is the concurrency window used when none is configured.
const DefaultWindow = 4

// Scheduler runs one batch of slide-generation tasks under a bounded
// concurrency window, racing every task against a per-task timeout and
// aggregating parsed slides into an ordered deck as they appear.
type Scheduler struct {
	registry *backend.Registry
	resolver *imagery.Resolver
	reporter *Reporter
	logger   *zap.Logger
}

// NewScheduler wires a Scheduler. reporter and logger may be nil; a nil
// reporter disables event delivery.
func NewScheduler(registry *backend.Registry, resolver *imagery.Resolver, reporter *Reporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		registry: registry,
		resolver: resolver,
		reporter: reporter,
		logger:   logger,
	}
}

// BatchResult is the terminal state of one batch run.
type BatchResult struct {
	Topic  string
	Totals BatchTotals

	// Slides is the best-effort final snapshot: ordered, deduplicated,
	// possibly shorter than Totals.Total when some indices never resolved.
	Slides []deck.Slide

	// Failures maps each unresolved index to its terminal error.
	Failures map[int]error
}

// outcome is the terminal report of one task execution. Late results from
// an execution whose timer already fired never produce an outcome: an
// abandoned attempt writes into its own buffered channel and is discarded.
type outcome struct {
	index    int
	err      error
	timedOut bool
}

// Run executes tasks with at most window concurrently active and each task
// raced against perTaskTimeout. It admits min(window, len(tasks)) tasks
// immediately, refills each freed slot eagerly with exactly one queued
// task, and terminates only when the queue is empty and nothing remains in
// flight. perTaskTimeout <= 0 disables the race.
//
// Per-task failures and timeouts are isolated: they mark that index
// terminal and never abort the batch. Run itself fails only on invalid
// parameters.
func (s *Scheduler) Run(ctx context.Context, topic string, tasks []Task, window int, perTaskTimeout time.Duration) (*BatchResult, error) {
	if window < 1 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("window must be >= 1, got %d", window)}
	}
	if err := checkIndices(tasks); err != nil {
		return nil, err
	}

	store := deck.NewStore()
	s.emit(Event{Type: EventBatchStart, Topic: topic, Totals: &BatchTotals{Total: len(tasks)}})

	var (
		pending  = tasks
		inflight = 0
		resCh    = make(chan outcome)
		failures = make(map[int]error)
	)

	admit := func() {
		task := pending[0]
		pending = pending[1:]
		inflight++
		s.emit(Event{Type: EventTaskAdmitted, Topic: topic, Index: task.Index, Backend: task.Backend})
		go s.execute(ctx, topic, task, perTaskTimeout, store, resCh)
	}

	// Front-loaded burst: fill the whole window immediately to minimize
	// time to first slide.
	for inflight < window && len(pending) > 0 {
		admit()
	}

	for inflight > 0 {
		out := <-resCh
		inflight--

		switch {
		case out.timedOut:
			failures[out.index] = out.err
			s.logger.Warn("task timed out", zap.Int("index", out.index))
			s.emit(Event{Type: EventTaskTimeout, Topic: topic, Index: out.index, Message: out.err.Error()})
		case out.err != nil:
			failures[out.index] = out.err
			s.logger.Warn("task failed", zap.Int("index", out.index), zap.Error(out.err))
			s.emit(Event{Type: EventTaskFailed, Topic: topic, Index: out.index, Message: out.err.Error()})
		}

		// Eager refill: exactly one queued task per freed slot.
		if len(pending) > 0 {
			admit()
		}
	}

	snapshot := store.Snapshot()
	totals := BatchTotals{
		Total:     len(tasks),
		Succeeded: len(tasks) - len(failures),
		Failed:    len(failures),
	}
	s.emit(Event{
		Type:     EventBatchComplete,
		Topic:    topic,
		Snapshot: snapshot,
		Totals:   &totals,
	})
	s.logger.Info("batch complete",
		zap.String("topic", topic),
		zap.Int("total", totals.Total),
		zap.Int("succeeded", totals.Succeeded),
		zap.Int("failed", totals.Failed))

	return &BatchResult{
		Topic:    topic,
		Totals:   totals,
		Slides:   snapshot,
		Failures: failures,
	}, nil
}

// execute races one task's generation against its timeout. Cancellation on
// timeout is best-effort: a backend call with no cancellation hook keeps
// running, but its eventual result lands in the abandoned buffered channel
// and is silently discarded rather than reaching a reassigned slot.
func (s *Scheduler) execute(ctx context.Context, topic string, task Task, timeout time.Duration, store *deck.Store, resCh chan<- outcome) {
	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.generate(attemptCtx, topic, task, store)
	}()

	var fired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		fired = timer.C
	}

	select {
	case err := <-done:
		resCh <- outcome{index: task.Index, err: err}
	case <-fired:
		cancel()
		resCh <- outcome{index: task.Index, err: fmt.Errorf("%w after %s", ErrTaskTimeout, timeout), timedOut: true}
	case <-ctx.Done():
		resCh <- outcome{index: task.Index, err: ctx.Err()}
	}
}

// generate drives one task: pull fragments from the backend, feed them to
// the task's own parser, and upsert every newly recognized slide. A
// non-streaming backend is modeled as a one-fragment stream.
func (s *Scheduler) generate(ctx context.Context, topic string, task Task, store *deck.Store) error {
	b, err := s.registry.Lookup(task.Backend)
	if err != nil {
		return err
	}

	parser := parse.New(task.Index, task.ThemeHint, s.resolver, s.logger)
	var last deck.Slide
	var emitted bool

	consume := func(fragment string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		slide := parser.Append(ctx, fragment)
		if slide == nil || (emitted && last == *slide) {
			return nil
		}
		last, emitted = *slide, true
		snapshot := store.Upsert(*slide)
		s.emit(Event{
			Type:     EventUnitUpdated,
			Topic:    topic,
			Index:    task.Index,
			Backend:  task.Backend,
			Slide:    slide,
			Snapshot: snapshot,
		})
		return nil
	}

	if streamer, ok := b.(backend.Streamer); ok {
		err = streamer.Stream(ctx, task.Prompt, consume)
	} else {
		var text string
		text, err = b.Complete(ctx, task.Prompt)
		if err == nil {
			err = consume(text)
		}
	}
	if err != nil {
		return err
	}
	if !emitted {
		return fmt.Errorf("backend %s produced no recognizable slide for index %d", task.Backend, task.Index)
	}
	return nil
}

// emit forwards an event when a reporter is attached.
func (s *Scheduler) emit(ev Event) {
	if s.reporter != nil {
		s.reporter.Emit(ev)
	}
}

// checkIndices verifies that task indices are contiguous 1..N.
func checkIndices(tasks []Task) error {
	seen := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		if t.Index < 1 || t.Index > len(tasks) {
			return &ConfigurationError{Reason: fmt.Sprintf("task index %d outside 1..%d", t.Index, len(tasks))}
		}
		if seen[t.Index] {
			return &ConfigurationError{Reason: fmt.Sprintf("duplicate task index %d", t.Index)}
		}
		seen[t.Index] = true
	}
	return nil
}

// IsTimeout reports whether err marks a per-task timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTaskTimeout)
}
