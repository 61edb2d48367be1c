package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dusk-indust/deckgen/internal/backend"
	"github.com/dusk-indust/deckgen/internal/deck"
	"github.com/dusk-indust/deckgen/internal/imagery"
	"github.com/dusk-indust/deckgen/internal/orchestrator"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds one slide generation when a request does not set
// its own.
const DefaultTimeout = 60 * time.Second

// queueCapacity bounds how many submitted jobs may wait for a worker.
const queueCapacity = 64

// EventSink receives the batch events of a running job, tagged with the
// job ID. Publish must not block.
type EventSink interface {
	Publish(jobID string, ev orchestrator.Event)
}

// Worker drains submitted jobs from its queue and runs each through its
// own scheduler. Several jobs may run concurrently; each job's task
// concurrency is governed by its request window.
type Worker struct {
	store    *Store
	registry *backend.Registry
	resolver *imagery.Resolver
	sink     EventSink
	logger   *zap.Logger
	queue    chan string
}

// NewWorker creates a Worker over store. sink and logger may be nil.
func NewWorker(store *Store, registry *backend.Registry, resolver *imagery.Resolver, sink EventSink, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		store:    store,
		registry: registry,
		resolver: resolver,
		sink:     sink,
		logger:   logger,
		queue:    make(chan string, queueCapacity),
	}
}

// Submit validates req, records it as a submitted job, and queues it for
// execution. Invalid parameters surface immediately as a
// ConfigurationError; nothing is stored in that case.
func (w *Worker) Submit(req Request) (*Job, error) {
	if _, err := orchestrator.BuildTasks(req.Topic, req.Slides, req.Backends, req.Theme); err != nil {
		return nil, err
	}

	job := w.store.Create(req)
	select {
	case w.queue <- job.ID:
	default:
		return nil, fmt.Errorf("job queue full (%d pending)", queueCapacity)
	}
	return job, nil
}

// Start runs n job executors until ctx is canceled. It blocks; run it in
// its own goroutine when serving alongside other components.
func (w *Worker) Start(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case id := <-w.queue:
					w.runJob(gctx, id)
				}
			}
		})
	}
	return g.Wait()
}

// runJob executes one job to a terminal state. Batch-level failures mark
// the job failed; per-task failures inside the batch do not.
func (w *Worker) runJob(ctx context.Context, id string) {
	job, err := w.store.Get(id)
	if err != nil {
		w.logger.Error("queued job disappeared", zap.String("job", id), zap.Error(err))
		return
	}

	_ = w.store.Update(id, func(j *Job) { j.State = StateWorking })
	w.logger.Info("job started",
		zap.String("job", id),
		zap.String("topic", job.Request.Topic),
		zap.Int("slides", job.Request.Slides))

	req := job.Request
	window := req.Window
	if window < 1 {
		window = orchestrator.DefaultWindow
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Each job gets its own reporter so subscribers see only the events
	// of this batch. The drain goroutine withholds the terminal event: it
	// may only reach subscribers once the store shows the job terminal,
	// otherwise a subscriber attaching in between sees a running job whose
	// final event already passed.
	reporter := orchestrator.NewReporter()
	drained := make(chan struct{})
	var final *orchestrator.Event
	go func() {
		defer close(drained)
		for ev := range reporter.Subscribe() {
			if ev.Type == orchestrator.EventBatchComplete {
				ev := ev
				final = &ev
				continue
			}
			if w.sink != nil {
				w.sink.Publish(id, ev)
			}
		}
	}()

	sched := orchestrator.NewScheduler(w.registry, w.resolver, reporter, w.logger)

	var result *orchestrator.BatchResult
	tasks, err := orchestrator.BuildTasks(req.Topic, req.Slides, req.Backends, req.Theme)
	if err == nil {
		result, err = sched.Run(ctx, req.Topic, tasks, window, timeout)
	}
	reporter.Close()
	<-drained

	if err != nil {
		w.logger.Warn("job failed", zap.String("job", id), zap.Error(err))
		_ = w.store.Update(id, func(j *Job) {
			j.State = StateFailed
			j.Error = err.Error()
		})
		if w.sink != nil {
			w.sink.Publish(id, orchestrator.Event{
				Type:    orchestrator.EventBatchComplete,
				Topic:   req.Topic,
				Message: err.Error(),
			})
		}
		return
	}

	_ = w.store.Update(id, func(j *Job) {
		j.State = StateCompleted
		j.Totals = &result.Totals
		j.Slides = result.Slides
		j.Markdown = deck.Markdown(result.Slides)
	})
	if w.sink != nil && final != nil {
		w.sink.Publish(id, *final)
	}
}
