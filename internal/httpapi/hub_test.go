package httpapi

import (
	"testing"

	"github.com/dusk-indust/deckgen/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyMatchingJob(t *testing.T) {
	hub := NewHub()

	chA, cancelA := hub.Subscribe("job-a")
	defer cancelA()
	chB, cancelB := hub.Subscribe("job-b")
	defer cancelB()

	hub.Publish("job-a", orchestrator.Event{Type: orchestrator.EventBatchStart})

	select {
	case ev := <-chA:
		assert.Equal(t, orchestrator.EventBatchStart, ev.Type)
	default:
		t.Fatal("expected an event for job-a")
	}

	select {
	case ev := <-chB:
		t.Fatalf("unexpected event for job-b: %v", ev.Type)
	default:
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe("job-a")
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Cancel is idempotent and publishing after cancel is a no-op.
	cancel()
	hub.Publish("job-a", orchestrator.Event{Type: orchestrator.EventBatchStart})
}

func TestHub_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()

	_, cancel := hub.Subscribe("job-a")
	defer cancel()

	// Publishing far past the buffer must not block.
	for i := 0; i < subscriberBuffer*3; i++ {
		hub.Publish("job-a", orchestrator.Event{Type: orchestrator.EventUnitUpdated, Index: i})
	}
}

func TestHub_MultipleSubscribersEachReceive(t *testing.T) {
	hub := NewHub()

	ch1, cancel1 := hub.Subscribe("job-a")
	defer cancel1()
	ch2, cancel2 := hub.Subscribe("job-a")
	defer cancel2()

	hub.Publish("job-a", orchestrator.Event{Type: orchestrator.EventBatchComplete})

	require.Len(t, ch1, 1)
	require.Len(t, ch2, 1)
}
