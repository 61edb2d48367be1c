package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dusk-indust/deckgen/internal/backend"
	"github.com/dusk-indust/deckgen/internal/imagery"
	"github.com/dusk-indust/deckgen/internal/jobs"
	"github.com/dusk-indust/deckgen/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store   *jobs.Store
	server  *httptest.Server
	cancel  context.CancelFunc
	release chan struct{}
}

// gatedBackend blocks every call until release is closed.
type gatedBackend struct {
	release <-chan struct{}
}

func (g *gatedBackend) Name() string { return "gated" }

func (g *gatedBackend) Complete(ctx context.Context, prompt string) (string, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return echoSlide(prompt)
}

func echoSlide(prompt string) (string, error) {
	var pos, total int
	if _, err := fmt.Sscanf(prompt, "You are writing slide %d of a %d-slide", &pos, &total); err != nil {
		return "", err
	}
	return fmt.Sprintf("# Slide %d\n\nBody %d.\n", pos, pos), nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	release := make(chan struct{})
	registry := backend.NewRegistry()
	require.NoError(t, registry.Register(backend.NewMock("echo", echoSlide)))
	require.NoError(t, registry.Register(&gatedBackend{release: release}))

	store := jobs.NewStore()
	hub := NewHub()
	worker := jobs.NewWorker(store, registry, imagery.NewResolver(nil), hub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Start(ctx, 2)

	srv := NewServer(store, worker, hub, nil)
	ts := httptest.NewServer(srv.Handler())

	env := &testEnv{store: store, server: ts, cancel: cancel, release: release}
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return env
}

func (e *testEnv) submit(t *testing.T, body string) jobs.Job {
	t.Helper()
	resp, err := http.Post(e.server.URL+"/v1/decks", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var job jobs.Job
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&job))
	return job
}

func (e *testEnv) waitTerminal(t *testing.T, id string) *jobs.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := e.store.Get(id)
		require.NoError(t, err)
		if job.State.IsTerminal() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return nil
}

func TestServer_SubmitAndFetchDeck(t *testing.T) {
	env := newTestEnv(t)

	job := env.submit(t, `{"topic":"launch plan","slides":2,"backends":["echo"]}`)
	require.NotEmpty(t, job.ID)
	assert.Equal(t, jobs.StateSubmitted, job.State)

	env.waitTerminal(t, job.ID)

	resp, err := http.Get(env.server.URL + "/v1/decks/" + job.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got jobs.Job
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, jobs.StateCompleted, got.State)
	require.Len(t, got.Slides, 2)
	assert.Contains(t, got.Markdown, "## Slide 1")
}

func TestServer_SubmitInvalidRequestIs400(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.server.URL+"/v1/decks", "application/json",
		bytes.NewBufferString(`{"topic":"x","slides":0,"backends":["echo"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Error, "slide count")
}

func TestServer_SubmitMalformedBodyIs400(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.server.URL+"/v1/decks", "application/json",
		bytes.NewBufferString(`{not json`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_GetUnknownJobIs404(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/v1/decks/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ListFiltersAndPaginates(t *testing.T) {
	env := newTestEnv(t)

	first := env.submit(t, `{"topic":"a","slides":1,"backends":["echo"]}`)
	env.submit(t, `{"topic":"b","slides":1,"backends":["echo"]}`)
	env.waitTerminal(t, first.ID)

	resp, err := http.Get(env.server.URL + "/v1/decks?pageSize=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page jobs.ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	require.Len(t, page.Jobs, 1)
	assert.Equal(t, first.ID, page.Jobs[0].ID)
	assert.NotEmpty(t, page.NextPageToken)
}

func TestServer_EventsStreamDeliversBatchLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// Generation is gated so the stream is attached before any slide
	// resolves.
	job := env.submit(t, `{"topic":"launch","slides":2,"backends":["gated"]}`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.server.URL+"/v1/decks/"+job.ID+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	close(env.release)

	var types []orchestrator.EventType
	for se := range ReadEvents(ctx, resp.Body) {
		require.NoError(t, se.Err)
		types = append(types, se.Event.Type)
		if se.Event.Type == orchestrator.EventBatchComplete {
			break
		}
	}

	require.NotEmpty(t, types)
	assert.Equal(t, orchestrator.EventBatchComplete, types[len(types)-1])
	assert.Contains(t, types, orchestrator.EventUnitUpdated)
}

func TestServer_EventsForTerminalJobCloseImmediately(t *testing.T) {
	env := newTestEnv(t)

	job := env.submit(t, `{"topic":"launch","slides":1,"backends":["echo"]}`)
	env.waitTerminal(t, job.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, env.server.URL+"/v1/decks/"+job.ID+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	var events []orchestrator.Event
	for se := range ReadEvents(ctx, resp.Body) {
		require.NoError(t, se.Err)
		events = append(events, se.Event)
	}

	require.Len(t, events, 1)
	assert.Equal(t, orchestrator.EventBatchComplete, events[0].Type)
	assert.Equal(t, string(jobs.StateCompleted), events[0].Message)
}
