package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/dusk-indust/deckgen/internal/backend"
	"github.com/dusk-indust/deckgen/internal/jobs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DeckService handles MCP tool calls for the deckgen server mode. It
// wraps the job store and worker shared with the HTTP API.
type DeckService struct {
	store    *jobs.Store
	worker   *jobs.Worker
	registry *backend.Registry
}

// NewDeckService creates a DeckService over the given store and worker.
func NewDeckService(store *jobs.Store, worker *jobs.Worker, registry *backend.Registry) *DeckService {
	return &DeckService{
		store:    store,
		worker:   worker,
		registry: registry,
	}
}

// GenerateDeck submits a deck generation job and returns its ID. The job
// runs asynchronously; poll get_deck_job for the result.
func (s *DeckService) GenerateDeck(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GenerateDeckInput,
) (*mcp.CallToolResult, GenerateDeckOutput, error) {
	backends := input.Backends
	if len(backends) == 0 {
		backends = s.registry.Names()
	}

	job, err := s.worker.Submit(jobs.Request{
		Topic:    input.Topic,
		Slides:   input.Slides,
		Backends: backends,
		Theme:    input.Theme,
		Window:   input.Window,
		Timeout:  time.Duration(input.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, GenerateDeckOutput{}, fmt.Errorf("submit deck job: %w", err)
	}

	return nil, GenerateDeckOutput{
		JobID:  job.ID,
		State:  string(job.State),
		Topic:  job.Request.Topic,
		Slides: job.Request.Slides,
	}, nil
}

// GetDeckJob reports the state of one job, including the finished deck
// when the job has completed.
func (s *DeckService) GetDeckJob(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetDeckJobInput,
) (*mcp.CallToolResult, GetDeckJobOutput, error) {
	job, err := s.store.Get(input.JobID)
	if err != nil {
		return nil, GetDeckJobOutput{}, err
	}

	return nil, GetDeckJobOutput{
		JobID:    job.ID,
		State:    string(job.State),
		Error:    job.Error,
		Totals:   job.Totals,
		Slides:   job.Slides,
		Markdown: job.Markdown,
	}, nil
}

// ListDeckJobs lists submitted jobs in insertion order, optionally
// filtered by state.
func (s *DeckService) ListDeckJobs(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListDeckJobsInput,
) (*mcp.CallToolResult, ListDeckJobsOutput, error) {
	resp, err := s.store.List(jobs.ListRequest{
		State:     jobs.State(input.State),
		PageToken: input.PageToken,
		PageSize:  input.PageSize,
	})
	if err != nil {
		return nil, ListDeckJobsOutput{}, err
	}

	summaries := make([]DeckJobSummary, 0, len(resp.Jobs))
	for _, job := range resp.Jobs {
		summaries = append(summaries, DeckJobSummary{
			JobID:  job.ID,
			State:  string(job.State),
			Topic:  job.Request.Topic,
			Slides: job.Request.Slides,
		})
	}

	return nil, ListDeckJobsOutput{
		Jobs:          summaries,
		TotalSize:     resp.TotalSize,
		NextPageToken: resp.NextPageToken,
	}, nil
}
