package mcptools

import (
	"github.com/dusk-indust/deckgen/internal/deck"
	"github.com/dusk-indust/deckgen/internal/orchestrator"
)

// --- MCP Tool Types for the deckgen server mode (--serve-mcp) ---
// These tools are exposed when the binary runs as an MCP server, so a
// client can drive deck generation through structured calls instead of
// shelling out.

// GenerateDeckInput is the input for the generate_deck MCP tool.
type GenerateDeckInput struct {
	Topic          string   `json:"topic" jsonschema:"deck topic"`
	Slides         int      `json:"slides" jsonschema:"number of slides to generate"`
	Backends       []string `json:"backends,omitempty" jsonschema:"backend names to rotate through (default: all registered)"`
	Theme          string   `json:"theme,omitempty" jsonschema:"visual theme hint for imagery"`
	Window         int      `json:"window,omitempty" jsonschema:"max slides generated concurrently"`
	TimeoutSeconds int      `json:"timeoutSeconds,omitempty" jsonschema:"per-slide generation deadline in seconds"`
}

// GenerateDeckOutput is the result of the generate_deck MCP tool.
type GenerateDeckOutput struct {
	JobID  string `json:"jobId"`
	State  string `json:"state"`
	Topic  string `json:"topic"`
	Slides int    `json:"slides"`
}

// GetDeckJobInput is the input for the get_deck_job MCP tool.
type GetDeckJobInput struct {
	JobID string `json:"jobId" jsonschema:"job ID returned by generate_deck"`
}

// GetDeckJobOutput is the result of the get_deck_job MCP tool.
type GetDeckJobOutput struct {
	JobID    string                    `json:"jobId"`
	State    string                    `json:"state"`
	Error    string                    `json:"error,omitempty"`
	Totals   *orchestrator.BatchTotals `json:"totals,omitempty"`
	Slides   []deck.Slide              `json:"slides,omitempty"`
	Markdown string                    `json:"markdown,omitempty"`
}

// ListDeckJobsInput is the input for the list_deck_jobs MCP tool.
type ListDeckJobsInput struct {
	State     string `json:"state,omitempty" jsonschema:"filter by job state (submitted, working, completed, failed)"`
	PageToken string `json:"pageToken,omitempty" jsonschema:"resume listing after this job ID"`
	PageSize  int    `json:"pageSize,omitempty" jsonschema:"max jobs per page (0 = all)"`
}

// ListDeckJobsOutput is the result of the list_deck_jobs MCP tool.
type ListDeckJobsOutput struct {
	Jobs          []DeckJobSummary `json:"jobs"`
	TotalSize     int              `json:"totalSize"`
	NextPageToken string           `json:"nextPageToken,omitempty"`
}

// DeckJobSummary is a brief overview of one deck job.
type DeckJobSummary struct {
	JobID  string `json:"jobId"`
	State  string `json:"state"`
	Topic  string `json:"topic"`
	Slides int    `json:"slides"`
}
