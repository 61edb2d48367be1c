package backend

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Compile-time interface checks.
var (
	_ Backend  = (*Gemini)(nil)
	_ Streamer = (*Gemini)(nil)
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini generates text through the Google GenAI API.
type Gemini struct {
	client *genai.Client
	name   string
	model  string
}

// NewGemini creates a Gemini backend registered under name. An empty model
// selects DefaultGeminiModel.
func NewGemini(ctx context.Context, name, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini backend %q: API key is required", name)
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("gemini backend %q: create client: %w", name, err)
	}
	return &Gemini{client: client, name: name, model: model}, nil
}

// Name returns the registry name of this backend.
func (g *Gemini) Name() string {
	return g.name
}

// Complete generates the full response in one call.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &Error{Backend: g.name, Err: err}
	}
	text := resp.Text()
	if text == "" {
		return "", &Error{Backend: g.name, Err: fmt.Errorf("empty response from model %s", g.model)}
	}
	return text, nil
}

// Stream generates the response incrementally, emitting each non-empty
// chunk as it arrives.
func (g *Gemini) Stream(ctx context.Context, prompt string, emit func(string) error) error {
	for chunk, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(prompt), nil) {
		if err != nil {
			return &Error{Backend: g.name, Err: err}
		}
		text := chunk.Text()
		if text == "" {
			continue
		}
		if err := emit(text); err != nil {
			return err
		}
	}
	return nil
}
