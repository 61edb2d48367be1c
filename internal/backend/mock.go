package backend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Compile-time interface checks.
var (
	_ Backend  = (*Mock)(nil)
	_ Streamer = (*Mock)(nil)
)

// Mock is a scriptable backend for tests and offline runs. Its response is
// produced by a function of the prompt, optionally chunked into fragments
// and delayed per fragment.
type Mock struct {
	name     string
	respond  func(prompt string) (string, error)
	chunkLen int
	latency  time.Duration
	calls    atomic.Int64
}

// MockOption configures a Mock.
type MockOption func(*Mock)

// WithChunks streams responses in fragments of at most n bytes instead of
// one terminal fragment.
func WithChunks(n int) MockOption {
	return func(m *Mock) { m.chunkLen = n }
}

// WithLatency sleeps d before the response (or before each fragment when
// chunking is enabled).
func WithLatency(d time.Duration) MockOption {
	return func(m *Mock) { m.latency = d }
}

// NewMock creates a Mock named name whose responses come from respond.
// A nil respond echoes a canned one-slide answer derived from the prompt.
func NewMock(name string, respond func(prompt string) (string, error), opts ...MockOption) *Mock {
	if respond == nil {
		respond = func(prompt string) (string, error) {
			return fmt.Sprintf("## Generated\n\nCanned response for: %.40s.\n", prompt), nil
		}
	}
	m := &Mock{name: name, respond: respond}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the registry name of this backend.
func (m *Mock) Name() string {
	return m.name
}

// Calls reports how many generation calls this mock has served.
func (m *Mock) Calls() int64 {
	return m.calls.Load()
}

// Complete returns the scripted response after the configured latency.
func (m *Mock) Complete(ctx context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	if err := sleepCtx(ctx, m.latency); err != nil {
		return "", err
	}
	text, err := m.respond(prompt)
	if err != nil {
		return "", &Error{Backend: m.name, Err: err}
	}
	return text, nil
}

// Stream chunks the scripted response and emits each piece, sleeping the
// configured latency before every fragment.
func (m *Mock) Stream(ctx context.Context, prompt string, emit func(string) error) error {
	m.calls.Add(1)
	text, err := m.respond(prompt)
	if err != nil {
		return &Error{Backend: m.name, Err: err}
	}

	size := m.chunkLen
	if size <= 0 {
		size = len(text)
	}
	for start := 0; start < len(text); start += size {
		if err := sleepCtx(ctx, m.latency); err != nil {
			return err
		}
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		if err := emit(text[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// sleepCtx is a cancellable sleep.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
