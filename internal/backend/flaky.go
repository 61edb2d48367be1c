package backend

import (
	"context"
	"errors"
	"sync/atomic"
)

// Compile-time interface check.
var _ Backend = (*Flaky)(nil)

// ErrInjected is the failure injected by a Flaky backend.
var ErrInjected = errors.New("injected failure")

// Flaky wraps another backend and fails every Nth call. Used in batch
// stress tests to exercise failure isolation.
type Flaky struct {
	inner Backend
	every int64
	calls atomic.Int64
}

// NewFlaky wraps inner so that every n-th call (1-based) fails with
// ErrInjected. n < 1 disables injection.
func NewFlaky(inner Backend, n int) *Flaky {
	return &Flaky{inner: inner, every: int64(n)}
}

// Name returns the wrapped backend's name.
func (f *Flaky) Name() string {
	return f.inner.Name()
}

// Complete delegates to the wrapped backend, injecting a failure on every
// configured call.
func (f *Flaky) Complete(ctx context.Context, prompt string) (string, error) {
	n := f.calls.Add(1)
	if f.every > 0 && n%f.every == 0 {
		return "", &Error{Backend: f.Name(), Err: ErrInjected}
	}
	return f.inner.Complete(ctx, prompt)
}
