// Package backend defines the text-generation provider surface and the
// name-to-implementation registry used at batch-build time. A backend is
// invoked once per task; streaming backends additionally deliver their
// output as incremental fragments.
package backend

import (
	"context"
	"fmt"
)

// Backend is a text-generation provider. Complete blocks until the full
// response is available.
type Backend interface {
	// Name is the stable identifier used for task assignment.
	Name() string

	// Complete generates the full response for prompt.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Streamer is implemented by backends that can deliver output as a lazy
// sequence of non-empty text fragments. emit is called once per fragment;
// returning an error from emit aborts the stream.
type Streamer interface {
	Stream(ctx context.Context, prompt string, emit func(fragment string) error) error
}

// Error reports a failed generation call, carrying the backend name so a
// batch report can attribute the failure.
type Error struct {
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
