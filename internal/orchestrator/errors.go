package orchestrator

import "errors"

// ConfigurationError reports invalid batch parameters. It is the only
// error class that aborts a batch; it is always surfaced before any task
// starts.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// ErrTaskTimeout marks a task that exceeded its per-task deadline. The
// failure is isolated to that task's index; the batch keeps running.
var ErrTaskTimeout = errors.New("task timed out")
