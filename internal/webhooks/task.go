package webhooks

import "context"

// Task is a handle on a background dispatch.
type Task struct {
	FormType string

	done    chan struct{}
	results []Result
}

// Done is closed once every endpoint has been attempted.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx is done.
func (t *Task) Wait(ctx context.Context) ([]Result, error) {
	select {
	case <-t.done:
		return t.results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Results returns the dispatch results, or nil while the task is running.
func (t *Task) Results() []Result {
	select {
	case <-t.done:
		return t.results
	default:
		return nil
	}
}
