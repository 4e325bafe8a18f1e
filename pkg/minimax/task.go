package minimax

import (
	"context"
	"sync"
)

// Task represents an async operation that can be polled for completion.
//
// A Task's status only moves forward: once a terminal status (success or
// failed) has been observed, later observations are ignored.
type Task[T any] struct {
	// ID is the task identifier.
	ID string

	query func(ctx context.Context, id string) (TaskStatus, *T, error)

	mu     sync.Mutex
	status TaskStatus
	result *T
}

// NewVideoTask creates a Task for querying an existing video generation task.
func (c *Client) NewVideoTask(taskID string) *Task[VideoResult] {
	return &Task[VideoResult]{
		ID:     taskID,
		query:  c.Video.queryResult,
		status: TaskStatusPending,
	}
}

// Status returns the last observed status.
func (t *Task[T]) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Result returns the result reference once the task has succeeded.
func (t *Task[T]) Result() *T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Refresh queries the task once and returns the resulting status.
func (t *Task[T]) Refresh(ctx context.Context) (TaskStatus, error) {
	status, result, err := t.query(ctx, t.ID)
	if err != nil {
		return t.Status(), err
	}
	return t.observe(status, result), nil
}

// observe applies an observation unless the task is already terminal.
func (t *Task[T]) observe(status TaskStatus, result *T) TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Phase().Terminal() {
		return t.status
	}
	t.status = status
	if status.Phase() == PhaseSuccess {
		t.result = result
	}
	return t.status
}

// Wait polls the task with p until it finishes.
//
// Example:
//
//	task := client.NewVideoTask(id)
//	result, err := task.Wait(ctx, minimax.Poller{Interval: 10 * time.Second, MaxWait: 10 * time.Minute})
func (t *Task[T]) Wait(ctx context.Context, p Poller) (*T, error) {
	if _, err := p.Run(ctx, t.ID, t.Refresh); err != nil {
		return nil, err
	}
	return t.Result(), nil
}
