package events

import (
	"context"
	"time"
)

// Task is a pending invocation of a run at a point in time, used both for
// resuming sleeping runs and for retrying failed ones.
type Task struct {
	ID         string    `json:"id"`
	FunctionID string    `json:"functionId"`
	RunID      string    `json:"runId"`
	Event      Event     `json:"event"`
	Attempt    int       `json:"attempt"`
	At         time.Time `json:"at"`

	// raw is the encoded form the task was loaded from, if any.
	raw string
}

// Store persists step checkpoints and scheduled tasks so that runs survive
// process restarts.
type Store interface {
	LoadStep(ctx context.Context, runID, stepID string) ([]byte, bool, error)
	SaveStep(ctx context.Context, runID, stepID string, data []byte) error

	Schedule(ctx context.Context, task Task) error
	// Due returns up to limit tasks whose time is at or before now, oldest
	// first. Returned tasks still have to be claimed.
	Due(ctx context.Context, now time.Time, limit int) ([]Task, error)
	// Claim leases a due task to the caller by hiding it until leaseUntil.
	// Only one caller gets true for a given observation of the task. A
	// claimed task that is never completed becomes due again.
	Claim(ctx context.Context, task Task, leaseUntil time.Time) (bool, error)
	// Complete removes a claimed task from the queue.
	Complete(ctx context.Context, task Task) error

	// Acquire takes an expiring lock on key and reports whether it was
	// free.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
