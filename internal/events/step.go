package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Step gives handlers checkpointed units of work. A step that completed in
// an earlier invocation of the same run is not executed again; its stored
// result is returned instead.
type Step interface {
	// Run executes fn once per run and decodes its JSON encoded result
	// into out. out may be nil.
	Run(ctx context.Context, id string, fn func(ctx context.Context) (any, error), out any) error

	// SleepUntil parks the run until the given time. The first call
	// returns ErrSuspended; the run is invoked again at or after until and
	// the call then returns nil.
	SleepUntil(ctx context.Context, id string, until time.Time) error
}

// Run is a typed wrapper around Step.Run.
func Run[T any](ctx context.Context, step Step, id string, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T

	err := step.Run(ctx, id, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}, &out)

	return out, err
}

type sleepCheckpoint struct {
	Until time.Time `json:"until"`
}

type runStep struct {
	store      Store
	functionID string
	runID      string
	event      Event
	attempt    int
	now        func() time.Time
}

func (s *runStep) Run(ctx context.Context, id string, fn func(ctx context.Context) (any, error), out any) error {
	data, ok, err := s.store.LoadStep(ctx, s.runID, id)
	if err != nil {
		return fmt.Errorf("load step %q: %w", id, err)
	}

	if !ok {
		result, err := fn(ctx)
		if err != nil {
			return fmt.Errorf("step %q: %w", id, err)
		}

		data, err = json.Marshal(result)
		if err != nil {
			return NonRetriable(fmt.Errorf("marshal step %q result: %w", id, err))
		}

		err = s.store.SaveStep(ctx, s.runID, id, data)
		if err != nil {
			return fmt.Errorf("save step %q: %w", id, err)
		}
	}

	if out == nil {
		return nil
	}

	err = json.Unmarshal(data, out)
	if err != nil {
		return NonRetriable(fmt.Errorf("decode step %q result: %w", id, err))
	}

	return nil
}

func (s *runStep) SleepUntil(ctx context.Context, id string, until time.Time) error {
	data, ok, err := s.store.LoadStep(ctx, s.runID, id)
	if err != nil {
		return fmt.Errorf("load step %q: %w", id, err)
	}

	if ok {
		var checkpoint sleepCheckpoint

		err = json.Unmarshal(data, &checkpoint)
		if err != nil {
			return NonRetriable(fmt.Errorf("decode step %q: %w", id, err))
		}

		// A checkpoint implies the resume task was already scheduled.
		if s.now().Before(checkpoint.Until) {
			return ErrSuspended
		}

		return nil
	}

	// Task scores have millisecond resolution.
	until = until.UTC().Truncate(time.Millisecond)

	if !s.now().Before(until) {
		return s.saveSleep(ctx, id, until)
	}

	// The resume task is scheduled before the checkpoint is written so a
	// crash in between cannot leave a run without a wake up.
	err = s.store.Schedule(ctx, Task{
		ID:         uuid.NewString(),
		FunctionID: s.functionID,
		RunID:      s.runID,
		Event:      s.event,
		Attempt:    s.attempt,
		At:         until,
	})
	if err != nil {
		return fmt.Errorf("schedule step %q: %w", id, err)
	}

	err = s.saveSleep(ctx, id, until)
	if err != nil {
		return err
	}

	return ErrSuspended
}

func (s *runStep) saveSleep(ctx context.Context, id string, until time.Time) error {
	data, err := json.Marshal(sleepCheckpoint{Until: until})
	if err != nil {
		return err
	}

	err = s.store.SaveStep(ctx, s.runID, id, data)
	if err != nil {
		return fmt.Errorf("save step %q: %w", id, err)
	}

	return nil
}

// InlineStep runs every step immediately without checkpoints and treats
// sleeps as already elapsed. It is meant for exercising handlers in
// isolation.
type InlineStep struct {
	// Sleeps records the ids of the sleeps requested so far.
	Sleeps []string
}

func (s *InlineStep) Run(ctx context.Context, id string, fn func(ctx context.Context) (any, error), out any) error {
	result, err := fn(ctx)
	if err != nil {
		return fmt.Errorf("step %q: %w", id, err)
	}

	if out == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, out)
}

func (s *InlineStep) SleepUntil(ctx context.Context, id string, until time.Time) error {
	s.Sleeps = append(s.Sleeps, id)
	return nil
}
