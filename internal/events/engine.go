package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/metinatakli/movie-ticket-events/internal/events"

	defaultPollInterval = time.Second
	defaultLease        = 15 * time.Minute
	dueBatchSize        = 100
	cronLockTTL         = time.Hour
	maxBackoff          = 30 * time.Minute

	// completedStep marks a run whose handler returned successfully.
	completedStep = "$completed"
)

type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunSuspended RunStatus = "suspended"
	RunRetrying  RunStatus = "retrying"
	RunFailed    RunStatus = "failed"
	RunSkipped   RunStatus = "skipped"
)

type RunResult struct {
	RunID      string    `json:"runId"`
	FunctionID string    `json:"functionId"`
	Status     RunStatus `json:"status"`
	Output     any       `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Publisher hands events to an external transport. The transport is
// expected to call Engine.Dispatch for every delivery.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type Option func(*Engine)

func WithPublisher(publisher Publisher) Option {
	return func(e *Engine) {
		e.publisher = publisher
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(e *Engine) {
		e.pollInterval = interval
	}
}

func WithLease(lease time.Duration) Option {
	return func(e *Engine) {
		e.lease = lease
	}
}

func WithBackoff(backoff func(attempt int) time.Duration) Option {
	return func(e *Engine) {
		e.backoff = backoff
	}
}

// Engine runs registered functions in reaction to events and cron
// schedules. Durable state lives in the Store, so any number of engines
// may share one.
type Engine struct {
	appID        string
	store        Store
	logger       *slog.Logger
	publisher    Publisher
	now          func() time.Time
	pollInterval time.Duration
	lease        time.Duration
	backoff      func(attempt int) time.Duration

	mu        sync.RWMutex
	functions map[string]Function
	order     []string

	wg sync.WaitGroup

	tracer trace.Tracer
	runs   metric.Int64Counter
}

func NewEngine(appID string, store Store, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		appID:        appID,
		store:        store,
		logger:       logger.With("app_id", appID),
		now:          time.Now,
		pollInterval: defaultPollInterval,
		lease:        defaultLease,
		backoff:      exponentialBackoff,
		functions:    make(map[string]Function),
		tracer:       otel.Tracer(instrumentationName),
	}

	for _, opt := range opts {
		opt(e)
	}

	runs, err := otel.Meter(instrumentationName).Int64Counter(
		"events.function.runs",
		metric.WithDescription("Function runs by outcome"),
	)
	if err != nil {
		runs, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("events.function.runs")
	}
	e.runs = runs

	return e
}

func exponentialBackoff(attempt int) time.Duration {
	delay := 10 * time.Second << attempt
	if delay <= 0 || delay > maxBackoff {
		return maxBackoff
	}

	return delay
}

func runID(functionID, eventID string) string {
	return functionID + ":" + eventID
}

// Register adds functions to the engine. Either all of them are registered
// or none is.
func (e *Engine) Register(fns ...Function) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]struct{}, len(fns))

	for _, fn := range fns {
		if fn.ID == "" || fn.Handler == nil {
			return fmt.Errorf("%w: id and handler are required", ErrInvalidFunction)
		}

		if (fn.Trigger.Event == "") == (fn.Trigger.Cron == "") {
			return fmt.Errorf("%w: %s needs exactly one of event or cron trigger", ErrInvalidFunction, fn.ID)
		}

		if fn.Trigger.Cron != "" {
			_, err := cron.ParseStandard(fn.Trigger.Cron)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidFunction, fn.ID, err)
			}
		}

		if fn.Retries < 0 {
			return fmt.Errorf("%w: %s has negative retries", ErrInvalidFunction, fn.ID)
		}

		_, registered := e.functions[fn.ID]
		_, duplicated := seen[fn.ID]
		if registered || duplicated {
			return fmt.Errorf("%w: %s", ErrDuplicateFunction, fn.ID)
		}

		seen[fn.ID] = struct{}{}
	}

	for _, fn := range fns {
		e.functions[fn.ID] = fn
		e.order = append(e.order, fn.ID)
	}

	return nil
}

// Functions returns the registered functions in registration order.
func (e *Engine) Functions() []Function {
	e.mu.RLock()
	defer e.mu.RUnlock()

	fns := make([]Function, 0, len(e.order))
	for _, id := range e.order {
		fns = append(fns, e.functions[id])
	}

	return fns
}

func (e *Engine) function(id string) (Function, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	fn, ok := e.functions[id]
	return fn, ok
}

func (e *Engine) subscribers(eventName string) []Function {
	e.mu.RLock()
	defer e.mu.RUnlock()

	fns := make([]Function, 0)
	for _, id := range e.order {
		fn := e.functions[id]
		if fn.Trigger.Event == eventName {
			fns = append(fns, fn)
		}
	}

	return fns
}

func (e *Engine) normalize(evt Event) Event {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}

	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now().UTC()
	}

	return evt
}

// Send publishes events and returns their ids. Without a publisher the
// events are dispatched in process in the background; Wait blocks until
// those dispatches finish.
func (e *Engine) Send(ctx context.Context, events ...Event) ([]string, error) {
	ids := make([]string, 0, len(events))

	for _, evt := range events {
		if evt.Name == "" {
			return ids, fmt.Errorf("%w: name is required", ErrInvalidEvent)
		}

		evt = e.normalize(evt)

		if e.publisher != nil {
			err := e.publisher.Publish(ctx, evt)
			if err != nil {
				return ids, fmt.Errorf("publish %s: %w", evt.Name, err)
			}
		} else {
			e.wg.Add(1)
			go func(ctx context.Context, evt Event) {
				defer e.wg.Done()

				err := e.Dispatch(ctx, evt)
				if err != nil {
					e.logger.Error("failed to dispatch event", "event", evt.Name, "event_id", evt.ID, "error", err)
				}
			}(context.WithoutCancel(ctx), evt)
		}

		ids = append(ids, evt.ID)
	}

	return ids, nil
}

// Wait blocks until background dispatches and cron runs have finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Dispatch runs every function subscribed to the event and waits for them.
// Handler failures are retried through the store and are not reported; the
// returned error means the event should be delivered again.
func (e *Engine) Dispatch(ctx context.Context, evt Event) error {
	evt = e.normalize(evt)

	fns := e.subscribers(evt.Name)
	if len(fns) == 0 {
		e.logger.Debug("no functions subscribed to event", "event", evt.Name, "event_id", evt.ID)
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(fns))

	for i, fn := range fns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.execute(ctx, fn, runID(fn.ID, evt.ID), evt, 0)
		}()
	}

	wg.Wait()

	return errors.Join(errs...)
}

// Invoke runs a single function synchronously for the given event.
func (e *Engine) Invoke(ctx context.Context, functionID string, evt Event) (RunResult, error) {
	fn, ok := e.function(functionID)
	if !ok {
		return RunResult{}, fmt.Errorf("%w: %s", ErrFunctionNotFound, functionID)
	}

	evt = e.normalize(evt)

	return e.execute(ctx, fn, runID(fn.ID, evt.ID), evt, 0)
}

// ProcessDue claims due tasks, runs them and waits for them to finish. It
// returns the number of tasks this engine claimed.
func (e *Engine) ProcessDue(ctx context.Context) (int, error) {
	now := e.now()

	tasks, err := e.store.Due(ctx, now, dueBatchSize)
	if err != nil {
		return 0, fmt.Errorf("load due tasks: %w", err)
	}

	var wg sync.WaitGroup
	claimed := 0

	for _, task := range tasks {
		ok, err := e.store.Claim(ctx, task, now.Add(e.lease))
		if err != nil {
			e.logger.Error("failed to claim task", "task_id", task.ID, "run_id", task.RunID, "error", err)
			continue
		}

		if !ok {
			continue
		}

		claimed++

		fn, found := e.function(task.FunctionID)
		if !found {
			e.logger.Warn("dropping task of unknown function", "function_id", task.FunctionID, "run_id", task.RunID)
			e.complete(ctx, task)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := e.execute(ctx, fn, task.RunID, task.Event, task.Attempt)
			if err != nil {
				// Leave the task leased; it becomes due again when the lease ends.
				e.logger.Error("task run failed", "task_id", task.ID, "run_id", task.RunID, "error", err)
				return
			}

			e.complete(ctx, task)
		}()
	}

	wg.Wait()

	return claimed, nil
}

func (e *Engine) complete(ctx context.Context, task Task) {
	err := e.store.Complete(ctx, task)
	if err != nil {
		e.logger.Error("failed to complete task", "task_id", task.ID, "run_id", task.RunID, "error", err)
	}
}

// Start runs cron triggered functions and due tasks until ctx is cancelled.
// In-flight runs are allowed to finish before it returns.
func (e *Engine) Start(ctx context.Context) error {
	runCtx := context.WithoutCancel(ctx)
	scheduler := cron.New(cron.WithLocation(time.UTC))

	for _, fn := range e.Functions() {
		if fn.Trigger.Cron == "" {
			continue
		}

		_, err := scheduler.AddFunc(fn.Trigger.Cron, func() {
			e.wg.Add(1)
			defer e.wg.Done()

			e.fireCron(runCtx, fn, e.now())
		})
		if err != nil {
			return fmt.Errorf("schedule %s: %w", fn.ID, err)
		}
	}

	scheduler.Start()

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	e.logger.Info("event engine started", "functions", len(e.Functions()), "poll_interval", e.pollInterval)

	for {
		select {
		case <-ctx.Done():
			<-scheduler.Stop().Done()
			e.wg.Wait()

			e.logger.Info("event engine stopped")

			return nil
		case <-ticker.C:
			_, err := e.ProcessDue(runCtx)
			if err != nil {
				e.logger.Error("failed to process due tasks", "error", err)
			}
		}
	}
}

// fireCron runs a cron function for the tick containing t, unless another
// engine sharing the store already did.
func (e *Engine) fireCron(ctx context.Context, fn Function, t time.Time) (RunResult, bool) {
	tick := t.UTC().Truncate(time.Minute)
	key := fmt.Sprintf("cron:%s:%d", fn.ID, tick.Unix())

	acquired, err := e.store.Acquire(ctx, key, cronLockTTL)
	if err != nil {
		e.logger.Error("failed to acquire cron lock", "function_id", fn.ID, "error", err)
		return RunResult{}, false
	}

	if !acquired {
		e.logger.Debug("cron tick already handled", "function_id", fn.ID, "tick", tick)
		return RunResult{}, false
	}

	evt := Event{
		ID:        fmt.Sprintf("cron-%d", tick.Unix()),
		Name:      CronEventName,
		Timestamp: tick,
	}

	result, err := e.execute(ctx, fn, runID(fn.ID, evt.ID), evt, 0)
	if err != nil {
		e.logger.Error("cron run failed", "function_id", fn.ID, "error", err)
	}

	return result, true
}

func (e *Engine) execute(ctx context.Context, fn Function, runID string, evt Event, attempt int) (RunResult, error) {
	result := RunResult{
		RunID:      runID,
		FunctionID: fn.ID,
	}

	logger := e.logger.With(
		"function_id", fn.ID,
		"run_id", runID,
		"event_id", evt.ID,
		"attempt", attempt,
	)

	_, done, err := e.store.LoadStep(ctx, runID, completedStep)
	if err != nil {
		return result, fmt.Errorf("check run %s: %w", runID, err)
	}

	if done {
		logger.Info("run already completed, skipping")

		result.Status = RunSkipped
		e.record(ctx, fn, result.Status)

		return result, nil
	}

	ctx, span := e.tracer.Start(ctx, "function "+fn.ID, trace.WithAttributes(
		attribute.String("events.function_id", fn.ID),
		attribute.String("events.run_id", runID),
		attribute.String("events.event_name", evt.Name),
		attribute.Int("events.attempt", attempt),
	))
	defer span.End()

	step := &runStep{
		store:      e.store,
		functionID: fn.ID,
		runID:      runID,
		event:      evt,
		attempt:    attempt,
		now:        e.now,
	}

	output, err := call(ctx, fn.Handler, Input{
		Event:   evt,
		Step:    step,
		RunID:   runID,
		Attempt: attempt,
		Logger:  logger,
	})

	switch {
	case errors.Is(err, ErrSuspended):
		logger.Info("run suspended")
		result.Status = RunSuspended

	case err != nil:
		span.RecordError(err)
		result.Error = err.Error()

		if IsNonRetriable(err) || attempt >= fn.Retries {
			span.SetStatus(codes.Error, err.Error())
			logger.Error("run failed", "error", err)
			result.Status = RunFailed
			break
		}

		delay := e.backoff(attempt)

		schedErr := e.store.Schedule(ctx, Task{
			ID:         uuid.NewString(),
			FunctionID: fn.ID,
			RunID:      runID,
			Event:      evt,
			Attempt:    attempt + 1,
			At:         e.now().Add(delay).UTC().Truncate(time.Millisecond),
		})
		if schedErr != nil {
			result.Status = RunFailed
			e.record(ctx, fn, result.Status)

			return result, fmt.Errorf("schedule retry of %s: %w", runID, errors.Join(err, schedErr))
		}

		logger.Warn("run failed, retrying", "error", err, "retry_in", delay)
		result.Status = RunRetrying

	default:
		result.Status = RunCompleted
		result.Output = output

		data, err := json.Marshal(output)
		if err == nil {
			err = e.store.SaveStep(ctx, runID, completedStep, data)
		}

		if err != nil {
			logger.Warn("failed to record completed run", "error", err)
		}

		logger.Info("run completed")
	}

	e.record(ctx, fn, result.Status)

	return result, nil
}

func call(ctx context.Context, handler Handler, in Input) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return handler(ctx, in)
}

func (e *Engine) record(ctx context.Context, fn Function, status RunStatus) {
	e.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("function", fn.ID),
		attribute.String("status", string(status)),
	))
}
