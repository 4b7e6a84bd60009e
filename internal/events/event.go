package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// CronEventName is the name of the synthetic event passed to cron
// triggered functions.
const CronEventName = "cron/tick"

type Event struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"ts"`
}

func NewEvent(name string, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", name, err)
	}

	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		Data:      raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the event payload into v.
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%w: %s has no data", ErrInvalidEvent, e.Name)
	}

	err := json.Unmarshal(e.Data, v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidEvent, e.Name, err)
	}

	return nil
}

// Trigger selects what starts a function: a named event or a cron
// expression in the standard five field format. Exactly one is set.
type Trigger struct {
	Event string
	Cron  string
}

func EventTrigger(name string) Trigger {
	return Trigger{Event: name}
}

func CronTrigger(expr string) Trigger {
	return Trigger{Cron: expr}
}

func (t Trigger) String() string {
	if t.Cron != "" {
		return "cron(" + t.Cron + ")"
	}

	return t.Event
}

type Input struct {
	Event   Event
	Step    Step
	RunID   string
	Attempt int
	Logger  *slog.Logger
}

type Handler func(ctx context.Context, in Input) (any, error)

type Function struct {
	ID      string
	Trigger Trigger
	// Retries is the number of attempts made after the first failure.
	Retries int
	Handler Handler
}
