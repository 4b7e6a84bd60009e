package events

import "errors"

var (
	// ErrSuspended is returned by Step.SleepUntil when the run has been
	// parked until a later time. Handlers return it unchanged.
	ErrSuspended = errors.New("run suspended")

	ErrDuplicateFunction = errors.New("duplicate function id")
	ErrFunctionNotFound  = errors.New("function not found")
	ErrInvalidFunction   = errors.New("invalid function")
	ErrInvalidEvent      = errors.New("invalid event")
)

type nonRetriableError struct {
	err error
}

func (e *nonRetriableError) Error() string {
	return e.err.Error()
}

func (e *nonRetriableError) Unwrap() error {
	return e.err
}

// NonRetriable marks err so that the engine fails the run immediately
// instead of scheduling another attempt.
func NonRetriable(err error) error {
	if err == nil {
		return nil
	}

	return &nonRetriableError{err: err}
}

func IsNonRetriable(err error) bool {
	var target *nonRetriableError
	return errors.As(err, &target)
}
