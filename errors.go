package cotask

import (
	"errors"
	"fmt"
)

var (
	// ErrStopped is the cancellation signal.
	// A step that fails with ErrStopped stops the task that runs it, but
	// is never recorded as the failure of that task.
	ErrStopped = errors.New("cotask: task stopped")

	// ErrResultType is returned when a result of the wrong type is assigned
	// to a [ResultTask].
	ErrResultType = errors.New("cotask: result type mismatch")

	// ErrNoResult is reported, as a diagnostic, when a [ResultTask] finishes
	// successfully without a result.
	ErrNoResult = errors.New("cotask: task finished without a result")
)

// TaskError is the failure recorded on a [Task] that ended Interrupted
// because one of its steps failed.
type TaskError struct {
	Task *Task
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("cotask: task %s: %v", e.Task.ID(), e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

func stoppedError(t *Task) error {
	return fmt.Errorf("%w: %s", ErrStopped, t.ID())
}
