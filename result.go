package cotask

import (
	"fmt"
	"reflect"
)

// A Carrier is a value that, when produced by the body of a [ResultTask],
// supplies the result of that task (see [ResultHandler]).
type Carrier interface {
	ResultValue() any
}

// Result is a [Carrier] of a value of type T.
type Result[T any] struct {
	Value T
}

// ResultValue implements the [Carrier] interface.
func (r Result[T]) ResultValue() any { return r.Value }

// Return returns a [Result] carrying v.
// A [ResultTask] whose body produces it ends right away with v as its result.
func Return[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// ResultHandler is the [Handler] that assigns a [Carrier]'s value to
// the [ResultTask] that produced it.
// Engines register one on creation unless told otherwise.
//
// A Carrier produced by a task that is not a ResultTask is dropped.
type ResultHandler struct{}

var _ Handler = ResultHandler{}

// CanHandle implements the [Handler] interface.
func (ResultHandler) CanHandle(v any) bool {
	_, ok := v.(Carrier)
	return ok
}

// Handle implements the [Handler] interface.
func (ResultHandler) Handle(t *Task, v any) error {
	r, ok := t.ext.(resultReceiver)
	if !ok {
		return nil
	}
	return r.receive(v.(Carrier).ResultValue())
}

// Forward implements the [Handler] interface.
func (ResultHandler) Forward() (any, bool) { return nil, false }

type resultReceiver interface {
	receive(v any) error
}

// A ResultTask is a [Task] that carries a result of type T.
//
// A ResultTask ends [Finished] as soon as it gets its result, either from
// its body producing a [Carrier] (see [Return]) or from a call to its
// SetResult method. Whatever remains of its body never runs.
//
// A ResultTask must be started with its own Start method.
type ResultTask[T any] struct {
	Task
	value    T
	has      bool
	onResult Listeners[func(v T)]
}

// NewResultTask creates a [ResultTask] to be run on e, or on the default
// [Engine] if e is nil.
func NewResultTask[T any](e *Engine) *ResultTask[T] {
	rt := &ResultTask[T]{}
	rt.engine = e
	rt.ext = rt
	return rt
}

// Start stops rt if it is running, clears its result, and then starts it
// again with s as its body. Start returns rt.
func (rt *ResultTask[T]) Start(s Sequence) *ResultTask[T] {
	rt.ext = rt
	rt.Task.Start(s)
	return rt
}

// Result returns the result of rt, or the zero value of T if rt has no
// result.
func (rt *ResultTask[T]) Result() T {
	return rt.value
}

// Value returns the result of rt and whether rt has one.
func (rt *ResultTask[T]) Value() (T, bool) {
	return rt.value, rt.has
}

// HasResult reports whether rt has its result.
func (rt *ResultTask[T]) HasResult() bool {
	return rt.has
}

// SetResult supplies the result of rt and ends rt [Finished].
// SetResult does nothing and returns false if rt is not running.
func (rt *ResultTask[T]) SetResult(v T) bool {
	if !rt.Running() {
		return false
	}
	rt.value, rt.has = v, true
	rt.SetFinished()
	return true
}

// OnResult adds f to be called with the result when rt ends [Finished].
// Result listeners are notified after the Success listeners.
func (rt *ResultTask[T]) OnResult(f func(v T)) *ResultTask[T] {
	rt.onResult.Add(f)
	return rt
}

// ResultListeners returns the list of functions to be called with
// the result when rt ends [Finished].
func (rt *ResultTask[T]) ResultListeners() *Listeners[func(v T)] {
	return &rt.onResult
}

// WaitForResult returns a [Sequence] that suspends, producing nil, until
// rt has its result.
//
// If rt ends [Interrupted] without a result, the last step of the returned
// Sequence fails with [ErrStopped]. If rt ends [Finished] without one,
// the returned Sequence ends (see [ErrNoResult]).
func (rt *ResultTask[T]) WaitForResult() Sequence {
	return SequenceFunc(func() (any, bool, error) {
		switch {
		case rt.has:
			return nil, false, nil
		case rt.status == Interrupted:
			return nil, false, stoppedError(&rt.Task)
		case rt.status == Finished && rt.started:
			return nil, false, nil
		}
		return nil, true, nil
	})
}

func (rt *ResultTask[T]) receive(v any) error {
	x, ok := v.(T)
	if !ok {
		if v != nil || reflect.TypeFor[T]().Kind() != reflect.Interface {
			return fmt.Errorf("%w: cannot assign %T to %v", ErrResultType, v, reflect.TypeFor[T]())
		}
	}
	rt.SetResult(x)
	return nil
}

func (rt *ResultTask[T]) reset() {
	var zero T
	rt.value, rt.has = zero, false
}

func (rt *ResultTask[T]) ended(status Status) func() {
	if status != Finished {
		return nil
	}
	if !rt.has {
		rt.eng().logger.Error(ErrNoResult, "result task finished without a result", "task", rt.ID())
	}
	v := rt.value
	return func() { rt.onResult.notify(func(f func(T)) { f(v) }) }
}
