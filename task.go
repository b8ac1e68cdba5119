package cotask

import (
	"errors"
	"slices"

	"github.com/google/uuid"
)

// A Task is a cancellable, pausable unit of cooperative step-wise execution.
//
// A Task is started with a [Sequence], its body, and is driven by the [Host]
// of its [Engine], which repeatedly asks the task's [Routine] to advance one
// step. Values produced by the body are interpreted by the task (see
// [Sequence]): nested sequences and tasks run in place, parallel children
// are registered, and anything else becomes a suspension point.
//
// When the body is exhausted, a task waits for its parallel children, and
// then ends with status [Finished]. A task ends with status [Interrupted]
// when it is stopped, or when a step of its body fails.
// Once ended, a task stays ended until it is started again.
//
// The zero value is a task, never started, that runs on the default Engine.
// A Task must not be shared by more than one goroutine.
type Task struct {
	engine   *Engine
	id       uuid.UUID
	status   Status
	paused   bool
	started  bool
	err      error
	run      *routine
	cancel   func()
	children []child
	ext      extension
	events   Events
}

// extension hooks a task variant into the lifecycle of its embedded Task.
//
// ended is called when the task ends, before any continuation runs; the
// function it returns, if any, is called after the continuations of t.
type extension interface {
	reset()
	ended(status Status) func()
}

// NewTask creates a [Task] to be run on e, or on the default [Engine] if e
// is nil.
func NewTask(e *Engine) *Task {
	return &Task{engine: e}
}

func (t *Task) base() *Task { return t }

func (t *Task) eng() *Engine {
	if e := t.engine; e != nil {
		return e
	}
	return &defaultEngine
}

// ID returns the identifier of t.
func (t *Task) ID() uuid.UUID {
	if t.id == uuid.Nil {
		t.id = uuid.New()
	}
	return t.id
}

// Engine returns the [Engine] t runs on.
func (t *Task) Engine() *Engine {
	return t.eng()
}

// Status returns the status of t.
func (t *Task) Status() Status {
	return t.status
}

// Ended reports whether t is not running, i.e. has ended or has never been
// started.
func (t *Task) Ended() bool {
	return t.status != Running
}

// Running reports whether t is running.
func (t *Task) Running() bool {
	return t.status == Running
}

// Err returns the failure that caused t to end [Interrupted], or nil if t
// did not fail. A stopped task has no failure.
func (t *Task) Err() error {
	return t.err
}

// Paused reports whether t is paused.
func (t *Task) Paused() bool {
	return t.paused
}

// SetPaused pauses or unpauses t.
//
// A paused task keeps running but its body is not advanced: every step
// suspends with a nil value until t is unpaused.
// The PauseChanged listeners of t are notified if the flag changes.
func (t *Task) SetPaused(paused bool) {
	if t.paused == paused {
		return
	}
	t.paused = paused
	t.events.PauseChanged.notify(func(f func(bool)) { f(paused) })
}

// Events returns the continuation lists of t.
func (t *Task) Events() *Events {
	return &t.events
}

// OnComplete adds f to be called when t ends, whatever the outcome.
func (t *Task) OnComplete(f func()) *Task {
	t.events.Complete.Add(f)
	return t
}

// OnSuccess adds f to be called when t ends [Finished].
func (t *Task) OnSuccess(f func()) *Task {
	t.events.Success.Add(f)
	return t
}

// OnStopped adds f to be called when t ends [Interrupted] without a failure.
func (t *Task) OnStopped(f func()) *Task {
	t.events.Stopped.Add(f)
	return t
}

// OnException adds f to be called with the failure when t ends
// [Interrupted] because a step failed.
func (t *Task) OnException(f func(err error)) *Task {
	t.events.Exception.Add(f)
	return t
}

// OnPauseChanged adds f to be called whenever t is paused or unpaused.
func (t *Task) OnPauseChanged(f func(paused bool)) *Task {
	t.events.PauseChanged.Add(f)
	return t
}

// Start stops t if it is running, and then starts it again with s as
// its body. Start returns t.
//
// The body begins executing immediately, up to its first suspension point
// (depending on the [Host]). Start panics if the [Engine] of t is not
// initialized.
func (t *Task) Start(s Sequence) *Task {
	if s == nil {
		panic("cotask: Start(nil)")
	}

	e := t.eng()
	host := e.mustHost()

	t.Stop()

	if t.ext != nil {
		t.ext.reset()
	}

	r := &routine{task: t, stack: []Sequence{s}}
	t.run = r
	t.status = Running
	t.started = true
	t.err = nil
	t.SetPaused(false)

	e.register(t)
	e.logger.V(1).Info("task started", "task", t.ID())

	cancel := host.Begin(r)
	if t.run == r {
		t.cancel = cancel
	} else {
		cancel()
	}

	return t
}

// Stop stops t. Stop does nothing if t is not running.
//
// Stopping a task abandons its body, stops every parallel child it holds,
// and ends it [Interrupted] with no failure.
// Stop is safe to call from continuations of t or of its children, and
// from the body of t. Like Start, Stop panics if the [Engine] of t is not
// initialized, even if t is not running.
func (t *Task) Stop() {
	t.eng().mustHost()

	if t.Ended() {
		return
	}

	t.status = Interrupted
	t.detach()

	for _, c := range slices.Clone(t.children) {
		c.h.task.Stop()
	}

	t.finish()
}

// SetFinished ends t [Finished] right away, abandoning whatever remains of
// its body. SetFinished does nothing if t is not running.
//
// Parallel children of t are left running on their own.
// Like Start, SetFinished panics if the [Engine] of t is not initialized,
// even if t is not running.
func (t *Task) SetFinished() {
	t.eng().mustHost()

	if t.Ended() {
		return
	}

	t.status = Finished
	t.detach()
	t.finish()
}

// WaitEnd returns a [Sequence] that suspends, producing nil, until t ends.
//
// If throwIfStopped is true and t ends [Interrupted], the last step of
// the returned Sequence fails with [ErrStopped].
//
// Each call returns a new Sequence.
func (t *Task) WaitEnd(throwIfStopped bool) Sequence {
	return SequenceFunc(func() (any, bool, error) {
		if !t.Ended() {
			return nil, true, nil
		}
		if throwIfStopped && t.status == Interrupted {
			return nil, false, stoppedError(t)
		}
		return nil, false, nil
	})
}

// detach abandons the routine of the current run.
func (t *Task) detach() {
	if cancel := t.cancel; cancel != nil {
		t.cancel = nil
		cancel()
	}
	if r := t.run; r != nil {
		t.run = nil
		r.close()
	}
}

func (t *Task) fail(err error) {
	if t.Ended() {
		return
	}
	var te *TaskError
	if !errors.As(err, &te) {
		err = &TaskError{Task: t, Err: err}
	}
	t.err = err
	t.Stop()
}

func (t *Task) finish() {
	e := t.eng()
	status, err := t.status, t.err

	t.releaseChildren()
	e.unregister(t)

	switch {
	case status == Finished:
		e.metrics.RecordTaskEnded(Succeeded)
		e.logger.V(1).Info("task finished", "task", t.ID())
	case err != nil:
		e.metrics.RecordTaskEnded(Failed)
		e.logger.Error(err, "task failed", "task", t.ID())
	default:
		e.metrics.RecordTaskEnded(Stopped)
		e.logger.V(1).Info("task stopped", "task", t.ID())
	}

	var after func()
	if t.ext != nil {
		after = t.ext.ended(status)
	}

	t.events.Complete.notify(call)

	switch {
	case status == Finished:
		t.events.Success.notify(call)
	case err != nil:
		t.events.Exception.notify(func(f func(error)) { f(err) })
	default:
		t.events.Stopped.notify(call)
	}

	if after != nil {
		after()
	}
}

func call(f func()) { f() }
