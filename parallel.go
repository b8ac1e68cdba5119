package cotask

import (
	"slices"

	"github.com/google/uuid"
)

// A ParallelHandle is a view over a [Task] that marks it as a child to run
// alongside whichever task produces the handle.
//
// When a task's body produces a ParallelHandle, the task registers it as
// a child and carries on without suspending. The child runs on its own;
// the producing task only waits for it after its own body is exhausted.
// A child that ends [Finished] is unregistered right away. If, by the time
// the producing task has waited for all its children, any child that was
// registered with stopParent ended [Interrupted], the producing task is
// stopped instead of ending [Finished].
// Stopping the producing task stops every child it holds.
//
// A ParallelHandle holds no state of its own: every method but StopParent
// and Task forwards to the task it refers to.
type ParallelHandle struct {
	task       *Task
	stopParent bool
}

type child struct {
	h   *ParallelHandle
	sub ListenerID
}

// Parallel returns a [ParallelHandle] to t.
// t must be started by the caller; see also [Engine.Parallel].
func (t *Task) Parallel(stopParent bool) *ParallelHandle {
	return &ParallelHandle{task: t, stopParent: stopParent}
}

// Task returns the task h refers to.
func (h *ParallelHandle) Task() *Task { return h.task }

// StopParent reports whether the task that registers h is stopped if
// the task h refers to ends [Interrupted].
func (h *ParallelHandle) StopParent() bool { return h.stopParent }

// ID returns the identifier of the task h refers to.
func (h *ParallelHandle) ID() uuid.UUID { return h.task.ID() }

// Status returns the status of the task h refers to.
func (h *ParallelHandle) Status() Status { return h.task.Status() }

// Ended reports whether the task h refers to is not running.
func (h *ParallelHandle) Ended() bool { return h.task.Ended() }

// Running reports whether the task h refers to is running.
func (h *ParallelHandle) Running() bool { return h.task.Running() }

// Err returns the failure of the task h refers to, if any.
func (h *ParallelHandle) Err() error { return h.task.Err() }

// Paused reports whether the task h refers to is paused.
func (h *ParallelHandle) Paused() bool { return h.task.Paused() }

// SetPaused pauses or unpauses the task h refers to.
func (h *ParallelHandle) SetPaused(paused bool) { h.task.SetPaused(paused) }

// Events returns the continuation lists of the task h refers to.
func (h *ParallelHandle) Events() *Events { return h.task.Events() }

// Stop stops the task h refers to.
func (h *ParallelHandle) Stop() { h.task.Stop() }

// SetFinished ends the task h refers to [Finished] right away.
func (h *ParallelHandle) SetFinished() { h.task.SetFinished() }

// WaitEnd returns a [Sequence] that suspends until the task h refers to ends.
// See [Task.WaitEnd].
func (h *ParallelHandle) WaitEnd(throwIfStopped bool) Sequence {
	return h.task.WaitEnd(throwIfStopped)
}

// Parallel returns another [ParallelHandle] to the task h refers to.
func (h *ParallelHandle) Parallel(stopParent bool) *ParallelHandle {
	return h.task.Parallel(stopParent)
}

// OnComplete adds f to be called when the task h refers to ends.
func (h *ParallelHandle) OnComplete(f func()) *ParallelHandle {
	h.task.OnComplete(f)
	return h
}

// OnSuccess adds f to be called when the task h refers to ends [Finished].
func (h *ParallelHandle) OnSuccess(f func()) *ParallelHandle {
	h.task.OnSuccess(f)
	return h
}

// OnStopped adds f to be called when the task h refers to is stopped.
func (h *ParallelHandle) OnStopped(f func()) *ParallelHandle {
	h.task.OnStopped(f)
	return h
}

// OnException adds f to be called with the failure of the task h refers to.
func (h *ParallelHandle) OnException(f func(err error)) *ParallelHandle {
	h.task.OnException(f)
	return h
}

// OnPauseChanged adds f to be called whenever the task h refers to is paused
// or unpaused.
func (h *ParallelHandle) OnPauseChanged(f func(paused bool)) *ParallelHandle {
	h.task.OnPauseChanged(f)
	return h
}

func (t *Task) addChild(h *ParallelHandle) {
	if h.task.Status() == Finished {
		return
	}
	c := child{h: h}
	if h.task.Running() {
		c.sub = h.task.events.Success.Add(func() { t.removeChild(h) })
	}
	t.children = append(t.children, c)
}

func (t *Task) removeChild(h *ParallelHandle) {
	i := slices.IndexFunc(t.children, func(c child) bool { return c.h == h })
	if i != -1 {
		c := t.children[i]
		t.children = slices.Delete(t.children, i, i+1)
		c.h.task.events.Success.Remove(c.sub)
	}
}

func (t *Task) releaseChildren() {
	children := t.children
	t.children = nil
	for _, c := range children {
		c.h.task.events.Success.Remove(c.sub)
	}
}

func (t *Task) firstActiveChild() *ParallelHandle {
	for _, c := range t.children {
		if c.h.task.Running() {
			return c.h
		}
	}
	return nil
}

func (t *Task) stoppedByChild() bool {
	return slices.ContainsFunc(t.children, func(c child) bool {
		return c.h.stopParent && c.h.task.Status() == Interrupted
	})
}
