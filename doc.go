// Package cotask is a library for composing cooperative, step-wise tasks.
//
// A [Task] runs a body, a [Sequence] of suspension points, one step at
// a time. This package performs no concurrency of its own: tasks are
// advanced by a [Host], a scheduler that decides when each running task
// takes its next step. [Loop] is a Host that steps every task once per
// tick; a game loop, a UI frame callback or a simulation clock would be
// others.
//
// An [Engine] ties tasks to a Host. A default Engine, set up with [Init] and
// torn down with [Deinit], serves tasks that are not created from any other
// Engine.
//
// # Composition
//
// A body composes other work simply by producing it:
//   - producing a [Sequence] runs it in place, as if it were inlined;
//   - producing a [*Task] suspends the body until that task ends, and stops
//     the body's own task if that task ends [Interrupted];
//   - producing a [*ParallelHandle] registers a child task that runs
//     alongside, and is waited for only once the body is exhausted.
//
// Nested sequences are flattened on an explicit stack, so a task can be
// paused or stopped in the middle of any nesting depth by inspecting
// that stack alone.
//
// Anything else a body produces is offered to the Engine's [Handler]s, an
// ordered, extensible vocabulary of suspension values. [ResultHandler], the
// handler behind [ResultTask], is one of them. Values no handler takes are
// handed to the Host as suspension points.
//
// # Ending
//
// A task ends [Finished] when its body and its parallel children are done,
// or when [Task.SetFinished] is called. It ends [Interrupted] when it is
// stopped, when a child that was registered with stopParent ends Interrupted,
// or when a step fails.
//
// Stopping is not an error: a stopped task has no failure. A step failing
// with [ErrStopped], the cancellation signal, stops its task the same way.
// Any other error, and any panic, raised by a step is recorded as
// a [*TaskError] and reported to OnException continuations.
//
// On every terminal transition, OnComplete continuations are notified
// first, followed by exactly one of OnSuccess, OnStopped or OnException.
// Each continuation is a [Listeners] list, so that one can either add
// a function or replace every function with one.
//
// # Timeouts
//
// There are no timeouts in this package. A timeout is just a task that
// stops another task after a while; see Example (Timeout).
package cotask
