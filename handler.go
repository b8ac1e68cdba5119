package cotask

// A Handler translates values produced by the body of a [Task] that
// the task does not understand by itself.
//
// When a body produces such a value, the handlers of the task's [Engine]
// are consulted in the order they were added; the first one whose
// CanHandle method reports true takes the value and no other handler is
// consulted. Handle is then called with the task and the value; a non-nil
// error fails the task. Finally, Forward decides whether the task suspends:
// if ok is true, the task suspends with v (not necessarily the original
// value); otherwise the task carries on without suspending.
//
// A value that no handler takes is handed to the [Host] as is.
//
// Handlers are compared with == when removed from an Engine, so a Handler
// should be a comparable type, typically a pointer or a small struct.
type Handler interface {
	CanHandle(v any) bool
	Handle(t *Task, v any) error
	Forward() (v any, ok bool)
}
