package cotask

import (
	"maps"
	"slices"
	"sync"

	"github.com/go-logr/logr"
)

// A Host drives the routines of the tasks started on an [Engine].
//
// Begin begins executing r and returns a function that abandons it.
// A Host resumes a routine by calling its Step method, on its own schedule,
// until Step reports that the routine has ended or the routine is abandoned.
// An abandoned routine must never be stepped again.
//
// CancelAll abandons every routine the Host is executing.
//
// [Loop] is a Host that steps every routine once per tick.
type Host interface {
	Begin(r Routine) (cancel func())
	CancelAll()
}

// A Routine is the driver of a running [Task], as seen by its [Host].
//
// Step advances the routine by one unit and returns the value the routine
// is suspended on, or ok == false once the routine has ended.
// Values other than nil are whatever a task's body produced and no
// [Handler] took; a Host may interpret them as it sees fit.
type Routine interface {
	Step() (v any, ok bool)
}

// An Engine ties tasks to a [Host].
//
// An Engine keeps track of every task running on it, so that they can all
// be stopped at once, and holds the [Handler]s consulted when a task
// produces a value it does not understand.
//
// Tasks are not safe for concurrent use. Every method of a task, and every
// Step of a routine, must be called from the goroutine that drives the Host.
// The Engine's own bookkeeping is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	host     Host
	active   map[*Task]struct{}
	handlers []Handler
	logger   logr.Logger
	metrics  Metrics
}

// An Option configures an [Engine].
type Option func(e *Engine)

// WithLogger sets the logger an [Engine] reports to.
// The default is [logr.Discard].
func WithLogger(l logr.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the [Metrics] an [Engine] records to.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m == nil {
			m = NilMetrics{}
		}
		e.metrics = m
	}
}

// WithoutResultHandler prevents an [Engine] from registering
// a [ResultHandler] on creation.
func WithoutResultHandler() Option {
	return func(e *Engine) { e.handlers = nil }
}

// NewEngine creates an [Engine] that runs tasks on host.
//
// A [ResultHandler] is registered on the new Engine unless
// [WithoutResultHandler] is given.
func NewEngine(host Host, opts ...Option) *Engine {
	return new(Engine).init(host, opts)
}

func (e *Engine) init(host Host, opts []Option) *Engine {
	if host == nil {
		panic("cotask: nil Host")
	}
	e.host = host
	e.active = make(map[*Task]struct{})
	e.handlers = []Handler{ResultHandler{}}
	e.logger = logr.Discard()
	e.metrics = NilMetrics{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) mustHost() Host {
	e.mu.Lock()
	host := e.host
	e.mu.Unlock()
	if host == nil {
		panic("cotask: engine is not initialized")
	}
	return host
}

// Host returns the [Host] of e, or nil if e is not initialized.
func (e *Engine) Host() Host {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.host
}

// Logger returns the logger of e.
func (e *Engine) Logger() logr.Logger {
	return e.logger
}

// NewTask creates a [Task] to be run on e.
func (e *Engine) NewTask() *Task {
	return &Task{engine: e}
}

// Start creates a [Task] and starts it with s.
func (e *Engine) Start(s Sequence) *Task {
	return e.NewTask().Start(s)
}

// Parallel starts a [Task] with s and returns a [ParallelHandle] to it.
func (e *Engine) Parallel(s Sequence, stopParent bool) *ParallelHandle {
	return e.Start(s).Parallel(stopParent)
}

// Len returns the number of tasks running on e.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

func (e *Engine) register(t *Task) {
	e.mu.Lock()
	e.active[t] = struct{}{}
	n := len(e.active)
	e.mu.Unlock()
	e.metrics.RecordTaskStarted()
	e.metrics.RecordActiveTasks(n)
}

func (e *Engine) unregister(t *Task) {
	e.mu.Lock()
	delete(e.active, t)
	n := len(e.active)
	e.mu.Unlock()
	e.metrics.RecordActiveTasks(n)
}

func (e *Engine) anyActive(skip map[*Task]struct{}) *Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	for t := range e.active {
		if _, ok := skip[t]; !ok {
			return t
		}
	}
	return nil
}

func (e *Engine) activeTasks() []*Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Collect(maps.Keys(e.active))
}

// StopAll stops every task running on e, and then asks the [Host] to
// abandon whatever routines it is still executing.
//
// Each task is stopped once. A task that a continuation restarts meanwhile
// loses its routine to the Host, and is stopped once more afterwards; if it
// is restarted again, it keeps running on a new routine.
func (e *Engine) StopAll() {
	host := e.mustHost()

	stopped := make(map[*Task]struct{})
	for {
		t := e.anyActive(stopped)
		if t == nil {
			break
		}
		stopped[t] = struct{}{}
		t.Stop()
	}

	host.CancelAll()

	for _, t := range e.activeTasks() {
		t.Stop()
	}
}

// AddHandler appends h to the handlers of e.
// Handlers are consulted in the order they were added.
func (e *Engine) AddHandler(h Handler) {
	if h == nil {
		panic("cotask: nil Handler")
	}
	e.mu.Lock()
	e.handlers = append(slices.Clip(e.handlers), h)
	e.mu.Unlock()
}

// RemoveHandler removes the first handler of e that equals h.
// It reports whether one was found.
func (e *Engine) RemoveHandler(h Handler) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := slices.IndexFunc(e.handlers, func(x Handler) bool { return x == h })
	if i == -1 {
		return false
	}
	e.handlers = slices.Delete(slices.Clone(e.handlers), i, i+1)
	return true
}

// ClearHandlers removes every handler of e.
func (e *Engine) ClearHandlers() {
	e.mu.Lock()
	e.handlers = nil
	e.mu.Unlock()
}

// Handlers returns a copy of the handlers of e.
func (e *Engine) Handlers() []Handler {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.handlers)
}

func (e *Engine) handlerFor(v any) Handler {
	e.mu.Lock()
	handlers := e.handlers
	e.mu.Unlock()
	for _, h := range handlers {
		if h.CanHandle(v) {
			return h
		}
	}
	return nil
}
