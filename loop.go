package cotask

import (
	"context"
	"slices"
	"sync"
	"time"
)

// A Loop is a [Host] that advances every routine it executes once per tick.
//
// Begin runs a routine immediately up to its first suspension point.
// The Tick method then steps each live routine once, in the order they
// began. Routines that begin during a tick are not stepped again until
// the next one.
//
// Values routines are suspended on are not interpreted: every suspension
// lasts exactly one tick.
//
// Tick must not be called twice at the same time, and must be called from
// the goroutine that uses the tasks being driven. To start or stop tasks
// from other goroutines, use the Post method.
//
// The zero value is an empty Loop ready to use.
type Loop struct {
	mu       sync.Mutex
	routines []*loopRoutine
	posted   []func()
	ticks    uint64
}

type loopRoutine struct {
	r     Routine
	ended bool // guarded by Loop.mu
}

func (l *Loop) end(lr *loopRoutine) {
	l.mu.Lock()
	lr.ended = true
	l.mu.Unlock()
}

func (l *Loop) ended(lr *loopRoutine) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return lr.ended
}

var _ Host = (*Loop)(nil)

// Begin implements the [Host] interface.
func (l *Loop) Begin(r Routine) (cancel func()) {
	lr := &loopRoutine{r: r}
	if _, ok := r.Step(); !ok {
		return func() {}
	}
	l.mu.Lock()
	l.routines = append(l.routines, lr)
	l.mu.Unlock()
	return func() { l.end(lr) }
}

// CancelAll implements the [Host] interface.
func (l *Loop) CancelAll() {
	l.mu.Lock()
	for _, lr := range l.routines {
		lr.ended = true
	}
	l.routines = nil
	l.mu.Unlock()
}

// Post adds f to a queue of functions to be called at the start of the
// next tick, before any routine is stepped.
//
// Post is safe for concurrent use.
func (l *Loop) Post(f func()) {
	if f == nil {
		return
	}
	l.mu.Lock()
	l.posted = append(l.posted, f)
	l.mu.Unlock()
}

// Tick calls every posted function, and then steps every live routine once.
func (l *Loop) Tick() {
	l.mu.Lock()
	l.ticks++
	posted := l.posted
	l.posted = nil
	routines := slices.Clone(l.routines)
	l.mu.Unlock()

	for _, f := range posted {
		f()
	}

	for _, lr := range routines {
		if l.ended(lr) {
			continue
		}
		if _, ok := lr.r.Step(); !ok {
			l.end(lr)
		}
	}

	l.mu.Lock()
	l.routines = slices.DeleteFunc(l.routines, func(lr *loopRoutine) bool { return lr.ended })
	l.mu.Unlock()
}

// Run calls the Tick method every interval until ctx is done, and then
// abandons every routine. It returns ctx.Err().
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			l.CancelAll()
			return ctx.Err()
		case <-tk.C:
			l.Tick()
		}
	}
}

// Len returns the number of routines l is executing.
// Len is safe for concurrent use.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, lr := range l.routines {
		if !lr.ended {
			n++
		}
	}
	return n
}

// Ticks returns the number of times the Tick method has been called.
func (l *Loop) Ticks() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}
