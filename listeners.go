package cotask

import (
	"reflect"
	"slices"
)

// ListenerID identifies a function added to a [Listeners] list.
// The zero ListenerID identifies nothing.
type ListenerID uint64

// Listeners is an ordered list of functions to be called when an event
// occurs on a [Task].
//
// Functions are called in the order they were added.
// Adding or removing functions while the list is being notified does not
// affect the ongoing notification.
//
// The zero value is an empty list ready to use.
type Listeners[F any] struct {
	seq     ListenerID
	entries []listener[F]
}

type listener[F any] struct {
	id ListenerID
	f  F
}

// Add appends f to l and returns an ID that can later be passed to
// the Remove method.
func (l *Listeners[F]) Add(f F) ListenerID {
	if isNil(f) {
		return 0
	}
	l.seq++
	l.entries = append(l.entries, listener[F]{l.seq, f})
	return l.seq
}

// Set removes every function in l and then adds f.
func (l *Listeners[F]) Set(f F) ListenerID {
	l.Clear()
	return l.Add(f)
}

// Remove removes the function identified by id.
// It reports whether such a function was found.
func (l *Listeners[F]) Remove(id ListenerID) bool {
	if id == 0 {
		return false
	}
	i := slices.IndexFunc(l.entries, func(e listener[F]) bool { return e.id == id })
	if i == -1 {
		return false
	}
	l.entries = slices.Delete(l.entries, i, i+1)
	return true
}

// Clear removes every function in l.
func (l *Listeners[F]) Clear() {
	l.entries = nil
}

// Len returns the number of functions in l.
func (l *Listeners[F]) Len() int {
	return len(l.entries)
}

func (l *Listeners[F]) notify(call func(f F)) {
	if len(l.entries) == 0 {
		return
	}
	for _, e := range slices.Clone(l.entries) {
		call(e.f)
	}
}

func isNil(f any) bool {
	v := reflect.ValueOf(f)
	return !v.IsValid() || v.Kind() == reflect.Func && v.IsNil()
}

// Events holds the continuation lists of a [Task].
//
// Complete is notified on every terminal transition, before the more
// specific one of Success, Stopped or Exception.
// PauseChanged is notified whenever the paused flag actually changes.
type Events struct {
	Complete     Listeners[func()]
	Success      Listeners[func()]
	Stopped      Listeners[func()]
	Exception    Listeners[func(err error)]
	PauseChanged Listeners[func(paused bool)]
}
