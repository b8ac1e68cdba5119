package cotask

import "slices"

// Semaphore bounds access to a resource shared by tasks.
// Tasks request access with a given weight, and are served in the order
// they asked.
//
// A Semaphore must only be used from the goroutine that drives the tasks
// using it.
type Semaphore struct {
	size    int64
	cur     int64
	waiters []*semWaiter
}

type semWaiter struct {
	n       int64
	granted bool
}

// NewSemaphore creates a new weighted semaphore with the given maximum
// combined weight.
func NewSemaphore(n int64) *Semaphore {
	return &Semaphore{size: n}
}

// TryAcquire acquires a weight of n without suspending.
// It reports whether it succeeded; it never succeeds while tasks are
// waiting.
func (s *Semaphore) TryAcquire(n int64) bool {
	if n < 0 {
		panic("cotask(Semaphore): negative weight")
	}
	if len(s.waiters) == 0 && s.size-s.cur >= n {
		s.cur += n
		return true
	}
	return false
}

// Acquire returns a [Sequence] that suspends, producing nil, until a weight
// of n is acquired, and then ends.
//
// If the Sequence is stopped before it ends, the weight is never acquired,
// or is given back if it was acquired in the meantime. A weight larger than
// the size of s is never acquired.
func (s *Semaphore) Acquire(n int64) Sequence {
	if n < 0 {
		panic("cotask(Semaphore): negative weight")
	}
	return &semAcquire{s: s, n: n}
}

// Release releases a weight of n, possibly handing it over to waiting
// tasks.
func (s *Semaphore) Release(n int64) {
	if n < 0 {
		panic("cotask(Semaphore): negative weight")
	}
	if s.cur >= 0 {
		s.cur -= n
	}
	if s.cur < 0 {
		panic("cotask(Semaphore): released more than held")
	}
	s.notifyWaiters()
}

// Hold returns a [Sequence] that acquires a weight of n, runs body, and then
// releases the weight, even if it is stopped while body is running.
func (s *Semaphore) Hold(n int64, body Sequence) Sequence {
	if body == nil {
		panic("cotask: nil Sequence")
	}
	return &semHold{acquire: s.Acquire(n).(*semAcquire), body: body}
}

// Len returns the number of tasks waiting on s.
func (s *Semaphore) Len() int {
	return len(s.waiters)
}

func (s *Semaphore) notifyWaiters() {
	i := 0
	for _, w := range s.waiters {
		if s.size-s.cur < w.n {
			break
		}
		s.cur += w.n
		w.granted = true
		i++
	}
	s.waiters = slices.Delete(s.waiters, 0, i)
}

func (s *Semaphore) removeWaiter(w *semWaiter) {
	if i := slices.Index(s.waiters, w); i != -1 {
		s.waiters = slices.Delete(s.waiters, i, i+1)
		s.notifyWaiters()
	}
}

type semAcquire struct {
	s    *Semaphore
	n    int64
	w    *semWaiter
	done bool
}

func (a *semAcquire) Next() (any, bool, error) {
	switch {
	case a.done:
		return nil, false, nil
	case a.w == nil:
		if a.s.TryAcquire(a.n) {
			a.done = true
			return nil, false, nil
		}
		if a.n <= a.s.size {
			a.w = &semWaiter{n: a.n}
			a.s.waiters = append(a.s.waiters, a.w)
		}
		return nil, true, nil
	case a.w.granted:
		a.w, a.done = nil, true
		return nil, false, nil
	}
	return nil, true, nil
}

func (a *semAcquire) Stop() {
	if w := a.w; w != nil {
		a.w = nil
		if w.granted {
			a.s.Release(w.n)
		} else {
			a.s.removeWaiter(w)
		}
	}
}

type semHold struct {
	acquire *semAcquire
	body    Sequence
	held    bool
	ran     bool
}

func (h *semHold) Next() (any, bool, error) {
	if h.ran {
		h.release()
		return nil, false, nil
	}
	if !h.held {
		v, ok, err := h.acquire.Next()
		if ok || err != nil {
			return v, ok, err
		}
		h.held = true
	}
	h.ran = true
	return h.body, true, nil
}

func (h *semHold) Stop() {
	h.acquire.Stop()
	h.release()
}

func (h *semHold) release() {
	if h.held {
		h.held = false
		h.acquire.s.Release(h.acquire.n)
	}
}
