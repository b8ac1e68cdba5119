package cotask

// A WaitGroup waits for a collection of tasks to end.
//
// A WaitGroup must only be used from the goroutine that drives the tasks
// using it.
type WaitGroup struct {
	n int
}

// Add adds delta, which may be negative, to the [WaitGroup] counter.
// If the counter becomes negative, Add panics.
func (wg *WaitGroup) Add(delta int) {
	if wg.n >= 0 {
		wg.n += delta
	}
	if wg.n < 0 {
		panic("cotask(WaitGroup): negative counter")
	}
}

// Done decrements the [WaitGroup] counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Len returns the [WaitGroup] counter.
func (wg *WaitGroup) Len() int {
	return wg.n
}

// Track adds one to the [WaitGroup] counter, and decrements it once t ends,
// whatever the outcome. Track does nothing if t is not running.
func (wg *WaitGroup) Track(t *Task) {
	if !t.Running() {
		return
	}
	wg.Add(1)
	var id ListenerID
	id = t.events.Complete.Add(func() {
		t.events.Complete.Remove(id)
		wg.Done()
	})
}

// Wait returns a [Sequence] that suspends, producing nil, until
// the [WaitGroup] counter becomes zero, and then ends.
func (wg *WaitGroup) Wait() Sequence {
	return While(func() bool { return wg.n != 0 })
}
