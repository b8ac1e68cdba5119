package cotask

var defaultEngine Engine

// Init initializes the default [Engine] to run tasks on host.
// Tasks that are not created from any Engine run on the default one.
//
// Init does nothing if the default Engine is already initialized.
func Init(host Host, opts ...Option) {
	if defaultEngine.Host() != nil {
		return
	}
	defaultEngine.mu.Lock()
	defaultEngine.init(host, opts)
	defaultEngine.mu.Unlock()
}

// Deinit stops every task running on the default [Engine] and detaches it
// from its [Host].
// Using the default Engine afterwards panics until Init is called again.
func Deinit() {
	if defaultEngine.Host() == nil {
		return
	}
	defaultEngine.StopAll()
	defaultEngine.mu.Lock()
	defaultEngine.host = nil
	defaultEngine.mu.Unlock()
}

// Default returns the default [Engine].
func Default() *Engine {
	return &defaultEngine
}

// Start creates a [Task] on the default [Engine] and starts it with s.
func Start(s Sequence) *Task {
	return defaultEngine.Start(s)
}

// Parallel starts a [Task] on the default [Engine] with s and returns
// a [ParallelHandle] to it.
func Parallel(s Sequence, stopParent bool) *ParallelHandle {
	return defaultEngine.Parallel(s, stopParent)
}
