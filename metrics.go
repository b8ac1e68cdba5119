package cotask

// Metrics receives lifecycle events of the tasks run by an [Engine].
//
// Implementations are called synchronously from whatever goroutine drives
// the engine's [Host], and must not block.
// See the observability/prometheus package for a Prometheus exporter.
type Metrics interface {
	RecordTaskStarted()
	RecordTaskEnded(outcome Outcome)
	RecordActiveTasks(n int)
}

// NilMetrics is a [Metrics] that records nothing.
type NilMetrics struct{}

func (NilMetrics) RecordTaskStarted() {}
func (NilMetrics) RecordTaskEnded(Outcome) {}
func (NilMetrics) RecordActiveTasks(int) {}

var _ Metrics = NilMetrics{}
