package cotask

// Status is the lifecycle state of a [Task].
//
// The zero value is Finished: a task that has never been started reports
// itself as finished.
type Status int8

const (
	Finished    Status = iota // Ended successfully, or never started.
	Running                   // Started and not yet ended.
	Interrupted               // Stopped, or ended with a failure.
)

func (s Status) String() string {
	switch s {
	case Finished:
		return "finished"
	case Running:
		return "running"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Outcome classifies how a [Task] ended.
// It is reported to [Metrics] when a task ends.
type Outcome int8

const (
	Succeeded Outcome = iota
	Stopped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Stopped:
		return "stopped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
