// Package prometheus exports [cotask.Metrics] as Prometheus collectors.
package prometheus

import (
	"errors"
	"fmt"

	"github.com/b97tsk/cotask"
	prom "github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter adapts cotask.Metrics to Prometheus collectors.
type MetricsExporter struct {
	tasksStartedTotal prom.Counter
	tasksEndedTotal   *prom.CounterVec
	tasksActive       prom.Gauge
}

var _ cotask.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for
// cotask.Metrics. Collectors already registered on reg are reused.
func NewMetricsExporter(namespace string, reg prom.Registerer) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "cotask"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	started := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_started_total",
		Help:      "Total number of task starts.",
	})
	ended := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_ended_total",
		Help:      "Total number of ended tasks, by outcome.",
	}, []string{"outcome"})
	active := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "tasks_active",
		Help:      "Current number of running tasks.",
	})

	var err error
	if started, err = registerCollector(reg, started); err != nil {
		return nil, err
	}
	if ended, err = registerCollector(reg, ended); err != nil {
		return nil, err
	}
	if active, err = registerCollector(reg, active); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		tasksStartedTotal: started,
		tasksEndedTotal:   ended,
		tasksActive:       active,
	}, nil
}

// RecordTaskStarted records a task start.
func (m *MetricsExporter) RecordTaskStarted() {
	if m == nil {
		return
	}
	m.tasksStartedTotal.Inc()
}

// RecordTaskEnded records a task ending with the given outcome.
func (m *MetricsExporter) RecordTaskEnded(outcome cotask.Outcome) {
	if m == nil {
		return
	}
	m.tasksEndedTotal.WithLabelValues(outcome.String()).Inc()
}

// RecordActiveTasks records the number of running tasks.
func (m *MetricsExporter) RecordActiveTasks(n int) {
	if m == nil {
		return
	}
	m.tasksActive.Set(float64(n))
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
