package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/ocppcs/core/metrics"
)

// PromSink records dispatch events in Prometheus metrics.
type PromSink struct {
	tasks       *prometheus.CounterVec
	recipients  prometheus.Histogram
	completions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	doubles     *prometheus.CounterVec
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
// They are served by the API server on /metrics.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ocpp_sink_tasks_total",
			Help: "Tasks created per operation",
		}, []string{"operation", "ocpp_version"}),
		recipients: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ocpp_sink_task_recipients",
			Help:    "Number of charge points targeted per task",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ocpp_sink_completions_total",
			Help: "Terminal tracker transitions per operation and state",
		}, []string{"operation", "state"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ocpp_sink_response_latency_seconds",
			Help:    "Time between dispatch and terminal outcome",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "state"}),
		doubles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ocpp_sink_double_completions_total",
			Help: "Outcomes delivered for an already completed tracker",
		}, []string{"operation"}),
	}
	var err error
	if s.tasks, err = register(reg, s.tasks); err != nil {
		return nil, err
	}
	if s.recipients, err = register(reg, s.recipients); err != nil {
		return nil, err
	}
	if s.completions, err = register(reg, s.completions); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.doubles, err = register(reg, s.doubles); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c was registered
// before, so several sinks can share one registry.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (s *PromSink) RecordTask(ev coremetrics.TaskEvent) error {
	s.tasks.WithLabelValues(ev.Operation, ev.Version).Inc()
	s.recipients.Observe(float64(ev.Recipients))
	return nil
}

func (s *PromSink) RecordCompletion(ev coremetrics.CompletionEvent) error {
	s.completions.WithLabelValues(ev.Operation, ev.State).Inc()
	s.latency.WithLabelValues(ev.Operation, ev.State).Observe(ev.Latency.Seconds())
	return nil
}

func (s *PromSink) RecordDoubleCompletion(ev coremetrics.DoubleCompletionEvent) error {
	s.doubles.WithLabelValues(ev.Operation).Inc()
	return nil
}
