package metrics

import "errors"

// MultiSink fans events out to multiple sinks. Every sink is called even if
// an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordTask(ev TaskEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordTask(ev))
	}
	return errors.Join(errs...)
}

// RecordCompletion forwards to sinks implementing CompletionRecorder.
func (m *MultiSink) RecordCompletion(ev CompletionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(CompletionRecorder); ok {
			errs = append(errs, r.RecordCompletion(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordDoubleCompletion forwards to sinks implementing DoubleCompletionRecorder.
func (m *MultiSink) RecordDoubleCompletion(ev DoubleCompletionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(DoubleCompletionRecorder); ok {
			errs = append(errs, r.RecordDoubleCompletion(ev))
		}
	}
	return errors.Join(errs...)
}
