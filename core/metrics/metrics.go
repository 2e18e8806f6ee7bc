package metrics

import (
	"time"
)

// TaskEvent is recorded when a task is registered.
type TaskEvent struct {
	TaskID     int
	Version    string
	Operation  string
	Recipients int
	Time       time.Time
}

// MetricsSink records dispatch activity for observability purposes.
type MetricsSink interface {
	RecordTask(ev TaskEvent) error
}

// CompletionEvent is recorded for every terminal tracker transition.
type CompletionEvent struct {
	TaskID      int
	Operation   string
	ChargeBoxID string
	State       string
	Status      string
	Latency     time.Duration
	Error       string
	Time        time.Time
}

// CompletionRecorder records tracker completions.
type CompletionRecorder interface {
	RecordCompletion(ev CompletionEvent) error
}

// DoubleCompletionEvent describes a tracker that received two outcomes.
type DoubleCompletionEvent struct {
	TaskID      int
	Operation   string
	ChargeBoxID string
	Time        time.Time
}

// DoubleCompletionRecorder records transport contract violations.
type DoubleCompletionRecorder interface {
	RecordDoubleCompletion(ev DoubleCompletionEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTask(TaskEvent) error                         { return nil }
func (NopSink) RecordCompletion(CompletionEvent) error             { return nil }
func (NopSink) RecordDoubleCompletion(DoubleCompletionEvent) error { return nil }
