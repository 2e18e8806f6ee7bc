package task

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// Observer is notified after every terminal transition of a task's trackers.
// It is called outside the task lock.
type Observer interface {
	TrackerCompleted(t *Task, r Result)
}

// Task aggregates the trackers of one operation invocation. Its recipients
// are fixed at construction.
type Task struct {
	id        atomic.Int64
	version   ocpp.Version
	operation string
	createdAt time.Time

	mu       sync.Mutex
	trackers []*Tracker
	observer Observer
	now      func() time.Time
}

// New creates an unregistered task with one pending tracker per recipient.
func New(version ocpp.Version, operation string, recipients []ocpp.ChargePointSelect) (*Task, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	t := &Task{
		version:   version,
		operation: operation,
		createdAt: time.Now().UTC(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	t.trackers = make([]*Tracker, len(recipients))
	for i, r := range recipients {
		t.trackers[i] = &Tracker{
			task:        t,
			chargeBoxID: r.ChargeBoxID,
			endpoint:    r.EndpointAddress,
		}
	}
	return t, nil
}

// ID returns the id assigned by the store, or 0 while unregistered.
func (t *Task) ID() int                { return int(t.id.Load()) }
func (t *Task) Version() ocpp.Version  { return t.version }
func (t *Task) Operation() string      { return t.operation }
func (t *Task) CreatedAt() time.Time   { return t.createdAt }
func (t *Task) Len() int               { return len(t.trackers) }
func (t *Task) Tracker(i int) *Tracker { return t.trackers[i] }

// Trackers returns the trackers in recipient order.
func (t *Task) Trackers() []*Tracker {
	out := make([]*Tracker, len(t.trackers))
	copy(out, t.trackers)
	return out
}

// SetObserver installs the observer notified on terminal transitions.
func (t *Task) SetObserver(o Observer) {
	t.mu.Lock()
	t.observer = o
	t.mu.Unlock()
}

func (t *Task) complete(tr *Tracker, out Outcome) error {
	t.mu.Lock()
	if tr.state.Terminal() {
		err := alreadyCompleted(tr)
		t.mu.Unlock()
		return err
	}
	tr.state = out.State
	tr.response = out.Response
	tr.fault = out.Fault
	tr.err = out.Err
	tr.completedAt = t.now()
	if tr.effect != nil {
		tr.effectErr = tr.effect(out)
	}
	res := tr.result()
	obs := t.observer
	t.mu.Unlock()

	if obs != nil {
		obs.TrackerCompleted(t, res)
	}
	return nil
}

// Snapshot returns a consistent read-only view of the task.
func (t *Task) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Snapshot{
		ID:        t.ID(),
		Version:   t.version,
		Operation: t.operation,
		CreatedAt: t.createdAt,
		Results:   make([]Result, 0, len(t.trackers)),
	}
	for _, tr := range t.trackers {
		s.Counts.add(tr.state)
		s.Results = append(s.Results, tr.result())
	}
	s.Finished = s.Counts.Pending == 0
	return s
}

// Result returns the current state of the i-th recipient.
func (t *Task) Result(i int) Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trackers[i].result()
}
