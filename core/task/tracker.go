package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// Outcome is the terminal result handed to an Effect.
type Outcome struct {
	State    State
	Response any
	Fault    *ocpp.Fault
	Err      error
}

// Effect is an operation specific side effect run together with the
// terminal transition of a tracker. It runs while the task lock is held and
// must not call back into the task.
type Effect func(Outcome) error

// Tracker records the outcome of one request sent to one charge point.
type Tracker struct {
	task        *Task
	chargeBoxID string
	endpoint    string

	// guarded by task.mu
	state       State
	response    any
	fault       *ocpp.Fault
	err         error
	effectErr   error
	effect      Effect
	completedAt time.Time
}

func (tr *Tracker) ChargeBoxID() string { return tr.chargeBoxID }
func (tr *Tracker) Endpoint() string    { return tr.endpoint }

// State returns the current state of the tracker.
func (tr *Tracker) State() State {
	tr.task.mu.Lock()
	defer tr.task.mu.Unlock()
	return tr.state
}

// SetEffect registers the side effect of the terminal transition. It must be
// called before the request is dispatched.
func (tr *Tracker) SetEffect(e Effect) error {
	tr.task.mu.Lock()
	defer tr.task.mu.Unlock()
	if tr.state.Terminal() {
		return ErrDispatched
	}
	tr.effect = e
	return nil
}

// Complete records the response of the charge point. A nil err marks the
// tracker Succeeded, an *ocpp.Fault marks it Faulted and any other error
// marks it TransportError.
func (tr *Tracker) Complete(resp any, err error) error {
	out := Outcome{State: Succeeded, Response: resp}
	var fault *ocpp.Fault
	switch {
	case err == nil:
	case errors.As(err, &fault):
		out = Outcome{State: Faulted, Fault: fault, Err: err}
	default:
		out = Outcome{State: TransportError, Err: err}
	}
	return tr.task.complete(tr, out)
}

// Fail marks the tracker TransportError regardless of the kind of err. It is
// used when the request could not be sent at all.
func (tr *Tracker) Fail(err error) error {
	if err == nil {
		err = errors.New("task: dispatch failed")
	}
	return tr.task.complete(tr, Outcome{State: TransportError, Err: err})
}

// result must be called with task.mu held.
func (tr *Tracker) result() Result {
	r := Result{
		ChargeBoxID: tr.chargeBoxID,
		Endpoint:    tr.endpoint,
		State:       tr.state,
		Response:    tr.response,
		Fault:       tr.fault,
	}
	if tr.err != nil && tr.fault == nil {
		r.Error = tr.err.Error()
	}
	if tr.effectErr != nil {
		r.EffectError = tr.effectErr.Error()
	}
	if !tr.completedAt.IsZero() {
		at := tr.completedAt
		r.CompletedAt = &at
	}
	return r
}

func alreadyCompleted(tr *Tracker) error {
	return fmt.Errorf("%w: %s is %s", ErrAlreadyCompleted, tr.chargeBoxID, tr.state)
}
