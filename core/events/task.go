package events

import (
	"time"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// TaskCreated is published once per task after it has been registered.
type TaskCreated struct {
	TaskID     int
	Version    ocpp.Version
	Operation  string
	Recipients int
	At         time.Time
}

// TrackerCompleted is published after each terminal transition.
type TrackerCompleted struct {
	TaskID      int
	Version     ocpp.Version
	Operation   string
	ChargeBoxID string
	// State is the tracker state name, e.g. "succeeded".
	State   string
	Status  string
	Latency time.Duration
	Err     error
	At      time.Time
}

// DoubleCompletion signals a transport that delivered two outcomes for the
// same request.
type DoubleCompletion struct {
	TaskID      int
	Operation   string
	ChargeBoxID string
	Err         error
}
