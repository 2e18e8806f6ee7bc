package task

import (
	"time"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// Counts aggregates tracker states.
type Counts struct {
	Pending        int `json:"pending"`
	Succeeded      int `json:"succeeded"`
	Faulted        int `json:"faulted"`
	TransportError int `json:"transport_error"`
}

func (c *Counts) add(s State) {
	switch s {
	case Pending:
		c.Pending++
	case Succeeded:
		c.Succeeded++
	case Faulted:
		c.Faulted++
	case TransportError:
		c.TransportError++
	}
}

// Total returns the number of trackers counted.
func (c Counts) Total() int {
	return c.Pending + c.Succeeded + c.Faulted + c.TransportError
}

// Result is the state of one recipient.
type Result struct {
	ChargeBoxID string      `json:"charge_box_id"`
	Endpoint    string      `json:"endpoint_address"`
	State       State       `json:"state"`
	Response    any         `json:"response,omitempty"`
	Fault       *ocpp.Fault `json:"fault,omitempty"`
	Error       string      `json:"error,omitempty"`
	EffectError string      `json:"effect_error,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Snapshot is a point in time view of a task.
type Snapshot struct {
	ID        int          `json:"id"`
	Version   ocpp.Version `json:"ocpp_version"`
	Operation string       `json:"operation"`
	CreatedAt time.Time    `json:"created_at"`
	Finished  bool         `json:"finished"`
	Counts    Counts       `json:"counts"`
	Results   []Result     `json:"results"`
}
