// Package tasklog keeps an audit trail of charge point responses. One record
// is written per terminal tracker transition.
package tasklog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// Record captures the outcome of one request sent to one charge point.
type Record struct {
	Timestamp   time.Time       `json:"timestamp"`
	TaskID      int             `json:"task_id"`
	Operation   string          `json:"operation"`
	Version     string          `json:"ocpp_version"`
	ChargeBoxID string          `json:"charge_box_id"`
	State       string          `json:"state"`
	Status      string          `json:"status,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
	Fault       *ocpp.Fault     `json:"fault,omitempty"`
	Error       string          `json:"error,omitempty"`
	LatencyMS   float64         `json:"latency_ms"`
}

// Query defines filters for retrieving records. Zero values match anything.
type Query struct {
	Start       time.Time
	End         time.Time
	TaskID      int
	ChargeBoxID string
	Operation   string
}

// Match reports whether r satisfies q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.TaskID != 0 && r.TaskID != q.TaskID {
		return false
	}
	if q.ChargeBoxID != "" && r.ChargeBoxID != q.ChargeBoxID {
		return false
	}
	if q.Operation != "" && r.Operation != q.Operation {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
