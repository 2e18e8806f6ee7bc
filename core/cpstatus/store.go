// Package cpstatus remembers the last operation outcome seen for each
// charge point.
package cpstatus

import (
	"sort"
	"sync"
	"time"
)

// LastOperation summarizes the most recent terminal outcome for a charge point.
type LastOperation struct {
	TaskID    int       `json:"task_id"`
	Operation string    `json:"operation"`
	State     string    `json:"state"`
	Status    string    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Status captures the current known state of a charge point.
type Status struct {
	ChargeBoxID     string        `json:"charge_box_id"`
	EndpointAddress string        `json:"endpoint_address,omitempty"`
	Reachable       bool          `json:"reachable"`
	Pending         int           `json:"pending"`
	LastOperation   LastOperation `json:"last_operation"`
}

type Filter struct {
	ChargeBoxID string
	Operation   string
	// OnlyUnreachable keeps charge points whose last request failed in transport.
	OnlyUnreachable bool
}

type Store interface {
	RecordDispatch(chargeBoxID, endpoint string)
	RecordOutcome(chargeBoxID string, op LastOperation)
	List(Filter) []Status
	Get(chargeBoxID string) (Status, bool)
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Status{}}
}

// RecordDispatch counts a request in flight to the charge point.
func (s *MemoryStore) RecordDispatch(id, endpoint string) {
	s.mu.Lock()
	st := s.data[id]
	st.ChargeBoxID = id
	if endpoint != "" {
		st.EndpointAddress = endpoint
	}
	st.Pending++
	s.data[id] = st
	s.mu.Unlock()
}

// RecordOutcome stores op as the latest outcome. Outcomes older than the one
// already stored only decrement the pending count.
func (s *MemoryStore) RecordOutcome(id string, op LastOperation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.data[id]
	st.ChargeBoxID = id
	if st.Pending > 0 {
		st.Pending--
	}
	if op.Timestamp.Before(st.LastOperation.Timestamp) {
		s.data[id] = st
		return
	}
	st.LastOperation = op
	st.Reachable = op.State != "transport_error"
	s.data[id] = st
}

func (s *MemoryStore) Get(id string) (Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[id]
	return st, ok
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.ChargeBoxID != "" && st.ChargeBoxID != f.ChargeBoxID {
			continue
		}
		if f.Operation != "" && st.LastOperation.Operation != f.Operation {
			continue
		}
		if f.OnlyUnreachable && (st.Reachable || st.LastOperation.State == "") {
			continue
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ChargeBoxID < res[j].ChargeBoxID })
	return res
}
