package cpstatus

import (
	"testing"
	"time"
)

func TestMemoryStore_DispatchAndOutcome(t *testing.T) {
	s := NewMemoryStore()
	s.RecordDispatch("cb1", "http://cb1")
	s.RecordDispatch("cb1", "")
	st, ok := s.Get("cb1")
	if !ok || st.Pending != 2 || st.EndpointAddress != "http://cb1" {
		t.Fatalf("unexpected status %#v", st)
	}
	s.RecordOutcome("cb1", LastOperation{TaskID: 1, Operation: "Reset", State: "succeeded", Timestamp: time.Now()})
	st, _ = s.Get("cb1")
	if st.Pending != 1 || !st.Reachable || st.LastOperation.TaskID != 1 {
		t.Fatalf("outcome not recorded %#v", st)
	}
}

func TestMemoryStore_OlderOutcomeIgnored(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.RecordOutcome("cb1", LastOperation{TaskID: 2, State: "succeeded", Timestamp: now})
	s.RecordOutcome("cb1", LastOperation{TaskID: 1, State: "transport_error", Timestamp: now.Add(-time.Minute)})
	st, _ := s.Get("cb1")
	if st.LastOperation.TaskID != 2 || !st.Reachable {
		t.Fatalf("older outcome overwrote newer %#v", st)
	}
}

func TestMemoryStore_Filter(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.RecordOutcome("cb2", LastOperation{Operation: "Reset", State: "transport_error", Timestamp: now})
	s.RecordOutcome("cb1", LastOperation{Operation: "ClearCache", State: "succeeded", Timestamp: now})
	s.RecordDispatch("cb3", "tcp://broker:1883")

	out := s.List(Filter{})
	if len(out) != 3 || out[0].ChargeBoxID != "cb1" {
		t.Fatalf("list not sorted %#v", out)
	}
	out = s.List(Filter{OnlyUnreachable: true})
	if len(out) != 1 || out[0].ChargeBoxID != "cb2" {
		t.Fatalf("unreachable filter failed %#v", out)
	}
	out = s.List(Filter{Operation: "ClearCache"})
	if len(out) != 1 || out[0].ChargeBoxID != "cb1" {
		t.Fatalf("operation filter failed %#v", out)
	}
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.Get("nope"); ok {
		t.Fatal("expected unknown charge point")
	}
}
