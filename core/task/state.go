package task

import "fmt"

// State is the lifecycle state of a tracker.
type State int

const (
	Pending State = iota
	Succeeded
	Faulted
	TransportError
)

var stateNames = map[State]string{
	Pending:        "pending",
	Succeeded:      "succeeded",
	Faulted:        "faulted",
	TransportError: "transport_error",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether s is one of the final states.
func (s State) Terminal() bool { return s != Pending }

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for st, n := range stateNames {
		if n == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("task: unknown state %q", string(b))
}
