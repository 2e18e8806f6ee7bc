// Package scenarios replays YAML described operation sequences against
// scripted SOAP charge points and checks the resulting task outcomes.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Reply selects how a scripted charge point answers.
type Reply string

const (
	ReplyAccept Reply = "accept"
	ReplyReject Reply = "reject"
	ReplyFault  Reply = "fault"
	// ReplyDrop never answers so the request times out.
	ReplyDrop Reply = "drop"
)

type ChargePointDef struct {
	ID    string `yaml:"id"`
	Reply Reply  `yaml:"reply"`
	// After switches to AfterReply once this many requests were answered.
	After      int   `yaml:"after,omitempty"`
	AfterReply Reply `yaml:"after_reply,omitempty"`
	// Unreachable gives the charge point an address nothing listens on.
	Unreachable bool `yaml:"unreachable,omitempty"`
}

type TagDef struct {
	ID      string     `yaml:"id"`
	Parent  string     `yaml:"parent,omitempty"`
	Expiry  *time.Time `yaml:"expiry,omitempty"`
	Blocked bool       `yaml:"blocked,omitempty"`
}

type Expected struct {
	Succeeded      int `yaml:"succeeded"`
	Faulted        int `yaml:"faulted"`
	TransportError int `yaml:"transport_error"`
	// Error, when set, must be contained in the dispatch error.
	Error string `yaml:"error,omitempty"`
	// Reservations maps reservation ids to their expected bookkeeping status.
	Reservations map[int]string `yaml:"reservations,omitempty"`
}

type Step struct {
	Operation string         `yaml:"operation"`
	Targets   []string       `yaml:"targets"`
	Params    map[string]any `yaml:"params,omitempty"`
	Expect    Expected       `yaml:"expect"`
}

type Scenario struct {
	Name                  string           `yaml:"name"`
	Description           string           `yaml:"description,omitempty"`
	RequestTimeoutSeconds int              `yaml:"request_timeout_seconds,omitempty"`
	ChargePoints          []ChargePointDef `yaml:"charge_points"`
	Tags                  []TagDef         `yaml:"tags,omitempty"`
	Steps                 []Step           `yaml:"steps"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	known := make(map[string]bool, len(sc.ChargePoints))
	for _, cp := range sc.ChargePoints {
		if cp.ID == "" {
			return fmt.Errorf("charge point without id")
		}
		known[cp.ID] = true
	}
	for i, st := range sc.Steps {
		if st.Operation == "" {
			return fmt.Errorf("step %d: operation is required", i)
		}
		for _, id := range st.Targets {
			if !known[id] {
				return fmt.Errorf("step %d: unknown charge point %q", i, id)
			}
		}
	}
	return nil
}
