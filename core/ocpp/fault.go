package ocpp

import "fmt"

// Fault is a well-formed error response returned by a charge point. It is
// kept verbatim so it can be inspected later.
type Fault struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func (f *Fault) Error() string {
	if f.Detail != "" {
		return fmt.Sprintf("ocpp fault %s: %s (%s)", f.Code, f.Reason, f.Detail)
	}
	return fmt.Sprintf("ocpp fault %s: %s", f.Code, f.Reason)
}
