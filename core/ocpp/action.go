package ocpp

// Action is the name of a central-system-initiated operation on the wire.
type Action string

const (
	ActionChangeAvailability     Action = "ChangeAvailability"
	ActionChangeConfiguration    Action = "ChangeConfiguration"
	ActionClearCache             Action = "ClearCache"
	ActionGetDiagnostics         Action = "GetDiagnostics"
	ActionRemoteStartTransaction Action = "RemoteStartTransaction"
	ActionRemoteStopTransaction  Action = "RemoteStopTransaction"
	ActionReset                  Action = "Reset"
	ActionUnlockConnector        Action = "UnlockConnector"
	ActionUpdateFirmware         Action = "UpdateFirmware"
	ActionDataTransfer           Action = "DataTransfer"
	ActionGetConfiguration       Action = "GetConfiguration"
	ActionGetLocalListVersion    Action = "GetLocalListVersion"
	ActionSendLocalList          Action = "SendLocalList"
	ActionReserveNow             Action = "ReserveNow"
	ActionCancelReservation      Action = "CancelReservation"
)

// SOAPAction returns the WS-Addressing action header value.
func (a Action) SOAPAction() string { return "/" + string(a) }

// RequestElement returns the SOAP body element name of the request,
// e.g. "resetRequest".
func (a Action) RequestElement() string { return lowerFirst(string(a)) + "Request" }

// ResponseElement returns the SOAP body element name of the response.
func (a Action) ResponseElement() string { return lowerFirst(string(a)) + "Response" }

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
