package chargepoint

import "github.com/kilianp07/ocppcs/core/ocpp"

// Callback receives the outcome of one request. err is nil on success, an
// *ocpp.Fault when the charge point answered with a fault, and any other error
// when the request could not be completed, including timeouts. It is invoked
// exactly once per request on a transport goroutine.
type Callback func(resp any, err error)

// Client sends requests to the charge point endpoint it was made for. Every
// method returns immediately.
type Client interface {
	ChangeAvailability(req ocpp.ChangeAvailabilityRequest, chargeBoxID string, cb Callback)
	ChangeConfiguration(req ocpp.ChangeConfigurationRequest, chargeBoxID string, cb Callback)
	ClearCache(req ocpp.ClearCacheRequest, chargeBoxID string, cb Callback)
	GetDiagnostics(req ocpp.GetDiagnosticsRequest, chargeBoxID string, cb Callback)
	RemoteStartTransaction(req ocpp.RemoteStartTransactionRequest, chargeBoxID string, cb Callback)
	RemoteStopTransaction(req ocpp.RemoteStopTransactionRequest, chargeBoxID string, cb Callback)
	Reset(req ocpp.ResetRequest, chargeBoxID string, cb Callback)
	UnlockConnector(req ocpp.UnlockConnectorRequest, chargeBoxID string, cb Callback)
	UpdateFirmware(req ocpp.UpdateFirmwareRequest, chargeBoxID string, cb Callback)
	DataTransfer(req ocpp.DataTransferRequest, chargeBoxID string, cb Callback)
	GetConfiguration(req ocpp.GetConfigurationRequest, chargeBoxID string, cb Callback)
	GetLocalListVersion(req ocpp.GetLocalListVersionRequest, chargeBoxID string, cb Callback)
	SendLocalList(req ocpp.SendLocalListRequest, chargeBoxID string, cb Callback)
	ReserveNow(req ocpp.ReserveNowRequest, chargeBoxID string, cb Callback)
	CancelReservation(req ocpp.CancelReservationRequest, chargeBoxID string, cb Callback)
}

// ClientFactory makes a Client bound to one endpoint address. MakeClient is
// called concurrently by independent operations and must depend only on its
// argument and immutable configuration. It must not block on the network:
// connection setup belongs to the request and its failures reach the
// Callback. It returns an error for malformed or unsupported addresses.
type ClientFactory interface {
	MakeClient(address string) (Client, error)
}
