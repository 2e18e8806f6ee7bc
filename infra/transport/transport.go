// Package transport builds charge point clients from endpoint addresses.
package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/ocppcs/core/chargepoint"
	"github.com/kilianp07/ocppcs/core/monitoring"
	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/infra/mqtt"
)

var (
	// ErrTimeout is reported when a charge point does not answer in time.
	ErrTimeout = errors.New("transport: request timed out")
	// ErrUnsupportedScheme is returned for addresses no transport handles.
	ErrUnsupportedScheme = errors.New("transport: unsupported address scheme")
)

// Caller performs one blocking request/response exchange.
type Caller interface {
	Call(ctx context.Context, chargeBoxID string, action ocpp.Action, req, resp any) error
}

// client adapts a Caller to the asynchronous chargepoint.Client.
type client struct {
	caller  Caller
	timeout time.Duration
}

var _ chargepoint.Client = (*client)(nil)

func invoke[R any](c *client, action ocpp.Action, chargeBoxID string, req any, cb chargepoint.Callback) {
	go func() {
		defer monitoring.Recover()
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		resp := new(R)
		if err := c.caller.Call(ctx, chargeBoxID, action, req, resp); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mqtt.ErrResponseTimeout) {
				err = fmt.Errorf("%w: %s to %s: %w", ErrTimeout, action, chargeBoxID, err)
			}
			cb(nil, err)
			return
		}
		cb(resp, nil)
	}()
}

func (c *client) ChangeAvailability(req ocpp.ChangeAvailabilityRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.ChangeAvailabilityResponse](c, ocpp.ActionChangeAvailability, id, req, cb)
}

func (c *client) ChangeConfiguration(req ocpp.ChangeConfigurationRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.ChangeConfigurationResponse](c, ocpp.ActionChangeConfiguration, id, req, cb)
}

func (c *client) ClearCache(req ocpp.ClearCacheRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.ClearCacheResponse](c, ocpp.ActionClearCache, id, req, cb)
}

func (c *client) GetDiagnostics(req ocpp.GetDiagnosticsRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.GetDiagnosticsResponse](c, ocpp.ActionGetDiagnostics, id, req, cb)
}

func (c *client) RemoteStartTransaction(req ocpp.RemoteStartTransactionRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.RemoteStartTransactionResponse](c, ocpp.ActionRemoteStartTransaction, id, req, cb)
}

func (c *client) RemoteStopTransaction(req ocpp.RemoteStopTransactionRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.RemoteStopTransactionResponse](c, ocpp.ActionRemoteStopTransaction, id, req, cb)
}

func (c *client) Reset(req ocpp.ResetRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.ResetResponse](c, ocpp.ActionReset, id, req, cb)
}

func (c *client) UnlockConnector(req ocpp.UnlockConnectorRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.UnlockConnectorResponse](c, ocpp.ActionUnlockConnector, id, req, cb)
}

func (c *client) UpdateFirmware(req ocpp.UpdateFirmwareRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.UpdateFirmwareResponse](c, ocpp.ActionUpdateFirmware, id, req, cb)
}

func (c *client) DataTransfer(req ocpp.DataTransferRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.DataTransferResponse](c, ocpp.ActionDataTransfer, id, req, cb)
}

func (c *client) GetConfiguration(req ocpp.GetConfigurationRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.GetConfigurationResponse](c, ocpp.ActionGetConfiguration, id, req, cb)
}

func (c *client) GetLocalListVersion(req ocpp.GetLocalListVersionRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.GetLocalListVersionResponse](c, ocpp.ActionGetLocalListVersion, id, req, cb)
}

func (c *client) SendLocalList(req ocpp.SendLocalListRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.SendLocalListResponse](c, ocpp.ActionSendLocalList, id, req, cb)
}

func (c *client) ReserveNow(req ocpp.ReserveNowRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.ReserveNowResponse](c, ocpp.ActionReserveNow, id, req, cb)
}

func (c *client) CancelReservation(req ocpp.CancelReservationRequest, id string, cb chargepoint.Callback) {
	invoke[ocpp.CancelReservationResponse](c, ocpp.ActionCancelReservation, id, req, cb)
}
