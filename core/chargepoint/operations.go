package chargepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

func (s *Service) ChangeAvailability(ctx context.Context, p ChangeAvailabilityParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareChangeAvailability(p)
	return s.dispatch(ctx, ocpp.ActionChangeAvailability, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.ChangeAvailability(req, id, cb) }, nil)
}

func (s *Service) ChangeConfiguration(ctx context.Context, p ChangeConfigurationParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareChangeConfiguration(p)
	return s.dispatch(ctx, ocpp.ActionChangeConfiguration, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.ChangeConfiguration(req, id, cb) }, nil)
}

func (s *Service) ClearCache(ctx context.Context, p MultipleChargePointSelect) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareClearCache()
	return s.dispatch(ctx, ocpp.ActionClearCache, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.ClearCache(req, id, cb) }, nil)
}

func (s *Service) GetDiagnostics(ctx context.Context, p GetDiagnosticsParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareGetDiagnostics(p)
	return s.dispatch(ctx, ocpp.ActionGetDiagnostics, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.GetDiagnostics(req, id, cb) }, nil)
}

func (s *Service) Reset(ctx context.Context, p ResetParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareReset(p)
	return s.dispatch(ctx, ocpp.ActionReset, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.Reset(req, id, cb) }, nil)
}

func (s *Service) UpdateFirmware(ctx context.Context, p UpdateFirmwareParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareUpdateFirmware(p)
	return s.dispatch(ctx, ocpp.ActionUpdateFirmware, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.UpdateFirmware(req, id, cb) }, nil)
}

// DataTransfer sends vendor specific data. The payload is passed through
// untouched.
func (s *Service) DataTransfer(ctx context.Context, p DataTransferParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareDataTransfer(p)
	return s.dispatch(ctx, ocpp.ActionDataTransfer, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.DataTransfer(req, id, cb) }, nil)
}

func (s *Service) GetConfiguration(ctx context.Context, p GetConfigurationParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareGetConfiguration(p)
	return s.dispatch(ctx, ocpp.ActionGetConfiguration, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.GetConfiguration(req, id, cb) }, nil)
}

func (s *Service) GetLocalListVersion(ctx context.Context, p MultipleChargePointSelect) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareGetLocalListVersion()
	return s.dispatch(ctx, ocpp.ActionGetLocalListVersion, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.GetLocalListVersion(req, id, cb) }, nil)
}

// SendLocalList pushes a local authorization list. The entries of a
// differential update are resolved for the add/update list only; a full
// update carries every known user.
func (s *Service) SendLocalList(ctx context.Context, p SendLocalListParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	var (
		auth []ocpp.AuthorisationData
		err  error
	)
	switch {
	case p.UpdateType == ocpp.UpdateFull:
		auth, err = s.users.GetAuthDataOfAllUsers(ctx)
	case len(p.AddUpdateList) > 0:
		auth, err = s.users.GetAuthData(ctx, p.AddUpdateList)
	}
	if err != nil {
		return 0, fmt.Errorf("load authorization data: %w", err)
	}
	req := prepareSendLocalList(p, auth)
	return s.dispatch(ctx, ocpp.ActionSendLocalList, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.SendLocalList(req, id, cb) }, nil)
}

func (s *Service) RemoteStartTransaction(ctx context.Context, p RemoteStartTransactionParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareRemoteStartTransaction(p)
	return s.dispatch(ctx, ocpp.ActionRemoteStartTransaction, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.RemoteStartTransaction(req, id, cb) }, nil)
}

func (s *Service) RemoteStopTransaction(ctx context.Context, p RemoteStopTransactionParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareRemoteStopTransaction(p)
	return s.dispatch(ctx, ocpp.ActionRemoteStopTransaction, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.RemoteStopTransaction(req, id, cb) }, nil)
}

func (s *Service) UnlockConnector(ctx context.Context, p UnlockConnectorParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareUnlockConnector(p)
	return s.dispatch(ctx, ocpp.ActionUnlockConnector, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.UnlockConnector(req, id, cb) }, nil)
}

type operation struct {
	action ocpp.Action
	single bool
	exec   func(s *Service, ctx context.Context, body []byte) (int, error)
}

func newOperation[P any](a ocpp.Action, single bool, run func(*Service, context.Context, P) (int, error)) operation {
	return operation{action: a, single: single, exec: func(s *Service, ctx context.Context, body []byte) (int, error) {
		var p P
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return 0, fmt.Errorf("%w: decode %s params: %v", ErrValidation, a, err)
		}
		return run(s, ctx, p)
	}}
}

var operations = map[string]operation{}

func init() {
	for _, op := range []operation{
		newOperation(ocpp.ActionChangeAvailability, false, (*Service).ChangeAvailability),
		newOperation(ocpp.ActionChangeConfiguration, false, (*Service).ChangeConfiguration),
		newOperation(ocpp.ActionClearCache, false, (*Service).ClearCache),
		newOperation(ocpp.ActionGetDiagnostics, false, (*Service).GetDiagnostics),
		newOperation(ocpp.ActionReset, false, (*Service).Reset),
		newOperation(ocpp.ActionUpdateFirmware, false, (*Service).UpdateFirmware),
		newOperation(ocpp.ActionDataTransfer, false, (*Service).DataTransfer),
		newOperation(ocpp.ActionGetConfiguration, false, (*Service).GetConfiguration),
		newOperation(ocpp.ActionGetLocalListVersion, false, (*Service).GetLocalListVersion),
		newOperation(ocpp.ActionSendLocalList, false, (*Service).SendLocalList),
		newOperation(ocpp.ActionRemoteStartTransaction, true, (*Service).RemoteStartTransaction),
		newOperation(ocpp.ActionRemoteStopTransaction, true, (*Service).RemoteStopTransaction),
		newOperation(ocpp.ActionUnlockConnector, true, (*Service).UnlockConnector),
		newOperation(ocpp.ActionReserveNow, true, (*Service).ReserveNow),
		newOperation(ocpp.ActionCancelReservation, true, (*Service).CancelReservation),
	} {
		operations[strings.ToLower(string(op.action))] = op
	}
}

// OperationInfo describes an operation accepted by Execute.
type OperationInfo struct {
	Name   string `json:"name"`
	Single bool   `json:"single_recipient"`
}

// Operations lists the supported operations by name.
func Operations() []OperationInfo {
	out := make([]OperationInfo, 0, len(operations))
	for _, op := range operations {
		out = append(out, OperationInfo{Name: string(op.action), Single: op.single})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Execute decodes JSON parameters for the named operation and runs it. Names
// match case-insensitively, e.g. "Reset" or "reservenow".
func (s *Service) Execute(ctx context.Context, name string, params []byte) (int, error) {
	op, ok := operations[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return op.exec(s, ctx, params)
}
