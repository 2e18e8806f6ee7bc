package chargepoint

import (
	"context"
	"errors"
	"sync"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

type sent struct {
	action      ocpp.Action
	chargeBoxID string
	req         any
	cb          Callback
}

// fakeClient records requests and leaves completion to the test.
type fakeClient struct {
	f       *fakeFactory
	address string
}

func (c *fakeClient) record(a ocpp.Action, req any, id string, cb Callback) {
	if gate := c.f.gateFor(c.address); gate != nil {
		// the request is issued once the endpoint becomes reachable
		go func() {
			<-gate
			c.f.add(sent{action: a, chargeBoxID: id, req: req, cb: cb})
		}()
		return
	}
	c.f.add(sent{action: a, chargeBoxID: id, req: req, cb: cb})
}

func (f *fakeFactory) add(s sent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, s)
}

func (c *fakeClient) ChangeAvailability(req ocpp.ChangeAvailabilityRequest, id string, cb Callback) {
	c.record(ocpp.ActionChangeAvailability, req, id, cb)
}
func (c *fakeClient) ChangeConfiguration(req ocpp.ChangeConfigurationRequest, id string, cb Callback) {
	c.record(ocpp.ActionChangeConfiguration, req, id, cb)
}
func (c *fakeClient) ClearCache(req ocpp.ClearCacheRequest, id string, cb Callback) {
	c.record(ocpp.ActionClearCache, req, id, cb)
}
func (c *fakeClient) GetDiagnostics(req ocpp.GetDiagnosticsRequest, id string, cb Callback) {
	c.record(ocpp.ActionGetDiagnostics, req, id, cb)
}
func (c *fakeClient) RemoteStartTransaction(req ocpp.RemoteStartTransactionRequest, id string, cb Callback) {
	c.record(ocpp.ActionRemoteStartTransaction, req, id, cb)
}
func (c *fakeClient) RemoteStopTransaction(req ocpp.RemoteStopTransactionRequest, id string, cb Callback) {
	c.record(ocpp.ActionRemoteStopTransaction, req, id, cb)
}
func (c *fakeClient) Reset(req ocpp.ResetRequest, id string, cb Callback) {
	c.record(ocpp.ActionReset, req, id, cb)
}
func (c *fakeClient) UnlockConnector(req ocpp.UnlockConnectorRequest, id string, cb Callback) {
	c.record(ocpp.ActionUnlockConnector, req, id, cb)
}
func (c *fakeClient) UpdateFirmware(req ocpp.UpdateFirmwareRequest, id string, cb Callback) {
	c.record(ocpp.ActionUpdateFirmware, req, id, cb)
}
func (c *fakeClient) DataTransfer(req ocpp.DataTransferRequest, id string, cb Callback) {
	c.record(ocpp.ActionDataTransfer, req, id, cb)
}
func (c *fakeClient) GetConfiguration(req ocpp.GetConfigurationRequest, id string, cb Callback) {
	c.record(ocpp.ActionGetConfiguration, req, id, cb)
}
func (c *fakeClient) GetLocalListVersion(req ocpp.GetLocalListVersionRequest, id string, cb Callback) {
	c.record(ocpp.ActionGetLocalListVersion, req, id, cb)
}
func (c *fakeClient) SendLocalList(req ocpp.SendLocalListRequest, id string, cb Callback) {
	c.record(ocpp.ActionSendLocalList, req, id, cb)
}
func (c *fakeClient) ReserveNow(req ocpp.ReserveNowRequest, id string, cb Callback) {
	c.record(ocpp.ActionReserveNow, req, id, cb)
}
func (c *fakeClient) CancelReservation(req ocpp.CancelReservationRequest, id string, cb Callback) {
	c.record(ocpp.ActionCancelReservation, req, id, cb)
}

type fakeFactory struct {
	mu    sync.Mutex
	bad   map[string]bool
	gates map[string]chan struct{}
	sent  []sent
}

func newFakeFactory(bad ...string) *fakeFactory {
	f := &fakeFactory{bad: map[string]bool{}, gates: map[string]chan struct{}{}}
	for _, b := range bad {
		f.bad[b] = true
	}
	return f
}

func (f *fakeFactory) MakeClient(address string) (Client, error) {
	if f.bad[address] {
		return nil, errors.New("malformed address")
	}
	return &fakeClient{f: f, address: address}, nil
}

// slow makes requests to address wait until the returned channel is closed.
func (f *fakeFactory) slow(address string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gates[address] = gate
	return gate
}

func (f *fakeFactory) gateFor(address string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gates[address]
}

func (f *fakeFactory) requests() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sent, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeFactory) find(chargeBoxID string) (sent, bool) {
	for _, s := range f.requests() {
		if s.chargeBoxID == chargeBoxID {
			return s, true
		}
	}
	return sent{}, false
}

type statusChange struct {
	id     int
	status ReservationStatus
}

type fakeReservations struct {
	mu        sync.Mutex
	booked    []Booking
	changes   []statusChange
	cancelled []int
	bookErr   error
}

func (r *fakeReservations) BookReservation(_ context.Context, b Booking) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bookErr != nil {
		return 0, r.bookErr
	}
	r.booked = append(r.booked, b)
	return 100 + len(r.booked), nil
}

func (r *fakeReservations) UpdateReservationStatus(_ context.Context, id int, s ReservationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, statusChange{id, s})
	return nil
}

func (r *fakeReservations) CancelReservation(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, id)
	return nil
}

type fakeUsers struct {
	parents map[string]string
	auth    map[string]ocpp.AuthorisationData
	all     []ocpp.AuthorisationData
}

func (u *fakeUsers) GetParentIDTag(_ context.Context, tag string) (string, error) {
	return u.parents[tag], nil
}

func (u *fakeUsers) GetAuthData(_ context.Context, tags []string) ([]ocpp.AuthorisationData, error) {
	var out []ocpp.AuthorisationData
	for _, t := range tags {
		if a, ok := u.auth[t]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (u *fakeUsers) GetAuthDataOfAllUsers(context.Context) ([]ocpp.AuthorisationData, error) {
	return u.all, nil
}
