package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/infra/mqtt"
)

func TestGenerateFleetCount(t *testing.T) {
	cps := GenerateFleet(5, "", Config{Broker: "tcp://b:1883", TopicPrefix: "site"}, AutoAnswer{})
	require.Len(t, cps, 5)
	assert.Equal(t, "CP0001", cps[0].ID)
	assert.Equal(t, "CP0005", cps[4].ID)
	assert.Equal(t, "site", cps[0].TopicPrefix)
	assert.Nil(t, GenerateFleet(0, "", Config{}, AutoAnswer{}))
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Broker: "tcp://b:1883", Count: 1, DropRate: 1.5}
	assert.Error(t, cfg.Validate())
	cfg.DropRate = 0.1
	assert.NoError(t, cfg.Validate())
}

func TestRandomAnswerRates(t *testing.T) {
	rng = rand.New(rand.NewSource(1))
	drops := 0
	for i := 0; i < 200; i++ {
		if (RandomAnswer{DropRate: 0.5}).Decide(context.Background()) == Drop {
			drops++
		}
	}
	assert.InDelta(t, 100, drops, 40)
	assert.Equal(t, Fault, RandomAnswer{FaultRate: 1}.Decide(context.Background()))
}

func request(t *testing.T, a ocpp.Action, payload any) mqtt.Request {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return mqtt.Request{MessageID: "m1", Action: a, Payload: b}
}

func TestReservationLifecycle(t *testing.T) {
	cp := NewSimulatedChargePoint("CP1", "", AutoAnswer{})
	ctx := context.Background()

	resp, ok := cp.respond(ctx, request(t, ocpp.ActionReserveNow, ocpp.ReserveNowRequest{ConnectorID: 1, IDTag: "t", ReservationID: 9}))
	require.True(t, ok)
	assert.JSONEq(t, `{"status":"Accepted"}`, string(resp.Payload))

	resp, _ = cp.respond(ctx, request(t, ocpp.ActionReserveNow, ocpp.ReserveNowRequest{ConnectorID: 1, IDTag: "u", ReservationID: 10}))
	assert.JSONEq(t, `{"status":"Occupied"}`, string(resp.Payload))

	resp, _ = cp.respond(ctx, request(t, ocpp.ActionCancelReservation, ocpp.CancelReservationRequest{ReservationID: 9}))
	assert.JSONEq(t, `{"status":"Accepted"}`, string(resp.Payload))
	resp, _ = cp.respond(ctx, request(t, ocpp.ActionCancelReservation, ocpp.CancelReservationRequest{ReservationID: 9}))
	assert.JSONEq(t, `{"status":"Rejected"}`, string(resp.Payload))
}

func TestLocalListVersioning(t *testing.T) {
	cp := NewSimulatedChargePoint("CP1", "", AutoAnswer{})
	ctx := context.Background()
	full := ocpp.SendLocalListRequest{ListVersion: 2, UpdateType: ocpp.UpdateFull, LocalAuthorisationList: []ocpp.AuthorisationData{
		{IDTag: "a", IDTagInfo: &ocpp.IDTagInfo{Status: ocpp.AuthorizationAccepted}},
	}}
	resp, _ := cp.respond(ctx, request(t, ocpp.ActionSendLocalList, full))
	assert.JSONEq(t, `{"status":"Accepted"}`, string(resp.Payload))

	stale := ocpp.SendLocalListRequest{ListVersion: 1, UpdateType: ocpp.UpdateDifferential}
	resp, _ = cp.respond(ctx, request(t, ocpp.ActionSendLocalList, stale))
	assert.JSONEq(t, `{"status":"VersionMismatch"}`, string(resp.Payload))

	resp, _ = cp.respond(ctx, request(t, ocpp.ActionGetLocalListVersion, ocpp.GetLocalListVersionRequest{}))
	assert.JSONEq(t, `{"listVersion":2}`, string(resp.Payload))
}

func TestUnknownActionFaults(t *testing.T) {
	cp := NewSimulatedChargePoint("CP1", "", AutoAnswer{})
	resp, ok := cp.respond(context.Background(), mqtt.Request{MessageID: "x", Action: "Heartbeat"})
	require.True(t, ok)
	require.NotNil(t, resp.Fault)
	assert.Equal(t, "FormationViolation", resp.Fault.Code)
}
