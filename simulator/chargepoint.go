package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/infra/mqtt"
)

// SimulatedChargePoint answers OCPP requests received over MQTT.
type SimulatedChargePoint struct {
	ID          string
	Broker      string
	TopicPrefix string
	Strategy    AnswerStrategy
	Connectors  int

	mu           sync.Mutex
	config       map[ocpp.ConfigurationKey]string
	listVersion  int
	localList    map[string]ocpp.AuthorisationData
	reservations map[int]int
	transactions map[int]int
	nextTx       int

	client paho.Client
	reqCh  chan mqtt.Request
}

// NewSimulatedChargePoint creates a charge point with two connectors.
func NewSimulatedChargePoint(id, broker string, strat AnswerStrategy) *SimulatedChargePoint {
	return &SimulatedChargePoint{
		ID:           id,
		Broker:       broker,
		TopicPrefix:  mqtt.DefaultTopicPrefix,
		Strategy:     strat,
		Connectors:   2,
		config:       map[ocpp.ConfigurationKey]string{ocpp.KeyHeartBeatInterval: "900"},
		localList:    map[string]ocpp.AuthorisationData{},
		reservations: map[int]int{},
		transactions: map[int]int{},
		nextTx:       1,
	}
}

// Run connects to the broker and serves requests until ctx is done.
func (cp *SimulatedChargePoint) Run(ctx context.Context) error {
	cli, err := newMQTTClient(cp.Broker, cp.TopicPrefix, cp.ID)
	if err != nil {
		return err
	}
	cp.client = cli
	cp.reqCh = make(chan mqtt.Request, 50)
	for i := 0; i < 5; i++ {
		go cp.worker(ctx)
	}
	topic := mqtt.RequestTopic(cp.TopicPrefix, cp.ID)
	if token := cli.Subscribe(topic, 1, cp.onRequest(ctx)); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return token.Error()
	}
	<-ctx.Done()
	cli.Disconnect(250)
	return nil
}

func (cp *SimulatedChargePoint) onRequest(ctx context.Context) func(paho.Client, paho.Message) {
	return func(_ paho.Client, msg paho.Message) {
		var req mqtt.Request
		if err := json.Unmarshal(msg.Payload(), &req); err != nil {
			log.Printf("%s: decode request: %v", cp.ID, err)
			return
		}
		select {
		case cp.reqCh <- req:
		case <-ctx.Done():
		default:
			log.Printf("%s: request queue full, dropping %s", cp.ID, req.MessageID)
		}
	}
}

func (cp *SimulatedChargePoint) worker(ctx context.Context) {
	for {
		select {
		case req := <-cp.reqCh:
			resp, ok := cp.respond(ctx, req)
			if ok {
				cp.publish(resp)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (cp *SimulatedChargePoint) respond(ctx context.Context, req mqtt.Request) (mqtt.Response, bool) {
	out := mqtt.Response{MessageID: req.MessageID}
	switch cp.Strategy.Decide(ctx) {
	case Drop:
		return out, false
	case Fault:
		out.Fault = &ocpp.Fault{Code: "InternalError", Reason: "simulated fault"}
		return out, true
	}
	payload, err := cp.handle(req.Action, req.Payload)
	if err != nil {
		out.Fault = &ocpp.Fault{Code: "FormationViolation", Reason: err.Error()}
		return out, true
	}
	b, err := json.Marshal(payload)
	if err != nil {
		out.Fault = &ocpp.Fault{Code: "InternalError", Reason: err.Error()}
		return out, true
	}
	out.Payload = b
	return out, true
}

func (cp *SimulatedChargePoint) publish(resp mqtt.Response) {
	payload, err := json.Marshal(resp)
	if err != nil {
		log.Printf("marshal response: %v", err)
		return
	}
	token := cp.client.Publish(mqtt.ResponseTopic(cp.TopicPrefix, cp.ID), 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("response publish timeout for %s", cp.ID)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("publish response error for %s: %v", cp.ID, err)
	}
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	err := json.Unmarshal(raw, &v)
	return v, err
}

// handle applies a request to the simulated state and builds the answer.
func (cp *SimulatedChargePoint) handle(action ocpp.Action, raw json.RawMessage) (any, error) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	switch action {
	case ocpp.ActionChangeAvailability:
		req, err := decode[ocpp.ChangeAvailabilityRequest](raw)
		if err != nil {
			return nil, err
		}
		if !cp.validConnector(req.ConnectorID, true) {
			return ocpp.ChangeAvailabilityResponse{Status: ocpp.StatusRejected}, nil
		}
		return ocpp.ChangeAvailabilityResponse{Status: ocpp.StatusAccepted}, nil
	case ocpp.ActionChangeConfiguration:
		req, err := decode[ocpp.ChangeConfigurationRequest](raw)
		if err != nil {
			return nil, err
		}
		key := ocpp.ConfigurationKey(req.Key)
		if !key.Valid() {
			return ocpp.ChangeConfigurationResponse{Status: ocpp.StatusNotSupported}, nil
		}
		cp.config[key] = req.Value
		return ocpp.ChangeConfigurationResponse{Status: ocpp.StatusAccepted}, nil
	case ocpp.ActionClearCache:
		return ocpp.ClearCacheResponse{Status: ocpp.StatusAccepted}, nil
	case ocpp.ActionGetDiagnostics:
		return ocpp.GetDiagnosticsResponse{FileName: fmt.Sprintf("%s-diagnostics.log", cp.ID)}, nil
	case ocpp.ActionRemoteStartTransaction:
		req, err := decode[ocpp.RemoteStartTransactionRequest](raw)
		if err != nil {
			return nil, err
		}
		conn := 1
		if req.ConnectorID != nil {
			conn = *req.ConnectorID
		}
		if !cp.validConnector(conn, false) {
			return ocpp.RemoteStartTransactionResponse{Status: ocpp.StatusRejected}, nil
		}
		cp.transactions[cp.nextTx] = conn
		cp.nextTx++
		return ocpp.RemoteStartTransactionResponse{Status: ocpp.StatusAccepted}, nil
	case ocpp.ActionRemoteStopTransaction:
		req, err := decode[ocpp.RemoteStopTransactionRequest](raw)
		if err != nil {
			return nil, err
		}
		if _, ok := cp.transactions[req.TransactionID]; !ok {
			return ocpp.RemoteStopTransactionResponse{Status: ocpp.StatusRejected}, nil
		}
		delete(cp.transactions, req.TransactionID)
		return ocpp.RemoteStopTransactionResponse{Status: ocpp.StatusAccepted}, nil
	case ocpp.ActionReset:
		return ocpp.ResetResponse{Status: ocpp.StatusAccepted}, nil
	case ocpp.ActionUnlockConnector:
		req, err := decode[ocpp.UnlockConnectorRequest](raw)
		if err != nil {
			return nil, err
		}
		if !cp.validConnector(req.ConnectorID, false) {
			return ocpp.UnlockConnectorResponse{Status: "UnlockFailed"}, nil
		}
		return ocpp.UnlockConnectorResponse{Status: "Unlocked"}, nil
	case ocpp.ActionUpdateFirmware:
		return ocpp.UpdateFirmwareResponse{}, nil
	case ocpp.ActionDataTransfer:
		return ocpp.DataTransferResponse{Status: ocpp.StatusUnknownVendorID}, nil
	case ocpp.ActionGetConfiguration:
		req, err := decode[ocpp.GetConfigurationRequest](raw)
		if err != nil {
			return nil, err
		}
		return cp.configuration(req.Key), nil
	case ocpp.ActionGetLocalListVersion:
		return ocpp.GetLocalListVersionResponse{ListVersion: cp.listVersion}, nil
	case ocpp.ActionSendLocalList:
		req, err := decode[ocpp.SendLocalListRequest](raw)
		if err != nil {
			return nil, err
		}
		return cp.applyLocalList(req), nil
	case ocpp.ActionReserveNow:
		req, err := decode[ocpp.ReserveNowRequest](raw)
		if err != nil {
			return nil, err
		}
		for _, conn := range cp.reservations {
			if conn == req.ConnectorID && conn != 0 {
				return ocpp.ReserveNowResponse{Status: ocpp.StatusOccupied}, nil
			}
		}
		cp.reservations[req.ReservationID] = req.ConnectorID
		return ocpp.ReserveNowResponse{Status: ocpp.StatusAccepted}, nil
	case ocpp.ActionCancelReservation:
		req, err := decode[ocpp.CancelReservationRequest](raw)
		if err != nil {
			return nil, err
		}
		if _, ok := cp.reservations[req.ReservationID]; !ok {
			return ocpp.CancelReservationResponse{Status: ocpp.StatusRejected}, nil
		}
		delete(cp.reservations, req.ReservationID)
		return ocpp.CancelReservationResponse{Status: ocpp.StatusAccepted}, nil
	default:
		return nil, fmt.Errorf("unsupported action %q", action)
	}
}

func (cp *SimulatedChargePoint) validConnector(id int, allowZero bool) bool {
	if id == 0 {
		return allowZero
	}
	return id > 0 && id <= cp.Connectors
}

func (cp *SimulatedChargePoint) configuration(keys []string) ocpp.GetConfigurationResponse {
	var resp ocpp.GetConfigurationResponse
	if len(keys) == 0 {
		for k, v := range cp.config {
			resp.ConfigurationKey = append(resp.ConfigurationKey, ocpp.KeyValue{Key: string(k), Value: v})
		}
		return resp
	}
	for _, k := range keys {
		if v, ok := cp.config[ocpp.ConfigurationKey(k)]; ok {
			resp.ConfigurationKey = append(resp.ConfigurationKey, ocpp.KeyValue{Key: k, Value: v})
		} else {
			resp.UnknownKey = append(resp.UnknownKey, k)
		}
	}
	return resp
}

func (cp *SimulatedChargePoint) applyLocalList(req ocpp.SendLocalListRequest) ocpp.SendLocalListResponse {
	if req.UpdateType == ocpp.UpdateDifferential && req.ListVersion <= cp.listVersion {
		return ocpp.SendLocalListResponse{Status: ocpp.StatusVersionMismatch}
	}
	if req.UpdateType == ocpp.UpdateFull {
		cp.localList = map[string]ocpp.AuthorisationData{}
	}
	for _, e := range req.LocalAuthorisationList {
		if e.IDTagInfo == nil {
			delete(cp.localList, e.IDTag)
			continue
		}
		cp.localList[e.IDTag] = e
	}
	cp.listVersion = req.ListVersion
	return ocpp.SendLocalListResponse{Status: ocpp.StatusAccepted}
}
