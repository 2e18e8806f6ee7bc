package transport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/infra/mqtt"
	"github.com/kilianp07/ocppcs/test/util"
)

// TestMQTTRoundTrip exchanges a Reset with a charge point stub through a
// real Mosquitto broker.
func TestMQTTRoundTrip(t *testing.T) {
	util.RequireDocker(t)
	ctx := context.Background()
	broker, cleanup, err := util.StartMosquitto(ctx)
	require.NoError(t, err)
	defer cleanup()

	stub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("cp-stub"))
	tok := stub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer stub.Disconnect(100)
	tok = stub.Subscribe(mqtt.RequestTopic(mqtt.DefaultTopicPrefix, "CP1"), 1, func(c paho.Client, m paho.Message) {
		var req mqtt.Request
		if json.Unmarshal(m.Payload(), &req) != nil {
			return
		}
		out, _ := json.Marshal(mqtt.Response{MessageID: req.MessageID, Payload: json.RawMessage(`{"status":"Accepted"}`)})
		c.Publish(mqtt.ResponseTopic(mqtt.DefaultTopicPrefix, "CP1"), 1, false, out)
	})
	require.True(t, tok.WaitTimeout(5*time.Second))

	f := NewFactory(Config{RequestTimeoutSeconds: 5, MQTT: mqtt.Config{ClientID: "ocppcs-test"}}, nil)
	defer f.Close()
	c, err := f.MakeClient(broker)
	require.NoError(t, err)

	cb, ch := collect(t)
	c.Reset(ocpp.ResetRequest{Type: ocpp.ResetSoft}, "CP1", cb)
	r := wait(t, ch)
	require.NoError(t, r.err)
	assert.Equal(t, ocpp.StatusAccepted, ocpp.StatusOf(r.resp))
}
