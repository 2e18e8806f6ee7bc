package ocpp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionElementNames(t *testing.T) {
	assert.Equal(t, "/Reset", ActionReset.SOAPAction())
	assert.Equal(t, "resetRequest", ActionReset.RequestElement())
	assert.Equal(t, "getLocalListVersionResponse", ActionGetLocalListVersion.ResponseElement())
}

func TestVersionText(t *testing.T) {
	b, err := json.Marshal(struct {
		V Version `json:"v"`
	}{V15})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"1.5"}`, string(b))

	var v Version
	require.NoError(t, v.UnmarshalText([]byte("1.2")))
	assert.Equal(t, V12, v)
	assert.Error(t, v.UnmarshalText([]byte("2.0")))
}

func TestFaultError(t *testing.T) {
	f := &Fault{Code: "Sender", Reason: "bad connector"}
	assert.Equal(t, "ocpp fault Sender: bad connector", f.Error())
	f.Detail = "connectorId=9"
	assert.Contains(t, f.Error(), "(connectorId=9)")
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusAccepted, StatusOf(&ResetResponse{Status: StatusAccepted}))
	assert.Equal(t, "", StatusOf(&GetLocalListVersionResponse{ListVersion: 3}))
	assert.Equal(t, "", StatusOf(nil))
}

func TestConfigurationKeyValid(t *testing.T) {
	assert.True(t, KeyHeartBeatInterval.Valid())
	assert.False(t, ConfigurationKey("Foo").Valid())
}
