package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestQoSSettings(t *testing.T) {
	mc := withMockClient(t)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", QoS: map[string]byte{"request": 2, "response": 0}}
	cli, err := NewPahoClient(cfg)
	require.NoError(t, err)
	require.Len(t, mc.subscribed, 1)
	assert.Equal(t, byte(0), mc.subscribed[0].qos)
	assert.Equal(t, "ocpp/+/response", mc.subscribed[0].topic)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_ = cli.Call(ctx, "CP1", ocpp.ActionClearCache, ocpp.ClearCacheRequest{}, nil)
	require.NotEmpty(t, mc.published)
	assert.Equal(t, byte(2), mc.published[0].qos)
	assert.Equal(t, "ocpp/CP1/request", mc.published[0].topic)
}

func TestLWTConfigured(t *testing.T) {
	mc := withMockClient(t)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	cli, err := NewPahoClient(cfg)
	require.NoError(t, err)
	assert.True(t, mc.opts.WillEnabled)
	assert.Equal(t, "lwt", mc.opts.WillTopic)
	assert.Equal(t, "bye", string(mc.opts.WillPayload))
	cli.Disconnect()
	assert.Empty(t, mc.published)
}

func TestRetryLogic(t *testing.T) {
	mc := withMockClient(t)
	mc.publishErrs = []error{fmt.Errorf("net fail"), nil}
	mc.respond = func(r Request) *Response {
		return &Response{MessageID: r.MessageID, Payload: json.RawMessage(`{"status":"Accepted"}`)}
	}
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(cfg)
	require.NoError(t, err)
	var resp ocpp.ClearCacheResponse
	require.NoError(t, cli.Call(context.Background(), "CP1", ocpp.ActionClearCache, ocpp.ClearCacheRequest{}, &resp))
	assert.Len(t, mc.published, 2)
	assert.Equal(t, ocpp.StatusAccepted, resp.Status)
}

func TestCallCorrelatesResponse(t *testing.T) {
	mc := withMockClient(t)
	mc.respond = func(r Request) *Response {
		var req ocpp.ResetRequest
		if err := json.Unmarshal(r.Payload, &req); err != nil || r.Action != ocpp.ActionReset {
			return nil
		}
		status := ocpp.StatusAccepted
		if req.Type == ocpp.ResetHard {
			status = ocpp.StatusRejected
		}
		return &Response{MessageID: r.MessageID, Payload: json.RawMessage(fmt.Sprintf(`{"status":%q}`, status))}
	}
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)

	var resp ocpp.ResetResponse
	require.NoError(t, cli.Call(context.Background(), "CP1", ocpp.ActionReset, ocpp.ResetRequest{Type: ocpp.ResetHard}, &resp))
	assert.Equal(t, ocpp.StatusRejected, resp.Status)
	assert.Equal(t, 0, cli.Pending())
}

func TestCallReturnsFault(t *testing.T) {
	mc := withMockClient(t)
	mc.respond = func(r Request) *Response {
		return &Response{MessageID: r.MessageID, Fault: &ocpp.Fault{Code: "NotSupported", Reason: "no"}}
	}
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	err = cli.Call(context.Background(), "CP1", ocpp.ActionReset, ocpp.ResetRequest{}, &ocpp.ResetResponse{})
	var fault *ocpp.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, "NotSupported", fault.Code)
}

func TestCallTimeout(t *testing.T) {
	withMockClient(t)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id"})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	err = cli.Call(ctx, "CP1", ocpp.ActionReset, ocpp.ResetRequest{}, nil)
	assert.ErrorIs(t, err, ErrResponseTimeout)
	assert.Equal(t, 0, cli.Pending())
}

func TestUnknownResponseIgnored(t *testing.T) {
	withMockClient(t)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	cli.onResponse(nil, mockMessage{p: []byte(`{"message_id":"nope"}`)})
	cli.onResponse(nil, mockMessage{p: []byte(`not json`)})
	assert.Equal(t, 0, cli.Pending())
}

func withMockClient(t *testing.T) *mockClient {
	t.Helper()
	mc := &mockClient{}
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
	return mc
}

// mockClient implements pahoClient for tests. respond, when set, answers
// each successful publish through the subscribed handler.
type mockClient struct {
	mu         sync.Mutex
	opts       *paho.ClientOptions
	handler    paho.MessageHandler
	respond    func(Request) *Response
	subscribed []struct {
		topic string
		qos   byte
	}
	published []struct {
		topic string
		qos   byte
	}
	publishErrs []error
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	m.mu.Lock()
	m.published = append(m.published, struct {
		topic string
		qos   byte
	}{topic, qos})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		if err != nil {
			m.mu.Unlock()
			return &dummyToken{err: err}
		}
	}
	respond, handler := m.respond, m.handler
	m.mu.Unlock()
	if respond != nil && handler != nil {
		var req Request
		if b, ok := payload.([]byte); ok && json.Unmarshal(b, &req) == nil {
			if r := respond(req); r != nil {
				out, _ := json.Marshal(r)
				go handler(m, mockMessage{p: out})
			}
		}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(topic string, qos byte, h paho.MessageHandler) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
	m.subscribed = append(m.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type mockMessage struct{ p []byte }

func (m mockMessage) Duplicate() bool   { return false }
func (m mockMessage) Qos() byte         { return 0 }
func (m mockMessage) Retained() bool    { return false }
func (m mockMessage) Topic() string     { return "ocpp/CP1/response" }
func (m mockMessage) MessageID() uint16 { return 0 }
func (m mockMessage) Payload() []byte   { return m.p }
func (m mockMessage) Ack()              {}
