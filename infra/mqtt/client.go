package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/ocppcs/core/monitoring"
	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/infra/logger"
)

// ErrResponseTimeout is returned when a charge point does not answer before
// the call context ends.
var ErrResponseTimeout = errors.New("mqtt: response timeout")

// DefaultTopicPrefix is used when Config.TopicPrefix is empty.
const DefaultTopicPrefix = "ocpp"

const subscribeTimeout = 5 * time.Second

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string          `json:"broker"`
	ClientID    string          `json:"client_id"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	TopicPrefix string          `json:"topic_prefix"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	AuthMethod  string          `json:"auth_method"`
	QoS         map[string]byte `json:"qos"`
	LWTTopic    string          `json:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-"`
}

// Request is the envelope published to a charge point.
type Request struct {
	MessageID string          `json:"message_id"`
	Action    ocpp.Action     `json:"action"`
	Payload   json.RawMessage `json:"payload"`
}

// Response is the envelope a charge point publishes back. Exactly one of
// Payload and Fault is set.
type Response struct {
	MessageID string          `json:"message_id"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Fault     *ocpp.Fault     `json:"fault,omitempty"`
}

// RequestTopic returns the topic a charge point listens on.
func RequestTopic(prefix, chargeBoxID string) string {
	return fmt.Sprintf("%s/%s/request", prefix, chargeBoxID)
}

// ResponseTopic returns the topic a charge point answers on.
func ResponseTopic(prefix, chargeBoxID string) string {
	return fmt.Sprintf("%s/%s/response", prefix, chargeBoxID)
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient performs request/response calls over a shared broker
// connection. Responses are correlated by message id.
type PahoClient struct {
	cli    pahoClient
	prefix string
	qos    map[string]byte

	mu         sync.Mutex
	pending    map[string]chan Response
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the response
// topics of all charge points.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		prefix:     prefix,
		pending:    make(map[string]chan Response),
		logger:     log,
		qos:        cfg.QoS,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if pc.maxRetries <= 0 {
		pc.maxRetries = 3
	}
	if pc.backoff <= 0 {
		pc.backoff = 100 * time.Millisecond
	}

	subscribed := make(chan struct{})
	var once sync.Once
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		topic := ResponseTopic(pc.prefix, "+")
		if token := c.Subscribe(topic, pc.qosFor("response"), pc.onResponse); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
		once.Do(func() { close(subscribed) })
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	// responses published before the subscription exists would be lost
	select {
	case <-subscribed:
	case <-time.After(subscribeTimeout):
		log.Warnf("response subscription not confirmed after %s", subscribeTimeout)
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "ocppcs-" + uuid.NewString()[:8]
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 1
}

func (p *PahoClient) onResponse(_ paho.Client, msg paho.Message) {
	var r Response
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		p.logger.Errorf("failed to decode response on %s: %v", msg.Topic(), err)
		return
	}
	p.mu.Lock()
	ch, ok := p.pending[r.MessageID]
	delete(p.pending, r.MessageID)
	p.mu.Unlock()
	if !ok {
		p.logger.Debugf("response %s has no pending call", r.MessageID)
		return
	}
	ch <- r
}

// Call publishes req to the charge point and waits for the matching
// response, which is decoded into resp. A fault answer is returned as an
// *ocpp.Fault.
func (p *PahoClient) Call(ctx context.Context, chargeBoxID string, action ocpp.Action, req, resp any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s: %w", action, err)
	}
	msgID := uuid.NewString()
	body, err := json.Marshal(Request{MessageID: msgID, Action: action, Payload: payload})
	if err != nil {
		return err
	}

	ch := make(chan Response, 1)
	p.mu.Lock()
	p.pending[msgID] = ch
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, msgID)
		p.mu.Unlock()
	}()

	topic := RequestTopic(p.prefix, chargeBoxID)
	if err := p.publish(ctx, topic, body); err != nil {
		monitoring.CaptureException(err, map[string]string{
			"module":        "mqtt",
			"charge_box_id": chargeBoxID,
			"action":        string(action),
		})
		return err
	}
	p.logger.Debugf("sent %s %s to %s", action, msgID, topic)

	select {
	case r := <-ch:
		if r.Fault != nil {
			return r.Fault
		}
		if resp == nil || len(r.Payload) == 0 {
			return nil
		}
		if err := json.Unmarshal(r.Payload, resp); err != nil {
			return fmt.Errorf("decode %s response: %w", action, err)
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s", ErrResponseTimeout, action, msgID)
		}
		return ctx.Err()
	}
}

func (p *PahoClient) publish(ctx context.Context, topic string, body []byte) error {
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qosFor("request"), false, body)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		select {
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		case <-ctx.Done():
			return fmt.Errorf("publish to %s: %w", topic, publishErr)
		}
	}
	return fmt.Errorf("publish to %s: %w", topic, publishErr)
}

// Pending returns the number of calls awaiting a response.
func (p *PahoClient) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
