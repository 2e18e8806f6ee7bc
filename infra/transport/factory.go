package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/ocppcs/auth"
	"github.com/kilianp07/ocppcs/core/chargepoint"
	"github.com/kilianp07/ocppcs/core/logger"
	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/infra/mqtt"
	"github.com/kilianp07/ocppcs/infra/soap"
)

const (
	// DefaultRequestTimeout bounds a request when Config leaves it unset.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultRedialInterval is how long a failed broker connection is
	// reported to callers before the next attempt.
	DefaultRedialInterval = 5 * time.Second
)

// SOAPConfig configures the HTTP transport.
type SOAPConfig struct {
	// Auth enables client credentials tokens for gateways in front of
	// charge points.
	Auth auth.Conf `json:"auth"`
}

// Config is the immutable configuration shared by every client.
type Config struct {
	RequestTimeoutSeconds int          `json:"request_timeout_seconds"`
	Version               ocpp.Version `json:"ocpp_version"`
	MQTT                  mqtt.Config  `json:"mqtt"`
	SOAP                  SOAPConfig   `json:"soap"`
}

// RequestTimeout returns the per request deadline.
func (c Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

type mqttCaller interface {
	Caller
	Disconnect()
}

// Factory implements chargepoint.ClientFactory. SOAP clients are cheap and
// made per call; broker connections are shared per broker address and
// established on first use, so MakeClient never touches the network.
type Factory struct {
	cfg  Config
	http *http.Client
	cred *auth.ClientCred
	log  logger.Logger

	dial   func(mqtt.Config) (mqttCaller, error)
	redial time.Duration

	mu      sync.Mutex
	brokers map[string]*brokerConn
	seq     int
}

var _ chargepoint.ClientFactory = (*Factory)(nil)

func NewFactory(cfg Config, log logger.Logger) *Factory {
	if cfg.Version == 0 {
		cfg.Version = ocpp.V15
	}
	f := &Factory{
		cfg:     cfg,
		http:    soap.NewHTTPClient(),
		log:     logger.OrNop(log),
		brokers: make(map[string]*brokerConn),
		redial:  DefaultRedialInterval,
		dial: func(c mqtt.Config) (mqttCaller, error) {
			return mqtt.NewPahoClient(c)
		},
	}
	if cfg.SOAP.Auth.Enabled() {
		f.cred = auth.NewClientCred(cfg.SOAP.Auth)
	}
	return f
}

// MakeClient returns a client for address. http and https addresses are
// SOAP endpoints. tcp, ssl, mqtt, mqtts, ws and wss addresses name the
// broker the charge point listens on; a path overrides the topic prefix.
func (f *Factory) MakeClient(address string) (chargepoint.Client, error) {
	u, err := url.Parse(strings.TrimSpace(address))
	if err != nil {
		return nil, fmt.Errorf("parse endpoint address %q: %w", address, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrUnsupportedScheme, address)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		opts := []soap.Option{
			soap.WithHTTPClient(f.http),
			soap.WithVersion(f.cfg.Version),
			soap.WithLogger(f.log),
		}
		if f.cred != nil {
			opts = append(opts, soap.WithAuthorizer(f.cred))
		}
		return &client{caller: soap.New(u.String(), opts...), timeout: f.cfg.RequestTimeout()}, nil
	case "tcp", "ssl", "mqtt", "mqtts", "ws", "wss":
		return &client{caller: f.broker(u), timeout: f.cfg.RequestTimeout()}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// broker returns the cached connection entry for u. Only the map lookup
// happens under f.mu; dialing is left to the entry.
func (f *Factory) broker(u *url.URL) *brokerConn {
	prefix := strings.Trim(u.Path, "/")
	broker := (&url.URL{Scheme: strings.ToLower(u.Scheme), Host: u.Host}).String()
	key := broker + "/" + prefix

	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.brokers[key]; ok {
		return b
	}
	cfg := f.cfg.MQTT
	cfg.Broker = broker
	if prefix != "" {
		cfg.TopicPrefix = prefix
	}
	// client ids must stay unique for the process lifetime or the broker
	// drops the older session
	if cfg.ClientID != "" && f.seq > 0 {
		cfg.ClientID = fmt.Sprintf("%s-%d", cfg.ClientID, f.seq)
	}
	f.seq++
	b := &brokerConn{cfg: cfg, dial: f.dial, redial: f.redial, log: f.log}
	f.brokers[key] = b
	return b
}

// Close disconnects every cached broker connection.
func (f *Factory) Close() {
	f.mu.Lock()
	conns := make([]*brokerConn, 0, len(f.brokers))
	for k, b := range f.brokers {
		conns = append(conns, b)
		delete(f.brokers, k)
	}
	f.mu.Unlock()
	for _, b := range conns {
		b.close()
	}
}
