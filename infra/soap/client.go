// Package soap sends OCPP requests to charge points as SOAP 1.2 messages
// over HTTP.
package soap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kilianp07/ocppcs/core/logger"
	"github.com/kilianp07/ocppcs/core/ocpp"
)

// maxResponseBytes bounds the size of a response envelope.
const maxResponseBytes = 4 << 20

// Authorizer decorates outgoing requests, e.g. with a bearer token.
type Authorizer interface {
	SetAuthHeader(r *http.Request) error
}

// Client calls the charge point service at one endpoint.
type Client struct {
	endpoint string
	version  ocpp.Version
	http     *http.Client
	auth     Authorizer
	log      logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithAuthorizer(a Authorizer) Option { return func(c *Client) { c.auth = a } }

func WithLogger(l logger.Logger) Option { return func(c *Client) { c.log = logger.OrNop(l) } }

func WithVersion(v ocpp.Version) Option { return func(c *Client) { c.version = v } }

// NewHTTPClient returns an HTTP client whose transport records spans.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
}

func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		version:  ocpp.V15,
		log:      logger.Nop{},
	}
	for _, o := range opts {
		o(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient()
	}
	return c
}

func (c *Client) Endpoint() string { return c.endpoint }

// Call posts req to the endpoint and decodes the answer into resp. Charge
// point faults are returned as *ocpp.Fault; anything else that prevents a
// well-formed answer is a plain error.
func (c *Client) Call(ctx context.Context, chargeBoxID string, action ocpp.Action, req, resp any) error {
	payload, err := encodeRequest(message{
		version:     c.version,
		action:      action,
		chargeBoxID: chargeBoxID,
		messageID:   "urn:uuid:" + uuid.NewString(),
		to:          c.endpoint,
		payload:     req,
	})
	if err != nil {
		return err
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	hreq.Header.Set("Content-Type", fmt.Sprintf(`application/soap+xml; charset=utf-8; action="%s"`, action.SOAPAction()))
	if c.auth != nil {
		if err := c.auth.SetAuthHeader(hreq); err != nil {
			return fmt.Errorf("authorize request: %w", err)
		}
	}

	hresp, err := c.http.Do(hreq)
	if err != nil {
		return fmt.Errorf("post %s to %s: %w", action, c.endpoint, err)
	}
	defer func() { _ = hresp.Body.Close() }()

	body := io.LimitReader(hresp.Body, maxResponseBytes)
	ok := hresp.StatusCode >= 200 && hresp.StatusCode < 300
	// SOAP 1.2 faults come with a 4xx/5xx status and an XML body
	if !ok && !strings.Contains(hresp.Header.Get("Content-Type"), "xml") {
		return fmt.Errorf("soap: %s returned status %d", c.endpoint, hresp.StatusCode)
	}
	err = decodeResponse(body, action, resp)
	if err != nil {
		if !ok {
			var fault *ocpp.Fault
			if !errors.As(err, &fault) {
				return fmt.Errorf("soap: %s returned status %d: %w", c.endpoint, hresp.StatusCode, err)
			}
		}
		return err
	}
	if !ok {
		return fmt.Errorf("soap: %s returned status %d", c.endpoint, hresp.StatusCode)
	}
	c.log.Debugf("%s answered %s for %s", c.endpoint, action, chargeBoxID)
	return nil
}
