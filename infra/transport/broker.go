package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/ocppcs/core/logger"
	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/infra/mqtt"
)

var errBrokerClosed = errors.New("transport: broker connection closed")

// brokerConn is a Caller that connects to its broker on first use. One dial
// is in flight at a time per broker; concurrent callers share its outcome.
type brokerConn struct {
	cfg    mqtt.Config
	dial   func(mqtt.Config) (mqttCaller, error)
	redial time.Duration
	log    logger.Logger

	mu       sync.Mutex
	conn     mqttCaller
	err      error
	failedAt time.Time
	dialing  chan struct{}
	closed   bool
}

var _ Caller = (*brokerConn)(nil)

func (b *brokerConn) Call(ctx context.Context, chargeBoxID string, action ocpp.Action, req, resp any) error {
	c, err := b.connect(ctx)
	if err != nil {
		return err
	}
	return c.Call(ctx, chargeBoxID, action, req, resp)
}

func (b *brokerConn) connect(ctx context.Context) (mqttCaller, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, errBrokerClosed
	}
	if b.conn != nil {
		c := b.conn
		b.mu.Unlock()
		return c, nil
	}
	if b.dialing == nil {
		if b.err != nil && time.Since(b.failedAt) < b.redial {
			err := b.err
			b.mu.Unlock()
			return nil, err
		}
		b.dialing = make(chan struct{})
		go b.run(b.dialing)
	}
	done := b.dialing
	b.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		return b.conn, nil
	}
	if b.closed {
		return nil, errBrokerClosed
	}
	return nil, b.err
}

// run dials outside b.mu so waiting callers can still honor their context.
func (b *brokerConn) run(done chan struct{}) {
	c, err := b.dial(b.cfg)

	b.mu.Lock()
	defer b.mu.Unlock()
	defer close(done)
	b.dialing = nil
	if err != nil {
		b.err = fmt.Errorf("connect to broker %s: %w", b.cfg.Broker, err)
		b.failedAt = time.Now()
		b.log.Warnf("broker %s unreachable: %v", b.cfg.Broker, err)
		return
	}
	if b.closed {
		c.Disconnect()
		return
	}
	b.conn, b.err = c, nil
	b.log.Infof("connected to broker %s", b.cfg.Broker)
}

func (b *brokerConn) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.conn != nil {
		b.conn.Disconnect()
		b.conn = nil
	}
}
