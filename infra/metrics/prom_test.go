package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ocppcs/core/events"
	coremetrics "github.com/kilianp07/ocppcs/core/metrics"
	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/internal/eventbus"
)

func TestPromSink_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	s1, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	s2, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	assert.Same(t, s1.tasks, s2.tasks)
}

func TestEventCollector_RecordsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	bus := eventbus.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink, nil)

	bus.Publish(events.TaskCreated{TaskID: 1, Version: ocpp.V15, Operation: "Reset", Recipients: 2, At: time.Now()})
	bus.Publish(events.TrackerCompleted{TaskID: 1, Operation: "Reset", ChargeBoxID: "A", State: "succeeded", Latency: time.Second})
	bus.Publish(events.TrackerCompleted{TaskID: 1, Operation: "Reset", ChargeBoxID: "B", State: "transport_error", Err: errors.New("dial")})
	bus.Publish(events.DoubleCompletion{TaskID: 1, Operation: "Reset", ChargeBoxID: "B"})

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(sink.doubles.WithLabelValues("Reset")) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.tasks.WithLabelValues("Reset", "1.5")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.completions.WithLabelValues("Reset", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.completions.WithLabelValues("Reset", "transport_error")))

	cancel()
	<-done
}

func TestEventCollector_StopsOnBusClose(t *testing.T) {
	bus := eventbus.New()
	done := StartEventCollector(context.Background(), bus, coremetrics.NopSink{}, nil)
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}
