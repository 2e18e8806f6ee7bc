package metrics

import (
	"context"

	"github.com/kilianp07/ocppcs/core/events"
	coremetrics "github.com/kilianp07/ocppcs/core/metrics"
	"github.com/kilianp07/ocppcs/infra/logger"
	"github.com/kilianp07/ocppcs/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed. The returned
// channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("metrics sink: %v", err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) error {
	switch e := ev.(type) {
	case events.TaskCreated:
		return sink.RecordTask(coremetrics.TaskEvent{
			TaskID:     e.TaskID,
			Version:    e.Version.String(),
			Operation:  e.Operation,
			Recipients: e.Recipients,
			Time:       e.At,
		})
	case events.TrackerCompleted:
		r, ok := sink.(coremetrics.CompletionRecorder)
		if !ok {
			return nil
		}
		errStr := ""
		if e.Err != nil {
			errStr = e.Err.Error()
		}
		return r.RecordCompletion(coremetrics.CompletionEvent{
			TaskID:      e.TaskID,
			Operation:   e.Operation,
			ChargeBoxID: e.ChargeBoxID,
			State:       e.State,
			Status:      e.Status,
			Latency:     e.Latency,
			Error:       errStr,
			Time:        e.At,
		})
	case events.DoubleCompletion:
		r, ok := sink.(coremetrics.DoubleCompletionRecorder)
		if !ok {
			return nil
		}
		return r.RecordDoubleCompletion(coremetrics.DoubleCompletionEvent{
			TaskID:      e.TaskID,
			Operation:   e.Operation,
			ChargeBoxID: e.ChargeBoxID,
		})
	}
	return nil
}
