package chargepoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kilianp07/ocppcs/core/cpstatus"
	"github.com/kilianp07/ocppcs/core/events"
	"github.com/kilianp07/ocppcs/core/logger"
	"github.com/kilianp07/ocppcs/core/monitoring"
	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/core/task"
	"github.com/kilianp07/ocppcs/core/tasklog"
	"github.com/kilianp07/ocppcs/internal/eventbus"
)

const tracerName = "github.com/kilianp07/ocppcs/core/chargepoint"

// Service issues OCPP operations to charge points.
type Service struct {
	version      ocpp.Version
	factory      ClientFactory
	store        task.Store
	reservations ReservationRepository
	users        UserRepository
	log          logger.Logger
	tracer       trace.Tracer
	// repoTimeout bounds repository calls made from response effects.
	repoTimeout time.Duration

	mu       sync.RWMutex
	clock    func() time.Time
	bus      eventbus.EventBus
	logStore tasklog.Store
	status   cpstatus.Store
}

// NewService creates a Service issuing OCPP 1.5 operations.
func NewService(factory ClientFactory, store task.Store, reservations ReservationRepository, users UserRepository, log logger.Logger) (*Service, error) {
	if factory == nil || store == nil || reservations == nil || users == nil {
		return nil, fmt.Errorf("chargepoint: nil parameter provided to NewService")
	}
	return &Service{
		version:      ocpp.V15,
		factory:      factory,
		store:        store,
		reservations: reservations,
		users:        users,
		log:          logger.OrNop(log),
		tracer:       otel.Tracer(tracerName),
		clock:        func() time.Time { return time.Now().UTC() },
		repoTimeout:  5 * time.Second,
	}, nil
}

// SetEventBus configures the bus receiving task events.
func (s *Service) SetEventBus(bus eventbus.EventBus) {
	s.mu.Lock()
	s.bus = bus
	s.mu.Unlock()
}

// SetLogStore configures the store used to persist charge point responses.
func (s *Service) SetLogStore(store tasklog.Store) {
	s.mu.Lock()
	s.logStore = store
	s.mu.Unlock()
}

// SetStatusStore configures the store used to track charge point status.
func (s *Service) SetStatusStore(store cpstatus.Store) {
	s.mu.Lock()
	s.status = store
	s.mu.Unlock()
}

// SetClock replaces the time source used for validation and bookings.
func (s *Service) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	s.mu.Lock()
	s.clock = now
	s.mu.Unlock()
}

func (s *Service) now() time.Time {
	s.mu.RLock()
	clock := s.clock
	s.mu.RUnlock()
	return clock()
}

// Store returns the task store the service registers tasks in.
func (s *Service) Store() task.Store { return s.store }

// Version returns the protocol version of issued tasks.
func (s *Service) Version() ocpp.Version { return s.version }

type sendFunc func(c Client, chargeBoxID string, cb Callback)

// dispatch runs the common pipeline for one operation. prepare registers
// tracker effects before any request leaves.
func (s *Service) dispatch(ctx context.Context, op ocpp.Action, recipients []ocpp.ChargePointSelect, send sendFunc, prepare func(*task.Task) error) (int, error) {
	_, span := s.tracer.Start(ctx, "chargepoint."+string(op), trace.WithAttributes(
		attribute.String("ocpp.operation", string(op)),
		attribute.String("ocpp.version", s.version.String()),
		attribute.Int("ocpp.recipients", len(recipients)),
	))
	defer span.End()

	t, err := task.New(s.version, string(op), recipients)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if prepare != nil {
		if err := prepare(t); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
	}

	// clients are made before registration so a construction failure is
	// already terminal when the task becomes visible; MakeClient does no
	// network I/O, so nothing here waits on a charge point
	clients := make([]Client, t.Len())
	var failed []int
	for i, tr := range t.Trackers() {
		c, err := s.factory.MakeClient(tr.Endpoint())
		if err != nil {
			_ = tr.Fail(fmt.Errorf("make client for %s: %w", tr.Endpoint(), err))
			failed = append(failed, i)
			continue
		}
		clients[i] = c
	}

	id := s.store.Add(t)
	span.SetAttributes(attribute.Int("ocpp.task_id", id))
	tasksCreated.WithLabelValues(string(op)).Inc()
	s.publish(events.TaskCreated{
		TaskID:     id,
		Version:    s.version,
		Operation:  string(op),
		Recipients: t.Len(),
		At:         t.CreatedAt(),
	})
	s.log.Infof("task %d: %s to %d charge point(s)", id, op, t.Len())

	t.SetObserver(s)
	status := s.statusStore()
	for _, i := range failed {
		clientFailures.WithLabelValues(string(op)).Inc()
		tr := t.Tracker(i)
		if status != nil {
			status.RecordDispatch(tr.ChargeBoxID(), tr.Endpoint())
		}
		s.completed(t, t.Result(i), false)
	}
	for i, c := range clients {
		if c == nil {
			continue
		}
		tr := t.Tracker(i)
		pendingTrackers.Inc()
		if status != nil {
			status.RecordDispatch(tr.ChargeBoxID(), tr.Endpoint())
		}
		send(c, tr.ChargeBoxID(), s.callback(t, tr))
	}
	return id, nil
}

func (s *Service) callback(t *task.Task, tr *task.Tracker) Callback {
	return func(resp any, err error) {
		if cerr := tr.Complete(resp, err); cerr != nil {
			s.reportDoubleCompletion(t, tr, cerr)
		}
	}
}

func (s *Service) reportDoubleCompletion(t *task.Task, tr *task.Tracker, err error) {
	doubleCompletions.WithLabelValues(t.Operation()).Inc()
	s.log.Errorf("task %d: transport delivered a second outcome: %v", t.ID(), err)
	monitoring.CaptureException(err, map[string]string{
		"task_id":       strconv.Itoa(t.ID()),
		"operation":     t.Operation(),
		"charge_box_id": tr.ChargeBoxID(),
	})
	s.publish(events.DoubleCompletion{
		TaskID:      t.ID(),
		Operation:   t.Operation(),
		ChargeBoxID: tr.ChargeBoxID(),
		Err:         err,
	})
}

// TrackerCompleted implements task.Observer.
func (s *Service) TrackerCompleted(t *task.Task, r task.Result) {
	s.completed(t, r, true)
}

func (s *Service) completed(t *task.Task, r task.Result, dispatched bool) {
	op := t.Operation()
	if dispatched {
		pendingTrackers.Dec()
	}
	trackerCompletions.WithLabelValues(op, r.State.String()).Inc()

	at := s.now()
	if r.CompletedAt != nil {
		at = *r.CompletedAt
	}
	latency := at.Sub(t.CreatedAt())
	respStatus := ocpp.StatusOf(r.Response)
	var outcomeErr error
	switch {
	case r.Fault != nil:
		outcomeErr = r.Fault
	case r.Error != "":
		outcomeErr = errors.New(r.Error)
	}

	fields := map[string]any{
		"task_id":       t.ID(),
		"operation":     op,
		"charge_box_id": r.ChargeBoxID,
		"state":         r.State.String(),
		"latency_ms":    latency.Milliseconds(),
	}
	if respStatus != "" {
		fields["status"] = respStatus
	}
	if r.State == task.TransportError {
		s.log.Warnf("task %d: %s on %s failed: %s", t.ID(), op, r.ChargeBoxID, r.Error)
	} else {
		s.log.Debugw("tracker completed", fields)
	}
	if r.EffectError != "" {
		effectFailures.WithLabelValues(op).Inc()
		s.log.Errorf("task %d: side effect for %s failed: %s", t.ID(), r.ChargeBoxID, r.EffectError)
		monitoring.CaptureException(errors.New(r.EffectError), map[string]string{
			"task_id":       strconv.Itoa(t.ID()),
			"operation":     op,
			"charge_box_id": r.ChargeBoxID,
		})
	}

	s.publish(events.TrackerCompleted{
		TaskID:      t.ID(),
		Version:     t.Version(),
		Operation:   op,
		ChargeBoxID: r.ChargeBoxID,
		State:       r.State.String(),
		Status:      respStatus,
		Latency:     latency,
		Err:         outcomeErr,
		At:          at,
	})

	s.mu.RLock()
	status, store := s.status, s.logStore
	s.mu.RUnlock()
	if status != nil {
		status.RecordOutcome(r.ChargeBoxID, cpstatus.LastOperation{
			TaskID:    t.ID(),
			Operation: op,
			State:     r.State.String(),
			Status:    respStatus,
			Error:     r.Error,
			Timestamp: at,
		})
	}
	if store != nil {
		s.appendLog(store, t, r, respStatus, latency, at)
	}
}

func (s *Service) appendLog(store tasklog.Store, t *task.Task, r task.Result, respStatus string, latency time.Duration, at time.Time) {
	rec := tasklog.Record{
		Timestamp:   at,
		TaskID:      t.ID(),
		Operation:   t.Operation(),
		Version:     t.Version().String(),
		ChargeBoxID: r.ChargeBoxID,
		State:       r.State.String(),
		Status:      respStatus,
		Fault:       r.Fault,
		Error:       r.Error,
		LatencyMS:   float64(latency.Microseconds()) / 1000,
	}
	if r.Response != nil {
		if b, err := json.Marshal(r.Response); err == nil {
			rec.Response = b
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.repoTimeout)
	defer cancel()
	if err := store.Append(ctx, rec); err != nil {
		s.log.Errorf("task log append failed: %v", err)
	}
}

func (s *Service) publish(ev eventbus.Event) {
	s.mu.RLock()
	bus := s.bus
	s.mu.RUnlock()
	if bus != nil {
		bus.Publish(ev)
	}
}

func (s *Service) statusStore() cpstatus.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
