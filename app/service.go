// Package app wires configuration into a running central system.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/ocppcs/api"
	"github.com/kilianp07/ocppcs/config"
	"github.com/kilianp07/ocppcs/core/chargepoint"
	"github.com/kilianp07/ocppcs/core/cpstatus"
	coremetrics "github.com/kilianp07/ocppcs/core/metrics"
	coremon "github.com/kilianp07/ocppcs/core/monitoring"
	"github.com/kilianp07/ocppcs/core/task"
	"github.com/kilianp07/ocppcs/core/tasklog"
	"github.com/kilianp07/ocppcs/infra/logger"
	"github.com/kilianp07/ocppcs/infra/metrics"
	"github.com/kilianp07/ocppcs/infra/monitoring"
	"github.com/kilianp07/ocppcs/infra/persistence"
	"github.com/kilianp07/ocppcs/infra/tracing"
	"github.com/kilianp07/ocppcs/infra/transport"
	"github.com/kilianp07/ocppcs/internal/eventbus"
)

// Service owns every long lived component of the central system.
type Service struct {
	Dispatcher *chargepoint.Service
	Tasks      task.Store
	Status     cpstatus.Store
	Logs       tasklog.Store

	cfg       *config.Config
	db        *persistence.Store
	transport *transport.Factory
	bus       eventbus.EventBus
	sink      coremetrics.MetricsSink
	api       *api.Server
	shutdown  func(context.Context) error
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)

	shutdown, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	s := &Service{cfg: cfg, shutdown: shutdown, log: logg}
	if err := s.build(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Service) build() error {
	var err error
	s.db, err = persistence.Open(s.cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	s.Logs, err = tasklog.New(s.cfg.TaskLog)
	if err != nil {
		return fmt.Errorf("task log: %w", err)
	}
	s.sink, err = s.cfg.Metrics.Build()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	s.transport = transport.NewFactory(s.cfg.Transport, logger.New("transport"))
	s.Tasks = task.NewMemoryStore()
	s.Status = cpstatus.NewMemoryStore()
	s.bus = eventbus.New()

	s.Dispatcher, err = chargepoint.NewService(s.transport, s.Tasks, s.db, s.db, logger.New("chargepoint"))
	if err != nil {
		return err
	}
	s.Dispatcher.SetEventBus(s.bus)
	s.Dispatcher.SetLogStore(s.Logs)
	s.Dispatcher.SetStatusStore(s.Status)

	s.api = api.NewServer(s.cfg.API, s.Dispatcher, s.Tasks, s.Logs, s.Status, logger.New("api"))
	return nil
}

// Run serves the HTTP API and feeds task events to the metrics sink until
// ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	done := metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))
	err := s.api.Run(ctx)
	s.bus.Close()
	<-done
	return err
}

// StartCollector feeds task events to the metrics sink without serving the
// API. The returned channel closes once the bus is closed.
func (s *Service) StartCollector(ctx context.Context) <-chan struct{} {
	return metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))
}

// Wait blocks until the task is finished or ctx is done.
func (s *Service) Wait(ctx context.Context, id int, poll time.Duration) (task.Snapshot, error) {
	t, ok := s.Tasks.Get(id)
	if !ok {
		return task.Snapshot{}, fmt.Errorf("task %d not found", id)
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		snap := t.Snapshot()
		if snap.Finished {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if s.transport != nil {
		s.transport.Close()
	}
	if s.Logs != nil {
		errs = append(errs, s.Logs.Close())
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	if s.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, s.shutdown(ctx))
		cancel()
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
