package scenarios

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kilianp07/ocppcs/core/chargepoint"
	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/core/task"
	"github.com/kilianp07/ocppcs/infra/logger"
	"github.com/kilianp07/ocppcs/infra/persistence"
	"github.com/kilianp07/ocppcs/infra/transport"
)

const unreachableAddress = "http://127.0.0.1:1"

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Operation string
	TaskID    int
	Counts    task.Counts
	Err       error
}

// Run executes every step of sc in order, waiting for each task to finish.
// dir holds the scenario database. The first mismatch with a step's
// expectations is returned as an error.
func Run(ctx context.Context, sc *Scenario, dir string) ([]StepResult, error) {
	db, err := persistence.Open(persistence.Config{Driver: "sqlite", DSN: filepath.Join(dir, "scenario.db")})
	if err != nil {
		return nil, err
	}
	defer db.Close()
	for _, tag := range sc.Tags {
		if err := db.SaveTag(ctx, persistence.TagModel{
			IDTag: tag.ID, ParentIDTag: tag.Parent, ExpiryDate: tag.Expiry, Blocked: tag.Blocked,
		}); err != nil {
			return nil, err
		}
	}

	addresses := make(map[string]string, len(sc.ChargePoints))
	for _, def := range sc.ChargePoints {
		if def.Unreachable {
			addresses[def.ID] = unreachableAddress
			continue
		}
		cp := newScriptedChargePoint(def)
		defer cp.Close()
		addresses[def.ID] = cp.URL()
	}

	timeout := sc.RequestTimeoutSeconds
	if timeout <= 0 {
		timeout = 1
	}
	factory := transport.NewFactory(transport.Config{RequestTimeoutSeconds: timeout, Version: ocpp.V15}, logger.NopLogger{})
	defer factory.Close()
	store := task.NewMemoryStore()
	svc, err := chargepoint.NewService(factory, store, db, db, logger.NopLogger{})
	if err != nil {
		return nil, err
	}

	var results []StepResult
	for i, st := range sc.Steps {
		res, err := runStep(ctx, svc, store, st, addresses)
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("%s step %d (%s): %w", sc.Name, i, st.Operation, err)
		}
		if err := checkReservations(ctx, db, st.Expect.Reservations); err != nil {
			return results, fmt.Errorf("%s step %d (%s): %w", sc.Name, i, st.Operation, err)
		}
	}
	return results, nil
}

func runStep(ctx context.Context, svc *chargepoint.Service, store task.Store, st Step, addresses map[string]string) (StepResult, error) {
	res := StepResult{Operation: st.Operation}
	params := make(map[string]any, len(st.Params)+1)
	for k, v := range st.Params {
		params[k] = v
	}
	targets := make([]ocpp.ChargePointSelect, 0, len(st.Targets))
	for _, id := range st.Targets {
		targets = append(targets, ocpp.ChargePointSelect{ChargeBoxID: id, EndpointAddress: addresses[id]})
	}
	params["charge_points"] = targets
	raw, err := json.Marshal(params)
	if err != nil {
		return res, err
	}

	res.TaskID, res.Err = svc.Execute(ctx, st.Operation, raw)
	if st.Expect.Error != "" {
		if res.Err == nil || !strings.Contains(res.Err.Error(), st.Expect.Error) {
			return res, fmt.Errorf("expected error containing %q, got %v", st.Expect.Error, res.Err)
		}
		return res, nil
	}
	if res.Err != nil {
		return res, res.Err
	}

	t, ok := store.Get(res.TaskID)
	if !ok {
		return res, fmt.Errorf("task %d not registered", res.TaskID)
	}
	snap, err := waitFinished(ctx, t)
	res.Counts = snap.Counts
	if err != nil {
		return res, err
	}
	want := task.Counts{Succeeded: st.Expect.Succeeded, Faulted: st.Expect.Faulted, TransportError: st.Expect.TransportError}
	if snap.Counts != want {
		return res, fmt.Errorf("counts %+v, want %+v", snap.Counts, want)
	}
	return res, nil
}

func waitFinished(ctx context.Context, t *task.Task) (task.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		snap := t.Snapshot()
		if snap.Finished {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, fmt.Errorf("task %d unfinished: %w", snap.ID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func checkReservations(ctx context.Context, db *persistence.Store, want map[int]string) error {
	var errs []error
	for id, status := range want {
		r, err := db.Reservation(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if r.Status != status {
			errs = append(errs, fmt.Errorf("reservation %d is %s, want %s", id, r.Status, status))
		}
	}
	return errors.Join(errs...)
}
