package chargepoint

import (
	"context"
	"fmt"

	"github.com/kilianp07/ocppcs/core/ocpp"
	"github.com/kilianp07/ocppcs/core/task"
)

// ReserveNow books the reservation, then sends it. The record exists before
// the request leaves and its status follows the charge point's answer.
func (s *Service) ReserveNow(ctx context.Context, p ReserveNowParams) (int, error) {
	now := s.now()
	if err := p.Validate(now); err != nil {
		return 0, err
	}
	cp := p.ChargePoints[0]
	parent, err := s.users.GetParentIDTag(ctx, p.IDTag)
	if err != nil {
		return 0, fmt.Errorf("lookup parent id tag: %w", err)
	}
	resID, err := s.reservations.BookReservation(ctx, Booking{
		ChargeBoxID: cp.ChargeBoxID,
		ConnectorID: p.ConnectorID,
		IDTag:       p.IDTag,
		ParentIDTag: parent,
		Start:       now,
		Expiry:      p.Expiry.UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("book reservation: %w", err)
	}
	s.log.Infof("reservation %d booked for %s on %s", resID, p.IDTag, cp.ChargeBoxID)

	req := prepareReserveNow(p, resID, parent)
	return s.dispatch(ctx, ocpp.ActionReserveNow, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.ReserveNow(req, id, cb) },
		func(t *task.Task) error { return t.Tracker(0).SetEffect(s.reserveNowEffect(resID)) },
	)
}

// CancelReservation asks the charge point to drop a reservation. The record
// is marked cancelled only when the charge point accepts.
func (s *Service) CancelReservation(ctx context.Context, p CancelReservationParams) (int, error) {
	if err := p.Validate(s.now()); err != nil {
		return 0, err
	}
	req := prepareCancelReservation(p)
	return s.dispatch(ctx, ocpp.ActionCancelReservation, p.ChargePoints,
		func(c Client, id string, cb Callback) { c.CancelReservation(req, id, cb) },
		func(t *task.Task) error { return t.Tracker(0).SetEffect(s.cancelReservationEffect(p.ReservationID)) },
	)
}

func (s *Service) reserveNowEffect(reservationID int) task.Effect {
	return func(o task.Outcome) error {
		var status ReservationStatus
		switch o.State {
		case task.Succeeded:
			status = ReservationRejected
			if ocpp.StatusOf(o.Response) == ocpp.StatusAccepted {
				status = ReservationAccepted
			}
		case task.Faulted:
			status = ReservationFaulted
		default:
			// outcome unknown, the charge point may hold the reservation
			s.log.Warnf("reservation %d left booked: %v", reservationID, o.Err)
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.repoTimeout)
		defer cancel()
		if err := s.reservations.UpdateReservationStatus(ctx, reservationID, status); err != nil {
			return fmt.Errorf("update reservation %d to %s: %w", reservationID, status, err)
		}
		return nil
	}
}

func (s *Service) cancelReservationEffect(reservationID int) task.Effect {
	return func(o task.Outcome) error {
		if o.State != task.Succeeded || ocpp.StatusOf(o.Response) != ocpp.StatusAccepted {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.repoTimeout)
		defer cancel()
		if err := s.reservations.CancelReservation(ctx, reservationID); err != nil {
			return fmt.Errorf("cancel reservation %d: %w", reservationID, err)
		}
		return nil
	}
}
