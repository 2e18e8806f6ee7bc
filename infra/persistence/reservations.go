package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kilianp07/ocppcs/core/chargepoint"
)

// ErrReservationNotFound is returned for unknown reservation ids.
var ErrReservationNotFound = errors.New("persistence: reservation not found")

func (s *Store) BookReservation(ctx context.Context, b chargepoint.Booking) (int, error) {
	m := ReservationModel{
		ChargeBoxID: b.ChargeBoxID,
		ConnectorID: b.ConnectorID,
		IDTag:       b.IDTag,
		ParentIDTag: b.ParentIDTag,
		StartAt:     b.Start.UTC(),
		ExpiryAt:    b.Expiry.UTC(),
		Status:      string(chargepoint.ReservationBooked),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, fmt.Errorf("book reservation: %w", err)
	}
	return m.ID, nil
}

func (s *Store) UpdateReservationStatus(ctx context.Context, id int, status chargepoint.ReservationStatus) error {
	res := s.db.WithContext(ctx).Model(&ReservationModel{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("update reservation %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrReservationNotFound, id)
	}
	return nil
}

func (s *Store) CancelReservation(ctx context.Context, id int) error {
	return s.UpdateReservationStatus(ctx, id, chargepoint.ReservationCancelled)
}

// Reservation returns the stored record.
func (s *Store) Reservation(ctx context.Context, id int) (ReservationModel, error) {
	var m ReservationModel
	err := s.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, fmt.Errorf("%w: %d", ErrReservationNotFound, id)
	}
	return m, err
}
