package chargepoint

import (
	"context"
	"time"

	"github.com/kilianp07/ocppcs/core/ocpp"
)

// ReservationStatus is the bookkeeping state of a reservation record.
type ReservationStatus string

const (
	ReservationBooked    ReservationStatus = "Booked"
	ReservationAccepted  ReservationStatus = "Accepted"
	ReservationRejected  ReservationStatus = "Rejected"
	ReservationFaulted   ReservationStatus = "Faulted"
	ReservationCancelled ReservationStatus = "Cancelled"
)

// Booking describes a reservation to persist before it is sent.
type Booking struct {
	ChargeBoxID string
	ConnectorID int
	IDTag       string
	ParentIDTag string
	Start       time.Time
	Expiry      time.Time
}

// ReservationRepository persists reservation records.
type ReservationRepository interface {
	// BookReservation stores a record with status Booked and returns its id.
	BookReservation(ctx context.Context, b Booking) (int, error)
	UpdateReservationStatus(ctx context.Context, id int, status ReservationStatus) error
	CancelReservation(ctx context.Context, id int) error
}

// UserRepository resolves id tags and their authorization data.
type UserRepository interface {
	// GetParentIDTag returns the parent of idTag, or "" when it has none.
	GetParentIDTag(ctx context.Context, idTag string) (string, error)
	// GetAuthData returns the authorization entries of the given tags in the
	// order they were requested. Unknown tags are skipped.
	GetAuthData(ctx context.Context, idTags []string) ([]ocpp.AuthorisationData, error)
	GetAuthDataOfAllUsers(ctx context.Context) ([]ocpp.AuthorisationData, error)
}
