package persistence

import "time"

// ReservationModel is a reservation record.
type ReservationModel struct {
	ID          int       `gorm:"primaryKey;autoIncrement"`
	ChargeBoxID string    `gorm:"index;type:text;not null"`
	ConnectorID int       `gorm:"not null"`
	IDTag       string    `gorm:"index;type:text;not null"`
	ParentIDTag string    `gorm:"type:text"`
	StartAt     time.Time `gorm:"not null"`
	ExpiryAt    time.Time `gorm:"not null"`
	Status      string    `gorm:"index;type:text;not null"`
	UpdatedAt   time.Time
}

func (ReservationModel) TableName() string { return "reservations" }

// TagModel is an id tag known to the central system.
type TagModel struct {
	IDTag         string `gorm:"primaryKey;type:text"`
	ParentIDTag   string `gorm:"type:text"`
	ExpiryDate    *time.Time
	Blocked       bool `gorm:"not null;default:false"`
	InTransaction bool `gorm:"not null;default:false"`
}

func (TagModel) TableName() string { return "ocpp_tags" }
