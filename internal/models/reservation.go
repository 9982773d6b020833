package models

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationApproved  ReservationStatus = "APPROVED"
	ReservationRejected  ReservationStatus = "REJECTED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationApproved, ReservationRejected, ReservationCancelled:
		return true
	}
	return false
}

// Reservation is a request to use equipment in a lab over a bounded time window.
type Reservation struct {
	ID         string            `db:"id" json:"id"`
	LabID      string            `db:"lab_id" json:"lab_id"`
	UserID     string            `db:"user_id" json:"user_id"`
	Username   string            `db:"username" json:"username"`
	LabWorkID  *string           `db:"labwork_id" json:"labwork_id,omitempty"`
	Equipment  []Equipment       `db:"-" json:"equipment"`
	StartTime  time.Time         `db:"start_time" json:"start_time"`
	EndTime    time.Time         `db:"end_time" json:"end_time"`
	Status     ReservationStatus `db:"status" json:"status"`
	Purpose    *string           `db:"purpose" json:"purpose,omitempty"`
	ApprovedBy *string           `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt *time.Time        `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt  time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updated_at"`
}

// ReservationFilter captures query criteria for reservation listings.
type ReservationFilter struct {
	UserID string
	Status ReservationStatus
}
