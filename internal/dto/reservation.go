package dto

import (
	"time"

	"github.com/unilab/lab-reservation-api/internal/models"
)

// CreateReservationRequest is the payload for requesting a reservation.
type CreateReservationRequest struct {
	LabID        string    `json:"lab_id" validate:"required,uuid4"`
	LabWorkID    *string   `json:"labwork_id" validate:"omitempty,uuid4"`
	EquipmentIDs []string  `json:"equipment_ids" validate:"omitempty,dive,uuid4"`
	StartTime    time.Time `json:"start_time" validate:"required"`
	EndTime      time.Time `json:"end_time" validate:"required"`
	Purpose      string    `json:"purpose" validate:"omitempty,max=1000"`
}

// UpdateReservationStatusRequest overwrites a reservation status.
type UpdateReservationStatusRequest struct {
	Status models.ReservationStatus `json:"status" validate:"required"`
}
