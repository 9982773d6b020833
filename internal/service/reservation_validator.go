package service

import (
	"fmt"
	"time"

	"github.com/unilab/lab-reservation-api/internal/models"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
)

// ValidationStrategy checks one business rule on a reservation request.
type ValidationStrategy interface {
	Validate(reservation *models.Reservation) bool
	Message() string
}

// TimeSlotStrategy requires the reservation to start in the future and
// end after it starts.
type TimeSlotStrategy struct {
	now func() time.Time
}

// NewTimeSlotStrategy constructs the strategy; a nil clock falls back to
// time.Now.
func NewTimeSlotStrategy(now func() time.Time) *TimeSlotStrategy {
	if now == nil {
		now = time.Now
	}
	return &TimeSlotStrategy{now: now}
}

// Validate reports whether the slot is well formed.
func (s *TimeSlotStrategy) Validate(reservation *models.Reservation) bool {
	if !reservation.StartTime.After(s.now()) {
		return false
	}
	return reservation.EndTime.After(reservation.StartTime)
}

// Message describes the rule for error reporting.
func (s *TimeSlotStrategy) Message() string {
	return "reservation must start in the future and end after it starts"
}

// DurationStrategy caps the reservation length. The boundary is
// inclusive: a reservation of exactly the maximum duration passes.
type DurationStrategy struct {
	max time.Duration
}

// NewDurationStrategy constructs the strategy; a non-positive max falls
// back to four hours.
func NewDurationStrategy(max time.Duration) *DurationStrategy {
	if max <= 0 {
		max = 4 * time.Hour
	}
	return &DurationStrategy{max: max}
}

// Validate reports whether the reservation fits the duration cap.
func (s *DurationStrategy) Validate(reservation *models.Reservation) bool {
	return reservation.EndTime.Sub(reservation.StartTime) <= s.max
}

// Message describes the rule for error reporting.
func (s *DurationStrategy) Message() string {
	return fmt.Sprintf("reservation may not exceed %s", s.max)
}

// ReservationValidator evaluates the registered strategies in order.
type ReservationValidator struct {
	strategies []ValidationStrategy
}

// NewReservationValidator constructs a validator over the given
// strategies, evaluated in order.
func NewReservationValidator(strategies ...ValidationStrategy) *ReservationValidator {
	return &ReservationValidator{strategies: strategies}
}

// IsValid reports whether every strategy accepts the reservation.
func (v *ReservationValidator) IsValid(reservation *models.Reservation) bool {
	for _, strategy := range v.strategies {
		if !strategy.Validate(reservation) {
			return false
		}
	}
	return true
}

// Check runs the strategies in order and stops at the first failure,
// returning a validation error carrying that strategy's message, or nil
// when all rules pass.
func (v *ReservationValidator) Check(reservation *models.Reservation) error {
	for _, strategy := range v.strategies {
		if !strategy.Validate(reservation) {
			return appErrors.Clone(appErrors.ErrValidation, strategy.Message())
		}
	}
	return nil
}
