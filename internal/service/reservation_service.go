package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unilab/lab-reservation-api/internal/dto"
	"github.com/unilab/lab-reservation-api/internal/models"
	"github.com/unilab/lab-reservation-api/internal/notify"
	"github.com/unilab/lab-reservation-api/internal/repository"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
	"github.com/unilab/lab-reservation-api/pkg/export"
)

type reservationStore interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error)
	UpdateDecision(ctx context.Context, params repository.DecisionParams) error
	UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) error
	DeleteByID(ctx context.Context, id string) error
}

type labChecker interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

type labWorkChecker interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

type equipmentResolver interface {
	FindAllByID(ctx context.Context, ids []string) ([]models.Equipment, error)
}

type eventPublisher interface {
	Publish(eventType notify.EventType, reservation *models.Reservation)
}

type slotValidator interface {
	Check(reservation *models.Reservation) error
}

type lifecycleRecorder interface {
	RecordReservationEvent(eventType string)
}

// ExportFormat selects the rendering for schedule exports.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ReservationService drives the reservation lifecycle: creation through
// the validation chain, approval decisions, status overwrites, and
// event fan-out to observers.
type ReservationService struct {
	repo      reservationStore
	labs      labChecker
	labWorks  labWorkChecker
	equipment equipmentResolver
	publisher eventPublisher
	slots     slotValidator
	metrics   lifecycleRecorder
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validate  *validator.Validate
	logger    *zap.Logger
}

// ReservationServiceOption configures the service.
type ReservationServiceOption func(*ReservationService)

// WithLifecycleRecorder wires a metrics recorder for lifecycle events.
func WithLifecycleRecorder(recorder lifecycleRecorder) ReservationServiceOption {
	return func(s *ReservationService) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// NewReservationService constructs the service with defaults.
func NewReservationService(
	repo reservationStore,
	labs labChecker,
	labWorks labWorkChecker,
	equipment equipmentResolver,
	publisher eventPublisher,
	slots slotValidator,
	logger *zap.Logger,
	opts ...ReservationServiceOption,
) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ReservationService{
		repo:      repo,
		labs:      labs,
		labWorks:  labWorks,
		equipment: equipment,
		publisher: publisher,
		slots:     slots,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validate:  validator.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create validates the request, resolves references, and stores a new
// PENDING reservation. Equipment ids without a matching record are
// silently omitted. Publishes a CREATED event on success.
func (s *ReservationService) Create(ctx context.Context, req dto.CreateReservationRequest, actor *models.JWTClaims) (*models.Reservation, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation payload")
	}

	reservation := &models.Reservation{
		LabID:     req.LabID,
		UserID:    actor.UserID,
		Username:  actor.Username,
		LabWorkID: req.LabWorkID,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
		Status:    models.ReservationPending,
		Purpose:   optionalString(req.Purpose),
	}
	labExists, err := s.labs.ExistsByID(ctx, req.LabID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify lab")
	}
	if !labExists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lab not found")
	}
	if req.LabWorkID != nil {
		labWorkExists, err := s.labWorks.ExistsByID(ctx, *req.LabWorkID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify lab work")
		}
		if !labWorkExists {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lab work not found")
		}
	}

	equipment, err := s.equipment.FindAllByID(ctx, req.EquipmentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve equipment")
	}
	if len(equipment) < len(req.EquipmentIDs) {
		s.logger.Debug("some equipment ids were not found and were skipped",
			zap.Int("requested", len(req.EquipmentIDs)),
			zap.Int("resolved", len(equipment)))
	}
	reservation.Equipment = equipment

	if err := s.slots.Check(reservation); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reservation")
	}
	s.emit(notify.EventCreated, reservation)
	return reservation, nil
}

// Approve moves a PENDING reservation to APPROVED, recording the
// deciding admin and the decision time, and publishes an APPROVED event.
func (s *ReservationService) Approve(ctx context.Context, id string, actor *models.JWTClaims) (*models.Reservation, error) {
	return s.decide(ctx, id, models.ReservationApproved, actor)
}

// Reject moves a PENDING reservation to REJECTED. No event is published
// for rejections; the decision is only visible through the reservation
// itself.
func (s *ReservationService) Reject(ctx context.Context, id string, actor *models.JWTClaims) (*models.Reservation, error) {
	return s.decide(ctx, id, models.ReservationRejected, actor)
}

func (s *ReservationService) decide(ctx context.Context, id string, status models.ReservationStatus, actor *models.JWTClaims) (*models.Reservation, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationPending {
		return nil, appErrors.Clone(appErrors.ErrIllegalState,
			fmt.Sprintf("reservation is %s, only PENDING reservations can be decided", reservation.Status))
	}

	now := time.Now().UTC()
	err = s.repo.UpdateDecision(ctx, repository.DecisionParams{
		ID:         id,
		Status:     status,
		ApprovedBy: actor.UserID,
		ApprovedAt: now,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrIllegalState, "reservation was already decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reservation")
	}

	reservation.Status = status
	reservation.ApprovedBy = &actor.UserID
	reservation.ApprovedAt = &now
	reservation.UpdatedAt = now
	if status == models.ReservationApproved {
		s.emit(notify.EventApproved, reservation)
	}
	return reservation, nil
}

// UpdateStatus overwrites the status regardless of the current state and
// publishes the event matching the transition: APPROVED when newly
// approved, CANCELLED for any move to CANCELLED, UPDATED otherwise.
func (s *ReservationService) UpdateStatus(ctx context.Context, id string, req dto.UpdateReservationStatusRequest) (*models.Reservation, error) {
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			"status must be one of PENDING, APPROVED, REJECTED, CANCELLED")
	}
	reservation, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := reservation.Status

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reservation status")
	}
	reservation.Status = req.Status
	reservation.UpdatedAt = time.Now().UTC()

	s.emit(transitionEvent(previous, req.Status), reservation)
	return reservation, nil
}

func transitionEvent(previous, next models.ReservationStatus) notify.EventType {
	switch {
	case next == models.ReservationApproved && previous != models.ReservationApproved:
		return notify.EventApproved
	case next == models.ReservationCancelled:
		return notify.EventCancelled
	default:
		return notify.EventUpdated
	}
}

// MyReservations lists the actor's own reservations, newest first.
func (s *ReservationService) MyReservations(ctx context.Context, actor *models.JWTClaims) ([]models.Reservation, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return s.list(ctx, models.ReservationFilter{UserID: actor.UserID})
}

// AllReservations lists every reservation, newest first.
func (s *ReservationService) AllReservations(ctx context.Context) ([]models.Reservation, error) {
	return s.list(ctx, models.ReservationFilter{})
}

// PendingReservations lists the reservations awaiting a decision.
func (s *ReservationService) PendingReservations(ctx context.Context) ([]models.Reservation, error) {
	return s.list(ctx, models.ReservationFilter{Status: models.ReservationPending})
}

// Delete removes a reservation regardless of its state. Access control
// is the caller's concern.
func (s *ReservationService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete reservation")
	}
	return nil
}

// ExportSchedule renders the full reservation list as CSV or PDF.
func (s *ReservationService) ExportSchedule(ctx context.Context, format ExportFormat) ([]byte, string, error) {
	reservations, err := s.list(ctx, models.ReservationFilter{})
	if err != nil {
		return nil, "", err
	}
	dataset := buildScheduleDataset(reservations)
	switch ExportFormat(strings.ToLower(string(format))) {
	case ExportCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case ExportPDF:
		payload, err := s.pdf.Render(dataset, "Lab Reservation Schedule")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

var scheduleHeaders = []string{"ID", "Lab", "User", "Start", "End", "Status", "Equipment"}

func buildScheduleDataset(reservations []models.Reservation) export.Dataset {
	rows := make([]map[string]string, 0, len(reservations))
	for _, reservation := range reservations {
		names := make([]string, 0, len(reservation.Equipment))
		for _, item := range reservation.Equipment {
			names = append(names, item.Name)
		}
		rows = append(rows, map[string]string{
			"ID":        reservation.ID,
			"Lab":       reservation.LabID,
			"User":      reservation.Username,
			"Start":     reservation.StartTime.UTC().Format(time.RFC3339),
			"End":       reservation.EndTime.UTC().Format(time.RFC3339),
			"Status":    string(reservation.Status),
			"Equipment": strings.Join(names, ", "),
		})
	}
	return export.Dataset{Headers: scheduleHeaders, Rows: rows}
}

func (s *ReservationService) list(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, error) {
	reservations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reservations")
	}
	return reservations, nil
}

func (s *ReservationService) load(ctx context.Context, id string) (*models.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	return reservation, nil
}

func (s *ReservationService) emit(eventType notify.EventType, reservation *models.Reservation) {
	if s.metrics != nil {
		s.metrics.RecordReservationEvent(string(eventType))
	}
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(eventType, reservation)
}

func optionalString(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	v := strings.TrimSpace(value)
	return &v
}
