package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unilab/lab-reservation-api/internal/dto"
	"github.com/unilab/lab-reservation-api/internal/models"
	"github.com/unilab/lab-reservation-api/internal/notify"
	"github.com/unilab/lab-reservation-api/internal/repository"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
)

type stubReservationStore struct {
	created      *models.Reservation
	byID         map[string]*models.Reservation
	listResult   []models.Reservation
	listErr      error
	decisionErr  error
	statusErr    error
	deleteErr    error
	lastDecision repository.DecisionParams
	lastStatus   models.ReservationStatus
}

func (s *stubReservationStore) Create(_ context.Context, reservation *models.Reservation) error {
	reservation.ID = "res-1"
	s.created = reservation
	return nil
}

func (s *stubReservationStore) FindByID(_ context.Context, id string) (*models.Reservation, error) {
	reservation, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *reservation
	return &copied, nil
}

func (s *stubReservationStore) List(context.Context, models.ReservationFilter) ([]models.Reservation, error) {
	return s.listResult, s.listErr
}

func (s *stubReservationStore) UpdateDecision(_ context.Context, params repository.DecisionParams) error {
	s.lastDecision = params
	return s.decisionErr
}

func (s *stubReservationStore) UpdateStatus(_ context.Context, _ string, status models.ReservationStatus) error {
	s.lastStatus = status
	return s.statusErr
}

func (s *stubReservationStore) DeleteByID(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.byID[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.byID, id)
	return nil
}

type stubChecker struct {
	exists bool
	err    error
}

func (s *stubChecker) ExistsByID(context.Context, string) (bool, error) {
	return s.exists, s.err
}

type stubEquipmentResolver struct {
	items []models.Equipment
}

func (s *stubEquipmentResolver) FindAllByID(context.Context, []string) ([]models.Equipment, error) {
	return s.items, nil
}

type stubEventPublisher struct {
	events []notify.EventType
}

func (s *stubEventPublisher) Publish(eventType notify.EventType, _ *models.Reservation) {
	s.events = append(s.events, eventType)
}

type stubSlotValidator struct {
	err error
}

func (s *stubSlotValidator) Check(*models.Reservation) error { return s.err }

func studentActor() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", Username: "alice", Role: models.RoleStudent}
}

func adminActor() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Username: "root", Role: models.RoleAdmin}
}

func newTestReservationService(store *stubReservationStore, publisher *stubEventPublisher, slots slotValidator, equipment *stubEquipmentResolver) *ReservationService {
	if slots == nil {
		slots = &stubSlotValidator{}
	}
	if equipment == nil {
		equipment = &stubEquipmentResolver{items: []models.Equipment{}}
	}
	return NewReservationService(
		store,
		&stubChecker{exists: true},
		&stubChecker{exists: true},
		equipment,
		publisher,
		slots,
		nil,
	)
}

func validCreateRequest() dto.CreateReservationRequest {
	return dto.CreateReservationRequest{
		LabID:     "3f0c8db2-4a4e-4f7a-9d15-0d2f6a1f9b01",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(3 * time.Hour),
		Purpose:   "spectral analysis session",
	}
}

func TestReservationServiceCreatePublishesCreated(t *testing.T) {
	store := &stubReservationStore{}
	publisher := &stubEventPublisher{}
	equipment := &stubEquipmentResolver{items: []models.Equipment{{ID: "eq-1", Name: "Microscope"}}}
	svc := newTestReservationService(store, publisher, nil, equipment)

	req := validCreateRequest()
	req.EquipmentIDs = []string{"eq-1", "eq-missing"}
	reservation, err := svc.Create(context.Background(), req, studentActor())
	require.NoError(t, err)
	require.Equal(t, models.ReservationPending, reservation.Status)
	require.Equal(t, "user-1", reservation.UserID)
	require.Equal(t, "alice", reservation.Username)
	require.Len(t, reservation.Equipment, 1)
	require.Equal(t, []notify.EventType{notify.EventCreated}, publisher.events)
	require.NotNil(t, store.created)
}

func TestReservationServiceCreateRejectsInvalidSlot(t *testing.T) {
	store := &stubReservationStore{}
	publisher := &stubEventPublisher{}
	slotErr := appErrors.Clone(appErrors.ErrValidation, "reservation must start in the future and end after it starts")
	svc := newTestReservationService(store, publisher, &stubSlotValidator{err: slotErr}, nil)

	_, err := svc.Create(context.Background(), validCreateRequest(), studentActor())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Empty(t, publisher.events)
	require.Nil(t, store.created)
}

func TestReservationServiceCreateUnknownLab(t *testing.T) {
	store := &stubReservationStore{}
	publisher := &stubEventPublisher{}
	svc := NewReservationService(
		store,
		&stubChecker{exists: false},
		&stubChecker{exists: true},
		&stubEquipmentResolver{},
		publisher,
		&stubSlotValidator{},
		nil,
	)

	_, err := svc.Create(context.Background(), validCreateRequest(), studentActor())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	require.Empty(t, publisher.events)
}

func TestReservationServiceApprove(t *testing.T) {
	store := &stubReservationStore{byID: map[string]*models.Reservation{
		"res-1": {ID: "res-1", UserID: "user-1", Status: models.ReservationPending},
	}}
	publisher := &stubEventPublisher{}
	svc := newTestReservationService(store, publisher, nil, nil)

	reservation, err := svc.Approve(context.Background(), "res-1", adminActor())
	require.NoError(t, err)
	require.Equal(t, models.ReservationApproved, reservation.Status)
	require.NotNil(t, reservation.ApprovedBy)
	require.Equal(t, "admin-1", *reservation.ApprovedBy)
	require.NotNil(t, reservation.ApprovedAt)
	require.Equal(t, models.ReservationApproved, store.lastDecision.Status)
	require.Equal(t, []notify.EventType{notify.EventApproved}, publisher.events)
}

func TestReservationServiceRejectPublishesNothing(t *testing.T) {
	store := &stubReservationStore{byID: map[string]*models.Reservation{
		"res-1": {ID: "res-1", UserID: "user-1", Status: models.ReservationPending},
	}}
	publisher := &stubEventPublisher{}
	svc := newTestReservationService(store, publisher, nil, nil)

	reservation, err := svc.Reject(context.Background(), "res-1", adminActor())
	require.NoError(t, err)
	require.Equal(t, models.ReservationRejected, reservation.Status)
	require.NotNil(t, reservation.ApprovedBy)
	require.Empty(t, publisher.events)
}

func TestReservationServiceDecideRequiresPending(t *testing.T) {
	store := &stubReservationStore{byID: map[string]*models.Reservation{
		"res-1": {ID: "res-1", Status: models.ReservationApproved},
	}}
	publisher := &stubEventPublisher{}
	svc := newTestReservationService(store, publisher, nil, nil)

	_, err := svc.Approve(context.Background(), "res-1", adminActor())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrIllegalState.Code, appErrors.FromError(err).Code)
	require.Empty(t, publisher.events)
}

func TestReservationServiceDecideLostRace(t *testing.T) {
	store := &stubReservationStore{
		byID: map[string]*models.Reservation{
			"res-1": {ID: "res-1", Status: models.ReservationPending},
		},
		decisionErr: sql.ErrNoRows,
	}
	publisher := &stubEventPublisher{}
	svc := newTestReservationService(store, publisher, nil, nil)

	_, err := svc.Approve(context.Background(), "res-1", adminActor())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrIllegalState.Code, appErrors.FromError(err).Code)
	require.Empty(t, publisher.events)
}

func TestReservationServiceDecideMissing(t *testing.T) {
	store := &stubReservationStore{byID: map[string]*models.Reservation{}}
	svc := newTestReservationService(store, &stubEventPublisher{}, nil, nil)

	_, err := svc.Approve(context.Background(), "missing", adminActor())
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReservationServiceUpdateStatusTransitions(t *testing.T) {
	cases := []struct {
		name     string
		previous models.ReservationStatus
		next     models.ReservationStatus
		event    notify.EventType
	}{
		{"newly approved", models.ReservationPending, models.ReservationApproved, notify.EventApproved},
		{"cancelled", models.ReservationApproved, models.ReservationCancelled, notify.EventCancelled},
		{"rejected counts as update", models.ReservationPending, models.ReservationRejected, notify.EventUpdated},
		{"approved to approved", models.ReservationApproved, models.ReservationApproved, notify.EventUpdated},
		{"back to pending", models.ReservationApproved, models.ReservationPending, notify.EventUpdated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubReservationStore{byID: map[string]*models.Reservation{
				"res-1": {ID: "res-1", Status: tc.previous},
			}}
			publisher := &stubEventPublisher{}
			svc := newTestReservationService(store, publisher, nil, nil)

			reservation, err := svc.UpdateStatus(context.Background(), "res-1", dto.UpdateReservationStatusRequest{Status: tc.next})
			require.NoError(t, err)
			require.Equal(t, tc.next, reservation.Status)
			require.Equal(t, tc.next, store.lastStatus)
			require.Equal(t, []notify.EventType{tc.event}, publisher.events)
		})
	}
}

func TestReservationServiceUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := &stubReservationStore{byID: map[string]*models.Reservation{}}
	svc := newTestReservationService(store, &stubEventPublisher{}, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "res-1", dto.UpdateReservationStatusRequest{Status: "ARCHIVED"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReservationServiceDeleteIsUnconditional(t *testing.T) {
	store := &stubReservationStore{byID: map[string]*models.Reservation{
		"res-1": {ID: "res-1", UserID: "user-1", Status: models.ReservationApproved},
	}}
	publisher := &stubEventPublisher{}
	svc := newTestReservationService(store, publisher, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "res-1"))
	require.Empty(t, publisher.events)

	// The row is gone, so a second call reports NotFound.
	require.ErrorIs(t, svc.Delete(context.Background(), "res-1"), appErrors.ErrNotFound)
}

func TestReservationServiceDeleteMissing(t *testing.T) {
	store := &stubReservationStore{byID: map[string]*models.Reservation{}}
	svc := newTestReservationService(store, &stubEventPublisher{}, nil, nil)

	err := svc.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReservationServiceExportSchedule(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := &stubReservationStore{listResult: []models.Reservation{
		{
			ID:        "res-1",
			LabID:     "lab-1",
			Username:  "alice",
			StartTime: start,
			EndTime:   start.Add(2 * time.Hour),
			Status:    models.ReservationApproved,
			Equipment: []models.Equipment{{Name: "Microscope"}, {Name: "Centrifuge"}},
		},
	}}
	svc := newTestReservationService(store, &stubEventPublisher{}, nil, nil)

	payload, contentType, err := svc.ExportSchedule(context.Background(), ExportCSV)
	require.NoError(t, err)
	require.Equal(t, "text/csv", contentType)
	require.Contains(t, string(payload), "res-1")
	require.Contains(t, string(payload), "Microscope, Centrifuge")

	payload, contentType, err = svc.ExportSchedule(context.Background(), "PDF")
	require.NoError(t, err)
	require.Equal(t, "application/pdf", contentType)
	require.NotEmpty(t, payload)

	_, _, err = svc.ExportSchedule(context.Background(), "xlsx")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReservationServiceListScopes(t *testing.T) {
	store := &stubReservationStore{listResult: []models.Reservation{{ID: "res-1"}}}
	svc := newTestReservationService(store, &stubEventPublisher{}, nil, nil)

	mine, err := svc.MyReservations(context.Background(), studentActor())
	require.NoError(t, err)
	require.Len(t, mine, 1)

	all, err := svc.AllReservations(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)

	store.listErr = errors.New("db down")
	_, err = svc.PendingReservations(context.Background())
	require.Error(t, err)
}
