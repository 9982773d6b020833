package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/unilab/lab-reservation-api/internal/models"
)

func newReservationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var reservationRows = []string{"id", "lab_id", "user_id", "username", "labwork_id", "start_time", "end_time", "status", "purpose", "approved_by", "approved_at", "created_at", "updated_at"}

var equipmentLinkRows = []string{"reservation_id", "id", "name", "inventory_number", "status", "lab_id", "created_at", "updated_at"}

func TestReservationRepositoryCreateLinksEquipment(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservation_equipment")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	reservation := &models.Reservation{
		LabID:     "lab-1",
		UserID:    "user-1",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(3 * time.Hour),
		Equipment: []models.Equipment{{ID: "eq-1", Name: "Oscilloscope"}},
	}
	require.NoError(t, repo.Create(context.Background(), reservation))
	require.NotEmpty(t, reservation.ID)
	require.Equal(t, models.ReservationPending, reservation.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryFindByIDHydratesEquipment(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(reservationRows).
		AddRow("res-1", "lab-1", "user-1", "alice", nil, now.Add(time.Hour), now.Add(2*time.Hour), "PENDING", nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.lab_id, r.user_id")).
		WithArgs("res-1").
		WillReturnRows(rows)
	links := sqlmock.NewRows(equipmentLinkRows).
		AddRow("res-1", "eq-1", "Microscope", "INV-001", "AVAILABLE", "lab-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT re.reservation_id, e.id")).
		WithArgs("res-1").
		WillReturnRows(links)

	found, err := repo.FindByID(context.Background(), "res-1")
	require.NoError(t, err)
	require.Equal(t, "alice", found.Username)
	require.Len(t, found.Equipment, 1)
	require.Equal(t, "Microscope", found.Equipment[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(reservationRows).
		AddRow("res-1", "lab-1", "user-1", "alice", nil, now, now.Add(time.Hour), "PENDING", nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT r.id, r.lab_id, r.user_id")).
		WithArgs("user-1", "PENDING").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT re.reservation_id, e.id")).
		WithArgs("res-1").
		WillReturnRows(sqlmock.NewRows(equipmentLinkRows))

	list, err := repo.List(context.Background(), models.ReservationFilter{
		UserID: "user-1",
		Status: models.ReservationPending,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Equipment)
	require.Empty(t, list[0].Equipment)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryUpdateDecisionGuardsPending(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	err := repo.UpdateDecision(context.Background(), DecisionParams{
		ID:         "res-1",
		Status:     models.ReservationApproved,
		ApprovedBy: "admin-1",
		ApprovedAt: now,
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateDecision(context.Background(), DecisionParams{
		ID:         "res-1",
		Status:     models.ReservationRejected,
		ApprovedBy: "admin-1",
		ApprovedAt: now,
	})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()

	repo := NewReservationRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reservations")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByID(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
