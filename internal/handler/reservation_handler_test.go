package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/unilab/lab-reservation-api/internal/dto"
	"github.com/unilab/lab-reservation-api/internal/middleware"
	"github.com/unilab/lab-reservation-api/internal/models"
	"github.com/unilab/lab-reservation-api/internal/service"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
)

type reservationServiceMock struct {
	createResp  *models.Reservation
	createErr   error
	approveResp *models.Reservation
	approveErr  error
	listResp    []models.Reservation
	deleteErr   error
	exportBody  []byte
	exportType  string
	exportErr   error
}

func (m *reservationServiceMock) Create(context.Context, dto.CreateReservationRequest, *models.JWTClaims) (*models.Reservation, error) {
	return m.createResp, m.createErr
}

func (m *reservationServiceMock) Approve(context.Context, string, *models.JWTClaims) (*models.Reservation, error) {
	return m.approveResp, m.approveErr
}

func (m *reservationServiceMock) Reject(context.Context, string, *models.JWTClaims) (*models.Reservation, error) {
	return m.approveResp, m.approveErr
}

func (m *reservationServiceMock) UpdateStatus(context.Context, string, dto.UpdateReservationStatusRequest) (*models.Reservation, error) {
	return m.approveResp, m.approveErr
}

func (m *reservationServiceMock) MyReservations(context.Context, *models.JWTClaims) ([]models.Reservation, error) {
	return m.listResp, nil
}

func (m *reservationServiceMock) AllReservations(context.Context) ([]models.Reservation, error) {
	return m.listResp, nil
}

func (m *reservationServiceMock) PendingReservations(context.Context) ([]models.Reservation, error) {
	return m.listResp, nil
}

func (m *reservationServiceMock) Delete(context.Context, string) error {
	return m.deleteErr
}

func (m *reservationServiceMock) ExportSchedule(context.Context, service.ExportFormat) ([]byte, string, error) {
	return m.exportBody, m.exportType, m.exportErr
}

func newReservationTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Username: "alice", Role: models.RoleStudent})
	return c, w
}

func TestReservationHandlerCreate(t *testing.T) {
	mock := &reservationServiceMock{createResp: &models.Reservation{ID: "res-1", Status: models.ReservationPending}}
	handler := NewReservationHandler(mock)

	payload, _ := json.Marshal(dto.CreateReservationRequest{
		LabID:     "3f0c8db2-4a4e-4f7a-9d15-0d2f6a1f9b01",
		StartTime: time.Now().Add(time.Hour),
		EndTime:   time.Now().Add(2 * time.Hour),
	})
	c, w := newReservationTestContext(t, http.MethodPost, "/reservations", payload)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), "res-1")
}

func TestReservationHandlerCreateInvalidBody(t *testing.T) {
	handler := NewReservationHandler(&reservationServiceMock{})
	c, w := newReservationTestContext(t, http.MethodPost, "/reservations", []byte(`not json`))

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReservationHandlerApproveConflict(t *testing.T) {
	mock := &reservationServiceMock{approveErr: appErrors.ErrIllegalState}
	handler := NewReservationHandler(mock)
	c, w := newReservationTestContext(t, http.MethodPost, "/reservations/res-1/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}

	handler.Approve(c)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "ILLEGAL_STATE")
}

func TestReservationHandlerUpdateStatusAsStudent(t *testing.T) {
	mock := &reservationServiceMock{approveResp: &models.Reservation{ID: "res-1", Status: models.ReservationCancelled}}
	handler := NewReservationHandler(mock)

	payload, _ := json.Marshal(dto.UpdateReservationStatusRequest{Status: models.ReservationCancelled})
	c, w := newReservationTestContext(t, http.MethodPatch, "/reservations/res-1/status", payload)
	c.Params = gin.Params{{Key: "id", Value: "res-1"}}

	handler.UpdateStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "CANCELLED")
}

func TestReservationHandlerMine(t *testing.T) {
	mock := &reservationServiceMock{listResp: []models.Reservation{{ID: "res-1"}, {ID: "res-2"}}}
	handler := NewReservationHandler(mock)
	c, w := newReservationTestContext(t, http.MethodGet, "/reservations/me", nil)

	handler.Mine(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "res-2")
}

func TestReservationHandlerDeleteNotFound(t *testing.T) {
	mock := &reservationServiceMock{deleteErr: appErrors.ErrNotFound}
	handler := NewReservationHandler(mock)
	c, w := newReservationTestContext(t, http.MethodDelete, "/reservations/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Delete(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReservationHandlerExport(t *testing.T) {
	mock := &reservationServiceMock{exportBody: []byte("ID,Lab\n"), exportType: "text/csv"}
	handler := NewReservationHandler(mock)
	c, w := newReservationTestContext(t, http.MethodGet, "/reservations/export?format=csv", nil)

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
}

func TestReservationHandlerExportBadFormat(t *testing.T) {
	mock := &reservationServiceMock{exportErr: appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")}
	handler := NewReservationHandler(mock)
	c, w := newReservationTestContext(t, http.MethodGet, "/reservations/export?format=xlsx", nil)

	handler.Export(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
