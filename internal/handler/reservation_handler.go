package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unilab/lab-reservation-api/internal/dto"
	"github.com/unilab/lab-reservation-api/internal/models"
	"github.com/unilab/lab-reservation-api/internal/service"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
	"github.com/unilab/lab-reservation-api/pkg/response"
)

type reservationService interface {
	Create(ctx context.Context, req dto.CreateReservationRequest, actor *models.JWTClaims) (*models.Reservation, error)
	Approve(ctx context.Context, id string, actor *models.JWTClaims) (*models.Reservation, error)
	Reject(ctx context.Context, id string, actor *models.JWTClaims) (*models.Reservation, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateReservationStatusRequest) (*models.Reservation, error)
	MyReservations(ctx context.Context, actor *models.JWTClaims) ([]models.Reservation, error)
	AllReservations(ctx context.Context) ([]models.Reservation, error)
	PendingReservations(ctx context.Context) ([]models.Reservation, error)
	Delete(ctx context.Context, id string) error
	ExportSchedule(ctx context.Context, format service.ExportFormat) ([]byte, string, error)
}

// ReservationHandler exposes REST endpoints for the reservation lifecycle.
type ReservationHandler struct {
	service reservationService
}

// NewReservationHandler constructs the handler.
func NewReservationHandler(service reservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// Create godoc
// @Summary Request a reservation
// @Tags Reservations
// @Accept json
// @Produce json
// @Param payload body dto.CreateReservationRequest true "Reservation payload"
// @Success 201 {object} response.Envelope
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid reservation payload"))
		return
	}
	reservation, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reservation)
}

// Approve godoc
// @Summary Approve a pending reservation
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id}/approve [post]
func (h *ReservationHandler) Approve(c *gin.Context) {
	reservation, err := h.service.Approve(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}

// Reject godoc
// @Summary Reject a pending reservation
// @Tags Reservations
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id}/reject [post]
func (h *ReservationHandler) Reject(c *gin.Context) {
	reservation, err := h.service.Reject(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}

// UpdateStatus godoc
// @Summary Overwrite a reservation status
// @Tags Reservations
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param payload body dto.UpdateReservationStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Router /reservations/{id}/status [patch]
func (h *ReservationHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateReservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	reservation, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation, nil)
}

// Mine godoc
// @Summary List the caller's reservations
// @Tags Reservations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reservations/me [get]
func (h *ReservationHandler) Mine(c *gin.Context) {
	reservations, err := h.service.MyReservations(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservations, nil)
}

// List godoc
// @Summary List all reservations
// @Tags Reservations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	reservations, err := h.service.AllReservations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservations, nil)
}

// Pending godoc
// @Summary List reservations awaiting a decision
// @Tags Reservations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reservations/pending [get]
func (h *ReservationHandler) Pending(c *gin.Context) {
	reservations, err := h.service.PendingReservations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservations, nil)
}

// Delete godoc
// @Summary Delete a reservation
// @Tags Reservations
// @Param id path string true "Reservation ID"
// @Success 204
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export the reservation schedule
// @Tags Reservations
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /reservations/export [get]
func (h *ReservationHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.service.ExportSchedule(c.Request.Context(), service.ExportFormat(format))
	if err != nil {
		response.Error(c, err)
		return
	}
	extension := "csv"
	if contentType == "application/pdf" {
		extension = "pdf"
	}
	filename := fmt.Sprintf("reservations-%s.%s", time.Now().UTC().Format("20060102-150405"), extension)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
