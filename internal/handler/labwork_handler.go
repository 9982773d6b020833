package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unilab/lab-reservation-api/internal/dto"
	"github.com/unilab/lab-reservation-api/internal/models"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
	"github.com/unilab/lab-reservation-api/pkg/response"
)

type labWorkService interface {
	Create(ctx context.Context, req dto.CreateLabWorkRequest, actor *models.JWTClaims) (*models.LabWork, error)
	Get(ctx context.Context, id string) (*models.LabWork, error)
	List(ctx context.Context, status models.LabWorkStatus) ([]models.LabWork, error)
	Update(ctx context.Context, id string, req dto.UpdateLabWorkRequest, actor *models.JWTClaims) (*models.LabWork, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// LabWorkHandler exposes the lab work endpoints.
type LabWorkHandler struct {
	service labWorkService
}

// NewLabWorkHandler constructs the handler.
func NewLabWorkHandler(service labWorkService) *LabWorkHandler {
	return &LabWorkHandler{service: service}
}

// Create godoc
// @Summary Create a lab work
// @Tags LabWorks
// @Accept json
// @Produce json
// @Param payload body dto.CreateLabWorkRequest true "Lab work payload"
// @Success 201 {object} response.Envelope
// @Router /labworks [post]
func (h *LabWorkHandler) Create(c *gin.Context) {
	var req dto.CreateLabWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid lab work payload"))
		return
	}
	labWork, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, labWork)
}

// Get godoc
// @Summary Get a lab work
// @Tags LabWorks
// @Produce json
// @Param id path string true "Lab work ID"
// @Success 200 {object} response.Envelope
// @Router /labworks/{id} [get]
func (h *LabWorkHandler) Get(c *gin.Context) {
	labWork, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, labWork, nil)
}

// List godoc
// @Summary List lab works
// @Tags LabWorks
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /labworks [get]
func (h *LabWorkHandler) List(c *gin.Context) {
	status := models.LabWorkStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))
	items, err := h.service.List(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Update godoc
// @Summary Update a lab work
// @Tags LabWorks
// @Accept json
// @Produce json
// @Param id path string true "Lab work ID"
// @Param payload body dto.UpdateLabWorkRequest true "Lab work payload"
// @Success 200 {object} response.Envelope
// @Router /labworks/{id} [put]
func (h *LabWorkHandler) Update(c *gin.Context) {
	var req dto.UpdateLabWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid lab work payload"))
		return
	}
	labWork, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, labWork, nil)
}

// Delete godoc
// @Summary Delete a lab work
// @Tags LabWorks
// @Param id path string true "Lab work ID"
// @Success 204
// @Router /labworks/{id} [delete]
func (h *LabWorkHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
