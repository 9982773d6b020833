package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unilab/lab-reservation-api/internal/dto"
	"github.com/unilab/lab-reservation-api/internal/models"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
	"github.com/unilab/lab-reservation-api/pkg/response"
)

type labService interface {
	Create(ctx context.Context, req dto.CreateLabRequest) (*models.Lab, error)
	Get(ctx context.Context, id string) (*models.Lab, error)
	List(ctx context.Context) ([]models.Lab, error)
	Update(ctx context.Context, id string, req dto.UpdateLabRequest) (*models.Lab, error)
	Delete(ctx context.Context, id string) error
}

// LabHandler exposes the lab catalog endpoints.
type LabHandler struct {
	service labService
}

// NewLabHandler constructs the handler.
func NewLabHandler(service labService) *LabHandler {
	return &LabHandler{service: service}
}

// Create godoc
// @Summary Register a lab
// @Tags Labs
// @Accept json
// @Produce json
// @Param payload body dto.CreateLabRequest true "Lab payload"
// @Success 201 {object} response.Envelope
// @Router /labs [post]
func (h *LabHandler) Create(c *gin.Context) {
	var req dto.CreateLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid lab payload"))
		return
	}
	lab, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lab)
}

// Get godoc
// @Summary Get a lab
// @Tags Labs
// @Produce json
// @Param id path string true "Lab ID"
// @Success 200 {object} response.Envelope
// @Router /labs/{id} [get]
func (h *LabHandler) Get(c *gin.Context) {
	lab, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lab, nil)
}

// List godoc
// @Summary List labs
// @Tags Labs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /labs [get]
func (h *LabHandler) List(c *gin.Context) {
	labs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, labs, nil)
}

// Update godoc
// @Summary Update a lab
// @Tags Labs
// @Accept json
// @Produce json
// @Param id path string true "Lab ID"
// @Param payload body dto.UpdateLabRequest true "Lab payload"
// @Success 200 {object} response.Envelope
// @Router /labs/{id} [put]
func (h *LabHandler) Update(c *gin.Context) {
	var req dto.UpdateLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid lab payload"))
		return
	}
	lab, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lab, nil)
}

// Delete godoc
// @Summary Delete a lab
// @Tags Labs
// @Param id path string true "Lab ID"
// @Success 204
// @Router /labs/{id} [delete]
func (h *LabHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
