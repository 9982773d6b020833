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

type equipmentService interface {
	Create(ctx context.Context, req dto.CreateEquipmentRequest) (*models.Equipment, error)
	Get(ctx context.Context, id string) (*models.Equipment, error)
	List(ctx context.Context, filter models.EquipmentFilter) ([]models.Equipment, error)
	Update(ctx context.Context, id string, req dto.UpdateEquipmentRequest) (*models.Equipment, error)
	Delete(ctx context.Context, id string) error
}

// EquipmentHandler exposes the equipment catalog endpoints.
type EquipmentHandler struct {
	service equipmentService
}

// NewEquipmentHandler constructs the handler.
func NewEquipmentHandler(service equipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: service}
}

// Create godoc
// @Summary Register equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Param payload body dto.CreateEquipmentRequest true "Equipment payload"
// @Success 201 {object} response.Envelope
// @Router /equipment [post]
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req dto.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid equipment payload"))
		return
	}
	equipment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, equipment)
}

// Get godoc
// @Summary Get equipment
// @Tags Equipment
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id} [get]
func (h *EquipmentHandler) Get(c *gin.Context) {
	equipment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, equipment, nil)
}

// List godoc
// @Summary List equipment
// @Tags Equipment
// @Produce json
// @Param lab_id query string false "Filter by lab"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /equipment [get]
func (h *EquipmentHandler) List(c *gin.Context) {
	filter := models.EquipmentFilter{
		LabID:  strings.TrimSpace(c.Query("lab_id")),
		Status: models.EquipmentStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Update godoc
// @Summary Update equipment
// @Tags Equipment
// @Accept json
// @Produce json
// @Param id path string true "Equipment ID"
// @Param payload body dto.UpdateEquipmentRequest true "Equipment payload"
// @Success 200 {object} response.Envelope
// @Router /equipment/{id} [put]
func (h *EquipmentHandler) Update(c *gin.Context) {
	var req dto.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid equipment payload"))
		return
	}
	equipment, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, equipment, nil)
}

// Delete godoc
// @Summary Delete equipment
// @Tags Equipment
// @Param id path string true "Equipment ID"
// @Success 204
// @Router /equipment/{id} [delete]
func (h *EquipmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
