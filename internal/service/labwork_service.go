package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unilab/lab-reservation-api/internal/dto"
	"github.com/unilab/lab-reservation-api/internal/models"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
)

type labWorkStore interface {
	Create(ctx context.Context, labWork *models.LabWork) error
	FindByID(ctx context.Context, id string) (*models.LabWork, error)
	List(ctx context.Context, status models.LabWorkStatus) ([]models.LabWork, error)
	Update(ctx context.Context, labWork *models.LabWork) error
	DeleteByID(ctx context.Context, id string) error
}

// LabWorkService manages academic lab works and their equipment requirements.
type LabWorkService struct {
	repo      labWorkStore
	equipment equipmentResolver
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewLabWorkService constructs the service.
func NewLabWorkService(repo labWorkStore, equipment equipmentResolver, logger *zap.Logger) *LabWorkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabWorkService{
		repo:      repo,
		equipment: equipment,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Create stores a new DRAFT lab work authored by the actor. Equipment
// ids without a matching record are silently omitted.
func (s *LabWorkService) Create(ctx context.Context, req dto.CreateLabWorkRequest, actor *models.JWTClaims) (*models.LabWork, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lab work payload")
	}
	equipment, err := s.equipment.FindAllByID(ctx, req.EquipmentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve equipment")
	}

	labWork := &models.LabWork{
		Title:             req.Title,
		Description:       req.Description,
		AuthorID:          actor.UserID,
		Status:            models.LabWorkDraft,
		RequiredEquipment: equipment,
	}
	if err := s.repo.Create(ctx, labWork); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lab work")
	}
	return labWork, nil
}

// Get returns a single lab work.
func (s *LabWorkService) Get(ctx context.Context, id string) (*models.LabWork, error) {
	labWork, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lab work not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lab work")
	}
	return labWork, nil
}

// List returns lab works, optionally filtered by status.
func (s *LabWorkService) List(ctx context.Context, status models.LabWorkStatus) ([]models.LabWork, error) {
	if status != "" && !validLabWorkStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown lab work status")
	}
	items, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lab works")
	}
	return items, nil
}

// Update overwrites the mutable lab work fields. Only the author or an
// admin may change a lab work.
func (s *LabWorkService) Update(ctx context.Context, id string, req dto.UpdateLabWorkRequest, actor *models.JWTClaims) (*models.LabWork, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lab work payload")
	}
	if !validLabWorkStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown lab work status")
	}
	labWork, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && labWork.AuthorID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	equipment, err := s.equipment.FindAllByID(ctx, req.EquipmentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve equipment")
	}

	labWork.Title = req.Title
	labWork.Description = req.Description
	labWork.Status = req.Status
	labWork.RequiredEquipment = equipment
	if err := s.repo.Update(ctx, labWork); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lab work not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lab work")
	}
	return labWork, nil
}

// Delete removes a lab work. Only the author or an admin may delete it.
func (s *LabWorkService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		labWork, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if labWork.AuthorID != actor.UserID {
			return appErrors.ErrForbidden
		}
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lab work not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lab work")
	}
	return nil
}

func validLabWorkStatus(status models.LabWorkStatus) bool {
	switch status {
	case models.LabWorkDraft, models.LabWorkPublished, models.LabWorkArchived:
		return true
	}
	return false
}
