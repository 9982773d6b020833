package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/unilab/lab-reservation-api/internal/dto"
	"github.com/unilab/lab-reservation-api/internal/models"
	appErrors "github.com/unilab/lab-reservation-api/pkg/errors"
)

type equipmentStore interface {
	Create(ctx context.Context, equipment *models.Equipment) error
	FindByID(ctx context.Context, id string) (*models.Equipment, error)
	ExistsByInventoryNumber(ctx context.Context, inventoryNumber, excludeID string) (bool, error)
	List(ctx context.Context, filter models.EquipmentFilter) ([]models.Equipment, error)
	Update(ctx context.Context, equipment *models.Equipment) error
	DeleteByID(ctx context.Context, id string) error
}

// EquipmentService manages the equipment catalog. Unfiltered listings go
// through the same read-through cache as labs.
type EquipmentService struct {
	repo     equipmentStore
	cache    catalogCache
	cacheTTL time.Duration
	metrics  cacheRecorder
	validate *validator.Validate
	logger   *zap.Logger
}

// EquipmentServiceOption configures the service.
type EquipmentServiceOption func(*EquipmentService)

// WithEquipmentCacheMetrics wires a recorder counting catalog cache hits
// and misses.
func WithEquipmentCacheMetrics(recorder cacheRecorder) EquipmentServiceOption {
	return func(s *EquipmentService) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// NewEquipmentService constructs the service. A nil cache disables caching.
func NewEquipmentService(repo equipmentStore, cache catalogCache, cacheTTL time.Duration, logger *zap.Logger, opts ...EquipmentServiceOption) *EquipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &EquipmentService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		validate: validator.New(),
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create registers new equipment with a unique inventory number.
func (s *EquipmentService) Create(ctx context.Context, req dto.CreateEquipmentRequest) (*models.Equipment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}
	if req.Status != "" && !validEquipmentStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown equipment status")
	}
	taken, err := s.repo.ExistsByInventoryNumber(ctx, req.InventoryNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check inventory number")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "inventory number is already registered")
	}

	equipment := &models.Equipment{
		Name:            req.Name,
		InventoryNumber: req.InventoryNumber,
		Status:          req.Status,
		LabID:           req.LabID,
	}
	if err := s.repo.Create(ctx, equipment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create equipment")
	}
	s.invalidate(ctx)
	return equipment, nil
}

// Get returns a single equipment record.
func (s *EquipmentService) Get(ctx context.Context, id string) (*models.Equipment, error) {
	equipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}
	return equipment, nil
}

// List returns equipment matching the filter. Only the unfiltered
// listing is cached; filtered queries always hit the store.
func (s *EquipmentService) List(ctx context.Context, filter models.EquipmentFilter) ([]models.Equipment, error) {
	cacheable := filter.LabID == "" && filter.Status == ""
	if cacheable && s.cache != nil {
		var cached []models.Equipment
		if err := s.cache.Get(ctx, equipmentCacheKey, &cached); err == nil {
			s.recordCache(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("equipment cache read failed", zap.Error(err))
		}
		s.recordCache(false)
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list equipment")
	}
	if cacheable && s.cache != nil {
		if err := s.cache.Set(ctx, equipmentCacheKey, items, s.cacheTTL); err != nil {
			s.logger.Warn("equipment cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

// Update overwrites the mutable equipment fields.
func (s *EquipmentService) Update(ctx context.Context, id string, req dto.UpdateEquipmentRequest) (*models.Equipment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}
	if !validEquipmentStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown equipment status")
	}
	equipment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.InventoryNumber != equipment.InventoryNumber {
		taken, err := s.repo.ExistsByInventoryNumber(ctx, req.InventoryNumber, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check inventory number")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "inventory number is already registered")
		}
	}
	equipment.Name = req.Name
	equipment.InventoryNumber = req.InventoryNumber
	equipment.Status = req.Status
	equipment.LabID = req.LabID
	if err := s.repo.Update(ctx, equipment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update equipment")
	}
	s.invalidate(ctx)
	return equipment, nil
}

// Delete removes an equipment record.
func (s *EquipmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete equipment")
	}
	s.invalidate(ctx)
	return nil
}

const equipmentCacheKey = "catalog:equipment:all"

func (s *EquipmentService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

func (s *EquipmentService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "catalog:equipment:*"); err != nil {
		s.logger.Warn("equipment cache invalidation failed", zap.Error(err))
	}
}

func validEquipmentStatus(status models.EquipmentStatus) bool {
	switch status {
	case models.EquipmentAvailable, models.EquipmentInUse, models.EquipmentMaintenance, models.EquipmentBroken:
		return true
	}
	return false
}
