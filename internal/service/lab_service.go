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

const labCacheKey = "catalog:labs:all"

type labStore interface {
	Create(ctx context.Context, lab *models.Lab) error
	FindByID(ctx context.Context, id string) (*models.Lab, error)
	List(ctx context.Context) ([]models.Lab, error)
	Update(ctx context.Context, lab *models.Lab) error
	DeleteByID(ctx context.Context, id string) error
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheRecorder interface {
	RecordCacheOperation(hit bool)
}

// LabService manages the lab catalog with a read-through cache on listings.
type LabService struct {
	repo     labStore
	cache    catalogCache
	cacheTTL time.Duration
	metrics  cacheRecorder
	validate *validator.Validate
	logger   *zap.Logger
}

// LabServiceOption configures the service.
type LabServiceOption func(*LabService)

// WithLabCacheMetrics wires a recorder counting catalog cache hits and
// misses.
func WithLabCacheMetrics(recorder cacheRecorder) LabServiceOption {
	return func(s *LabService) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// NewLabService constructs the service. A nil cache disables caching.
func NewLabService(repo labStore, cache catalogCache, cacheTTL time.Duration, logger *zap.Logger, opts ...LabServiceOption) *LabService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LabService{
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

// Create registers a new lab.
func (s *LabService) Create(ctx context.Context, req dto.CreateLabRequest) (*models.Lab, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lab payload")
	}
	lab := &models.Lab{
		Name:        req.Name,
		Location:    req.Location,
		Capacity:    req.Capacity,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, lab); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lab")
	}
	s.invalidate(ctx)
	return lab, nil
}

// Get returns a single lab.
func (s *LabService) Get(ctx context.Context, id string) (*models.Lab, error) {
	lab, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lab not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lab")
	}
	return lab, nil
}

// List returns all labs, served from cache when possible.
func (s *LabService) List(ctx context.Context) ([]models.Lab, error) {
	if s.cache != nil {
		var cached []models.Lab
		if err := s.cache.Get(ctx, labCacheKey, &cached); err == nil {
			s.recordCache(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("lab cache read failed", zap.Error(err))
		}
		s.recordCache(false)
	}
	labs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list labs")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, labCacheKey, labs, s.cacheTTL); err != nil {
			s.logger.Warn("lab cache write failed", zap.Error(err))
		}
	}
	return labs, nil
}

// Update overwrites the mutable lab fields.
func (s *LabService) Update(ctx context.Context, id string, req dto.UpdateLabRequest) (*models.Lab, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lab payload")
	}
	lab, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lab.Name = req.Name
	lab.Location = req.Location
	lab.Capacity = req.Capacity
	lab.Description = req.Description
	if err := s.repo.Update(ctx, lab); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lab not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lab")
	}
	s.invalidate(ctx)
	return lab, nil
}

// Delete removes a lab.
func (s *LabService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lab not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lab")
	}
	s.invalidate(ctx)
	return nil
}

func (s *LabService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

func (s *LabService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "catalog:labs:*"); err != nil {
		s.logger.Warn("lab cache invalidation failed", zap.Error(err))
	}
}
