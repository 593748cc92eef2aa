package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
)

type labCatalog interface {
	List(ctx context.Context) ([]models.Lab, error)
	FindByID(ctx context.Context, id string) (*models.Lab, error)
	UpdateStatus(ctx context.Context, id string, status models.LabStatus) error
}

// labListCacheKey holds the dashboard lab list with effective statuses. The
// entry is short-lived because the capacity downgrade shifts with approvals.
const labListCacheKey = "labs:status"

// LabService serves the laboratory catalog with the capacity-based display
// downgrade applied on top of the stored status.
type LabService struct {
	repo         labCatalog
	availability *AvailabilityService
	cache        *CacheService
	logger       *zap.Logger
}

// NewLabService instantiates LabService.
func NewLabService(repo labCatalog, availability *AvailabilityService, cache *CacheService, logger *zap.Logger) *LabService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LabService{repo: repo, availability: availability, cache: cache, logger: logger}
}

// List returns all labs with their effective status. A lab that reached its
// daily approved capacity shows as "Penuh Hari Ini" without touching the
// stored status.
func (s *LabService) List(ctx context.Context) ([]models.LabView, error) {
	if s.cache.Enabled() {
		var cached []models.LabView
		if hit, err := s.cache.Get(ctx, labListCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	labs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list labs")
	}

	views := make([]models.LabView, 0, len(labs))
	for _, lab := range labs {
		views = append(views, models.LabView{Lab: lab, EffectiveStatus: s.effectiveStatus(ctx, lab)})
	}
	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, labListCacheKey, views, 0)
	}
	return views, nil
}

// GetByID returns one lab with its effective status.
func (s *LabService) GetByID(ctx context.Context, id string) (*models.LabView, error) {
	lab, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lab not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lab")
	}
	return &models.LabView{Lab: *lab, EffectiveStatus: s.effectiveStatus(ctx, *lab)}, nil
}

// UpdateStatus stores a new lab status. Only the stored states are writable;
// the capacity downgrade is never persisted.
func (s *LabService) UpdateStatus(ctx context.Context, id string, status models.LabStatus) error {
	switch status {
	case models.LabStatusAvailable, models.LabStatusUnavailable, models.LabStatusMaintenance:
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown lab status")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lab not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lab")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lab status")
	}
	if err := s.cache.Invalidate(ctx, "labs:*"); err != nil {
		s.logger.Warn("failed to invalidate lab cache", zap.Error(err))
	}
	return nil
}

func (s *LabService) effectiveStatus(ctx context.Context, lab models.Lab) models.LabStatus {
	if lab.Status != models.LabStatusAvailable || s.availability == nil {
		return lab.Status
	}
	full, err := s.availability.IsLabFullyBookedToday(ctx, lab.ID)
	if err != nil {
		s.logger.Warn("failed to compute lab occupancy", zap.String("lab_id", lab.ID), zap.Error(err))
		return lab.Status
	}
	if full {
		return models.LabStatusFullToday
	}
	return lab.Status
}
