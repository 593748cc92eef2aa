package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
)

type overrideStore interface {
	Create(ctx context.Context, override *models.ScheduleOverride) error
	FindByID(ctx context.Context, id string) (*models.ScheduleOverride, error)
	List(ctx context.Context, from, to *time.Time) ([]models.ScheduleOverride, error)
	Delete(ctx context.Context, id string) error
}

// CreateOverrideRequest cancels or reschedules one faculty occurrence. The
// target is named by value: lab, date and the original slot text.
type CreateOverrideRequest struct {
	Type     string `json:"type" validate:"required,oneof=cancel reschedule"`
	LabID    string `json:"lab_id" validate:"required"`
	Date     string `json:"date" validate:"required"`
	TimeSlot string `json:"time_slot" validate:"required"`
	Reason   string `json:"reason" validate:"required"`

	NewDate     string `json:"new_date"`
	NewTimeSlot string `json:"new_time_slot"`
}

// OverrideService manages admin cancel/reschedule directives.
type OverrideService struct {
	repo      overrideStore
	labs      labStore
	audit     auditWriter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOverrideService instantiates OverrideService.
func NewOverrideService(repo overrideStore, labs labStore, audit auditWriter, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *OverrideService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverrideService{repo: repo, labs: labs, audit: audit, cache: cache, validator: validate, logger: logger}
}

// Create validates and stores an override. Reschedules require both the new
// date and the new slot; cancels must carry neither.
func (s *OverrideService) Create(ctx context.Context, actorID string, req CreateOverrideRequest) (*models.ScheduleOverride, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override request")
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid override date")
	}
	slot, err := models.ParseTimeRange(req.TimeSlot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, "invalid time slot")
	}

	lab, err := s.labs.FindByID(ctx, req.LabID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lab not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lab")
	}

	override := &models.ScheduleOverride{
		Type:        models.OverrideType(req.Type),
		Date:        date,
		StartMinute: slot.StartMinute,
		EndMinute:   slot.EndMinute,
		LabID:       lab.ID,
		LabName:     lab.Name,
		Reason:      req.Reason,
	}

	switch override.Type {
	case models.OverrideReschedule:
		if req.NewDate == "" || req.NewTimeSlot == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "reschedule requires new date and new time slot")
		}
		newDate, err := time.ParseInLocation("2006-01-02", req.NewDate, time.UTC)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid new date")
		}
		newSlot, err := models.ParseTimeRange(req.NewTimeSlot)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, "invalid new time slot")
		}
		override.NewDate = &newDate
		override.NewStartMinute = &newSlot.StartMinute
		override.NewEndMinute = &newSlot.EndMinute
	case models.OverrideCancel:
		if req.NewDate != "" || req.NewTimeSlot != "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "cancel must not carry a new date or slot")
		}
	}

	if err := s.repo.Create(ctx, override); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create override")
	}

	s.invalidate(ctx)
	s.writeAudit(ctx, actorID, models.AuditActionOverrideCreate, override)
	return override, nil
}

// List returns overrides, optionally limited to a date range.
func (s *OverrideService) List(ctx context.Context, from, to *time.Time) ([]models.ScheduleOverride, error) {
	overrides, err := s.repo.List(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list overrides")
	}
	return overrides, nil
}

// Delete removes an override. Overrides are immutable; correcting one means
// deleting and re-creating it.
func (s *OverrideService) Delete(ctx context.Context, actorID, id string) error {
	override, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "override not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load override")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete override")
	}

	s.invalidate(ctx)
	s.writeAudit(ctx, actorID, models.AuditActionOverrideDelete, override)
	return nil
}

func (s *OverrideService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "schedule:*")
	}
}

func (s *OverrideService) writeAudit(ctx context.Context, actorID, action string, override *models.ScheduleOverride) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(override)
	if err != nil {
		payload = nil
	}
	entry := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "schedule_override",
		ResourceID: &override.ID,
		NewValues:  payload,
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}
