package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
)

type reservationStore interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error)
	UpdateStatusIfFree(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error)
}

type labStore interface {
	FindByID(ctx context.Context, id string) (*models.Lab, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

type fileStore interface {
	Save(filename string, data []byte) (string, error)
}

// CreateReservationRequest is the booking form payload. The slot comes in as
// the portal's "HH.mm - HH.mm" text and is parsed server-side.
type CreateReservationRequest struct {
	LabID        string `json:"lab_id" validate:"required"`
	Date         string `json:"date" validate:"required"`
	TimeSlot     string `json:"time_slot" validate:"required"`
	ActivityType string `json:"activity_type" validate:"required,oneof=akademik non-akademik"`
	Category     string `json:"category" validate:"required"`
	LecturerName string `json:"lecturer_name"`
	CourseName   string `json:"course_name"`
	Description  string `json:"description" validate:"required"`

	// Optional supporting document, uploaded before the row is written.
	FileName string `json:"-"`
	FileData []byte `json:"-"`
}

// ReservationService owns the booking lifecycle: pending on submission,
// approved or rejected exactly once by an admin.
type ReservationService struct {
	repo         reservationStore
	labs         labStore
	availability *AvailabilityService
	notifier     *NotificationService
	audit        auditWriter
	files        fileStore
	cache        *CacheService
	validator    *validator.Validate
	logger       *zap.Logger
	maxFileSize  int64
}

// NewReservationService instantiates ReservationService.
func NewReservationService(repo reservationStore, labs labStore, availability *AvailabilityService, notifier *NotificationService, audit auditWriter, files fileStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger, maxFileSize int64) *ReservationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxFileSize <= 0 {
		maxFileSize = 1 << 20
	}
	return &ReservationService{
		repo:         repo,
		labs:         labs,
		availability: availability,
		notifier:     notifier,
		audit:        audit,
		files:        files,
		cache:        cache,
		validator:    validate,
		logger:       logger,
		maxFileSize:  maxFileSize,
	}
}

// Create validates and stores a new pending reservation. The slot is checked
// against approved occupancy before insert; the definitive check still runs
// at approval time.
func (s *ReservationService) Create(ctx context.Context, actor models.UserInfo, req CreateReservationRequest) (*models.Reservation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation request")
	}

	category := models.ReservationCategory(req.Category)
	if !models.IsValidCategory(category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", req.Category))
	}
	if category == models.CategoryKelasPengganti {
		if req.LecturerName == "" || req.CourseName == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "kelas-pengganti requires lecturer and course names")
		}
	} else if req.LecturerName != "" || req.CourseName != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lecturer and course names only apply to kelas-pengganti")
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.UTC)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation date")
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
	if lab.Status != models.LabStatusAvailable {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("lab is %s", lab.Status))
	}

	booked, err := s.availability.IsSlotBooked(ctx, lab.ID, date, slot)
	if err != nil {
		return nil, err
	}
	if booked {
		return nil, appErrors.Clone(appErrors.ErrSlotConflict, "")
	}

	reservation := &models.Reservation{
		LabID:        lab.ID,
		LabName:      lab.Name,
		UserID:       actor.ID,
		UserName:     actor.FullName,
		Date:         date,
		StartMinute:  slot.StartMinute,
		EndMinute:    slot.EndMinute,
		ActivityType: models.ActivityType(req.ActivityType),
		Category:     category,
		Description:  req.Description,
		Status:       models.ReservationPending,
	}
	if category == models.CategoryKelasPengganti {
		reservation.LecturerName = &req.LecturerName
		reservation.CourseName = &req.CourseName
	}

	// Upload before the insert so a storage failure never leaves a row
	// pointing at a missing file.
	if len(req.FileData) > 0 {
		if int64(len(req.FileData)) > s.maxFileSize {
			return nil, appErrors.Clone(appErrors.ErrValidation, "supporting file exceeds size limit")
		}
		ref, err := s.files.Save(req.FileName, req.FileData)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store supporting file")
		}
		reservation.SupportingFileRef = &ref
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reservation")
	}

	s.notifier.NotifyAdminNewBooking(ctx, reservation)
	s.writeAudit(ctx, actor.ID, models.AuditActionReservationCreate, reservation)
	return reservation, nil
}

// ListForUser returns the actor's own reservation history, newest first.
func (s *ReservationService) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Reservation, *models.Pagination, error) {
	return s.list(ctx, models.ReservationFilter{UserID: userID, Page: page, PageSize: pageSize})
}

// ListPending returns pending reservations for the admin review queue.
func (s *ReservationService) ListPending(ctx context.Context, page, pageSize int) ([]models.Reservation, *models.Pagination, error) {
	return s.list(ctx, models.ReservationFilter{Status: models.ReservationPending, Page: page, PageSize: pageSize})
}

// List returns reservations matching the filter.
func (s *ReservationService) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, *models.Pagination, error) {
	return s.list(ctx, filter)
}

func (s *ReservationService) list(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, *models.Pagination, error) {
	reservations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reservations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return reservations, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetByID loads one reservation; non-admins may only see their own.
func (s *ReservationService) GetByID(ctx context.Context, actor models.UserInfo, id string) (*models.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	if actor.Role != models.RoleAdmin && reservation.UserID != actor.ID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}
	return reservation, nil
}

// Approve transitions a pending reservation to approved. The availability
// check and the status write share one transaction, so concurrent approvals
// of overlapping slots cannot both succeed.
func (s *ReservationService) Approve(ctx context.Context, actor models.UserInfo, id string) (*models.Reservation, error) {
	return s.transition(ctx, actor, id, models.ReservationApproved, models.AuditActionReservationApprove)
}

// Reject transitions a pending reservation to rejected.
func (s *ReservationService) Reject(ctx context.Context, actor models.UserInfo, id string) (*models.Reservation, error) {
	return s.transition(ctx, actor, id, models.ReservationRejected, models.AuditActionReservationReject)
}

func (s *ReservationService) transition(ctx context.Context, actor models.UserInfo, id string, status models.ReservationStatus, auditAction string) (*models.Reservation, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation")
	}
	if current.Status != models.ReservationPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("reservation already %s", current.Status))
	}

	reservation, err := s.repo.UpdateStatusIfFree(ctx, id, status)
	if err != nil {
		var conflict *models.SlotConflictError
		if errors.As(err, &conflict) {
			return nil, appErrors.Wrap(conflict, appErrors.ErrSlotConflict.Code, appErrors.ErrSlotConflict.Status, conflict.Error())
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reservation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reservation status")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "schedule:*")
		_ = s.cache.Invalidate(ctx, "labs:*")
	}
	s.notifier.NotifyUserBookingStatus(ctx, reservation)
	s.writeAudit(ctx, actor.ID, auditAction, reservation)
	return reservation, nil
}

func (s *ReservationService) writeAudit(ctx context.Context, actorID, action string, reservation *models.Reservation) {
	if s.audit == nil {
		return
	}
	payload, err := json.Marshal(reservation)
	if err != nil {
		payload = nil
	}
	entry := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "reservation",
		ResourceID: &reservation.ID,
		NewValues:  payload,
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}
