package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
	"github.com/laboserve/laboserve-api/pkg/jobs"
)

type deviceTokenStore interface {
	Upsert(ctx context.Context, token *models.DeviceToken) error
	ListByRole(ctx context.Context, role models.UserRole) ([]string, error)
	ListByUser(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, token string) error
}

type notificationDispatcher interface {
	Enqueue(job jobs.Job) error
}

// Dispatcher delivers a push message to the registered device tokens. The
// concrete transport lives outside the core; LogDispatcher is the default.
type Dispatcher interface {
	Send(ctx context.Context, msg models.NotificationMessage) error
}

// Notification titles shown on booking lifecycle events.
const (
	titleNewBooking      = "Pengajuan Reservasi Baru"
	titleBookingApproved = "Reservasi Disetujui!"
	titleBookingRejected = "Reservasi Ditolak!"
	jobTypeNotification  = "notification"
)

// RegisterTokenRequest registers a device token for push delivery.
type RegisterTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// NotificationService registers device tokens and enqueues booking lifecycle
// pushes. Delivery is fire-and-forget: enqueue or dispatch failures are
// logged and never surface to the action that triggered them.
type NotificationService struct {
	tokens    deviceTokenStore
	queue     notificationDispatcher
	validator *validator.Validate
	logger    *zap.Logger
	enabled   bool
}

// NewNotificationService instantiates NotificationService.
func NewNotificationService(tokens deviceTokenStore, queue notificationDispatcher, validate *validator.Validate, logger *zap.Logger, enabled bool) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{tokens: tokens, queue: queue, validator: validate, logger: logger, enabled: enabled}
}

// RegisterToken stores or re-assigns a device token for the user.
func (s *NotificationService) RegisterToken(ctx context.Context, userID string, role models.UserRole, req RegisterTokenRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid token registration")
	}
	token := &models.DeviceToken{Token: req.Token, UserID: userID, Role: role}
	if err := s.tokens.Upsert(ctx, token); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register device token")
	}
	return nil
}

// UnregisterToken removes a device token, typically on logout.
func (s *NotificationService) UnregisterToken(ctx context.Context, token string) error {
	if err := s.tokens.Delete(ctx, token); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove device token")
	}
	return nil
}

// NotifyAdminNewBooking pushes a new-submission alert to every admin device.
func (s *NotificationService) NotifyAdminNewBooking(ctx context.Context, reservation *models.Reservation) {
	if !s.enabled {
		return
	}
	tokens, err := s.tokens.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		s.logger.Warn("failed to load admin device tokens", zap.Error(err))
		return
	}
	body := fmt.Sprintf("%s mengajukan reservasi %s pada %s (%s)",
		reservation.UserName, reservation.LabName,
		reservation.Date.Format("2006-01-02"), reservation.Interval())
	s.enqueue(models.NotificationMessage{
		Tokens: tokens,
		Title:  titleNewBooking,
		Body:   body,
		Data:   map[string]string{"reservation_id": reservation.ID},
	})
}

// NotifyUserBookingStatus pushes the approval outcome to the requester's
// devices.
func (s *NotificationService) NotifyUserBookingStatus(ctx context.Context, reservation *models.Reservation) {
	if !s.enabled {
		return
	}
	tokens, err := s.tokens.ListByUser(ctx, reservation.UserID)
	if err != nil {
		s.logger.Warn("failed to load user device tokens", zap.String("user_id", reservation.UserID), zap.Error(err))
		return
	}

	title := titleBookingApproved
	if reservation.Status == models.ReservationRejected {
		title = titleBookingRejected
	}
	body := fmt.Sprintf("Reservasi %s pada %s (%s)",
		reservation.LabName, reservation.Date.Format("2006-01-02"), reservation.Interval())
	s.enqueue(models.NotificationMessage{
		Tokens: tokens,
		Title:  title,
		Body:   body,
		Data:   map[string]string{"reservation_id": reservation.ID, "status": string(reservation.Status)},
	})
}

func (s *NotificationService) enqueue(msg models.NotificationMessage) {
	if len(msg.Tokens) == 0 {
		return
	}
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(jobs.Job{Type: jobTypeNotification, Payload: msg}); err != nil {
		s.logger.Warn("failed to enqueue notification", zap.String("title", msg.Title), zap.Error(err))
	}
}

// NotificationWorker drains the notification queue through a dispatcher.
type NotificationWorker struct {
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewNotificationWorker constructs a worker.
func NewNotificationWorker(dispatcher Dispatcher, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{dispatcher: dispatcher, logger: logger}
}

// Handle processes one queued notification.
func (w *NotificationWorker) Handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(models.NotificationMessage)
	if !ok {
		w.logger.Warn("dropping notification job with unexpected payload", zap.String("job_type", job.Type))
		return nil
	}
	return w.dispatcher.Send(ctx, msg)
}

// LogDispatcher records pushes in the application log instead of delivering
// them. Stands in until a real push provider is configured.
type LogDispatcher struct {
	logger *zap.Logger
}

// NewLogDispatcher constructs a log-only dispatcher.
func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{logger: logger}
}

// Send logs the message.
func (d *LogDispatcher) Send(_ context.Context, msg models.NotificationMessage) error {
	d.logger.Info("notification dispatched",
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Int("recipients", len(msg.Tokens)))
	return nil
}
