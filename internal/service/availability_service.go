package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/dto"
	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
)

type reservationCounter interface {
	approvedReservationReader
	CountApproved(ctx context.Context, labID string, date time.Time) (int, error)
}

// AvailabilityService answers slot occupancy questions against approved
// reservations only. Pending and rejected bookings never block a slot.
type AvailabilityService struct {
	reservations reservationCounter
	capacity     int
	logger       *zap.Logger
	now          func() time.Time
}

// NewAvailabilityService instantiates AvailabilityService.
func NewAvailabilityService(reservations reservationCounter, capacity int, logger *zap.Logger) *AvailabilityService {
	if capacity <= 0 {
		capacity = models.DailyBookingCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{reservations: reservations, capacity: capacity, logger: logger, now: time.Now}
}

// IsSlotBooked reports whether any approved reservation for the lab and date
// overlaps the candidate interval.
func (s *AvailabilityService) IsSlotBooked(ctx context.Context, labID string, date time.Time, slot models.TimeInterval) (bool, error) {
	day := truncateToDate(date)
	approved, err := s.reservations.ListApproved(ctx, labID, day, day)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot availability")
	}
	for _, res := range approved {
		if res.Interval().Overlaps(slot) {
			return true, nil
		}
	}
	return false, nil
}

// BookedSlots returns the booking form's fixed slot menu with occupied
// entries marked. A menu slot counts as booked when any approved reservation
// overlaps it.
func (s *AvailabilityService) BookedSlots(ctx context.Context, labID string, date time.Time) ([]dto.BookedSlot, error) {
	day := truncateToDate(date)
	approved, err := s.reservations.ListApproved(ctx, labID, day, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list booked slots")
	}

	slots := make([]dto.BookedSlot, 0, len(models.BookingSlots))
	for _, slot := range models.BookingSlots {
		booked := false
		for _, res := range approved {
			if res.Interval().Overlaps(slot) {
				booked = true
				break
			}
		}
		slots = append(slots, dto.BookedSlot{Slot: slot, SlotText: slot.String(), Booked: booked})
	}
	return slots, nil
}

// IsLabFullyBookedToday reports whether the lab reached its daily approved
// capacity for today. Used for the display-only status downgrade.
func (s *AvailabilityService) IsLabFullyBookedToday(ctx context.Context, labID string) (bool, error) {
	today := truncateToDate(s.now())
	count, err := s.reservations.CountApproved(ctx, labID, today)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count reservations")
	}
	return count >= s.capacity, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
