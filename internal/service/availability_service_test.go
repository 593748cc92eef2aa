package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/models"
)

func TestIsSlotBookedOverlap(t *testing.T) {
	reservations := &stubReservationReader{approved: []models.Reservation{
		{ID: "res-1", LabID: "lab-1", Date: fixedMonday, StartMinute: 600, EndMinute: 750, Status: models.ReservationApproved},
	}}
	svc := NewAvailabilityService(reservations, 4, zap.NewNop())

	for _, tc := range []struct {
		name string
		slot models.TimeInterval
		want bool
	}{
		{"identical", models.TimeInterval{StartMinute: 600, EndMinute: 750}, true},
		{"partial overlap", models.TimeInterval{StartMinute: 700, EndMinute: 900}, true},
		{"contained", models.TimeInterval{StartMinute: 650, EndMinute: 700}, true},
		{"back to back before", models.TimeInterval{StartMinute: 450, EndMinute: 600}, false},
		{"back to back after", models.TimeInterval{StartMinute: 750, EndMinute: 900}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			booked, err := svc.IsSlotBooked(context.Background(), "lab-1", fixedMonday, tc.slot)
			require.NoError(t, err)
			assert.Equal(t, tc.want, booked)
		})
	}
}

func TestBookedSlotsMenu(t *testing.T) {
	reservations := &stubReservationReader{approved: []models.Reservation{
		{ID: "res-1", LabID: "lab-1", Date: fixedMonday, StartMinute: 600, EndMinute: 750, Status: models.ReservationApproved},
	}}
	svc := NewAvailabilityService(reservations, 4, zap.NewNop())

	slots, err := svc.BookedSlots(context.Background(), "lab-1", fixedMonday)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	assert.False(t, slots[0].Booked)
	assert.True(t, slots[1].Booked)
	assert.False(t, slots[2].Booked)
	assert.False(t, slots[3].Booked)
	assert.Equal(t, "15.00 - 18.00", slots[3].SlotText)
}

func TestIsLabFullyBookedToday(t *testing.T) {
	reservations := &stubReservationReader{count: 4}
	svc := NewAvailabilityService(reservations, 4, zap.NewNop())
	svc.now = func() time.Time { return fixedMonday }

	full, err := svc.IsLabFullyBookedToday(context.Background(), "lab-1")
	require.NoError(t, err)
	assert.True(t, full)

	reservations.count = 3
	full, err = svc.IsLabFullyBookedToday(context.Background(), "lab-1")
	require.NoError(t, err)
	assert.False(t, full)
}
