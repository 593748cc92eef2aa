package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
)

type mockOverrideStore struct {
	created []*models.ScheduleOverride
	byID    *models.ScheduleOverride
	findErr error
	deleted []string
}

func (m *mockOverrideStore) Create(ctx context.Context, override *models.ScheduleOverride) error {
	override.ID = "ov-new"
	m.created = append(m.created, override)
	return nil
}

func (m *mockOverrideStore) FindByID(ctx context.Context, id string) (*models.ScheduleOverride, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byID, nil
}

func (m *mockOverrideStore) List(ctx context.Context, from, to *time.Time) ([]models.ScheduleOverride, error) {
	return nil, nil
}

func (m *mockOverrideStore) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func newOverrideService(store *mockOverrideStore, audit *mockAuditWriter) *OverrideService {
	labs := &mockLabStore{lab: &models.Lab{ID: "lab-2", Name: "Lab Jaringan", Status: models.LabStatusAvailable}}
	return NewOverrideService(store, labs, audit, nil, nil, zap.NewNop())
}

func cancelRequest() CreateOverrideRequest {
	return CreateOverrideRequest{
		Type:     "cancel",
		LabID:    "lab-2",
		Date:     "2025-01-08",
		TimeSlot: "12.30 - 14.10",
		Reason:   "dosen berhalangan",
	}
}

func TestCreateCancelOverride(t *testing.T) {
	store := &mockOverrideStore{}
	audit := &mockAuditWriter{}
	svc := newOverrideService(store, audit)

	override, err := svc.Create(context.Background(), "admin-1", cancelRequest())
	require.NoError(t, err)
	assert.Equal(t, models.OverrideCancel, override.Type)
	assert.Equal(t, models.TimeInterval{StartMinute: 750, EndMinute: 850}, override.Interval())
	assert.Nil(t, override.NewDate)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionOverrideCreate, audit.entries[0].Action)
}

func TestCreateRescheduleRequiresNewSlot(t *testing.T) {
	svc := newOverrideService(&mockOverrideStore{}, &mockAuditWriter{})

	req := cancelRequest()
	req.Type = "reschedule"
	_, err := svc.Create(context.Background(), "admin-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req.NewDate = "2025-01-10"
	_, err = svc.Create(context.Background(), "admin-1", req)
	require.Error(t, err)

	req.NewTimeSlot = "10.00 - 12.30"
	override, err := svc.Create(context.Background(), "admin-1", req)
	require.NoError(t, err)
	slot, ok := override.NewInterval()
	require.True(t, ok)
	assert.Equal(t, models.TimeInterval{StartMinute: 600, EndMinute: 750}, slot)
}

func TestCreateCancelRejectsNewSlot(t *testing.T) {
	svc := newOverrideService(&mockOverrideStore{}, &mockAuditWriter{})

	req := cancelRequest()
	req.NewDate = "2025-01-10"
	_, err := svc.Create(context.Background(), "admin-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateOverrideInvalidSlot(t *testing.T) {
	svc := newOverrideService(&mockOverrideStore{}, &mockAuditWriter{})

	req := cancelRequest()
	req.TimeSlot = "abc - def"
	_, err := svc.Create(context.Background(), "admin-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrParse.Code, appErrors.FromError(err).Code)
}

func TestDeleteOverride(t *testing.T) {
	store := &mockOverrideStore{byID: &models.ScheduleOverride{ID: "ov-1", Type: models.OverrideCancel}}
	audit := &mockAuditWriter{}
	svc := newOverrideService(store, audit)

	require.NoError(t, svc.Delete(context.Background(), "admin-1", "ov-1"))
	assert.Equal(t, []string{"ov-1"}, store.deleted)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionOverrideDelete, audit.entries[0].Action)
}
