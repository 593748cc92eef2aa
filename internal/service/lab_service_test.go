package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
)

type stubLabCatalog struct {
	labs          []models.Lab
	updatedStatus models.LabStatus
}

func (s *stubLabCatalog) List(ctx context.Context) ([]models.Lab, error) {
	return s.labs, nil
}

func (s *stubLabCatalog) FindByID(ctx context.Context, id string) (*models.Lab, error) {
	for i := range s.labs {
		if s.labs[i].ID == id {
			return &s.labs[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubLabCatalog) UpdateStatus(ctx context.Context, id string, status models.LabStatus) error {
	s.updatedStatus = status
	return nil
}

func TestLabListDowngradesFullLab(t *testing.T) {
	catalog := &stubLabCatalog{labs: []models.Lab{
		{ID: "lab-dasar-1", Name: "Lab Dasar 1", Status: models.LabStatusAvailable},
	}}
	availability := NewAvailabilityService(&stubReservationReader{count: models.DailyBookingCapacity}, 0, nil)
	svc := NewLabService(catalog, availability, nil, nil)

	views, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.LabStatusFullToday, views[0].EffectiveStatus)
	assert.Equal(t, models.LabStatusAvailable, views[0].Status)
}

func TestLabListKeepsMaintenanceStatus(t *testing.T) {
	catalog := &stubLabCatalog{labs: []models.Lab{
		{ID: "lab-dasar-1", Name: "Lab Dasar 1", Status: models.LabStatusMaintenance},
	}}
	availability := NewAvailabilityService(&stubReservationReader{count: models.DailyBookingCapacity}, 0, nil)
	svc := NewLabService(catalog, availability, nil, nil)

	views, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.LabStatusMaintenance, views[0].EffectiveStatus)
}

func TestLabUpdateStatusRejectsDisplayState(t *testing.T) {
	catalog := &stubLabCatalog{labs: []models.Lab{
		{ID: "lab-dasar-1", Status: models.LabStatusAvailable},
	}}
	svc := NewLabService(catalog, nil, nil, nil)

	err := svc.UpdateStatus(context.Background(), "lab-dasar-1", models.LabStatusFullToday)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestLabUpdateStatusUnknownLab(t *testing.T) {
	svc := NewLabService(&stubLabCatalog{}, nil, nil, nil)

	err := svc.UpdateStatus(context.Background(), "missing", models.LabStatusMaintenance)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
