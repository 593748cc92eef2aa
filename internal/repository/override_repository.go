package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/laboserve/laboserve-api/internal/models"
)

// OverrideRepository provides persistence for schedule overrides. Overrides
// are created and hard-deleted; there is no update-in-place.
type OverrideRepository struct {
	db *sqlx.DB
}

// NewOverrideRepository creates a new override repository.
func NewOverrideRepository(db *sqlx.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

const overrideColumns = "id, type, date, start_minute, end_minute, lab_id, lab_name, reason, new_date, new_start_minute, new_end_minute, created_at"

// Create stores a new override directive.
func (r *OverrideRepository) Create(ctx context.Context, override *models.ScheduleOverride) error {
	if override.ID == "" {
		override.ID = uuid.NewString()
	}
	if override.CreatedAt.IsZero() {
		override.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO schedule_overrides (id, type, date, start_minute, end_minute, lab_id, lab_name, reason, new_date, new_start_minute, new_end_minute, created_at) VALUES (:id, :type, :date, :start_minute, :end_minute, :lab_id, :lab_name, :reason, :new_date, :new_start_minute, :new_end_minute, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, override); err != nil {
		return fmt.Errorf("create schedule override: %w", err)
	}
	return nil
}

// FindByID loads an override by id.
func (r *OverrideRepository) FindByID(ctx context.Context, id string) (*models.ScheduleOverride, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_overrides WHERE id = $1", overrideColumns)
	var override models.ScheduleOverride
	if err := r.db.GetContext(ctx, &override, query, id); err != nil {
		return nil, err
	}
	return &override, nil
}

// List returns overrides whose original or rescheduled occurrence falls in
// the inclusive date range. A nil range returns every override.
func (r *OverrideRepository) List(ctx context.Context, from, to *time.Time) ([]models.ScheduleOverride, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_overrides", overrideColumns)
	var args []interface{}
	if from != nil && to != nil {
		query += " WHERE (date >= $1 AND date <= $2) OR (new_date >= $1 AND new_date <= $2)"
		args = append(args, *from, *to)
	}
	query += " ORDER BY date ASC"

	var overrides []models.ScheduleOverride
	if err := r.db.SelectContext(ctx, &overrides, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule overrides: %w", err)
	}
	return overrides, nil
}

// Delete hard-removes an override by id.
func (r *OverrideRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_overrides WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule override: %w", err)
	}
	return nil
}
