package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/laboserve/laboserve-api/internal/models"
)

// FacultyScheduleRepository provides read access to the recurring weekly
// timetable plus the bulk-replace operation used by the importer.
type FacultyScheduleRepository struct {
	db *sqlx.DB
}

// NewFacultyScheduleRepository creates a new faculty schedule repository.
func NewFacultyScheduleRepository(db *sqlx.DB) *FacultyScheduleRepository {
	return &FacultyScheduleRepository{db: db}
}

const facultyScheduleColumns = "id, day_of_week, start_minute, end_minute, original_slot_text, lab_id, lab_name, subject, lecturer, class_name, created_at, updated_at"

// List returns faculty entries, optionally narrowed by day and lab. The
// repository never filters by overlap; that belongs to the composer.
func (r *FacultyScheduleRepository) List(ctx context.Context, filter models.FacultyScheduleFilter) ([]models.FacultyScheduleEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM faculty_schedules WHERE 1=1", facultyScheduleColumns)
	var conditions []string
	var args []interface{}

	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.DayOfWeek))
	}
	if filter.LabID != "" {
		conditions = append(conditions, fmt.Sprintf("lab_id = $%d", len(args)+1))
		args = append(args, filter.LabID)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY day_of_week ASC, start_minute ASC, lab_id ASC"

	var entries []models.FacultyScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list faculty schedules: %w", err)
	}
	return entries, nil
}

// ReplaceAll swaps the whole timetable for a freshly imported one inside a
// single transaction, so no reader observes a half-replaced table.
func (r *FacultyScheduleRepository) ReplaceAll(ctx context.Context, entries []models.FacultyScheduleEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM faculty_schedules`); err != nil {
		return fmt.Errorf("clear faculty schedules: %w", err)
	}

	now := time.Now().UTC()
	for i := range entries {
		entry := entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.CreatedAt = now
		entry.UpdatedAt = now

		if _, err = tx.NamedExecContext(ctx, `INSERT INTO faculty_schedules (id, day_of_week, start_minute, end_minute, original_slot_text, lab_id, lab_name, subject, lecturer, class_name, created_at, updated_at) VALUES (:id, :day_of_week, :start_minute, :end_minute, :original_slot_text, :lab_id, :lab_name, :subject, :lecturer, :class_name, :created_at, :updated_at)`, &entry); err != nil {
			return fmt.Errorf("insert faculty schedule: %w", err)
		}
		entries[i] = entry
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule replace: %w", err)
	}
	return nil
}

// Count returns the number of stored faculty entries.
func (r *FacultyScheduleRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM faculty_schedules`); err != nil {
		return 0, fmt.Errorf("count faculty schedules: %w", err)
	}
	return total, nil
}
