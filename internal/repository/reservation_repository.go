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

// ReservationRepository provides persistence for reservations.
type ReservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new reservation repository.
func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

const reservationColumns = "id, lab_id, lab_name, user_id, user_name, date, start_minute, end_minute, activity_type, category, lecturer_name, course_name, description, supporting_file_ref, status, created_at, updated_at"

// Create stores a new reservation record.
func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == "" {
		reservation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = now
	}
	reservation.UpdatedAt = now

	const query = `INSERT INTO reservations (id, lab_id, lab_name, user_id, user_name, date, start_minute, end_minute, activity_type, category, lecturer_name, course_name, description, supporting_file_ref, status, created_at, updated_at) VALUES (:id, :lab_id, :lab_name, :user_id, :user_name, :date, :start_minute, :end_minute, :activity_type, :category, :lecturer_name, :course_name, :description, :supporting_file_ref, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reservation); err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// FindByID loads a reservation by id.
func (r *ReservationRepository) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	query := fmt.Sprintf("SELECT %s FROM reservations WHERE id = $1", reservationColumns)
	var reservation models.Reservation
	if err := r.db.GetContext(ctx, &reservation, query, id); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// List returns reservations with optional filtering and pagination.
func (r *ReservationRepository) List(ctx context.Context, filter models.ReservationFilter) ([]models.Reservation, int, error) {
	base := "FROM reservations WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.LabID != "" {
		conditions = append(conditions, fmt.Sprintf("lab_id = $%d", len(args)+1))
		args = append(args, filter.LabID)
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", reservationColumns, base, size, offset)
	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reservations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count reservations: %w", err)
	}

	return reservations, total, nil
}

// ListApproved returns approved reservations in the inclusive date range,
// optionally narrowed to one lab. This is the occupancy source for the
// composer and the availability checker.
func (r *ReservationRepository) ListApproved(ctx context.Context, labID string, from, to time.Time) ([]models.Reservation, error) {
	query := fmt.Sprintf("SELECT %s FROM reservations WHERE status = $1 AND date >= $2 AND date <= $3", reservationColumns)
	args := []interface{}{models.ReservationApproved, from, to}
	if labID != "" {
		query += " AND lab_id = $4"
		args = append(args, labID)
	}
	query += " ORDER BY date ASC, start_minute ASC"

	var reservations []models.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("list approved reservations: %w", err)
	}
	return reservations, nil
}

// CountApproved returns the number of approved reservations for a lab on a
// calendar date.
func (r *ReservationRepository) CountApproved(ctx context.Context, labID string, date time.Time) (int, error) {
	var total int
	const query = `SELECT COUNT(*) FROM reservations WHERE status = $1 AND lab_id = $2 AND date = $3`
	if err := r.db.GetContext(ctx, &total, query, models.ReservationApproved, labID, date); err != nil {
		return 0, fmt.Errorf("count approved reservations: %w", err)
	}
	return total, nil
}

// UpdateStatusIfFree transitions a pending reservation to the target status
// inside one transaction. Approvals first take the lab row lock, which
// serializes every approval for that lab: a concurrent approval's uncommitted
// row is still pending and would slip past a scan of approved rows alone.
// With the lab lock held the approved-rows scan sees all committed approvals,
// and an overlap rejects with a SlotConflictError.
func (r *ReservationRepository) UpdateStatusIfFree(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf("SELECT %s FROM reservations WHERE id = $1 FOR UPDATE", reservationColumns)
	var reservation models.Reservation
	if err = tx.GetContext(ctx, &reservation, query, id); err != nil {
		return nil, err
	}

	if status == models.ReservationApproved {
		var lockedLab string
		if err = tx.GetContext(ctx, &lockedLab, `SELECT id FROM labs WHERE id = $1 FOR UPDATE`, reservation.LabID); err != nil {
			return nil, fmt.Errorf("lock lab for approval: %w", err)
		}

		lockQuery := fmt.Sprintf("SELECT %s FROM reservations WHERE status = $1 AND lab_id = $2 AND date = $3 AND id <> $4 FOR UPDATE", reservationColumns)
		var approved []models.Reservation
		if err = tx.SelectContext(ctx, &approved, lockQuery, models.ReservationApproved, reservation.LabID, reservation.Date, reservation.ID); err != nil {
			return nil, fmt.Errorf("lock approved reservations: %w", err)
		}
		for _, existing := range approved {
			if existing.Interval().Overlaps(reservation.Interval()) {
				err = &models.SlotConflictError{
					LabID:    reservation.LabID,
					Date:     reservation.Date,
					Slot:     reservation.Interval(),
					Existing: existing,
				}
				return nil, err
			}
		}
	}

	reservation.Status = status
	reservation.UpdatedAt = time.Now().UTC()
	if _, err = tx.ExecContext(ctx, `UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3`, reservation.Status, reservation.UpdatedAt, reservation.ID); err != nil {
		return nil, fmt.Errorf("update reservation status: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return &reservation, nil
}
