package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laboserve/laboserve-api/internal/models"
)

func newReservationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func reservationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "lab_id", "lab_name", "user_id", "user_name", "date", "start_minute", "end_minute", "activity_type", "category", "lecturer_name", "course_name", "description", "supporting_file_ref", "status", "created_at", "updated_at"})
}

func addReservationRow(rows *sqlmock.Rows, id string, date time.Time, start, end int, status models.ReservationStatus) *sqlmock.Rows {
	return rows.AddRow(id, "lab-1", "Lab RPL", "user-1", "Andi Pratama", date, start, end,
		string(models.ActivityAkademik), string(models.CategoryPraktikum), nil, nil, "praktikum tambahan", nil,
		string(status), time.Now(), time.Now())
}

func TestReservationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	reservation := &models.Reservation{
		LabID:        "lab-1",
		LabName:      "Lab RPL",
		UserID:       "user-1",
		UserName:     "Andi Pratama",
		Date:         time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		StartMinute:  600,
		EndMinute:    750,
		ActivityType: models.ActivityAkademik,
		Category:     models.CategoryPraktikum,
		Status:       models.ReservationPending,
	}
	err := repo.Create(context.Background(), reservation)
	require.NoError(t, err)
	assert.NotEmpty(t, reservation.ID)
	assert.False(t, reservation.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryListApproved(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := addReservationRow(reservationRows(), "res-1", day, 600, 750, models.ReservationApproved)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND date >= $2 AND date <= $3 AND lab_id = $4 ORDER BY date ASC, start_minute ASC")).
		WithArgs(string(models.ReservationApproved), day, day, "lab-1").
		WillReturnRows(rows)

	reservations, err := repo.ListApproved(context.Background(), "lab-1", day, day)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, models.ReservationApproved, reservations[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryCountApproved(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM reservations WHERE status = $1 AND lab_id = $2 AND date = $3")).
		WithArgs(string(models.ReservationApproved), "lab-1", day).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	total, err := repo.CountApproved(context.Background(), "lab-1", day)
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryApproveFreeSlot(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = $1 FOR UPDATE")).
		WithArgs("res-1").
		WillReturnRows(addReservationRow(reservationRows(), "res-1", day, 600, 750, models.ReservationPending))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM labs WHERE id = $1 FOR UPDATE")).
		WithArgs("lab-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("lab-1"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND lab_id = $2 AND date = $3 AND id <> $4 FOR UPDATE")).
		WithArgs(string(models.ReservationApproved), "lab-1", day, "res-1").
		WillReturnRows(addReservationRow(reservationRows(), "res-2", day, 450, 600, models.ReservationApproved))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.ReservationApproved), sqlmock.AnyArg(), "res-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	reservation, err := repo.UpdateStatusIfFree(context.Background(), "res-1", models.ReservationApproved)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationApproved, reservation.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two approvals for the same lab must serialize on the lab row before the
// approved-rows scan: a competing approval's row is still pending and would
// not show up in that scan, so the scan alone cannot exclude it. The mock is
// order-strict, so this fails if the lab lock is dropped or reordered.
func TestReservationRepositoryApprovalSerializesOnLab(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = $1 FOR UPDATE")).
		WithArgs("res-a").
		WillReturnRows(addReservationRow(reservationRows(), "res-a", day, 450, 600, models.ReservationPending))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM labs WHERE id = $1 FOR UPDATE")).
		WithArgs("lab-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("lab-1"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND lab_id = $2 AND date = $3 AND id <> $4 FOR UPDATE")).
		WithArgs(string(models.ReservationApproved), "lab-1", day, "res-a").
		WillReturnRows(reservationRows())
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.ReservationApproved), sqlmock.AnyArg(), "res-a").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	_, err := repo.UpdateStatusIfFree(context.Background(), "res-a", models.ReservationApproved)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryApproveConflict(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = $1 FOR UPDATE")).
		WithArgs("res-1").
		WillReturnRows(addReservationRow(reservationRows(), "res-1", day, 600, 750, models.ReservationPending))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM labs WHERE id = $1 FOR UPDATE")).
		WithArgs("lab-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("lab-1"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 AND lab_id = $2 AND date = $3 AND id <> $4 FOR UPDATE")).
		WithArgs(string(models.ReservationApproved), "lab-1", day, "res-1").
		WillReturnRows(addReservationRow(reservationRows(), "res-2", day, 700, 900, models.ReservationApproved))
	mock.ExpectRollback()

	_, err := repo.UpdateStatusIfFree(context.Background(), "res-1", models.ReservationApproved)
	require.Error(t, err)

	var conflict *models.SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "res-2", conflict.Existing.ID)
	assert.Equal(t, models.TimeInterval{StartMinute: 600, EndMinute: 750}, conflict.Slot)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepositoryRejectSkipsConflictCheck(t *testing.T) {
	db, mock, cleanup := newReservationRepoMock(t)
	defer cleanup()
	repo := NewReservationRepository(db)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = $1 FOR UPDATE")).
		WithArgs("res-1").
		WillReturnRows(addReservationRow(reservationRows(), "res-1", day, 600, 750, models.ReservationPending))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.ReservationRejected), sqlmock.AnyArg(), "res-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	reservation, err := repo.UpdateStatusIfFree(context.Background(), "res-1", models.ReservationRejected)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationRejected, reservation.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
