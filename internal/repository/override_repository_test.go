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

func newOverrideRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestOverrideRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedule_overrides")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	override := &models.ScheduleOverride{
		Type:        models.OverrideCancel,
		Date:        time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		StartMinute: 750,
		EndMinute:   850,
		LabID:       "lab-2",
		LabName:     "Lab Jaringan",
		Reason:      "dosen berhalangan",
	}
	err := repo.Create(context.Background(), override)
	require.NoError(t, err)
	assert.NotEmpty(t, override.ID)
	assert.False(t, override.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryListRange(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	newDate := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	newStart, newEnd := 900, 1080
	rows := sqlmock.NewRows([]string{"id", "type", "date", "start_minute", "end_minute", "lab_id", "lab_name", "reason", "new_date", "new_start_minute", "new_end_minute", "created_at"}).
		AddRow("ov-1", string(models.OverrideReschedule), time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), 750, 850, "lab-2", "Lab Jaringan", "ruangan dipakai akreditasi", newDate, newStart, newEnd, time.Now())

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (date >= $1 AND date <= $2) OR (new_date >= $1 AND new_date <= $2) ORDER BY date ASC")).
		WithArgs(from, to).
		WillReturnRows(rows)

	overrides, err := repo.List(context.Background(), &from, &to)
	require.NoError(t, err)
	require.Len(t, overrides, 1)

	slot, ok := overrides[0].NewInterval()
	require.True(t, ok)
	assert.Equal(t, models.TimeInterval{StartMinute: 900, EndMinute: 1080}, slot)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	rows := sqlmock.NewRows([]string{"id", "type", "date", "start_minute", "end_minute", "lab_id", "lab_name", "reason", "new_date", "new_start_minute", "new_end_minute", "created_at"}).
		AddRow("ov-2", string(models.OverrideCancel), time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), 450, 600, "lab-1", "Lab RPL", "libur nasional", nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_overrides ORDER BY date ASC")).
		WillReturnRows(rows)

	overrides, err := repo.List(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, overrides, 1)

	_, ok := overrides[0].NewInterval()
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverrideRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newOverrideRepoMock(t)
	defer cleanup()
	repo := NewOverrideRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_overrides WHERE id = $1")).
		WithArgs("ov-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), "ov-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
