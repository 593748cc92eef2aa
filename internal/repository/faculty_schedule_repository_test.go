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

func newFacultyScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func facultyScheduleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "day_of_week", "start_minute", "end_minute", "original_slot_text", "lab_id", "lab_name", "subject", "lecturer", "class_name", "created_at", "updated_at"})
}

func TestFacultyScheduleRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newFacultyScheduleRepoMock(t)
	defer cleanup()
	repo := NewFacultyScheduleRepository(db)

	rows := facultyScheduleRows().
		AddRow("fs-1", models.DaySenin, 450, 600, "07.30 - 10.00", "lab-1", "Lab RPL", "Pemrograman Web", "Dr. Rahmat", "IF-3A", time.Now(), time.Now()).
		AddRow("fs-2", models.DaySenin, 600, 750, "10.00 - 12.30", "lab-1", "Lab RPL", "Basis Data", "Dr. Sari", "IF-3B", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day_of_week, start_minute, end_minute, original_slot_text, lab_id, lab_name, subject, lecturer, class_name, created_at, updated_at FROM faculty_schedules WHERE 1=1 ORDER BY day_of_week ASC, start_minute ASC, lab_id ASC")).
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), models.FacultyScheduleFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, models.TimeInterval{StartMinute: 450, EndMinute: 600}, entries[0].Interval())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyScheduleRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newFacultyScheduleRepoMock(t)
	defer cleanup()
	repo := NewFacultyScheduleRepository(db)

	rows := facultyScheduleRows().
		AddRow("fs-3", models.DayRabu, 750, 850, "12.30 - 15.00", "lab-2", "Lab Jaringan", "Jaringan Komputer", "Dr. Budi", "IF-2A", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND day_of_week = $1 AND lab_id = $2 ORDER BY")).
		WithArgs(models.DayRabu, "lab-2").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background(), models.FacultyScheduleFilter{DayOfWeek: "rabu", LabID: "lab-2"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Jaringan Komputer", entries[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyScheduleRepositoryReplaceAll(t *testing.T) {
	db, mock, cleanup := newFacultyScheduleRepoMock(t)
	defer cleanup()
	repo := NewFacultyScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM faculty_schedules")).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO faculty_schedules")).
		WithArgs(sqlmock.AnyArg(), models.DaySenin, 450, 600, "07.30 - 10.00", "lab-1", "Lab RPL", "Pemrograman Web", "Dr. Rahmat", "IF-3A", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.FacultyScheduleEntry{
		{
			DayOfWeek:        models.DaySenin,
			StartMinute:      450,
			EndMinute:        600,
			OriginalSlotText: "07.30 - 10.00",
			LabID:            "lab-1",
			LabName:          "Lab RPL",
			Subject:          "Pemrograman Web",
			Lecturer:         "Dr. Rahmat",
			ClassName:        "IF-3A",
		},
	}
	err := repo.ReplaceAll(context.Background(), entries)
	require.NoError(t, err)
	assert.NotEmpty(t, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyScheduleRepositoryReplaceAllRollsBack(t *testing.T) {
	db, mock, cleanup := newFacultyScheduleRepoMock(t)
	defer cleanup()
	repo := NewFacultyScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM faculty_schedules")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceAll(context.Background(), []models.FacultyScheduleEntry{{DayOfWeek: models.DaySenin}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyScheduleRepositoryCount(t *testing.T) {
	db, mock, cleanup := newFacultyScheduleRepoMock(t)
	defer cleanup()
	repo := NewFacultyScheduleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM faculty_schedules")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
