package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/rmonteclaro/admission-api/internal/models"
	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

func TestApplicationCreateResolvesActiveOffering(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT academic_year_id FROM academic_year WHERE active = TRUE`)).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year_id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT course_status_id FROM course_status WHERE course_id = $1 AND academic_year_id = $2`)).
		WithArgs(int64(3), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"course_status_id"}).AddRow(12))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO applications (applicant_id, course_status_id, application_status, application_date, document_one_ext, document_two_ext)`)).
		WithArgs(int64(9), int64(12), models.ApplicationPending, ".png", ".pdf").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), 9, 3, ".png", ".pdf"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCreateWithoutActiveYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT academic_year_id FROM academic_year WHERE active = TRUE`)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), 9, 3, ".png", ".pdf")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNoActiveYear.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCreateUnopenedCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT academic_year_id FROM academic_year WHERE active = TRUE`)).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year_id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT course_status_id FROM course_status WHERE course_id = $1 AND academic_year_id = $2`)).
		WithArgs(int64(3), int64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), 9, 3, ".png", ".pdf")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCreateSecondApplicationConflicts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT academic_year_id FROM academic_year WHERE active = TRUE`)).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year_id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT course_status_id FROM course_status WHERE course_id = $1 AND academic_year_id = $2`)).
		WithArgs(int64(3), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"course_status_id"}).AddRow(12))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO applications`)).
		WithArgs(int64(9), int64(12), models.ApplicationPending, ".png", ".pdf").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "unique_application_per_applicant"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), 9, 3, ".png", ".pdf")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationUpdateScheduleForcesScheduledStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(`SET schedule_start = $1, schedule_end = $2, application_status = $3`)).
		WithArgs(start, end, models.ApplicationScheduled, int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateSchedule(context.Background(), 4, start, end)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationUpdateScheduleMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	start := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectExec(regexp.QuoteMeta(`SET schedule_start = $1, schedule_end = $2, application_status = $3`)).
		WithArgs(start, end, models.ApplicationScheduled, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateSchedule(context.Background(), 99, start, end)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationPromoteCreatesRecordAndMovesBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO admission_records (course_status_id, type)`)).
		WithArgs(int64(12), models.OutcomePassed).
		WillReturnRows(sqlmock.NewRows([]string{"admission_record_id", "course_status_id", "type", "created_at"}).
			AddRow(21, 12, "Passed", time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`SET application_status = $1, admission_record_id = $2`)).
		WithArgs(models.ApplicationPassed, int64(21), pq.Array([]int64{4, 5, 6})).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	record, err := repo.Promote(context.Background(), []int64{4, 5, 6}, models.OutcomePassed, 12)
	require.NoError(t, err)
	require.Equal(t, int64(21), record.ID)
	require.Equal(t, models.OutcomePassed, record.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationPromoteRollsBackWhenBatchUpdateFails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	boom := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO admission_records (course_status_id, type)`)).
		WithArgs(int64(12), models.OutcomeNoShow).
		WillReturnRows(sqlmock.NewRows([]string{"admission_record_id", "course_status_id", "type", "created_at"}).
			AddRow(22, 12, "NoShow", time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`SET application_status = $1, admission_record_id = $2`)).
		WithArgs(models.ApplicationNoShow, int64(22), pq.Array([]int64{4})).
		WillReturnError(boom)
	mock.ExpectRollback()

	_, err := repo.Promote(context.Background(), []int64{4}, models.OutcomeNoShow, 12)
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}
