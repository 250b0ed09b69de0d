package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	appErrors "github.com/rmonteclaro/admission-api/pkg/errors"
)

func TestCourseCreateStatusOpensOfferingAndRetiresOldOnes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT academic_year_id FROM academic_year WHERE active = TRUE`)).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year_id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT course_status_id FROM course_status WHERE course_id = $1 AND academic_year_id = $2`)).
		WithArgs(int64(5), int64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO course_status (course_id, academic_year_id, slots, status)`)).
		WithArgs(int64(5), int64(7), 40, "Active").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE course_status SET status = $3 WHERE course_id = $1 AND academic_year_id != $2`)).
		WithArgs(int64(5), int64(7), "INACTIVE").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateStatus(context.Background(), 5, 40))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseCreateStatusWithoutActiveYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT academic_year_id FROM academic_year WHERE active = TRUE`)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.CreateStatus(context.Background(), 5, 40)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrNoActiveYear.Code, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseCreateStatusDuplicateLeavesExistingUntouched(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT academic_year_id FROM academic_year WHERE active = TRUE`)).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year_id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT course_status_id FROM course_status WHERE course_id = $1 AND academic_year_id = $2`)).
		WithArgs(int64(5), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"course_status_id"}).AddRow(11))
	mock.ExpectRollback()

	err := repo.CreateStatus(context.Background(), 5, 40)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseCreateStatusConcurrentInsertMapsToConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT academic_year_id FROM academic_year WHERE active = TRUE`)).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year_id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT course_status_id FROM course_status WHERE course_id = $1 AND academic_year_id = $2`)).
		WithArgs(int64(5), int64(7)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO course_status (course_id, academic_year_id, slots, status)`)).
		WithArgs(int64(5), int64(7), 40, "Active").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "unique_course_status_per_year"})
	mock.ExpectRollback()

	err := repo.CreateStatus(context.Background(), 5, 40)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseUpdateRollsBackRenameWhenOfferingMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE courses SET course_name = $2 WHERE course_id = $1`)).
		WithArgs(int64(5), "BS Biology").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE course_status SET slots = $2`)).
		WithArgs(int64(5), 30).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), 5, "BS Biology", 30)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseUpdateMissingCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE courses SET course_name = $2 WHERE course_id = $1`)).
		WithArgs(int64(99), "BS Biology").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), 99, "BS Biology", 30)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseDeleteRemovesOfferingsFirst(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM course_status WHERE course_id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM courses WHERE course_id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 5))
	require.NoError(t, mock.ExpectationsWereMet())
}
