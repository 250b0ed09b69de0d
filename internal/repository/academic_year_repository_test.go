package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAcademicYearCreateActiveDeactivatesOthers(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE academic_year SET active = FALSE`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO academic_year (year_range, active) VALUES ($1, $2)`)).
		WithArgs("2024-2025", true).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year_id", "year_range", "active", "created_at"}).
			AddRow(3, "2024-2025", true, time.Now()))
	mock.ExpectCommit()

	year, err := repo.Create(context.Background(), "2024-2025", true)
	require.NoError(t, err)
	require.Equal(t, int64(3), year.ID)
	require.True(t, year.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearCreateInactiveSkipsDeactivation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO academic_year (year_range, active) VALUES ($1, $2)`)).
		WithArgs("2022-2023", false).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year_id", "year_range", "active", "created_at"}).
			AddRow(4, "2022-2023", false, time.Now()))
	mock.ExpectCommit()

	year, err := repo.Create(context.Background(), "2022-2023", false)
	require.NoError(t, err)
	require.False(t, year.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearUpdateActiveCascadesOfferings(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE academic_year SET active = FALSE`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE academic_year SET year_range = $2, active = $3 WHERE academic_year_id = $1`)).
		WithArgs(int64(2), "2024-2025", true).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year_id", "year_range", "active", "created_at"}).
			AddRow(2, "2024-2025", true, time.Now()))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE course_status SET status = $2 WHERE academic_year_id = $1`)).
		WithArgs(int64(2), "Active").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE course_status SET status = $2 WHERE academic_year_id != $1`)).
		WithArgs(int64(2), "Inactive").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	year, err := repo.Update(context.Background(), 2, "2024-2025", true)
	require.NoError(t, err)
	require.True(t, year.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearUpdateMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE academic_year SET active = FALSE`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE academic_year SET year_range = $2, active = $3 WHERE academic_year_id = $1`)).
		WithArgs(int64(99), "2024-2025", true).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), 99, "2024-2025", true)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearDeleteActivePromotesLatestRemaining(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM course_status WHERE academic_year_id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT active FROM academic_year WHERE academic_year_id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM academic_year WHERE academic_year_id = $1`)).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT academic_year_id FROM academic_year ORDER BY academic_year_id DESC LIMIT 1`)).
		WillReturnRows(sqlmock.NewRows([]string{"academic_year_id"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE academic_year SET active = TRUE WHERE academic_year_id = $1`)).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearDeleteLastActiveLeavesNoneActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM course_status WHERE academic_year_id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT active FROM academic_year WHERE academic_year_id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"active"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM academic_year WHERE academic_year_id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT academic_year_id FROM academic_year ORDER BY academic_year_id DESC LIMIT 1`)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearDeleteMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM course_status WHERE academic_year_id = $1`)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT active FROM academic_year WHERE academic_year_id = $1`)).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 42)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
