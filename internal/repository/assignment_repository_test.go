package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escolar-dev/escolar-api/internal/models"
)

func newAssignmentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssignmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "start_date", "due_date", "lesson_id", "created_at", "updated_at"}).
		AddRow("assignment-1", "Fractions worksheet", time.Now(), time.Now(), "lesson-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, start_date, due_date, lesson_id, created_at, updated_at FROM assignments WHERE 1=1 ORDER BY due_date ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assignments WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	assignments, total, err := repo.List(context.Background(), models.AssignmentFilter{})
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	dueBefore := models.NewDate(2026, time.September, 30)
	rows := sqlmock.NewRows([]string{"id", "title", "start_date", "due_date", "lesson_id", "created_at", "updated_at"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, start_date, due_date, lesson_id, created_at, updated_at FROM assignments WHERE 1=1 AND lesson_id = $1 AND LOWER(title) LIKE $2 AND due_date <= $3 ORDER BY due_date ASC LIMIT 20 OFFSET 0")).
		WithArgs("lesson-1", "%fractions%", dueBefore.Time).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assignments WHERE 1=1 AND lesson_id = $1 AND LOWER(title) LIKE $2 AND due_date <= $3")).
		WithArgs("lesson-1", "%fractions%", dueBefore.Time).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.AssignmentFilter{
		LessonID:  "lesson-1",
		Search:    "Fractions",
		DueBefore: &dueBefore,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListRejectsUnknownSort(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "start_date", "due_date", "lesson_id", "created_at", "updated_at"})
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY due_date ASC")).WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.AssignmentFilter{SortBy: "due_date; DROP TABLE assignments"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "start_date", "due_date", "lesson_id", "created_at", "updated_at"}).
		AddRow("assignment-1", "Fractions worksheet", time.Now(), time.Now(), "lesson-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, start_date, due_date, lesson_id, created_at, updated_at FROM assignments WHERE id = $1")).
		WithArgs("assignment-1").
		WillReturnRows(rows)

	assignment, err := repo.FindByID(context.Background(), "assignment-1")
	require.NoError(t, err)
	assert.Equal(t, "Fractions worksheet", assignment.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryFindByIDNoRows(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery("SELECT id, title").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO assignments").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := &models.Assignment{
		Title:     "Fractions worksheet",
		StartDate: models.NewDate(2026, time.September, 1),
		DueDate:   models.NewDate(2026, time.September, 8),
		LessonID:  "lesson-1",
	}
	err := repo.Create(context.Background(), assignment)
	require.NoError(t, err)
	assert.NotEmpty(t, assignment.ID)
	assert.False(t, assignment.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("UPDATE assignments SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.Assignment{
		ID:        "assignment-1",
		Title:     "Fractions worksheet",
		StartDate: models.NewDate(2026, time.September, 1),
		DueDate:   models.NewDate(2026, time.September, 8),
		LessonID:  "lesson-1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCountResults(t *testing.T) {
	db, mock, cleanup := newAssignmentMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM results WHERE assignment_id = $1")).
		WithArgs("assignment-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountResults(context.Background(), "assignment-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
