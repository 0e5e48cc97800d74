package service

import (
	"bytes"
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type mockReportResultRepo struct {
	details []models.ResultDetail
}

func (m *mockReportResultRepo) ListDetailsByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error) {
	return m.details, nil
}

type mockReportStudentRepo struct {
	student *models.Student
}

func (m *mockReportStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

func reportFixture() (*mockReportResultRepo, *mockReportStudentRepo) {
	results := &mockReportResultRepo{details: []models.ResultDetail{
		{Result: models.Result{Score: 88, ExamID: strPtr("exam-1")}, Title: "Midterm exam"},
		{Result: models.Result{Score: 95, AssignmentID: strPtr("assignment-1")}, Title: "Fractions worksheet"},
	}}
	students := &mockReportStudentRepo{student: &models.Student{ID: "student-1", Name: "Amira", Surname: "Putri"}}
	return results, students
}

func TestReportServiceReportCardCSV(t *testing.T) {
	results, students := reportFixture()
	svc := NewReportService(results, students, "Escolar High", zap.NewNop())

	payload, contentType, err := svc.ReportCard(context.Background(), "student-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	assert.True(t, bytes.HasPrefix(payload, []byte("Assessment,Type,Score\n")))
	assert.Contains(t, string(payload), "Midterm exam,Exam,88")
	assert.Contains(t, string(payload), "Fractions worksheet,Assignment,95")
}

func TestReportServiceReportCardDefaultsToCSV(t *testing.T) {
	results, students := reportFixture()
	svc := NewReportService(results, students, "", zap.NewNop())

	_, contentType, err := svc.ReportCard(context.Background(), "student-1", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
}

func TestReportServiceReportCardPDF(t *testing.T) {
	results, students := reportFixture()
	svc := NewReportService(results, students, "Escolar High", zap.NewNop())

	payload, contentType, err := svc.ReportCard(context.Background(), "student-1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestReportServiceReportCardUnknownFormat(t *testing.T) {
	results, students := reportFixture()
	svc := NewReportService(results, students, "Escolar High", zap.NewNop())

	_, _, err := svc.ReportCard(context.Background(), "student-1", "xlsx")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "must be one of csv, pdf", appErr.Fields["format"])
}

func TestReportServiceReportCardUnknownStudent(t *testing.T) {
	results := &mockReportResultRepo{}
	students := &mockReportStudentRepo{}
	svc := NewReportService(results, students, "Escolar High", zap.NewNop())

	_, _, err := svc.ReportCard(context.Background(), "missing", "csv")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
