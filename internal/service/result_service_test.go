package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type mockResultRepo struct {
	results     map[string]*models.Result
	createCalls int
	updateCalls int
	deleteCalls int
	createErr   error
}

func newMockResultRepo() *mockResultRepo {
	return &mockResultRepo{results: map[string]*models.Result{}}
}

func (m *mockResultRepo) List(ctx context.Context, studentID string, page, size int) ([]models.Result, int, error) {
	return nil, 0, nil
}

func (m *mockResultRepo) ListDetailsByStudent(ctx context.Context, studentID string) ([]models.ResultDetail, error) {
	return nil, nil
}

func (m *mockResultRepo) FindByID(ctx context.Context, id string) (*models.Result, error) {
	result, ok := m.results[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *result
	return &copied, nil
}

func (m *mockResultRepo) Create(ctx context.Context, result *models.Result) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	result.ID = "result-1"
	m.results[result.ID] = result
	return nil
}

func (m *mockResultRepo) Update(ctx context.Context, result *models.Result) error {
	m.updateCalls++
	m.results[result.ID] = result
	return nil
}

func (m *mockResultRepo) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	delete(m.results, id)
	return nil
}

func strPtr(s string) *string { return &s }

func examResultDraft() ResultDraft {
	return ResultDraft{
		Score:     85,
		ExamID:    strPtr("4f3b9f2e-6f4d-4e8a-8a1a-9f2b3c4d5e6f"),
		StudentID: "2d1c8b7a-5e4f-4a3b-9c8d-7e6f5a4b3c2d",
	}
}

func TestResultServiceCreateExamScore(t *testing.T) {
	repo := newMockResultRepo()
	svc := NewResultService(repo, nil, nil, zap.NewNop())

	result, err := svc.Create(context.Background(), examResultDraft())
	require.NoError(t, err)
	assert.Equal(t, "result-1", result.ID)
	assert.Equal(t, 85, result.Score)
	require.NotNil(t, result.ExamID)
	assert.Nil(t, result.AssignmentID)
}

func TestResultServiceRequiresExactlyOneTarget(t *testing.T) {
	repo := newMockResultRepo()
	svc := NewResultService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()

	// Neither reference set.
	draft := examResultDraft()
	draft.ExamID = nil
	_, err := svc.Create(ctx, draft)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "exam_id")
	assert.Contains(t, appErr.Fields, "assignment_id")

	// Both references set.
	draft = examResultDraft()
	draft.AssignmentID = strPtr("8a7b6c5d-4e3f-2a1b-9c8d-7e6f5a4b3c2d")
	_, err = svc.Create(ctx, draft)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	assert.Equal(t, 0, repo.createCalls)
}

func TestResultServiceScoreBounds(t *testing.T) {
	repo := newMockResultRepo()
	svc := NewResultService(repo, nil, nil, zap.NewNop())
	ctx := context.Background()

	draft := examResultDraft()
	draft.Score = 101
	_, err := svc.Create(ctx, draft)
	require.Error(t, err)
	assert.Equal(t, "must be at most 100", appErrors.FromError(err).Fields["score"])

	// A zero score is a legitimate grade.
	draft = examResultDraft()
	draft.Score = 0
	_, err = svc.Create(ctx, draft)
	require.NoError(t, err)
}

func TestResultServiceCreateMissingReferenceConflict(t *testing.T) {
	repo := newMockResultRepo()
	repo.createErr = fkViolation()
	svc := NewResultService(repo, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), examResultDraft())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Contains(t, err.Error(), "references a missing related record")
}

func TestResultServiceUpdateSwitchesTarget(t *testing.T) {
	repo := newMockResultRepo()
	repo.results["result-1"] = &models.Result{
		ID:        "result-1",
		Score:     70,
		ExamID:    strPtr("4f3b9f2e-6f4d-4e8a-8a1a-9f2b3c4d5e6f"),
		StudentID: "2d1c8b7a-5e4f-4a3b-9c8d-7e6f5a4b3c2d",
	}
	svc := NewResultService(repo, nil, nil, zap.NewNop())

	draft := examResultDraft()
	draft.ExamID = nil
	draft.AssignmentID = strPtr("8a7b6c5d-4e3f-4a1b-9c8d-7e6f5a4b3c2d")
	draft.Score = 92

	result, err := svc.Update(context.Background(), "result-1", draft)
	require.NoError(t, err)
	assert.Equal(t, 92, result.Score)
	assert.Nil(t, result.ExamID)
	require.NotNil(t, result.AssignmentID)
	assert.Equal(t, 1, repo.updateCalls)
}

func TestResultServiceDeleteUnknownID(t *testing.T) {
	repo := newMockResultRepo()
	svc := NewResultService(repo, nil, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, 0, repo.deleteCalls)
}
