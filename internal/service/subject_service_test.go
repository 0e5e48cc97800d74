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

type mockSubjectRepo struct {
	subjects    map[string]*models.Subject
	names       map[string]string
	lessonCount int
	createCalls int
	deleteCalls int
}

func newMockSubjectRepo() *mockSubjectRepo {
	return &mockSubjectRepo{subjects: map[string]*models.Subject{}, names: map[string]string{}}
}

func (m *mockSubjectRepo) List(ctx context.Context, filter models.EntityFilter) ([]models.Subject, int, error) {
	return nil, 0, nil
}

func (m *mockSubjectRepo) Options(ctx context.Context) ([]models.Option, error) {
	return nil, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := m.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *subject
	return &copied, nil
}

func (m *mockSubjectRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	owner, ok := m.names[name]
	return ok && owner != excludeID, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	m.createCalls++
	subject.ID = "subject-1"
	m.subjects[subject.ID] = subject
	m.names[subject.Name] = subject.ID
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	m.subjects[subject.ID] = subject
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	delete(m.subjects, id)
	return nil
}

func (m *mockSubjectRepo) CountLessons(ctx context.Context, id string) (int, error) {
	return m.lessonCount, nil
}

func TestSubjectServiceCreate(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := NewSubjectService(repo, nil, nil, zap.NewNop())

	subject, err := svc.Create(context.Background(), SubjectDraft{Name: "Mathematics"})
	require.NoError(t, err)
	assert.Equal(t, "subject-1", subject.ID)
	assert.Equal(t, "Mathematics", subject.Name)
}

func TestSubjectServiceCreateDuplicateName(t *testing.T) {
	repo := newMockSubjectRepo()
	repo.names["Mathematics"] = "subject-9"
	svc := NewSubjectService(repo, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), SubjectDraft{Name: "Mathematics"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, 0, repo.createCalls)
}

func TestSubjectServiceCreateEmptyName(t *testing.T) {
	repo := newMockSubjectRepo()
	svc := NewSubjectService(repo, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), SubjectDraft{})
	require.Error(t, err)
	assert.Equal(t, "is required", appErrors.FromError(err).Fields["name"])
}

func TestSubjectServiceUpdateKeepingOwnName(t *testing.T) {
	repo := newMockSubjectRepo()
	repo.subjects["subject-1"] = &models.Subject{ID: "subject-1", Name: "Mathematics"}
	repo.names["Mathematics"] = "subject-1"
	svc := NewSubjectService(repo, nil, nil, zap.NewNop())

	// Renaming to the name it already holds is not a conflict.
	subject, err := svc.Update(context.Background(), "subject-1", SubjectDraft{Name: "Mathematics"})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", subject.Name)
}

func TestSubjectServiceDeleteBlockedByLessons(t *testing.T) {
	repo := newMockSubjectRepo()
	repo.subjects["subject-1"] = &models.Subject{ID: "subject-1", Name: "Mathematics"}
	repo.lessonCount = 4
	svc := NewSubjectService(repo, nil, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "subject-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, 0, repo.deleteCalls)

	repo.lessonCount = 0
	require.NoError(t, svc.Delete(context.Background(), "subject-1"))
	assert.Equal(t, 1, repo.deleteCalls)
}
