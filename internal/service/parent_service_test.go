package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type mockParentRepo struct {
	parents      map[string]*models.Parent
	listResult   []models.Parent
	listTotal    int
	listCalls    int
	createCalls  int
	updateCalls  int
	deleteCalls  int
	studentCount int
	usernames    map[string]string
	createErr    error
}

func newMockParentRepo() *mockParentRepo {
	return &mockParentRepo{parents: map[string]*models.Parent{}, usernames: map[string]string{}}
}

func (m *mockParentRepo) List(ctx context.Context, filter models.PersonFilter) ([]models.Parent, int, error) {
	m.listCalls++
	return m.listResult, m.listTotal, nil
}

func (m *mockParentRepo) Options(ctx context.Context) ([]models.Option, error) {
	return []models.Option{{ID: "parent-1", Label: "Dewi Lestari"}}, nil
}

func (m *mockParentRepo) FindByID(ctx context.Context, id string) (*models.Parent, error) {
	parent, ok := m.parents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *parent
	return &copied, nil
}

func (m *mockParentRepo) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	owner, ok := m.usernames[username]
	return ok && owner != excludeID, nil
}

func (m *mockParentRepo) Create(ctx context.Context, parent *models.Parent) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	parent.ID = "parent-1"
	m.parents[parent.ID] = parent
	m.usernames[parent.Username] = parent.ID
	return nil
}

func (m *mockParentRepo) Update(ctx context.Context, parent *models.Parent) error {
	m.updateCalls++
	m.parents[parent.ID] = parent
	return nil
}

func (m *mockParentRepo) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	delete(m.parents, id)
	return nil
}

func (m *mockParentRepo) CountStudents(ctx context.Context, id string) (int, error) {
	return m.studentCount, nil
}

func validParentDraft() ParentDraft {
	return ParentDraft{
		Username: "dlestari",
		Email:    "dewi@example.com",
		Name:     "Dewi",
		Surname:  "Lestari",
		Phone:    "081234567890",
		Address:  "Jl. Melati 5",
	}
}

func TestParentServiceCreate(t *testing.T) {
	repo := newMockParentRepo()
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewParentService(repo, cache, nil, zap.NewNop())

	parent, err := svc.Create(context.Background(), validParentDraft())
	require.NoError(t, err)
	assert.Equal(t, "parent-1", parent.ID)
	assert.Equal(t, "dlestari", parent.Username)
	assert.Equal(t, 1, repo.createCalls)
	assert.Contains(t, cacheRepo.patterns, "list:parent:*")
}

func TestParentServiceCreateMissingFieldNeverReachesRepo(t *testing.T) {
	repo := newMockParentRepo()
	svc := NewParentService(repo, nil, nil, zap.NewNop())

	draft := validParentDraft()
	draft.Phone = ""

	_, err := svc.Create(context.Background(), draft)
	require.Error(t, err)
	assert.Equal(t, 0, repo.createCalls)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "is required", appErr.Fields["phone"])
}

func TestParentServiceCreateUsernameConflict(t *testing.T) {
	repo := newMockParentRepo()
	repo.usernames["dlestari"] = "parent-9"
	svc := NewParentService(repo, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), validParentDraft())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, 0, repo.createCalls)
}

func TestParentServiceCreateTrimsUsername(t *testing.T) {
	repo := newMockParentRepo()
	svc := NewParentService(repo, nil, nil, zap.NewNop())

	draft := validParentDraft()
	draft.Username = "  dlestari  "

	parent, err := svc.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, "dlestari", parent.Username)
}

func TestParentServiceCreateRejectsPaddedShortUsername(t *testing.T) {
	repo := newMockParentRepo()
	svc := NewParentService(repo, nil, nil, zap.NewNop())

	draft := validParentDraft()
	draft.Username = "  a  "

	_, err := svc.Create(context.Background(), draft)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "must be at least 3 characters", appErr.Fields["username"])
	assert.Zero(t, repo.createCalls)
}

func TestParentServiceUpdateTargetsExistingRecord(t *testing.T) {
	repo := newMockParentRepo()
	repo.parents["parent-1"] = &models.Parent{ID: "parent-1", Username: "dlestari", Name: "Dewi", Surname: "Lestari"}
	repo.usernames["dlestari"] = "parent-1"
	svc := NewParentService(repo, nil, nil, zap.NewNop())

	draft := validParentDraft()
	draft.Name = "Dewi Ayu"

	parent, err := svc.Update(context.Background(), "parent-1", draft)
	require.NoError(t, err)
	assert.Equal(t, "parent-1", parent.ID)
	assert.Equal(t, "Dewi Ayu", parent.Name)
	assert.Equal(t, 1, repo.updateCalls)

	// Resubmitting the same draft leaves the record unchanged.
	again, err := svc.Update(context.Background(), "parent-1", draft)
	require.NoError(t, err)
	assert.Equal(t, parent, again)
}

func TestParentServiceUpdateUnknownID(t *testing.T) {
	repo := newMockParentRepo()
	svc := NewParentService(repo, nil, nil, zap.NewNop())

	_, err := svc.Update(context.Background(), "missing", validParentDraft())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, 0, repo.updateCalls)
}

func TestParentServiceCreateForeignKeyConflict(t *testing.T) {
	repo := newMockParentRepo()
	repo.createErr = fkViolation()
	svc := NewParentService(repo, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), validParentDraft())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestParentServiceDeleteBlockedByLinkedStudents(t *testing.T) {
	repo := newMockParentRepo()
	repo.parents["parent-1"] = &models.Parent{ID: "parent-1", Username: "dlestari"}
	repo.studentCount = 2
	svc := NewParentService(repo, nil, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "parent-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, 0, repo.deleteCalls)
}

func TestParentServiceListUsesCache(t *testing.T) {
	repo := newMockParentRepo()
	repo.listResult = []models.Parent{{ID: "parent-1", Username: "dlestari"}}
	repo.listTotal = 1
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewParentService(repo, cache, nil, zap.NewNop())

	filter := models.PersonFilter{Page: 1, PageSize: 20}
	ctx := context.Background()

	parents, pagination, err := svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, parents, 1)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, repo.listCalls)

	cachedParents, _, err := svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, parents, cachedParents)
	assert.Equal(t, 1, repo.listCalls)
}
