package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
)

type mockDashboardSource struct {
	roleCounts      []models.RoleCount
	sexCounts       []models.SexCount
	weekly          []models.AttendanceDay
	roleCalls       int
	sexCalls        int
	weeklyCalls     int
	weeklyFrom      models.Date
	weeklyTo        models.Date
	roleErr         error
	weeklySummaries error
}

func (m *mockDashboardSource) CountByRole(ctx context.Context) ([]models.RoleCount, error) {
	m.roleCalls++
	if m.roleErr != nil {
		return nil, m.roleErr
	}
	return m.roleCounts, nil
}

func (m *mockDashboardSource) CountBySex(ctx context.Context) ([]models.SexCount, error) {
	m.sexCalls++
	return m.sexCounts, nil
}

func (m *mockDashboardSource) WeeklySummary(ctx context.Context, from, to models.Date) ([]models.AttendanceDay, error) {
	m.weeklyCalls++
	m.weeklyFrom = from
	m.weeklyTo = to
	if m.weeklySummaries != nil {
		return nil, m.weeklySummaries
	}
	return m.weekly, nil
}

func newDashboardFixture() *mockDashboardSource {
	return &mockDashboardSource{
		roleCounts: []models.RoleCount{{Role: models.RoleStudent, Count: 240}, {Role: models.RoleTeacher, Count: 18}},
		sexCounts:  []models.SexCount{{Sex: models.SexMale, Count: 130}, {Sex: models.SexFemale, Count: 110}},
		weekly:     []models.AttendanceDay{{Day: "Monday", Present: 228, Absent: 12}},
	}
}

func TestDashboardServiceSummary(t *testing.T) {
	source := newDashboardFixture()
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(source, source, source, cache, zap.NewNop(), time.Minute)

	summary, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, source.roleCounts, summary.UserCounts)
	assert.Equal(t, source.sexCounts, summary.SexCounts)
	assert.Equal(t, source.weekly, summary.WeeklyAttendance)
	assert.False(t, summary.GeneratedAt.IsZero())
}

func TestDashboardServiceSummaryServedFromCache(t *testing.T) {
	source := newDashboardFixture()
	cache := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(source, source, source, cache, zap.NewNop(), time.Minute)
	ctx := context.Background()

	_, cached, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.False(t, cached)

	_, cached, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, source.roleCalls)
	assert.Equal(t, 1, source.sexCalls)
	assert.Equal(t, 1, source.weeklyCalls)
}

func TestDashboardServiceInvalidateForcesRecompute(t *testing.T) {
	source := newDashboardFixture()
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(source, source, source, cache, zap.NewNop(), time.Minute)
	ctx := context.Background()

	_, _, err := svc.Summary(ctx)
	require.NoError(t, err)

	svc.Invalidate(ctx)
	assert.Contains(t, repo.patterns, "dashboard:summary")
}

func TestDashboardServiceWeekBounds(t *testing.T) {
	source := newDashboardFixture()
	svc := NewDashboardService(source, source, source, nil, zap.NewNop(), time.Minute)
	// A Wednesday; the window must span that week's Monday through Friday.
	svc.now = func() time.Time { return time.Date(2026, time.September, 2, 10, 30, 0, 0, time.UTC) }

	_, _, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", source.weeklyFrom.String())
	assert.Equal(t, "2026-09-04", source.weeklyTo.String())
}

func TestCurrentSchoolWeekSunday(t *testing.T) {
	from, to := currentSchoolWeek(time.Date(2026, time.September, 6, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "2026-08-31", from.String())
	assert.Equal(t, "2026-09-04", to.String())
}

func TestDashboardServiceErrorPassthrough(t *testing.T) {
	source := newDashboardFixture()
	source.roleErr = assert.AnError
	svc := NewDashboardService(source, source, source, nil, zap.NewNop(), time.Minute)

	_, _, err := svc.Summary(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
