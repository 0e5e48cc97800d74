package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:summary"

type roleCounter interface {
	CountByRole(ctx context.Context) ([]models.RoleCount, error)
}

type sexCounter interface {
	CountBySex(ctx context.Context) ([]models.SexCount, error)
}

type attendanceSummariser interface {
	WeeklySummary(ctx context.Context, from, to models.Date) ([]models.AttendanceDay, error)
}

// DashboardService composes the admin landing page summary.
type DashboardService struct {
	users      roleCounter
	students   sexCounter
	attendance attendanceSummariser
	cache      *CacheService
	logger     *zap.Logger
	cacheTTL   time.Duration
	now        func() time.Time
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(users roleCounter, students sexCounter, attendance attendanceSummariser, cache *CacheService, logger *zap.Logger, cacheTTL time.Duration) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:      users,
		students:   students,
		attendance: attendance,
		cache:      cache,
		logger:     logger,
		cacheTTL:   cacheTTL,
		now:        time.Now,
	}
}

// Summary returns the dashboard payload and whether it was served from
// cache. The attendance chart covers the current ISO week.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, bool, error) {
	var summary models.DashboardSummary
	if hit, _ := s.cache.Get(ctx, dashboardCacheKey, &summary); hit {
		return &summary, true, nil
	}

	userCounts, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}

	sexCounts, err := s.students.CountBySex(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}

	from, to := currentSchoolWeek(s.now().UTC())
	weekly, err := s.attendance.WeeklySummary(ctx, from, to)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}

	summary = models.DashboardSummary{
		UserCounts:       userCounts,
		SexCounts:        sexCounts,
		WeeklyAttendance: weekly,
		GeneratedAt:      s.now().UTC(),
	}

	_ = s.cache.Set(ctx, dashboardCacheKey, summary, s.cacheTTL)
	return &summary, false, nil
}

// Invalidate drops the cached summary. Called after mutations that move the
// dashboard numbers.
func (s *DashboardService) Invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, dashboardCacheKey)
}

// currentSchoolWeek returns Monday through Friday of the week containing t.
func currentSchoolWeek(t time.Time) (models.Date, models.Date) {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := t.AddDate(0, 0, 1-weekday)
	friday := monday.AddDate(0, 0, 4)
	return models.NewDate(monday.Year(), monday.Month(), monday.Day()),
		models.NewDate(friday.Year(), friday.Month(), friday.Day())
}
