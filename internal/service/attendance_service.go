package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error)
	WeeklySummary(ctx context.Context, from, to models.Date) ([]models.AttendanceDay, error)
}

// AttendanceService exposes the attendance read side.
type AttendanceService struct {
	repo   attendanceRepository
	logger *zap.Logger
}

// NewAttendanceService creates a new attendance service.
func NewAttendanceService(repo attendanceRepository, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, logger: logger}
}

// List returns paginated attendance records.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, paginate(filter.Page, filter.PageSize, total), nil
}

// WeeklySummary aggregates presence per weekday over the given range.
func (s *AttendanceService) WeeklySummary(ctx context.Context, from, to models.Date) ([]models.AttendanceDay, error) {
	days, err := s.repo.WeeklySummary(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}
	return days, nil
}
