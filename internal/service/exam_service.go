package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/validation"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type examRepository interface {
	List(ctx context.Context, filter models.EntityFilter) ([]models.Exam, int, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id string) error
	CountResults(ctx context.Context, id string) (int, error)
}

// ExamDraft captures fields for creating or updating an exam.
type ExamDraft struct {
	Title     string    `json:"title" validate:"required,min=1,max=200"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	LessonID  string    `json:"lesson_id" validate:"required,uuid"`
}

// ExamService handles exam domain workflows.
type ExamService struct {
	repo      examRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService creates a new exam service.
func NewExamService(repo examRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated exams, served from cache when possible.
func (s *ExamService) List(ctx context.Context, filter models.EntityFilter) ([]models.Exam, *models.Pagination, error) {
	type cached struct {
		Exams []models.Exam `json:"exams"`
		Total int           `json:"total"`
	}

	key := listKey("exam", filter.Page, filter.PageSize, filter.Search, filter.SortBy, filter.SortOrder)
	var entry cached
	if hit, _ := s.cache.Get(ctx, key, &entry); hit {
		return entry.Exams, paginate(filter.Page, filter.PageSize, entry.Total), nil
	}

	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}

	_ = s.cache.Set(ctx, key, cached{Exams: exams, Total: total}, 0)
	return exams, paginate(filter.Page, filter.PageSize, total), nil
}

// Get returns an exam by identifier.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// Create adds a new exam.
func (s *ExamService) Create(ctx context.Context, draft ExamDraft) (*models.Exam, error) {
	if err := validation.CheckErr(s.validator, draft, "exam"); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		Title:     draft.Title,
		StartTime: draft.StartTime,
		EndTime:   draft.EndTime,
		LessonID:  draft.LessonID,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, writeError(err, "exam")
	}

	_ = s.cache.Invalidate(ctx, listPattern("exam"))
	return exam, nil
}

// Update modifies an existing exam.
func (s *ExamService) Update(ctx context.Context, id string, draft ExamDraft) (*models.Exam, error) {
	if err := validation.CheckErr(s.validator, draft, "exam"); err != nil {
		return nil, err
	}

	exam, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exam.Title = draft.Title
	exam.StartTime = draft.StartTime
	exam.EndTime = draft.EndTime
	exam.LessonID = draft.LessonID

	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, writeError(err, "exam")
	}

	_ = s.cache.Invalidate(ctx, listPattern("exam"))
	return exam, nil
}

// Delete removes an exam when no results reference it.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	exam, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountResults(ctx, exam.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check exam results")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "exam has recorded results")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}

	_ = s.cache.Invalidate(ctx, listPattern("exam"))
	return nil
}
