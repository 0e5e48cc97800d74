package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/models"
	"github.com/escolar-dev/escolar-api/internal/validation"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type lessonRepository interface {
	List(ctx context.Context, filter models.EntityFilter) ([]models.Lesson, int, error)
	Options(ctx context.Context) ([]models.Option, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
	CountDependents(ctx context.Context, id string) (int, error)
}

// LessonDraft captures fields for creating or updating a lesson.
type LessonDraft struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	Day       string `json:"day" validate:"required,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime   string `json:"end_time" validate:"required,datetime=15:04"`
	SubjectID string `json:"subject_id" validate:"required,uuid"`
	ClassID   string `json:"class_id" validate:"required,uuid"`
	TeacherID string `json:"teacher_id" validate:"required,uuid"`
}

// LessonService handles lesson domain workflows.
type LessonService struct {
	repo      lessonRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService creates a new lesson service.
func NewLessonService(repo lessonRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated lessons, served from cache when possible.
func (s *LessonService) List(ctx context.Context, filter models.EntityFilter) ([]models.Lesson, *models.Pagination, error) {
	type cached struct {
		Lessons []models.Lesson `json:"lessons"`
		Total   int             `json:"total"`
	}

	key := listKey("lesson", filter.Page, filter.PageSize, filter.Search, filter.SortBy, filter.SortOrder)
	var entry cached
	if hit, _ := s.cache.Get(ctx, key, &entry); hit {
		return entry.Lessons, paginate(filter.Page, filter.PageSize, entry.Total), nil
	}

	lessons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}

	_ = s.cache.Set(ctx, key, cached{Lessons: lessons, Total: total}, 0)
	return lessons, paginate(filter.Page, filter.PageSize, total), nil
}

// Options returns the id/label pairs for lesson selection fields.
func (s *LessonService) Options(ctx context.Context) ([]models.Option, error) {
	options, err := s.repo.Options(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson options")
	}
	return options, nil
}

// Get returns a lesson by identifier.
func (s *LessonService) Get(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

// Create adds a new lesson. Referential failures on subject, class or
// teacher surface as conflicts.
func (s *LessonService) Create(ctx context.Context, draft LessonDraft) (*models.Lesson, error) {
	if err := validation.CheckErr(s.validator, draft, "lesson"); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		Name:      draft.Name,
		Day:       models.Weekday(draft.Day),
		StartTime: draft.StartTime,
		EndTime:   draft.EndTime,
		SubjectID: draft.SubjectID,
		ClassID:   draft.ClassID,
		TeacherID: draft.TeacherID,
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, writeError(err, "lesson")
	}

	_ = s.cache.Invalidate(ctx, listPattern("lesson"))
	return lesson, nil
}

// Update modifies an existing lesson.
func (s *LessonService) Update(ctx context.Context, id string, draft LessonDraft) (*models.Lesson, error) {
	if err := validation.CheckErr(s.validator, draft, "lesson"); err != nil {
		return nil, err
	}

	lesson, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	lesson.Name = draft.Name
	lesson.Day = models.Weekday(draft.Day)
	lesson.StartTime = draft.StartTime
	lesson.EndTime = draft.EndTime
	lesson.SubjectID = draft.SubjectID
	lesson.ClassID = draft.ClassID
	lesson.TeacherID = draft.TeacherID

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, writeError(err, "lesson")
	}

	_ = s.cache.Invalidate(ctx, listPattern("lesson"))
	return lesson, nil
}

// Delete removes a lesson when no exams or assignments reference it.
func (s *LessonService) Delete(ctx context.Context, id string) error {
	lesson, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountDependents(ctx, lesson.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check lesson dependents")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "lesson is referenced by exams or assignments")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}

	_ = s.cache.Invalidate(ctx, listPattern("lesson"))
	return nil
}
